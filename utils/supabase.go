package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

func storageClient() *storage.Client {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	return storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)
}

func publicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/uploads/%s", os.Getenv("SUPABASE_URL"), objectPath)
}

// uploadToFolder đẩy file lên bucket 'uploads' dưới folder chỉ định,
// tên object = <fileID>.<ext>, trả về public URL
func uploadToFolder(fileHeader *multipart.FileHeader, folder, fileID string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	objectPath := fmt.Sprintf("%s/%s%s", folder, fileID, ext)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	options := storage.FileOptions{
		ContentType: &contentType,
	}

	if _, err := storageClient().UploadFile("uploads", objectPath, &buf, options); err != nil {
		return "", err
	}

	return publicURL(objectPath), nil
}

// UploadVideoToSupabase upload file video bài giảng
// Path: uploads/videos/<fileID>.<ext>
func UploadVideoToSupabase(fileHeader *multipart.FileHeader, fileID string) (string, error) {
	return uploadToFolder(fileHeader, "videos", fileID)
}

// UploadImageToSupabase upload ảnh (thumbnail khóa học, ảnh nhóm, avatar)
// Path: uploads/images/<fileID>.<ext>
func UploadImageToSupabase(fileHeader *multipart.FileHeader, fileID string) (string, error) {
	return uploadToFolder(fileHeader, "images", fileID)
}

// UploadResourceToSupabase upload tài liệu nhóm (.pdf, .docx, ...)
// Path: uploads/resources/<fileID>.<ext>
func UploadResourceToSupabase(fileHeader *multipart.FileHeader, fileID string) (string, error) {
	return uploadToFolder(fileHeader, "resources", fileID)
}

// UploadAttachmentToSupabase upload file đính kèm tin nhắn chat
// Path: uploads/attachments/<fileID>.<ext>
func UploadAttachmentToSupabase(fileHeader *multipart.FileHeader, fileID string) (string, error) {
	return uploadToFolder(fileHeader, "attachments", fileID)
}

// DeleteFileFromSupabase nhận public URL chứa "/storage/v1/object/public/uploads/"
// và gọi API Supabase Storage để xóa object.
// Yêu cầu: SUPABASE_URL và SUPABASE_KEY (key có quyền xóa) đã set trong ENV.
func DeleteFileFromSupabase(fileURL string) error {
	const marker = "/storage/v1/object/public/uploads/"
	idx := strings.Index(fileURL, marker)
	if idx < 0 {
		return fmt.Errorf("URL không thuộc bucket uploads: %s", fileURL)
	}
	objectPath := fileURL[idx+len(marker):]

	endpoint := fmt.Sprintf("%s/storage/v1/object/uploads/%s",
		os.Getenv("SUPABASE_URL"), url.PathEscape(objectPath))

	req, err := http.NewRequest(http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("SUPABASE_KEY"))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("xóa file thất bại (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}
