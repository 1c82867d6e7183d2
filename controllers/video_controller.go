package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
	"github.com/tdngoc/arcade-backend/utils"
)

type AddVideoInput struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	DurationSec int    `json:"duration_sec" binding:"omitempty,min=0"`
	SortOrder   int    `json:"sort_order" binding:"omitempty,min=1"`
	IsPreview   bool   `json:"is_preview"`
}

// loadOwnedCourse lấy khóa học và kiểm tra quyền của người gọi (creator hoặc admin)
func loadOwnedCourse(c *gin.Context, db *gorm.DB, idParam string) (*models.Course, bool) {
	courseID, err := uuid.Parse(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return nil, false
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn khóa học"})
		return nil, false
	}

	if course.CreatorID.String() != c.GetString("user_id") && c.GetString("role") != string(models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền quản lý bài giảng của khóa học này"})
		return nil, false
	}
	return &course, true
}

func recountLectures(db *gorm.DB, courseID uuid.UUID) {
	var count int64
	db.Model(&models.Video{}).Where("course_id = ?", courseID).Count(&count)
	db.Model(&models.Course{}).Where("id = ?", courseID).Update("total_lectures", count)
}

// POST /api/courses/:id/videos
// Nhận JSON (video_url có sẵn) hoặc multipart (field "video" upload lên Supabase)
func AddVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	course, ok := loadOwnedCourse(c, db, c.Param("id"))
	if !ok {
		return
	}

	video := models.Video{
		ID:       uuid.New(),
		CourseID: course.ID,
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		video.Title = c.PostForm("title")
		if video.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tiêu đề bài giảng bắt buộc"})
			return
		}
		video.Description = c.PostForm("description")
		video.IsPreview = c.PostForm("is_preview") == "true"

		if v := c.PostForm("duration_sec"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "duration_sec không hợp lệ"})
				return
			}
			video.DurationSec = n
		}
		if v := c.PostForm("sort_order"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "sort_order không hợp lệ"})
				return
			}
			video.SortOrder = n
		}

		fileHeader, err := c.FormFile("video")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file video"})
			return
		}
		videoURL, err := utils.UploadVideoToSupabase(fileHeader, video.ID.String())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload video thất bại"})
			return
		}
		video.VideoURL = videoURL
	} else {
		var input AddVideoInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.VideoURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu video_url"})
			return
		}
		video.Title = input.Title
		video.Description = input.Description
		video.VideoURL = input.VideoURL
		video.DurationSec = input.DurationSec
		video.IsPreview = input.IsPreview
		if input.SortOrder > 0 {
			video.SortOrder = input.SortOrder
		}
	}

	if video.SortOrder == 0 {
		// Không truyền thứ tự thì xếp cuối danh sách
		var maxOrder int
		db.Model(&models.Video{}).Where("course_id = ?", course.ID).
			Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder)
		video.SortOrder = maxOrder + 1
	}

	if err := db.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo bài giảng"})
		return
	}

	recountLectures(db, course.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thêm bài giảng thành công",
		"video":   video,
	})
}

type UpdateVideoInput struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	VideoURL    *string `json:"video_url"`
	DurationSec *int    `json:"duration_sec" binding:"omitempty,min=0"`
	SortOrder   *int    `json:"sort_order" binding:"omitempty,min=1"`
	IsPreview   *bool   `json:"is_preview"`
	IsPublished *bool   `json:"is_published"`
}

// PUT /api/videos/:id
func UpdateVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var video models.Video
	if err := db.First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài giảng"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn bài giảng"})
		return
	}

	if _, ok := loadOwnedCourse(c, db, video.CourseID.String()); !ok {
		return
	}

	var input UpdateVideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Title != nil {
		video.Title = *input.Title
	}
	if input.Description != nil {
		video.Description = *input.Description
	}
	if input.VideoURL != nil {
		video.VideoURL = *input.VideoURL
	}
	if input.DurationSec != nil {
		video.DurationSec = *input.DurationSec
	}
	if input.SortOrder != nil {
		video.SortOrder = *input.SortOrder
	}
	if input.IsPreview != nil {
		video.IsPreview = *input.IsPreview
	}
	if input.IsPublished != nil {
		video.IsPublished = *input.IsPublished
	}

	if err := db.Save(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật bài giảng"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật bài giảng thành công",
		"video":   video,
	})
}

// DELETE /api/videos/:id
func DeleteVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var video models.Video
	if err := db.First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài giảng"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn bài giảng"})
		return
	}

	if _, ok := loadOwnedCourse(c, db, video.CourseID.String()); !ok {
		return
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", video.ID).Delete(&models.CourseProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&video).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa bài giảng"})
		return
	}

	recountLectures(db, video.CourseID)

	// Dọn file trên storage nếu video do mình upload
	if strings.Contains(video.VideoURL, "/storage/v1/object/public/uploads/") {
		if err := utils.DeleteFileFromSupabase(video.VideoURL); err != nil {
			log.Println("Không xóa được file video trên storage:", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa bài giảng thành công"})
}
