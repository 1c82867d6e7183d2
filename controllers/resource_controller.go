package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
	"github.com/tdngoc/arcade-backend/utils"
)

// GET /api/groups/:id/resources
func GetGroupResources(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	if activeMembership(db, c.GetString("user_id"), groupID.String()) == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ thành viên nhóm mới xem được tài liệu"})
		return
	}

	var resources []models.GroupResource
	if err := db.Where("group_id = ?", groupID).
		Preload("UploadedBy", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name, avatar_url")
		}).
		Order("uploaded_at DESC").
		Find(&resources).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách tài liệu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resources})
}

// POST /api/groups/:id/resources
// Nhận multipart: name, description (tùy chọn) và file
func UploadGroupResource(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var group models.StudyGroup
	if err := db.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn nhóm"})
		return
	}

	if activeMembership(db, userID.String(), groupID.String()) == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ thành viên nhóm mới được chia sẻ tài liệu"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu tên tài liệu"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file tài liệu"})
		return
	}

	resource := models.GroupResource{
		ID:           uuid.New(),
		GroupID:      group.ID,
		UploadedByID: userID,
		Name:         name,
		Description:  c.PostForm("description"),
		FileType:     strings.TrimPrefix(filepath.Ext(file.Filename), "."),
		FileSize:     file.Size,
	}

	url, err := utils.UploadResourceToSupabase(file, resource.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tải tài liệu lên"})
		return
	}
	resource.FileURL = url

	if err := db.Create(&resource).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu tài liệu"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Chia sẻ tài liệu thành công",
		"resource": resource,
	})
}

// POST /api/resources/:id/download
// Ghi nhận lượt tải và trả về đường dẫn file
func DownloadResource(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var resource models.GroupResource
	if err := db.First(&resource, "id = ?", resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn tài liệu"})
		return
	}

	if activeMembership(db, c.GetString("user_id"), resource.GroupID.String()) == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ thành viên nhóm mới được tải tài liệu"})
		return
	}

	db.Model(&models.GroupResource{}).Where("id = ?", resource.ID).
		Update("download_count", resource.DownloadCount+1)

	c.JSON(http.StatusOK, gin.H{
		"file_url": resource.FileURL,
		"name":     resource.Name,
	})
}
