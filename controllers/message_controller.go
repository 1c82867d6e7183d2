package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
	"github.com/tdngoc/arcade-backend/utils"
	"github.com/tdngoc/arcade-backend/ws"
)

type PostMessageInput struct {
	Content string `json:"content" binding:"required"`
}

// GET /api/groups/:id/messages
// Trả về 50 tin nhắn gần nhất, mới nhất trước
func GetGroupMessages(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	if activeMembership(db, c.GetString("user_id"), groupID.String()) == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ thành viên nhóm mới xem được tin nhắn"})
		return
	}

	var messages []models.GroupMessage
	if err := db.Where("group_id = ?", groupID).
		Preload("Sender", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name, avatar_url")
		}).
		Order("created_at DESC").
		Limit(50).
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy tin nhắn"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// POST /api/groups/:id/messages
// Nhận JSON hoặc multipart (kèm file đính kèm)
func PostGroupMessage(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ thành viên nhóm mới được gửi tin nhắn"})
		return
	}

	message := models.GroupMessage{
		ID:       uuid.New(),
		GroupID:  group.ID,
		SenderID: userID,
	}

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		message.Content = c.PostForm("content")

		file, err := c.FormFile("attachment")
		if err == nil {
			url, upErr := utils.UploadAttachmentToSupabase(file, message.ID.String())
			if upErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tải file đính kèm lên"})
				return
			}
			message.AttachmentURL = url
			message.AttachmentName = file.Filename
		}

		if message.Content == "" && message.AttachmentURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tin nhắn phải có nội dung hoặc file đính kèm"})
			return
		}
	} else {
		var input PostMessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		message.Content = input.Content
	}

	if err := db.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể gửi tin nhắn"})
		return
	}

	// Cập nhật message_count
	db.Model(&models.StudyGroup{}).Where("id = ?", group.ID).
		Update("message_count", group.MessageCount+1)

	db.Preload("Sender", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, username, first_name, last_name, avatar_url")
	}).First(&message, "id = ?", message.ID)

	ws.BroadcastGroupMessage(group.ID.String(), message)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Gửi tin nhắn thành công",
		"data":    message,
	})
}
