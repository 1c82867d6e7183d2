package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
)

type CreateSessionInput struct {
	Title           string  `json:"title" binding:"required,max=255"`
	Description     string  `json:"description"`
	SessionType     string  `json:"session_type" binding:"omitempty,oneof=study review qna"`
	StartTime       string  `json:"start_time" binding:"required"`
	EndTime         *string `json:"end_time"`
	MeetingLink     string  `json:"meeting_link"`
	MeetingPlatform string  `json:"meeting_platform"`
	MaxParticipants int     `json:"max_participants" binding:"omitempty,min=0"`
}

type AttendSessionInput struct {
	Status string `json:"status" binding:"omitempty,oneof=going maybe declined"`
}

// GET /api/groups/:id/sessions
// Chỉ trả về buổi học sắp diễn ra, chưa bị hủy, sắp xếp theo giờ bắt đầu
func GetGroupSessions(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	if activeMembership(db, c.GetString("user_id"), groupID.String()) == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ thành viên nhóm mới xem được lịch học"})
		return
	}

	var sessions []models.StudySession
	if err := db.Where("group_id = ? AND start_time >= ? AND is_cancelled = ?",
		groupID, time.Now(), false).
		Preload("Facilitator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name, avatar_url")
		}).
		Preload("Attendees").
		Order("start_time ASC").
		Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy lịch học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessions})
}

// POST /api/groups/:id/sessions
func CreateSession(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ thành viên nhóm mới được tạo buổi học"})
		return
	}

	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startTime, err := time.Parse(time.RFC3339, input.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time phải theo định dạng RFC3339"})
		return
	}

	sessionType := input.SessionType
	if sessionType == "" {
		sessionType = "study"
	}

	session := models.StudySession{
		ID:              uuid.New(),
		GroupID:         group.ID,
		Title:           input.Title,
		Description:     input.Description,
		SessionType:     sessionType,
		FacilitatorID:   userID,
		StartTime:       startTime,
		MeetingLink:     input.MeetingLink,
		MeetingPlatform: input.MeetingPlatform,
		MaxParticipants: input.MaxParticipants,
	}

	if input.EndTime != nil && *input.EndTime != "" {
		endTime, err := time.Parse(time.RFC3339, *input.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time phải theo định dạng RFC3339"})
			return
		}
		if !endTime.After(startTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time phải sau start_time"})
			return
		}
		session.EndTime = &endTime
	}

	if err := db.Create(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo buổi học"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo buổi học thành công",
		"session": session,
	})
}

// loadMemberSession nạp buổi học và kiểm tra người gọi là thành viên nhóm của nó
func loadMemberSession(c *gin.Context, db *gorm.DB) (*models.StudySession, bool) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return nil, false
	}

	var session models.StudySession
	if err := db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy buổi học"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn buổi học"})
		return nil, false
	}

	if activeMembership(db, c.GetString("user_id"), session.GroupID.String()) == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ thành viên nhóm mới thao tác được với buổi học"})
		return nil, false
	}
	return &session, true
}

// POST /api/sessions/:id/attend
func AttendSession(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, ok := loadMemberSession(c, db)
	if !ok {
		return
	}

	if session.IsCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Buổi học đã bị hủy"})
		return
	}

	var input AttendSessionInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := input.Status
	if status == "" {
		status = "going"
	}

	// Đã đăng ký thì chỉ cập nhật trạng thái
	var attendance models.SessionAttendance
	if err := db.Where("session_id = ? AND user_id = ?", session.ID, userID).
		First(&attendance).Error; err == nil {
		attendance.Status = status
		if err := db.Save(&attendance).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật đăng ký"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":    "Cập nhật đăng ký thành công",
			"attendance": attendance,
		})
		return
	}

	// Kiểm tra sức chứa khi buổi học có giới hạn
	if session.MaxParticipants > 0 && status == "going" {
		var goingCount int64
		db.Model(&models.SessionAttendance{}).
			Where("session_id = ? AND status = ?", session.ID, "going").
			Count(&goingCount)
		if goingCount >= int64(session.MaxParticipants) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Buổi học đã đủ người tham dự"})
			return
		}
	}

	attendance = models.SessionAttendance{
		ID:        uuid.New(),
		SessionID: session.ID,
		UserID:    userID,
		Status:    status,
	}
	if err := db.Create(&attendance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đăng ký tham dự"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Đăng ký tham dự thành công",
		"attendance": attendance,
	})
}

// DELETE /api/sessions/:id/attend
func UnattendSession(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID := c.GetString("user_id")

	session, ok := loadMemberSession(c, db)
	if !ok {
		return
	}

	result := db.Where("session_id = ? AND user_id = ?", session.ID, userID).
		Delete(&models.SessionAttendance{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể hủy đăng ký"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bạn chưa đăng ký buổi học này"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hủy đăng ký thành công"})
}

// POST /api/sessions/:id/cancel
// Người tạo buổi học hoặc admin/moderator của nhóm mới được hủy
func CancelSession(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID := c.GetString("user_id")

	session, ok := loadMemberSession(c, db)
	if !ok {
		return
	}

	if session.FacilitatorID.String() != userID {
		membership := activeMembership(db, userID, session.GroupID.String())
		if membership == nil ||
			(membership.Role != models.GroupRoleAdmin && membership.Role != models.GroupRoleModerator) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ người tạo hoặc admin/moderator mới được hủy buổi học"})
			return
		}
	}

	if session.IsCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Buổi học đã bị hủy trước đó"})
		return
	}

	if err := db.Model(session).Update("is_cancelled", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể hủy buổi học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hủy buổi học thành công"})
}
