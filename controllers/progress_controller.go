package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
)

// Request body cho việc cập nhật tiến độ xem video
type SaveVideoProgressRequest struct {
	WatchedSeconds int   `json:"watched_seconds" binding:"min=0"`
	Completed      *bool `json:"completed,omitempty"` // ngưỡng hoàn thành do client quyết định
}

// SaveVideoProgress lưu hoặc cập nhật tiến độ xem một video
// POST /api/enrollments/:id/videos/:video_id/progress
func SaveVideoProgress(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userIDStr := c.GetString("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid enrollment id"})
		return
	}
	videoID, err := uuid.Parse(c.Param("video_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video id"})
		return
	}

	var req SaveVideoProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Ghi danh phải tồn tại và thuộc về người gọi
	var enrollment models.Enrollment
	if err := db.First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query enrollment"})
		return
	}
	if enrollment.StudentID.String() != userIDStr {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền cập nhật tiến độ này"})
		return
	}

	// Video phải thuộc đúng khóa học của ghi danh
	var video models.Video
	if err := db.First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query video"})
		return
	}
	if video.CourseID != enrollment.CourseID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video không thuộc khóa học đã ghi danh"})
		return
	}

	var progress models.CourseProgress
	result := db.Where("enrollment_id = ? AND video_id = ?", enrollmentID, videoID).First(&progress)
	now := time.Now()

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// Tạo mới
		progress = models.CourseProgress{
			ID:              uuid.New(),
			EnrollmentID:    enrollmentID,
			VideoID:         videoID,
			WatchedDuration: req.WatchedSeconds,
		}
		if req.Completed != nil && *req.Completed {
			progress.Completed = true
			progress.CompletedAt = &now
		}

		if err := db.Create(&progress).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create progress"})
			return
		}
	} else if result.Error == nil {
		// Cập nhật
		progress.WatchedDuration = req.WatchedSeconds
		progress.LastWatchedAt = now

		if req.Completed != nil && *req.Completed && !progress.Completed {
			progress.Completed = true
			progress.CompletedAt = &now
		}

		if err := db.Save(&progress).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update progress"})
			return
		}
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	recomputeEnrollmentProgress(db, &enrollment)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Progress saved successfully",
		"progress": progress,
	})
}

// recomputeEnrollmentProgress tính lại % hoàn thành của ghi danh
// theo số video published đã xem xong
func recomputeEnrollmentProgress(db *gorm.DB, enrollment *models.Enrollment) {
	var totalVideos int64
	db.Model(&models.Video{}).
		Where("course_id = ? AND is_published = ?", enrollment.CourseID, true).
		Count(&totalVideos)
	if totalVideos == 0 {
		return
	}

	// Chỉ đếm các video còn published, tránh vượt quá 100% khi video bị gỡ
	var completed int64
	db.Model(&models.CourseProgress{}).
		Joins("JOIN videos ON videos.id = course_progresses.video_id").
		Where("course_progresses.enrollment_id = ? AND course_progresses.completed = ? AND videos.is_published = ?",
			enrollment.ID, true, true).
		Count(&completed)

	percentage := float64(completed) / float64(totalVideos) * 100
	enrollment.ProgressPercentage = percentage

	if percentage >= 100 && !enrollment.Completed {
		now := time.Now()
		enrollment.Completed = true
		enrollment.CompletedAt = &now
	}

	db.Save(enrollment)
}

// GetEnrollmentProgress danh sách tiến độ từng video của một ghi danh
// GET /api/enrollments/:id/progress
func GetEnrollmentProgress(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid enrollment id"})
		return
	}

	var enrollment models.Enrollment
	if err := db.First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query enrollment"})
		return
	}
	if enrollment.StudentID.String() != c.GetString("user_id") && c.GetString("role") != string(models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xem tiến độ này"})
		return
	}

	var progress []models.CourseProgress
	if err := db.
		Preload("Video", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("enrollment_id = ?", enrollmentID).
		Find(&progress).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enrollment": enrollment,
		"progress":   progress,
	})
}
