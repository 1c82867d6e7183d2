package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
	"github.com/tdngoc/arcade-backend/utils"
)

// Input cho Create / Update
type CreateCourseInput struct {
	Title          string   `json:"title" binding:"required,max=255"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Level          string   `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Tags           string   `json:"tags"`
	IsPaid         bool     `json:"is_paid"`
	Price          *float64 `json:"price" binding:"omitempty,min=0"`
	EstimatedHours int      `json:"estimated_hours" binding:"omitempty,min=0"`
}

// POST /api/courses
func CreateCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if input.IsPaid && input.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Khóa học trả phí phải có giá"})
		return
	}

	level := input.Level
	if level == "" {
		level = "beginner"
	}

	course := models.Course{
		ID:             uuid.New(),
		Title:          input.Title,
		Slug:           utils.UniqueSlug(db, &models.Course{}, input.Title),
		Description:    input.Description,
		CreatorID:      userID,
		Category:       input.Category,
		Level:          level,
		Tags:           input.Tags,
		IsPaid:         input.IsPaid,
		Price:          input.Price,
		EstimatedHours: input.EstimatedHours,
		Status:         models.CourseStatusDraft,
	}

	if err := db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo khóa học"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo khóa học thành công",
		"course":  course,
	})
}

// GET /api/courses
// Public, lọc theo status / category / search, phân trang page/limit
func GetCourses(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	query := db.Model(&models.Course{}).
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name, avatar_url")
		})

	if status := c.Query("status"); status != "" {
		query = query.Where("courses.status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("courses.category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("(courses.title ILIKE ? OR courses.description ILIKE ?)",
			"%"+search+"%", "%"+search+"%")
	}
	if featured := c.Query("featured"); featured == "true" {
		query = query.Where("courses.is_featured = ?", true)
	}

	// Phân trang
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đếm tổng số khóa học"})
		return
	}

	var courses []models.Course
	if err := query.
		Order("courses.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  courses,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GET /api/courses/:id
func GetCourseDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var course models.Course
	if err := db.
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name, bio, avatar_url")
		}).
		First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"course": course})
}

// GET /api/courses/slug/:slug
func GetCourseBySlug(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var course models.Course
	if err := db.
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name, bio, avatar_url")
		}).
		First(&course, "slug = ?", c.Param("slug")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"course": course})
}

type UpdateCourseInput struct {
	Title          *string  `json:"title" binding:"omitempty,max=255"`
	Description    *string  `json:"description"`
	Category       *string  `json:"category"`
	Level          *string  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Tags           *string  `json:"tags"`
	ThumbnailURL   *string  `json:"thumbnail_url"`
	IsPaid         *bool    `json:"is_paid"`
	Price          *float64 `json:"price" binding:"omitempty,min=0"`
	EstimatedHours *int     `json:"estimated_hours" binding:"omitempty,min=0"`
	Status         *string  `json:"status" binding:"omitempty,oneof=draft pending published archived"`
	IsApproved     *bool    `json:"is_approved"` // chỉ admin
	IsFeatured     *bool    `json:"is_featured"` // chỉ admin
}

// PUT|PATCH /api/courses/:id
// Chỉ người tạo hoặc admin được sửa
func UpdateCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn khóa học"})
		return
	}

	role := c.GetString("role")
	if course.CreatorID.String() != c.GetString("user_id") && role != string(models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền sửa khóa học này"})
		return
	}

	var input UpdateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.Category != nil {
		course.Category = *input.Category
	}
	if input.Level != nil {
		course.Level = *input.Level
	}
	if input.Tags != nil {
		course.Tags = *input.Tags
	}
	if input.ThumbnailURL != nil {
		course.ThumbnailURL = *input.ThumbnailURL
	}
	if input.IsPaid != nil {
		course.IsPaid = *input.IsPaid
	}
	if input.Price != nil {
		course.Price = input.Price
	}
	if input.EstimatedHours != nil {
		course.EstimatedHours = *input.EstimatedHours
	}
	if input.Status != nil {
		// Lần đầu chuyển sang published thì ghi lại thời điểm
		if *input.Status == models.CourseStatusPublished && course.PublishedAt == nil {
			now := time.Now()
			course.PublishedAt = &now
		}
		course.Status = *input.Status
	}
	if role == string(models.RoleAdmin) {
		if input.IsApproved != nil {
			course.IsApproved = *input.IsApproved
		}
		if input.IsFeatured != nil {
			course.IsFeatured = *input.IsFeatured
		}
	}

	if err := db.Save(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật khóa học thành công",
		"course":  course,
	})
}

// POST /api/courses/:id/thumbnail
// Nhận multipart field "image", upload lên storage và gắn vào khóa học
func UploadCourseThumbnail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	course, ok := loadOwnedCourse(c, db, c.Param("id"))
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file ảnh"})
		return
	}

	url, err := utils.UploadImageToSupabase(file, course.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload ảnh thất bại"})
		return
	}

	if err := db.Model(course).Update("thumbnail_url", url).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật ảnh khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Cập nhật ảnh khóa học thành công",
		"thumbnail_url": url,
	})
}

// DELETE /api/courses/:id
// Xóa khóa học kéo theo video, ghi danh và tiến độ
func DeleteCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn khóa học"})
		return
	}

	if course.CreatorID.String() != c.GetString("user_id") && c.GetString("role") != string(models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xóa khóa học này"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Xóa tiến độ của các ghi danh thuộc khóa học
		if err := tx.Where("enrollment_id IN (?)",
			tx.Model(&models.Enrollment{}).Select("id").Where("course_id = ?", courseID),
		).Delete(&models.CourseProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Video{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa khóa học thành công"})
}
