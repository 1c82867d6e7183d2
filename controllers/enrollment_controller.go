package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
	"github.com/tdngoc/arcade-backend/services"
)

// EnrollCourse ghi danh học viên vào khóa học
// POST /api/courses/:id/enroll
// Idempotent: đã ghi danh rồi thì trả về dòng hiện có, không báo lỗi
func EnrollCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query course"})
		return
	}

	// Check chính sách ở tầng handler: chỉ khóa published + đã duyệt mới mở ghi danh
	if !course.IsAvailable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Khóa học chưa mở ghi danh"})
		return
	}

	var enrollment models.Enrollment
	result := db.Where("student_id = ? AND course_id = ?", userID, courseID).First(&enrollment)

	if result.Error == nil {
		// Đã ghi danh rồi, trả nguyên dòng cũ
		c.JSON(http.StatusOK, gin.H{
			"message":    "Bạn đã ghi danh khóa học này",
			"enrollment": enrollment,
		})
		return
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	enrollment = models.Enrollment{
		ID:        uuid.New(),
		StudentID: userID,
		CourseID:  courseID,
	}
	if err := db.Create(&enrollment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create enrollment"})
		return
	}

	// total_students đếm lại toàn bộ thay vì tăng 1,
	// để tự khớp lại cả khi dữ liệu bị sửa tay
	var total int64
	db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&total)
	db.Model(&models.Course{}).Where("id = ?", courseID).Update("total_students", total)

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Ghi danh thành công",
		"enrollment": enrollment,
	})
}

// GetMyCourses danh sách khóa học đã ghi danh của người gọi
// GET /api/my/courses
func GetMyCourses(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID := c.GetString("user_id")

	var enrollments []models.Enrollment
	if err := db.
		Preload("Course").
		Preload("Course.Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name")
		}).
		Where("student_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch enrollments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}

// GetCourseStudents danh sách học viên của một khóa học (creator / admin)
// GET /api/courses/:id/students
func GetCourseStudents(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	course, ok := loadOwnedCourse(c, db, c.Param("id"))
	if !ok {
		return
	}

	var enrollments []models.Enrollment
	if err := db.
		Preload("Student", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, email, first_name, last_name")
		}).
		Where("course_id = ?", course.ID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course_id":      course.ID,
		"total_students": course.TotalStudents,
		"data":           enrollments,
	})
}

// ExportCourseStudents xuất danh sách học viên ra file Excel
// GET /api/courses/:id/students/export
func ExportCourseStudents(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	course, ok := loadOwnedCourse(c, db, c.Param("id"))
	if !ok {
		return
	}

	var enrollments []models.Enrollment
	if err := db.
		Preload("Student").
		Where("course_id = ?", course.ID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}

	f, err := services.BuildCourseRosterXLSX(course, enrollments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo file Excel"})
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("hoc-vien-%s-%s.xlsx", course.Slug, time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể ghi file Excel"})
		return
	}
}
