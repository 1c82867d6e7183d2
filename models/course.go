package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CourseStatusDraft     = "draft"
	CourseStatusPending   = "pending"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null" json:"slug"` // slug cho URL thân thiện
	Description string    `gorm:"type:text" json:"description"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"creator,omitempty"`

	Category       string `gorm:"size:100" json:"category"`
	Level          string `gorm:"size:20;default:'beginner'" json:"level"` // beginner | intermediate | advanced
	Tags           string `gorm:"size:255" json:"tags"`                    // danh sách tag, cách nhau bằng dấu phẩy
	ThumbnailURL   string `gorm:"type:text" json:"thumbnail_url"`
	EstimatedHours int    `gorm:"default:0" json:"estimated_hours"`

	IsPaid bool     `gorm:"default:false" json:"is_paid"`
	Price  *float64 `gorm:"type:decimal(8,2)" json:"price,omitempty"`

	Status     string `gorm:"type:varchar(20);default:'draft'" json:"status"` // draft | pending | published | archived
	IsApproved bool   `gorm:"default:false" json:"is_approved"`
	IsFeatured bool   `gorm:"default:false" json:"is_featured"`

	// Bộ đếm denormalize, cập nhật khi ghi danh / thêm bài giảng
	TotalStudents int `gorm:"default:0" json:"total_students"`
	TotalLectures int `gorm:"default:0" json:"total_lectures"`

	AverageRating float64 `gorm:"default:0" json:"average_rating"`
	RatingCount   int     `gorm:"default:0" json:"rating_count"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Quan hệ
	Videos      []Video      `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"videos,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAvailable: khóa học mở ghi danh khi đã published và được duyệt
func (c *Course) IsAvailable() bool {
	return c.Status == CourseStatusPublished && c.IsApproved
}
