package models

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course      Course    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	VideoURL    string    `gorm:"type:text" json:"video_url"`
	DurationSec int       `gorm:"default:0" json:"duration_sec"`
	SortOrder   int       `gorm:"column:sort_order;default:1" json:"sort_order"` // thứ tự hiển thị, client tự set
	IsPreview   bool      `gorm:"default:false" json:"is_preview"`               // xem trước không cần ghi danh
	IsPublished bool      `gorm:"default:true" json:"is_published"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
