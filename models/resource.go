package models

import (
	"time"

	"github.com/google/uuid"
)

// Tài liệu chia sẻ trong nhóm, file lưu trên Supabase Storage
type GroupResource struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GroupID     uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`

	FileURL  string `gorm:"type:text;not null" json:"file_url"`
	FileType string `gorm:"size:100" json:"file_type"`
	FileSize int64  `gorm:"default:0" json:"file_size"`

	DownloadCount int `gorm:"default:0" json:"download_count"`

	UploadedByID uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by_id"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	// Khóa ngoại
	UploadedBy User       `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
	Group      StudyGroup `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}
