package models

import (
	"time"

	"github.com/google/uuid"
)

type GroupMessage struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GroupID  uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	SenderID uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Content  string    `gorm:"type:text;not null" json:"content"`

	IsSystemMessage bool `gorm:"default:false" json:"is_system_message"` // tin nhắn hệ thống khi join/leave
	IsPinned        bool `gorm:"default:false" json:"is_pinned"`

	AttachmentURL  string `gorm:"type:text" json:"attachment_url,omitempty"`
	AttachmentName string `gorm:"size:255" json:"attachment_name,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Khóa ngoại
	Sender User       `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Group  StudyGroup `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}
