package models

import (
	"time"

	"github.com/google/uuid"
)

type StudySession struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GroupID     uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	SessionType string    `gorm:"size:50;default:'study'" json:"session_type"` // study | review | qna

	FacilitatorID uuid.UUID `gorm:"type:uuid;not null" json:"facilitator_id"`
	Facilitator   User      `gorm:"foreignKey:FacilitatorID" json:"facilitator,omitempty"`

	StartTime time.Time  `gorm:"not null" json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	MeetingLink     string `gorm:"type:text" json:"meeting_link"`
	MeetingPlatform string `gorm:"size:50" json:"meeting_platform"`
	MaxParticipants int    `gorm:"default:0" json:"max_participants"` // 0: không giới hạn

	IsCancelled bool      `gorm:"default:false" json:"is_cancelled"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Quan hệ
	Group     StudyGroup          `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Attendees []SessionAttendance `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"attendees,omitempty"`
}

// Đăng ký tham dự một buổi học, mỗi cặp (session, user) chỉ có 1 dòng
type SessionAttendance struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_user" json:"session_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_user" json:"user_id"`

	Status       string    `gorm:"size:20;default:'going'" json:"status"` // going | maybe | declined
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`

	// Khóa ngoại
	Session StudySession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	User    User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
