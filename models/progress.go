package models

import (
	"time"

	"github.com/google/uuid"
)

// Tiến độ xem từng video trong một lần ghi danh
type CourseProgress struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	EnrollmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_video" json:"enrollment_id"`
	VideoID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_video" json:"video_id"`

	WatchedDuration int        `gorm:"default:0" json:"watched_duration"` // số giây đã xem
	Completed       bool       `gorm:"default:false" json:"completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	FirstWatchedAt  time.Time  `gorm:"autoCreateTime" json:"first_watched_at"`
	LastWatchedAt   time.Time  `gorm:"autoUpdateTime" json:"last_watched_at"`

	// Khóa ngoại
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
	Video      Video      `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"video,omitempty"`
}
