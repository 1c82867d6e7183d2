package models

import (
	"time"

	"github.com/google/uuid"
)

// Ghi danh của học viên vào khóa học, mỗi cặp (student, course) chỉ có 1 dòng
type Enrollment struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_course" json:"student_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_course" json:"course_id"`

	ProgressPercentage float64    `gorm:"default:0" json:"progress_percentage"`
	Completed          bool       `gorm:"default:false" json:"completed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	EnrolledAt         time.Time  `gorm:"autoCreateTime" json:"enrolled_at"`
	LastAccessedAt     time.Time  `gorm:"autoUpdateTime" json:"last_accessed_at"`

	// Khóa ngoại
	Student User   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Course  Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`

	Progress []CourseProgress `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"progress,omitempty"`
}
