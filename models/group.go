package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	GroupPrivacyPublic  = "public"  // ai cũng vào được
	GroupPrivacyPrivate = "private" // chỉ vào khi được mời
	GroupPrivacyCourse  = "course"  // phải ghi danh khóa học gắn với nhóm
)

type StudyGroup struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"creator,omitempty"`

	// Nhóm có thể gắn với một khóa học (privacy = course)
	CourseID *uuid.UUID `gorm:"type:uuid" json:"course_id,omitempty"`
	Course   *Course    `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"course,omitempty"`

	Privacy    string `gorm:"type:varchar(20);default:'public'" json:"privacy"` // public | private | course
	MaxMembers int    `gorm:"default:50" json:"max_members"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`

	// Bộ đếm denormalize
	MemberCount  int `gorm:"default:0" json:"member_count"`
	MessageCount int `gorm:"default:0" json:"message_count"`

	FeaturedImage string    `gorm:"type:text" json:"featured_image"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Quan hệ
	Memberships []GroupMembership `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
	Messages    []GroupMessage    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Resources   []GroupResource   `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Sessions    []StudySession    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

func (g *StudyGroup) IsFull() bool {
	return g.MemberCount >= g.MaxMembers
}
