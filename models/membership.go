package models

import (
	"time"

	"github.com/google/uuid"
)

type GroupRole string

const (
	GroupRoleAdmin     GroupRole = "admin"
	GroupRoleModerator GroupRole = "moderator"
	GroupRoleMember    GroupRole = "member"
)

// Thành viên nhóm học tập, mỗi cặp (user, group) chỉ có 1 dòng
type GroupMembership struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_group" json:"user_id"`
	GroupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_group" json:"group_id"`

	Role     GroupRole `gorm:"type:varchar(20);default:'member'" json:"role"` // admin | moderator | member
	IsBanned bool      `gorm:"default:false" json:"is_banned"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Khóa ngoại
	User  User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Group StudyGroup `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}
