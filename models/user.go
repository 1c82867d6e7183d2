package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"      // Quản trị hệ thống
	RoleInstructor UserRole = "instructor" // Giảng viên (tạo khóa học)
	RoleStudent    UserRole = "student"    // Học viên
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'student'" json:"role"`

	// Thông tin hồ sơ
	Bio       string `gorm:"size:500" json:"bio"`
	AvatarURL string `gorm:"type:text" json:"avatar_url"`
	Phone     string `gorm:"size:20" json:"phone"`
	Website   string `gorm:"type:text" json:"website"`
	Location  string `gorm:"size:100" json:"location"`

	// Trạng thái tài khoản
	Status        *bool `gorm:"default:true" json:"status"` // false: tài khoản bị khóa
	IsVerified    bool  `gorm:"default:false" json:"is_verified"`
	EmailVerified bool  `gorm:"default:false" json:"email_verified"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Quan hệ
	Courses     []Course     `gorm:"foreignKey:CreatorID" json:"courses,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:StudentID" json:"enrollments,omitempty"`
}

// FullNameOrUsername trả về họ tên đầy đủ, nếu trống thì dùng username
func (u *User) FullNameOrUsername() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}

func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}
