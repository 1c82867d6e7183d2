package utils

import (
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// UniqueSlug sinh slug từ title, nếu trùng thì thêm hậu tố số tăng dần:
// "Intro" -> "intro", lần trùng đầu tiên -> "intro-1", tiếp theo "intro-2"...
func UniqueSlug(db *gorm.DB, model interface{}, title string) string {
	base := slug.Make(title)
	candidate := base

	for i := 1; ; i++ {
		var count int64
		db.Model(model).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
