package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type slugRecord struct {
	ID   uint   `gorm:"primaryKey"`
	Slug string `gorm:"uniqueIndex"`
}

func newSlugDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&slugRecord{}))
	return db
}

func TestUniqueSlug(t *testing.T) {
	db := newSlugDB(t)

	got := UniqueSlug(db, &slugRecord{}, "Intro")
	assert.Equal(t, "intro", got)

	// Tiếng Việt có dấu được chuyển về không dấu
	got = UniqueSlug(db, &slugRecord{}, "Lập trình Go cơ bản")
	assert.Equal(t, "lap-trinh-go-co-ban", got)
}

func TestUniqueSlugCollision(t *testing.T) {
	db := newSlugDB(t)

	for i, want := range []string{"intro", "intro-1", "intro-2"} {
		got := UniqueSlug(db, &slugRecord{}, "Intro")
		require.Equal(t, want, got, "lần thứ %d", i+1)
		require.NoError(t, db.Create(&slugRecord{Slug: got}).Error)
	}
}
