package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tdngoc/arcade-backend/config"
	"github.com/tdngoc/arcade-backend/models"
	"github.com/tdngoc/arcade-backend/routes"
	"github.com/tdngoc/arcade-backend/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// Schema viết tay cho sqlite vì các default kiểu gen_random_uuid() chỉ chạy trên Postgres
var schemaStmts = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		role TEXT NOT NULL DEFAULT 'student',
		bio TEXT,
		avatar_url TEXT,
		phone TEXT,
		website TEXT,
		location TEXT,
		status BOOLEAN DEFAULT 1,
		is_verified BOOLEAN DEFAULT 0,
		email_verified BOOLEAN DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE courses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		creator_id TEXT NOT NULL,
		category TEXT,
		level TEXT DEFAULT 'beginner',
		tags TEXT,
		thumbnail_url TEXT,
		estimated_hours INTEGER DEFAULT 0,
		is_paid BOOLEAN DEFAULT 0,
		price REAL,
		status TEXT DEFAULT 'draft',
		is_approved BOOLEAN DEFAULT 0,
		is_featured BOOLEAN DEFAULT 0,
		total_students INTEGER DEFAULT 0,
		total_lectures INTEGER DEFAULT 0,
		average_rating REAL DEFAULT 0,
		rating_count INTEGER DEFAULT 0,
		published_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE videos (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		video_url TEXT,
		duration_sec INTEGER DEFAULT 0,
		sort_order INTEGER DEFAULT 1,
		is_preview BOOLEAN DEFAULT 0,
		is_published BOOLEAN DEFAULT 1,
		uploaded_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE enrollments (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		progress_percentage REAL DEFAULT 0,
		completed BOOLEAN DEFAULT 0,
		completed_at DATETIME,
		enrolled_at DATETIME,
		last_accessed_at DATETIME,
		UNIQUE(student_id, course_id)
	)`,
	`CREATE TABLE course_progresses (
		id TEXT PRIMARY KEY,
		enrollment_id TEXT NOT NULL,
		video_id TEXT NOT NULL,
		watched_duration INTEGER DEFAULT 0,
		completed BOOLEAN DEFAULT 0,
		completed_at DATETIME,
		first_watched_at DATETIME,
		last_watched_at DATETIME,
		UNIQUE(enrollment_id, video_id)
	)`,
	`CREATE TABLE study_groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		creator_id TEXT NOT NULL,
		course_id TEXT,
		privacy TEXT DEFAULT 'public',
		max_members INTEGER DEFAULT 50,
		is_active BOOLEAN DEFAULT 1,
		member_count INTEGER DEFAULT 0,
		message_count INTEGER DEFAULT 0,
		featured_image TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE group_memberships (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		group_id TEXT NOT NULL,
		role TEXT DEFAULT 'member',
		is_banned BOOLEAN DEFAULT 0,
		joined_at DATETIME,
		UNIQUE(user_id, group_id)
	)`,
	`CREATE TABLE group_messages (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		content TEXT NOT NULL,
		is_system_message BOOLEAN DEFAULT 0,
		is_pinned BOOLEAN DEFAULT 0,
		attachment_url TEXT,
		attachment_name TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE group_resources (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		file_url TEXT NOT NULL,
		file_type TEXT,
		file_size INTEGER DEFAULT 0,
		download_count INTEGER DEFAULT 0,
		uploaded_by_id TEXT NOT NULL,
		uploaded_at DATETIME
	)`,
	`CREATE TABLE study_sessions (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		session_type TEXT DEFAULT 'study',
		facilitator_id TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		meeting_link TEXT,
		meeting_platform TEXT,
		max_participants INTEGER DEFAULT 0,
		is_cancelled BOOLEAN DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE session_attendances (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT DEFAULT 'going',
		registered_at DATETIME,
		UNIQUE(session_id, user_id)
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// :memory: chỉ sống trên 1 connection
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range schemaStmts {
		require.NoError(t, db.Exec(stmt).Error)
	}

	// AuthMiddleware đọc config.DB
	config.DB = db
	return db
}

func newTestRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := newTestDB(t)
	r := gin.New()
	routes.SetupRouter(r, db)
	return db, r
}

const testPassword = "matkhau123"

// H rút gọn cho body JSON trong test
type H = map[string]interface{}

func createUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// createPublishedCourse tạo khóa học đã mở ghi danh
func createPublishedCourse(t *testing.T, db *gorm.DB, creator models.User, title string) models.Course {
	t.Helper()

	now := time.Now()
	course := models.Course{
		ID:          uuid.New(),
		Title:       title,
		Slug:        utils.UniqueSlug(db, &models.Course{}, title),
		CreatorID:   creator.ID,
		Status:      models.CourseStatusPublished,
		IsApproved:  true,
		PublishedAt: &now,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func createVideo(t *testing.T, db *gorm.DB, course models.Course, title string, sortOrder int) models.Video {
	t.Helper()

	video := models.Video{
		ID:          uuid.New(),
		CourseID:    course.ID,
		Title:       title,
		VideoURL:    "https://example.com/videos/" + title,
		SortOrder:   sortOrder,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&video).Error)
	return video
}

func createGroup(t *testing.T, db *gorm.DB, creator models.User, name, privacy string, maxMembers int) models.StudyGroup {
	t.Helper()

	group := models.StudyGroup{
		ID:          uuid.New(),
		Name:        name,
		Slug:        utils.UniqueSlug(db, &models.StudyGroup{}, name),
		CreatorID:   creator.ID,
		Privacy:     privacy,
		MaxMembers:  maxMembers,
		IsActive:    true,
		MemberCount: 1,
	}
	require.NoError(t, db.Create(&group).Error)

	membership := models.GroupMembership{
		ID:      uuid.New(),
		UserID:  creator.ID,
		GroupID: group.ID,
		Role:    models.GroupRoleAdmin,
	}
	require.NoError(t, db.Create(&membership).Error)
	return group
}

func addMember(t *testing.T, db *gorm.DB, group models.StudyGroup, user models.User, role models.GroupRole) {
	t.Helper()

	membership := models.GroupMembership{
		ID:      uuid.New(),
		UserID:  user.ID,
		GroupID: group.ID,
		Role:    role,
	}
	require.NoError(t, db.Create(&membership).Error)
	require.NoError(t, db.Model(&models.StudyGroup{}).Where("id = ?", group.ID).
		Update("member_count", gorm.Expr("member_count + 1")).Error)
}
