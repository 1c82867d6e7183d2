package controllers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
)

func enrollStudent(t *testing.T, db *gorm.DB, student models.User, course models.Course) models.Enrollment {
	t.Helper()

	var enrollment models.Enrollment
	require.NoError(t, db.Create(&models.Enrollment{
		ID:        uuid.New(),
		StudentID: student.ID,
		CourseID:  course.ID,
	}).Error)
	require.NoError(t, db.First(&enrollment,
		"student_id = ? AND course_id = ?", student.ID, course.ID).Error)
	return enrollment
}

func TestSaveVideoProgress(t *testing.T) {
	db, r := newTestRouter(t)
	instructor := createUser(t, db, "giangvien", models.RoleInstructor)
	student := createUser(t, db, "hocvien", models.RoleStudent)
	course := createPublishedCourse(t, db, instructor, "Go cơ bản")
	videoA := createVideo(t, db, course, "Bài 1", 1)
	videoB := createVideo(t, db, course, "Bài 2", 2)
	enrollment := enrollStudent(t, db, student, course)
	token := tokenFor(t, student)

	base := "/api/enrollments/" + enrollment.ID.String() + "/videos/"

	// Xem 120 giây video đầu
	w := doJSON(t, r, "POST", base+videoA.ID.String()+"/progress", token, H{
		"watched_seconds": 120,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var row models.CourseProgress
	require.NoError(t, db.First(&row,
		"enrollment_id = ? AND video_id = ?", enrollment.ID, videoA.ID).Error)
	assert.Equal(t, 120, row.WatchedDuration)
	assert.False(t, row.Completed)

	// Gửi lại cho cùng video chỉ cập nhật, không tạo dòng mới
	w = doJSON(t, r, "POST", base+videoA.ID.String()+"/progress", token, H{
		"watched_seconds": 300,
		"completed":       true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.CourseProgress{}).
		Where("enrollment_id = ? AND video_id = ?", enrollment.ID, videoA.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)

	// Hoàn thành 1/2 video -> 50%
	var updated models.Enrollment
	require.NoError(t, db.First(&updated, "id = ?", enrollment.ID).Error)
	assert.InDelta(t, 50.0, updated.ProgressPercentage, 0.01)
	assert.False(t, updated.Completed)

	// Hoàn thành nốt video còn lại -> 100% và khóa học hoàn tất
	w = doJSON(t, r, "POST", base+videoB.ID.String()+"/progress", token, H{
		"watched_seconds": 200,
		"completed":       true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.First(&updated, "id = ?", enrollment.ID).Error)
	assert.InDelta(t, 100.0, updated.ProgressPercentage, 0.01)
	assert.True(t, updated.Completed)
	assert.NotNil(t, updated.CompletedAt)
}

func TestSaveVideoProgressGuards(t *testing.T) {
	db, r := newTestRouter(t)
	instructor := createUser(t, db, "giangvien", models.RoleInstructor)
	student := createUser(t, db, "hocvien", models.RoleStudent)
	outsider := createUser(t, db, "nguoila", models.RoleStudent)
	course := createPublishedCourse(t, db, instructor, "Go cơ bản")
	otherCourse := createPublishedCourse(t, db, instructor, "Go nâng cao")
	video := createVideo(t, db, course, "Bài 1", 1)
	strayVideo := createVideo(t, db, otherCourse, "Bài lạ", 1)
	enrollment := enrollStudent(t, db, student, course)

	base := "/api/enrollments/" + enrollment.ID.String() + "/videos/"

	// Không phải ghi danh của mình
	w := doJSON(t, r, "POST", base+video.ID.String()+"/progress", tokenFor(t, outsider), H{
		"watched_seconds": 10,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Video không thuộc khóa học của lần ghi danh
	w = doJSON(t, r, "POST", base+strayVideo.ID.String()+"/progress", tokenFor(t, student), H{
		"watched_seconds": 10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.CourseProgress{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetEnrollmentProgress(t *testing.T) {
	db, r := newTestRouter(t)
	instructor := createUser(t, db, "giangvien", models.RoleInstructor)
	student := createUser(t, db, "hocvien", models.RoleStudent)
	course := createPublishedCourse(t, db, instructor, "Go cơ bản")
	video := createVideo(t, db, course, "Bài 1", 1)
	enrollment := enrollStudent(t, db, student, course)
	token := tokenFor(t, student)

	w := doJSON(t, r, "POST",
		"/api/enrollments/"+enrollment.ID.String()+"/videos/"+video.ID.String()+"/progress",
		token, H{"watched_seconds": 45})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/api/enrollments/"+enrollment.ID.String()+"/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	rows := body["progress"].([]interface{})
	require.Len(t, rows, 1)

	// Người ngoài không xem được
	outsider := createUser(t, db, "nguoila", models.RoleStudent)
	w = doJSON(t, r, "GET", "/api/enrollments/"+enrollment.ID.String()+"/progress", tokenFor(t, outsider), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProgressSkipsUnpublishedVideos(t *testing.T) {
	db, r := newTestRouter(t)
	instructor := createUser(t, db, "giangvien", models.RoleInstructor)
	student := createUser(t, db, "hocvien", models.RoleStudent)
	course := createPublishedCourse(t, db, instructor, "Go cơ bản")
	videoA := createVideo(t, db, course, "Bài 1", 1)
	videoB := createVideo(t, db, course, "Bài 2", 2)
	enrollment := enrollStudent(t, db, student, course)
	token := tokenFor(t, student)

	base := "/api/enrollments/" + enrollment.ID.String() + "/videos/"
	for _, v := range []models.Video{videoA, videoB} {
		w := doJSON(t, r, "POST", base+v.ID.String()+"/progress", token, H{
			"watched_seconds": 100,
			"completed":       true,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Gỡ publish một video đã hoàn thành rồi lưu lại tiến độ:
	// tử số và mẫu số phải cùng bỏ qua video đó, không vượt 100%
	require.NoError(t, db.Model(&models.Video{}).
		Where("id = ?", videoB.ID).
		Update("is_published", false).Error)

	w := doJSON(t, r, "POST", base+videoA.ID.String()+"/progress", token, H{
		"watched_seconds": 150,
		"completed":       true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Enrollment
	require.NoError(t, db.First(&updated, "id = ?", enrollment.ID).Error)
	assert.InDelta(t, 100.0, updated.ProgressPercentage, 0.01)
}
