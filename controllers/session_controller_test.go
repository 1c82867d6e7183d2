package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
)

func createSession(t *testing.T, db *gorm.DB, group models.StudyGroup, facilitator models.User, title string, start time.Time) models.StudySession {
	t.Helper()

	session := models.StudySession{
		ID:            uuid.New(),
		GroupID:       group.ID,
		Title:         title,
		FacilitatorID: facilitator.ID,
		StartTime:     start,
	}
	require.NoError(t, db.Create(&session).Error)
	return session
}

func TestUpcomingSessions(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)
	token := tokenFor(t, creator)

	now := time.Now()
	createSession(t, db, group, creator, "Buổi đã qua", now.Add(-2*time.Hour))
	createSession(t, db, group, creator, "Buổi tuần sau", now.Add(7*24*time.Hour))
	createSession(t, db, group, creator, "Buổi ngày mai", now.Add(24*time.Hour))
	cancelled := createSession(t, db, group, creator, "Buổi bị hủy", now.Add(48*time.Hour))
	require.NoError(t, db.Model(&cancelled).Update("is_cancelled", true).Error)

	w := doJSON(t, r, "GET", "/api/groups/"+group.ID.String()+"/sessions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].([]interface{})
	require.Len(t, data, 2)

	// Sắp theo giờ bắt đầu tăng dần
	first := data[0].(map[string]interface{})
	second := data[1].(map[string]interface{})
	assert.Equal(t, "Buổi ngày mai", first["title"])
	assert.Equal(t, "Buổi tuần sau", second["title"])
}

func TestCreateSession(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	outsider := createUser(t, db, "nguoila", models.RoleStudent)
	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)

	start := time.Now().Add(24 * time.Hour).Format(time.RFC3339)

	// Người ngoài nhóm không tạo được
	w := doJSON(t, r, "POST", "/api/groups/"+group.ID.String()+"/sessions", tokenFor(t, outsider), H{
		"title":      "Ôn tập",
		"start_time": start,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Thiếu start_time
	w = doJSON(t, r, "POST", "/api/groups/"+group.ID.String()+"/sessions", tokenFor(t, creator), H{
		"title": "Ôn tập",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "POST", "/api/groups/"+group.ID.String()+"/sessions", tokenFor(t, creator), H{
		"title":            "Ôn tập chương 1",
		"start_time":       start,
		"meeting_platform": "meet",
		"max_participants": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var session models.StudySession
	require.NoError(t, db.First(&session, "group_id = ?", group.ID).Error)
	assert.Equal(t, "Ôn tập chương 1", session.Title)
	assert.Equal(t, "study", session.SessionType)
	assert.Equal(t, creator.ID, session.FacilitatorID)
}

func TestAttendSessionCapacity(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	memberA := createUser(t, db, "thanhviena", models.RoleStudent)
	memberB := createUser(t, db, "thanhvienb", models.RoleStudent)
	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)
	addMember(t, db, group, memberA, models.GroupRoleMember)
	addMember(t, db, group, memberB, models.GroupRoleMember)

	session := createSession(t, db, group, creator, "Ôn tập", time.Now().Add(24*time.Hour))
	require.NoError(t, db.Model(&session).Update("max_participants", 1).Error)

	path := "/api/sessions/" + session.ID.String() + "/attend"

	w := doJSON(t, r, "POST", path, tokenFor(t, memberA), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Hết chỗ cho trạng thái going
	w = doJSON(t, r, "POST", path, tokenFor(t, memberB), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Đăng ký maybe thì vẫn được
	w = doJSON(t, r, "POST", path, tokenFor(t, memberB), H{"status": "maybe"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Đăng ký lại chỉ cập nhật trạng thái, không tạo dòng mới
	w = doJSON(t, r, "POST", path, tokenFor(t, memberB), H{"status": "declined"})
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.SessionAttendance{}).Where("session_id = ?", session.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestUnattendSession(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)
	session := createSession(t, db, group, creator, "Ôn tập", time.Now().Add(24*time.Hour))
	token := tokenFor(t, creator)

	path := "/api/sessions/" + session.ID.String() + "/attend"

	// Chưa đăng ký
	w := doJSON(t, r, "DELETE", path, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "POST", path, token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "DELETE", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.SessionAttendance{}).Where("session_id = ?", session.ID).Count(&count)
	assert.Zero(t, count)
}

func TestCancelSessionPermissions(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	facilitator := createUser(t, db, "chutri", models.RoleStudent)
	member := createUser(t, db, "thanhvien", models.RoleStudent)
	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)
	addMember(t, db, group, facilitator, models.GroupRoleMember)
	addMember(t, db, group, member, models.GroupRoleMember)

	session := createSession(t, db, group, facilitator, "Ôn tập", time.Now().Add(24*time.Hour))
	path := "/api/sessions/" + session.ID.String() + "/cancel"

	// Thành viên thường không hủy được
	w := doJSON(t, r, "POST", path, tokenFor(t, member), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Người chủ trì hủy được
	w = doJSON(t, r, "POST", path, tokenFor(t, facilitator), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.StudySession
	require.NoError(t, db.First(&updated, "id = ?", session.ID).Error)
	assert.True(t, updated.IsCancelled)

	// Hủy lần hai bị từ chối
	w = doJSON(t, r, "POST", path, tokenFor(t, facilitator), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Buổi đã hủy không còn trong danh sách sắp tới
	w = doJSON(t, r, "GET", "/api/groups/"+group.ID.String()+"/sessions", tokenFor(t, creator), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Empty(t, body["data"])
}
