package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdngoc/arcade-backend/models"
)

func TestPostMessageNonMember(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	outsider := createUser(t, db, "nguoila", models.RoleStudent)

	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)

	w := doJSON(t, r, "POST", "/api/groups/"+group.ID.String()+"/messages", tokenFor(t, outsider), H{
		"content": "Cho mình vào với",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Không có tin nhắn nào và message_count giữ nguyên
	var count int64
	db.Model(&models.GroupMessage{}).Where("group_id = ?", group.ID).Count(&count)
	assert.Zero(t, count)

	var updated models.StudyGroup
	require.NoError(t, db.First(&updated, "id = ?", group.ID).Error)
	assert.Zero(t, updated.MessageCount)

	// Xem tin nhắn cũng bị chặn
	w = doJSON(t, r, "GET", "/api/groups/"+group.ID.String()+"/messages", tokenFor(t, outsider), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPostMessage(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)

	w := doJSON(t, r, "POST", "/api/groups/"+group.ID.String()+"/messages", tokenFor(t, creator), H{
		"content": "Chào cả nhóm",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var msg models.GroupMessage
	require.NoError(t, db.First(&msg, "group_id = ?", group.ID).Error)
	assert.Equal(t, "Chào cả nhóm", msg.Content)
	assert.False(t, msg.IsSystemMessage)

	var updated models.StudyGroup
	require.NoError(t, db.First(&updated, "id = ?", group.ID).Error)
	assert.Equal(t, 1, updated.MessageCount)

	// Thiếu nội dung
	w = doJSON(t, r, "POST", "/api/groups/"+group.ID.String()+"/messages", tokenFor(t, creator), H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessageWindow(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)

	// 60 tin nhắn với thời điểm tăng dần
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 60; i++ {
		msg := models.GroupMessage{
			ID:        uuid.New(),
			GroupID:   group.ID,
			SenderID:  creator.ID,
			Content:   fmt.Sprintf("Tin nhắn %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	w := doJSON(t, r, "GET", "/api/groups/"+group.ID.String()+"/messages", tokenFor(t, creator), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].([]interface{})
	require.Len(t, data, 50)

	// Mới nhất đứng đầu, tin cũ nhất trong cửa sổ là số 10
	first := data[0].(map[string]interface{})
	last := data[49].(map[string]interface{})
	assert.Equal(t, "Tin nhắn 59", first["content"])
	assert.Equal(t, "Tin nhắn 10", last["content"])
}
