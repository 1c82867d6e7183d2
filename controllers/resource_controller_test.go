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

func createResource(t *testing.T, db *gorm.DB, group models.StudyGroup, uploader models.User, name string) models.GroupResource {
	t.Helper()

	resource := models.GroupResource{
		ID:           uuid.New(),
		GroupID:      group.ID,
		UploadedByID: uploader.ID,
		Name:         name,
		FileURL:      "https://example.com/files/" + name,
		FileType:     "pdf",
		FileSize:     1024,
	}
	require.NoError(t, db.Create(&resource).Error)
	return resource
}

func TestGetGroupResources(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	outsider := createUser(t, db, "nguoila", models.RoleStudent)
	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)

	createResource(t, db, group, creator, "de-cuong.pdf")

	// Người ngoài không xem được
	w := doJSON(t, r, "GET", "/api/groups/"+group.ID.String()+"/resources", tokenFor(t, outsider), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, "GET", "/api/groups/"+group.ID.String()+"/resources", tokenFor(t, creator), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
}

func TestDownloadResource(t *testing.T) {
	db, r := newTestRouter(t)
	creator := createUser(t, db, "truongnhom", models.RoleStudent)
	outsider := createUser(t, db, "nguoila", models.RoleStudent)
	group := createGroup(t, db, creator, "Nhóm học Go", models.GroupPrivacyPublic, 10)
	resource := createResource(t, db, group, creator, "de-cuong.pdf")

	path := "/api/resources/" + resource.ID.String() + "/download"

	// Người ngoài nhóm bị chặn, lượt tải không tăng
	w := doJSON(t, r, "POST", path, tokenFor(t, outsider), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, "POST", path, tokenFor(t, creator), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, resource.FileURL, body["file_url"])

	var updated models.GroupResource
	require.NoError(t, db.First(&updated, "id = ?", resource.ID).Error)
	assert.Equal(t, 1, updated.DownloadCount)
}
