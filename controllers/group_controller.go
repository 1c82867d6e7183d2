package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
	"github.com/tdngoc/arcade-backend/utils"
	"github.com/tdngoc/arcade-backend/ws"
)

type CreateGroupInput struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description"`
	CourseID    *string `json:"course_id"`
	Privacy     string  `json:"privacy" binding:"omitempty,oneof=public private course"`
	MaxMembers  int     `json:"max_members" binding:"omitempty,min=2"`
}

// activeMembership trả về membership chưa bị ban của user trong nhóm (nil nếu không có)
func activeMembership(db *gorm.DB, userID, groupID string) *models.GroupMembership {
	var membership models.GroupMembership
	if err := db.Where("user_id = ? AND group_id = ? AND is_banned = ?", userID, groupID, false).
		First(&membership).Error; err != nil {
		return nil
	}
	return &membership
}

// canJoinGroup kiểm tra chính sách vào nhóm, trả về (được vào, lý do từ chối)
func canJoinGroup(db *gorm.DB, group *models.StudyGroup, userID uuid.UUID) (bool, string) {
	if !group.IsActive {
		return false, "Nhóm không còn hoạt động"
	}

	var membership models.GroupMembership
	if err := db.Where("user_id = ? AND group_id = ?", userID, group.ID).
		First(&membership).Error; err == nil {
		if membership.IsBanned {
			return false, "Bạn đã bị chặn khỏi nhóm này"
		}
		return false, "Bạn đã là thành viên của nhóm"
	}

	if group.IsFull() {
		return false, "Nhóm đã đủ thành viên"
	}

	switch group.Privacy {
	case models.GroupPrivacyPrivate:
		// Cơ chế mời nằm ngoài phạm vi, nhóm private từ chối join trực tiếp
		return false, "Nhóm riêng tư, chỉ tham gia khi được mời"
	case models.GroupPrivacyCourse:
		if group.CourseID == nil {
			return false, "Nhóm chưa gắn với khóa học nào"
		}
		var enrollment models.Enrollment
		if err := db.Where("student_id = ? AND course_id = ?", userID, *group.CourseID).
			First(&enrollment).Error; err != nil {
			return false, "Bạn cần ghi danh khóa học trước khi tham gia nhóm"
		}
	}

	return true, ""
}

// createSystemMessage chèn tin nhắn hệ thống vào phòng chat của nhóm
func createSystemMessage(db *gorm.DB, group *models.StudyGroup, sender *models.User, content string) {
	msg := models.GroupMessage{
		ID:              uuid.New(),
		GroupID:         group.ID,
		SenderID:        sender.ID,
		Content:         content,
		IsSystemMessage: true,
	}
	if err := db.Create(&msg).Error; err != nil {
		return
	}
	db.Model(&models.StudyGroup{}).Where("id = ?", group.ID).
		Update("message_count", group.MessageCount+1)
	group.MessageCount++
}

// POST /api/groups
// Người tạo tự động là thành viên với vai trò admin
func CreateGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input CreateGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	privacy := input.Privacy
	if privacy == "" {
		privacy = models.GroupPrivacyPublic
	}
	maxMembers := input.MaxMembers
	if maxMembers == 0 {
		maxMembers = 50
	}

	group := models.StudyGroup{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        utils.UniqueSlug(db, &models.StudyGroup{}, input.Name),
		Description: input.Description,
		CreatorID:   userID,
		Privacy:     privacy,
		MaxMembers:  maxMembers,
		IsActive:    true,
	}

	if input.CourseID != nil && *input.CourseID != "" {
		courseID, err := uuid.Parse(*input.CourseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "course_id không hợp lệ"})
			return
		}
		var course models.Course
		if err := db.First(&course, "id = ?", courseID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Khóa học gắn với nhóm không tồn tại"})
			return
		}
		group.CourseID = &courseID
	}

	if group.Privacy == models.GroupPrivacyCourse && group.CourseID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nhóm theo khóa học phải gắn với một khóa học"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		membership := models.GroupMembership{
			ID:      uuid.New(),
			UserID:  userID,
			GroupID: group.ID,
			Role:    models.GroupRoleAdmin,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		return tx.Model(&models.StudyGroup{}).Where("id = ?", group.ID).
			Update("member_count", 1).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo nhóm"})
		return
	}

	group.MemberCount = 1
	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo nhóm thành công",
		"group":   group,
	})
}

// GET /api/groups
// Public (OptionalAuth), lọc theo course / privacy / search, mới nhất trước
func GetGroups(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	query := db.Model(&models.StudyGroup{}).
		Where("is_active = ?", true).
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name, avatar_url")
		}).
		Preload("Course", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, title, slug")
		})

	if courseID := c.Query("course"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if privacy := c.Query("privacy"); privacy != "" {
		query = query.Where("privacy = ?", privacy)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("(name ILIKE ? OR description ILIKE ?)", "%"+search+"%", "%"+search+"%")
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đếm tổng số nhóm"})
		return
	}

	var groups []models.StudyGroup
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách nhóm"})
		return
	}

	// Nếu có đăng nhập thì đính kèm is_member / can_join cho từng nhóm
	userIDStr := c.GetString("user_id")
	var userID uuid.UUID
	loggedIn := false
	if userIDStr != "" {
		if parsed, err := uuid.Parse(userIDStr); err == nil {
			userID = parsed
			loggedIn = true
		}
	}

	data := make([]gin.H, 0, len(groups))
	for i := range groups {
		item := gin.H{"group": groups[i]}
		if loggedIn {
			item["is_member"] = activeMembership(db, userIDStr, groups[i].ID.String()) != nil
			ok, reason := canJoinGroup(db, &groups[i], userID)
			item["can_join"] = gin.H{"can_join": ok, "message": reason}
		} else {
			item["is_member"] = false
			item["can_join"] = gin.H{"can_join": false, "message": "Cần đăng nhập"}
		}
		data = append(data, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  data,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GET /api/groups/me
func GetMyGroups(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var groups []models.StudyGroup
	if err := db.
		Joins("JOIN group_memberships ON group_memberships.group_id = study_groups.id").
		Where("group_memberships.user_id = ? AND group_memberships.is_banned = ? AND study_groups.is_active = ?",
			userID, false, true).
		Order("study_groups.created_at DESC").
		Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách nhóm của bạn"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// GET /api/groups/:id
func GetGroupDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var group models.StudyGroup
	if err := db.
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name, avatar_url")
		}).
		Preload("Course", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, title, slug")
		}).
		Preload("Memberships", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_banned = ?", false)
		}).
		Preload("Memberships.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, first_name, last_name, avatar_url")
		}).
		First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn nhóm"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group})
}

type UpdateGroupInput struct {
	Name          *string `json:"name" binding:"omitempty,max=255"`
	Description   *string `json:"description"`
	Privacy       *string `json:"privacy" binding:"omitempty,oneof=public private course"`
	MaxMembers    *int    `json:"max_members" binding:"omitempty,min=2"`
	IsActive      *bool   `json:"is_active"`
	FeaturedImage *string `json:"featured_image"`
}

// requireGroupManager kiểm tra người gọi là admin/moderator của nhóm
func requireGroupManager(c *gin.Context, db *gorm.DB, groupID string) (*models.StudyGroup, bool) {
	var group models.StudyGroup
	if err := db.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn nhóm"})
		return nil, false
	}

	membership := activeMembership(db, c.GetString("user_id"), groupID)
	if membership == nil ||
		(membership.Role != models.GroupRoleAdmin && membership.Role != models.GroupRoleModerator) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ admin hoặc moderator của nhóm mới có quyền này"})
		return nil, false
	}
	return &group, true
}

// PUT /api/groups/:id
func UpdateGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	group, ok := requireGroupManager(c, db, groupID.String())
	if !ok {
		return
	}

	var input UpdateGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		group.Name = *input.Name
	}
	if input.Description != nil {
		group.Description = *input.Description
	}
	if input.Privacy != nil {
		group.Privacy = *input.Privacy
	}
	if input.MaxMembers != nil {
		group.MaxMembers = *input.MaxMembers
	}
	if input.IsActive != nil {
		group.IsActive = *input.IsActive
	}
	if input.FeaturedImage != nil {
		group.FeaturedImage = *input.FeaturedImage
	}

	if err := db.Save(group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật nhóm"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật nhóm thành công",
		"group":   group,
	})
}

// DELETE /api/groups/:id
// Xóa nhóm kéo theo thành viên, tin nhắn, tài liệu và buổi học
func DeleteGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	group, ok := requireGroupManager(c, db, groupID.String())
	if !ok {
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id IN (?)",
			tx.Model(&models.StudySession{}).Select("id").Where("group_id = ?", group.ID),
		).Delete(&models.SessionAttendance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.StudySession{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupResource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa nhóm"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa nhóm thành công"})
}

// POST /api/groups/:id/join
func JoinGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var group models.StudyGroup
	if err := db.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn nhóm"})
		return
	}

	if ok, reason := canJoinGroup(db, &group, userID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	membership := models.GroupMembership{
		ID:      uuid.New(),
		UserID:  userID,
		GroupID: group.ID,
		Role:    models.GroupRoleMember,
	}
	if err := db.Create(&membership).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tham gia nhóm"})
		return
	}

	// Cập nhật member_count
	db.Model(&models.StudyGroup{}).Where("id = ?", group.ID).
		Update("member_count", group.MemberCount+1)

	// Tin nhắn hệ thống
	createSystemMessage(db, &group, &user, user.Username+" đã tham gia nhóm")
	ws.BroadcastMembershipChange(group.ID.String(), "member_joined")

	c.JSON(http.StatusCreated, gin.H{"message": "Tham gia nhóm thành công"})
}

// POST /api/groups/:id/leave
func LeaveGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID := c.GetString("user_id")

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var group models.StudyGroup
	if err := db.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn nhóm"})
		return
	}

	var membership models.GroupMembership
	if err := db.Where("user_id = ? AND group_id = ?", userID, groupID).
		First(&membership).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bạn không phải thành viên của nhóm"})
		return
	}

	// Admin cuối cùng không được rời nhóm, phải chuyển quyền trước
	if membership.Role == models.GroupRoleAdmin {
		var adminCount int64
		db.Model(&models.GroupMembership{}).
			Where("group_id = ? AND role = ?", groupID, models.GroupRoleAdmin).
			Count(&adminCount)
		if adminCount <= 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Không thể rời nhóm khi là admin duy nhất. Hãy chuyển quyền admin trước.",
			})
			return
		}
	}

	if err := db.Delete(&membership).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể rời nhóm"})
		return
	}

	// Cập nhật member_count
	db.Model(&models.StudyGroup{}).Where("id = ?", group.ID).
		Update("member_count", group.MemberCount-1)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err == nil {
		createSystemMessage(db, &group, &user, user.Username+" đã rời nhóm")
	}
	ws.BroadcastMembershipChange(group.ID.String(), "member_left")

	c.JSON(http.StatusOK, gin.H{"message": "Rời nhóm thành công"})
}
