package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tdngoc/arcade-backend/config"
	"github.com/tdngoc/arcade-backend/models"
	"github.com/tdngoc/arcade-backend/utils"
)

// ====== INPUT STRUCTS ======
type RegisterInput struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" binding:"omitempty,oneof=student instructor admin"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ====== HANDLERS ======
func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Check username / email tồn tại
	var existing models.User
	if err := config.DB.Where("username = ?", input.Username).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username đã được sử dụng"})
		return
	}
	if err := config.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email đã được sử dụng"})
		return
	}

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mã hoá mật khẩu"})
		return
	}

	role := models.RoleStudent
	if input.Role != "" {
		role = models.UserRole(input.Role)
	}

	// Tạo user mới
	newUser := models.User{
		ID:        uuid.New(),
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hashed),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      role,
	}

	if err := config.DB.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tạo người dùng"})
		return
	}

	c.JSON(http.StatusCreated,
		gin.H{
			"message": "Đăng ký thành công",
			"user":    newUser,
		})
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể xác thực với thông tin đã cung cấp"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể xác thực với thông tin đã cung cấp"})
		return
	}

	// Sinh JWT (truyền ID dạng string và Role)
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đăng nhập thành công",
		"token":   token,
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"role":       user.Role,
			"avatar_url": user.AvatarURL,
		},
	})
}

// Logout: JWT không lưu server, client tự hủy token
func Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Đăng xuất thành công"})
}

// GET /api/users/me
func GetMe(c *gin.Context) {
	db := config.DB
	userID := c.GetString("user_id")

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type UpdateMeInput struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	Website   *string `json:"website"`
	Location  *string `json:"location" binding:"omitempty,max=100"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
}

// PUT|PATCH /api/users/me
// Role không đổi được qua đường này
func UpdateMe(c *gin.Context) {
	db := config.DB
	userID := c.GetString("user_id")

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}

	var input UpdateMeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Email != nil {
		var existing models.User
		if err := db.Where("email = ? AND id <> ?", *input.Email, user.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email đã được sử dụng"})
			return
		}
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Website != nil {
		user.Website = *input.Website
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mã hoá mật khẩu"})
			return
		}
		user.Password = string(hashed)
	}

	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi cập nhật hồ sơ"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật hồ sơ thành công",
		"user":    user,
	})
}

// Đổi mật khẩu
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func ChangePassword(c *gin.Context) {
	db := config.DB
	userID := c.GetString("user_id")

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Lấy user hiện tại
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}

	// Kiểm tra mật khẩu cũ
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mật khẩu cũ không đúng"})
		return
	}

	// Mã hoá mật khẩu mới
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mã hoá mật khẩu mới"})
		return
	}

	// Cập nhật DB
	user.Password = string(hashed)
	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi cập nhật mật khẩu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đổi mật khẩu thành công",
	})
}

// ==== ADMIN TẠO GIẢNG VIÊN ====
type CreateInstructorInput struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func AdminCreateInstructor(c *gin.Context) {
	role := c.GetString("role")
	if role != string(models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ admin mới có quyền tạo giảng viên"})
		return
	}

	var input CreateInstructorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Kiểm tra trùng
	var existing models.User
	if err := config.DB.Where("username = ? OR email = ?", input.Username, input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username hoặc email đã tồn tại"})
		return
	}

	// Mã hoá mật khẩu
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mã hoá mật khẩu"})
		return
	}

	// Tạo tài khoản giảng viên
	newUser := models.User{
		ID:       uuid.New(),
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashed),
		Role:     models.RoleInstructor,
	}

	if err := config.DB.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo tài khoản"})
		return
	}

	// Gửi email thông báo (không chặn luồng)
	go func() {
		subject := "Tài khoản giảng viên Arcade của bạn đã được tạo"
		body := `
		<h3>Xin chào ` + input.Username + `,</h3>
		<p>Bạn đã được cấp tài khoản giảng viên trên hệ thống <b>Arcade</b>.</p>
		<p><b>Tên đăng nhập:</b> ` + input.Username + `<br>
		<b>Mật khẩu:</b> ` + input.Password + `</p>
		<p>Vui lòng đăng nhập và đổi mật khẩu sau khi sử dụng lần đầu.</p>
		<hr>
		<p><i>Đây là email tự động, vui lòng không trả lời.</i></p>
		`
		if err := utils.SendEmail(input.Email, subject, body); err != nil {
			// In log lỗi, không ảnh hưởng đến API chính
			println("Lỗi gửi email:", err.Error())
		}
	}()

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo giảng viên thành công",
		"user": gin.H{
			"id":       newUser.ID,
			"username": newUser.Username,
			"email":    newUser.Email,
			"role":     newUser.Role,
		},
	})
}
