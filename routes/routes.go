package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/controllers"
	"github.com/tdngoc/arcade-backend/middleware"
	"github.com/tdngoc/arcade-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.Use(middleware.DBMiddleware(db))
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", middleware.AuthMiddleware(), controllers.Logout)
	}

	user := api.Group("/users")
	{
		user.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		user.GET("/me", controllers.GetMe)
		user.PUT("/me", controllers.UpdateMe)
		user.PATCH("/me", controllers.UpdateMe)
		user.PUT("/me/password", controllers.ChangePassword)
	}

	admin := api.Group("/admin")
	{
		admin.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db), middleware.RequireRoles("admin"))
		admin.POST("/instructors", controllers.AdminCreateInstructor)
	}

	// Khóa học: xem công khai, quản lý cần đăng nhập
	courses := api.Group("/courses")
	{
		courses.Use(middleware.DBMiddleware(db))
		courses.GET("", middleware.OptionalAuthMiddleware(), controllers.GetCourses)
		courses.GET("/:id", middleware.OptionalAuthMiddleware(), controllers.GetCourseDetail)
		courses.GET("/slug/:slug", middleware.OptionalAuthMiddleware(), controllers.GetCourseBySlug)

		courses.POST("", middleware.AuthMiddleware(), middleware.RequireRoles("admin", "instructor"), controllers.CreateCourse)
		courses.PUT("/:id", middleware.AuthMiddleware(), controllers.UpdateCourse)
		courses.PATCH("/:id", middleware.AuthMiddleware(), controllers.UpdateCourse)
		courses.DELETE("/:id", middleware.AuthMiddleware(), controllers.DeleteCourse)
		courses.POST("/:id/thumbnail", middleware.AuthMiddleware(), controllers.UploadCourseThumbnail)

		// Bài giảng
		courses.POST("/:id/videos", middleware.AuthMiddleware(), controllers.AddVideo)

		// Ghi danh
		courses.POST("/:id/enroll", middleware.AuthMiddleware(), controllers.EnrollCourse)
		courses.GET("/:id/students", middleware.AuthMiddleware(), controllers.GetCourseStudents)
		courses.GET("/:id/students/export", middleware.AuthMiddleware(), controllers.ExportCourseStudents)
	}

	videos := api.Group("/videos")
	{
		videos.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		videos.PUT("/:id", controllers.UpdateVideo)
		videos.DELETE("/:id", controllers.DeleteVideo)
	}

	enrollments := api.Group("/enrollments")
	{
		enrollments.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		enrollments.GET("/me", controllers.GetMyCourses)
		enrollments.GET("/:id/progress", controllers.GetEnrollmentProgress)
		enrollments.POST("/:id/videos/:video_id/progress", controllers.SaveVideoProgress)
	}

	// Nhóm học tập
	groups := api.Group("/groups")
	{
		groups.Use(middleware.DBMiddleware(db))
		groups.GET("", middleware.OptionalAuthMiddleware(), controllers.GetGroups)

		groups.POST("", middleware.AuthMiddleware(), controllers.CreateGroup)
		groups.GET("/me", middleware.AuthMiddleware(), controllers.GetMyGroups)
		groups.GET("/:id", middleware.OptionalAuthMiddleware(), controllers.GetGroupDetail)
		groups.PUT("/:id", middleware.AuthMiddleware(), controllers.UpdateGroup)
		groups.DELETE("/:id", middleware.AuthMiddleware(), controllers.DeleteGroup)

		groups.POST("/:id/join", middleware.AuthMiddleware(), controllers.JoinGroup)
		groups.POST("/:id/leave", middleware.AuthMiddleware(), controllers.LeaveGroup)

		// Chat
		groups.GET("/:id/messages", middleware.AuthMiddleware(), controllers.GetGroupMessages)
		groups.POST("/:id/messages", middleware.AuthMiddleware(), controllers.PostGroupMessage)

		// Tài liệu
		groups.GET("/:id/resources", middleware.AuthMiddleware(), controllers.GetGroupResources)
		groups.POST("/:id/resources", middleware.AuthMiddleware(), controllers.UploadGroupResource)

		// Lịch học
		groups.GET("/:id/sessions", middleware.AuthMiddleware(), controllers.GetGroupSessions)
		groups.POST("/:id/sessions", middleware.AuthMiddleware(), controllers.CreateSession)
	}

	resources := api.Group("/resources")
	{
		resources.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		resources.POST("/:id/download", controllers.DownloadResource)
	}

	sessions := api.Group("/sessions")
	{
		sessions.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		sessions.POST("/:id/attend", controllers.AttendSession)
		sessions.DELETE("/:id/attend", controllers.UnattendSession)
		sessions.POST("/:id/cancel", controllers.CancelSession)
	}

	// WebSocket chat theo nhóm, xác thực bằng token trên query string
	r.GET("/ws/groups/:id", middleware.DBMiddleware(db), ws.HandleGroupWebSocket)

	return r
}
