package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tdngoc/arcade-backend/config"
	"github.com/tdngoc/arcade-backend/ws"
)

var startedAt = time.Now()

func HealthCheck(c *gin.Context) {
	db := config.DB

	response := gin.H{
		"status":         "ok",
		"timestamp":      time.Now().Unix(),
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		"db":             "ok",
		"websocket": gin.H{
			"enabled": true,
			"stats":   ws.H.GetStats(),
		},
	}

	// Kiểm tra kết nối database
	sqlDB, err := db.DB()
	if err != nil {
		response["db"] = "error: cannot get DB instance"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if err := sqlDB.Ping(); err != nil {
		response["db"] = "error: cannot connect to DB"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
