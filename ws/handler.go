package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/tdngoc/arcade-backend/models"
	"github.com/tdngoc/arcade-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // chỉ để phát triển, nên giới hạn ở production
	},
}

// gửi message dạng JSON qua WebSocket
func sendJSON(conn *websocket.Conn, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("Lỗi JSON marshal:", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Println("Lỗi gửi message:", err)
	}
}

// WebSocket phòng chat nhóm học tập
// GET /ws/groups/:id?token=<jwt>
func HandleGroupWebSocket(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	groupID := c.Param("id")

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
		return
	}
	userID := claims.UserID

	// Chỉ thành viên nhóm mới được vào phòng chat
	var membership models.GroupMembership
	if err := db.Where("user_id = ? AND group_id = ? AND is_banned = ?", userID, groupID, false).
		First(&membership).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không phải thành viên của nhóm này"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}

	log.Printf("Group WS connected: groupID=%s, userID=%s\n", groupID, userID)
	H.Register(groupID, conn)
	defer H.Unregister(groupID, conn)

	sendJSON(conn, gin.H{"type": "connected", "message": "Connected to group " + groupID})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Printf("Group WS disconnected: groupID=%s, userID=%s\n", groupID, userID)
	conn.Close()
}
