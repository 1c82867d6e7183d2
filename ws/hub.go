package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Rooms map[string]map[*websocket.Conn]*Client // phòng chat theo từng groupID
	Mutex sync.RWMutex
}

var H = Hub{
	Rooms: make(map[string]map[*websocket.Conn]*Client),
}

// Payload đẩy xuống client khi có tin nhắn mới trong nhóm
type GroupChatEvent struct {
	Type    string      `json:"type"` // new_message | member_joined | member_left
	GroupID string      `json:"group_id"`
	Message interface{} `json:"message,omitempty"`
}

// Register client vào phòng của một nhóm
func (h *Hub) Register(groupID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Rooms[groupID]; !ok {
		h.Rooms[groupID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Rooms[groupID][conn] = client

	go h.writePump(client)
}

// Broadcast tới mọi client trong phòng của nhóm
func (h *Hub) Broadcast(groupID string, messageType int, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Rooms[groupID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// Unregister client khỏi phòng của nhóm
func (h *Hub) Unregister(groupID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Rooms[groupID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Rooms, groupID)
		}
	}
}

// GetStats trả về số phòng và số kết nối đang mở (cho /health)
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	total := 0
	for _, clients := range h.Rooms {
		total += len(clients)
	}
	return map[string]int{
		"rooms":       len(h.Rooms),
		"connections": total,
	}
}

// Write pump riêng cho từng client
func (h *Hub) writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// BroadcastGroupMessage đẩy tin nhắn mới tới phòng chat của nhóm
func BroadcastGroupMessage(groupID string, message interface{}) {
	event := GroupChatEvent{
		Type:    "new_message",
		GroupID: groupID,
		Message: message,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(groupID, websocket.TextMessage, data)
}

// BroadcastMembershipChange báo phòng chat có người vào/ra nhóm
func BroadcastMembershipChange(groupID, eventType string) {
	event := GroupChatEvent{
		Type:    eventType,
		GroupID: groupID,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(groupID, websocket.TextMessage, data)
}
