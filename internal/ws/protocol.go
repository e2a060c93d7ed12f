package ws

import "encoding/json"

// Client → server message types.
const (
	MsgAuthenticate   = "authenticate"
	MsgGetUnreadCount = "get_unread_count"
	MsgMarkAsRead     = "mark_as_read"
	MsgMarkAllRead    = "mark_all_read"
	MsgPing           = "ping"
)

// Server → client message types.
const (
	MsgConnected        = "connected"
	MsgAuthenticated    = "authenticated"
	MsgUnreadCount      = "unread_count"
	MsgNewNotification  = "new_notification"
	MsgNotificationRead = "notification_read"
	MsgAllMarkedRead    = "all_marked_read"
	MsgPong             = "pong"
	MsgError            = "error"
)

// Envelope is the inbound JSON frame. Fields beyond Type are set depending on
// the message type.
type Envelope struct {
	Type           string `json:"type"`
	UserID         uint   `json:"userId,omitempty"`
	NotificationID uint   `json:"notificationId,omitempty"`
}

func errorEnvelope(msg string) []byte {
	data, _ := json.Marshal(map[string]interface{}{"type": MsgError, "message": msg})
	return data
}

func marshal(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}
