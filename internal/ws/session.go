package ws

import (
	"encoding/json"

	"go.uber.org/zap"
)

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateClosed
)

// NotificationStore is the subset of store operations the protocol needs.
type NotificationStore interface {
	CountUnread(userID uint) (int64, error)
	MarkReadByID(id uint) error
	MarkAllRead(userID uint) error
}

// Session is the protocol state machine for one connection. It is transport
// agnostic: inbound frames come through HandleMessage, outbound frames go
// through the client's send buffer, so it is testable without a socket.
type Session struct {
	state    State
	userID   uint
	client   *Client
	registry *Registry
	store    NotificationStore
	log      *zap.Logger
}

func NewSession(client *Client, registry *Registry, store NotificationStore, log *zap.Logger) *Session {
	return &Session{
		state:    StateUnauthenticated,
		client:   client,
		registry: registry,
		store:    store,
		log:      log,
	}
}

func (s *Session) State() State { return s.state }
func (s *Session) UserID() uint { return s.userID }

// Authenticate binds the session's channel to userID. Used both for the
// authenticate message and for token-based auto-authentication on upgrade.
// Re-authenticating as a different user releases the previous binding first,
// so the channel never keeps receiving another user's frames.
func (s *Session) Authenticate(userID uint) {
	if s.state == StateClosed {
		return
	}
	if s.state == StateAuthenticated && s.userID != userID {
		s.registry.Unbind(s.userID, s.client)
	}
	s.registry.Bind(userID, s.client)
	s.userID = userID
	s.state = StateAuthenticated
	s.reply(map[string]interface{}{"type": MsgAuthenticated, "userId": userID})
	s.sendUnreadCount(userID)
}

// HandleMessage processes one inbound frame. Malformed or unknown input gets a
// descriptive error envelope; the channel stays open.
func (s *Session) HandleMessage(raw []byte) {
	if s.state == StateClosed {
		return
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		s.replyError("invalid message format")
		return
	}
	switch env.Type {
	case MsgAuthenticate:
		if env.UserID == 0 {
			s.replyError("userId is required")
			return
		}
		s.Authenticate(env.UserID)
	case MsgGetUnreadCount:
		uid := env.UserID
		if uid == 0 {
			uid = s.userID
		}
		if uid == 0 {
			s.replyError("userId is required")
			return
		}
		s.sendUnreadCount(uid)
	case MsgMarkAsRead:
		if env.NotificationID == 0 {
			s.replyError("notificationId is required")
			return
		}
		if err := s.store.MarkReadByID(env.NotificationID); err != nil {
			s.log.Warn("mark_as_read failed", zap.Uint("notification_id", env.NotificationID), zap.Error(err))
			s.replyError("could not mark notification as read")
			return
		}
		// Coarse invalidation: every open channel learns about the read,
		// not just the owner.
		s.registry.Broadcast(map[string]interface{}{
			"type":           MsgNotificationRead,
			"notificationId": env.NotificationID,
		})
	case MsgMarkAllRead:
		uid := env.UserID
		if uid == 0 {
			uid = s.userID
		}
		if uid == 0 {
			s.replyError("userId is required")
			return
		}
		if err := s.store.MarkAllRead(uid); err != nil {
			s.log.Warn("mark_all_read failed", zap.Uint("user_id", uid), zap.Error(err))
			s.replyError("could not mark notifications as read")
			return
		}
		s.reply(map[string]interface{}{"type": MsgAllMarkedRead})
	case MsgPing:
		s.reply(map[string]interface{}{"type": MsgPong})
	default:
		s.replyError("unknown message type: " + env.Type)
	}
}

// Close tears the session down. The registry entry is only cleared if this
// session's channel still owns it.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	if s.state == StateAuthenticated {
		s.registry.Unbind(s.userID, s.client)
	}
	s.state = StateClosed
}

func (s *Session) sendUnreadCount(userID uint) {
	count, err := s.store.CountUnread(userID)
	if err != nil {
		s.log.Warn("unread count query failed", zap.Uint("user_id", userID), zap.Error(err))
		s.replyError("could not load unread count")
		return
	}
	s.reply(map[string]interface{}{"type": MsgUnreadCount, "count": count})
}

func (s *Session) reply(v interface{}) {
	if err := s.client.Write(marshal(v)); err != nil {
		s.log.Debug("session reply dropped", zap.Error(err))
	}
}

func (s *Session) replyError(msg string) {
	if err := s.client.Write(errorEnvelope(msg)); err != nil {
		s.log.Debug("session error reply dropped", zap.Error(err))
	}
}

// NewNotificationPayload is the envelope pushed to a live channel when a
// notification is created for its user.
func NewNotificationPayload(n interface{}) map[string]interface{} {
	return map[string]interface{}{"type": MsgNewNotification, "notification": n}
}

// UnreadCountPayload is the envelope carrying a fresh unread counter.
func UnreadCountPayload(count int64) map[string]interface{} {
	return map[string]interface{}{"type": MsgUnreadCount, "count": count}
}
