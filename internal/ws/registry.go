package ws

import (
	"sync"

	"manu4/internal/metrics"

	"go.uber.org/zap"
)

// Registry maps an authenticated user id to its single live connection.
// A later authentication for the same id supersedes the earlier one; the
// superseded channel stays open but no longer receives addressed sends.
type Registry struct {
	mu     sync.RWMutex
	byUser map[uint]*Client
	log    *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		byUser: make(map[uint]*Client),
		log:    log,
	}
}

// Bind registers c as the live connection for userID, replacing any prior one.
func (r *Registry) Bind(userID uint, c *Client) {
	r.mu.Lock()
	prev, had := r.byUser[userID]
	r.byUser[userID] = c
	if !had {
		metrics.WSConnected.Inc()
	}
	r.mu.Unlock()
	if had && prev != c {
		r.log.Debug("live connection superseded", zap.Uint("user_id", userID))
	}
}

// Unbind removes the registry entry for userID only if c still owns it, so a
// stale, superseded channel closing cannot evict a newer authentication.
func (r *Registry) Unbind(userID uint, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byUser[userID]; ok && cur == c {
		delete(r.byUser, userID)
		metrics.WSConnected.Dec()
	}
}

// SendToUser delivers payload to the user's live connection. Returns false,
// without error, when the user has no open channel or the write fails.
func (r *Registry) SendToUser(userID uint, payload interface{}) bool {
	r.mu.RLock()
	c := r.byUser[userID]
	r.mu.RUnlock()
	if c == nil {
		return false
	}
	if err := c.Write(marshal(payload)); err != nil {
		r.log.Warn("live send failed", zap.Uint("user_id", userID), zap.Error(err))
		return false
	}
	return true
}

// SendToUsers makes one delivery attempt per id and aggregates the outcome.
func (r *Registry) SendToUsers(ids []uint, payload interface{}) (sent, failed int) {
	for _, id := range ids {
		if r.SendToUser(id, payload) {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}

// Broadcast delivers payload to every open channel, best effort. A failure on
// one channel is logged and does not prevent delivery to the others.
func (r *Registry) Broadcast(payload interface{}) {
	data := marshal(payload)
	r.mu.RLock()
	clients := make(map[uint]*Client, len(r.byUser))
	for id, c := range r.byUser {
		clients[id] = c
	}
	r.mu.RUnlock()
	for id, c := range clients {
		if err := c.Write(data); err != nil {
			r.log.Warn("broadcast send failed", zap.Uint("user_id", id), zap.Error(err))
		}
	}
}

type Stats struct {
	Count   int    `json:"count"`
	UserIDs []uint `json:"user_ids"`
}

// GetStats reports connected-client count and identities.
func (r *Registry) GetStats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	return Stats{Count: len(ids), UserIDs: ids}
}
