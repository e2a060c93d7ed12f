package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"manu4/config"
	"manu4/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memNotifStore applies the retention cutoffs to an in-memory row set, so the
// age-threshold selection is testable without a database.
type memNotifStore struct {
	rows []models.Notification
}

func (m *memNotifStore) delete(isRead bool, cutoff time.Time) int64 {
	var kept []models.Notification
	var removed int64
	for _, n := range m.rows {
		if n.IsRead == isRead && n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	m.rows = kept
	return removed
}

func (m *memNotifStore) DeleteReadBefore(cutoff time.Time) (int64, error) {
	return m.delete(true, cutoff), nil
}

func (m *memNotifStore) DeleteUnreadBefore(cutoff time.Time) (int64, error) {
	return m.delete(false, cutoff), nil
}

type memSubStore struct {
	cutoff  time.Time
	removed int64
	err     error
}

func (m *memSubStore) DeleteInactiveBefore(cutoff time.Time) (int64, error) {
	m.cutoff = cutoff
	return m.removed, m.err
}

func aged(days int, read bool) models.Notification {
	return models.Notification{
		CreatedAt: time.Now().Add(-time.Duration(days) * 24 * time.Hour),
		IsRead:    read,
	}
}

func retentionCfg() config.RetentionConfig {
	return config.RetentionConfig{
		ReadAge:         30 * 24 * time.Hour,
		UnreadAge:       90 * 24 * time.Hour,
		SubscriptionAge: 60 * 24 * time.Hour,
	}
}

func TestSweeperRemovesExactlyExpiredRows(t *testing.T) {
	store := &memNotifStore{rows: []models.Notification{
		aged(20, true),
		aged(35, true),
		aged(50, false),
		aged(95, false),
	}}
	subs := &memSubStore{}
	s := NewSweeper(store, subs, retentionCfg(), zap.NewNop())

	total, err := s.Run(context.Background())
	require.NoError(t, err)

	// 35d-read exceeds the 30d threshold, 95d-unread exceeds the 90d one;
	// 20d-read and 50d-unread stay.
	assert.Equal(t, int64(2), total)
	require.Len(t, store.rows, 2)
	for _, n := range store.rows {
		age := time.Since(n.CreatedAt)
		if n.IsRead {
			assert.Less(t, age, 30*24*time.Hour)
		} else {
			assert.Less(t, age, 90*24*time.Hour)
		}
	}
}

func TestSweeperPrunesStaleSubscriptions(t *testing.T) {
	subs := &memSubStore{removed: 3}
	s := NewSweeper(&memNotifStore{}, subs, retentionCfg(), zap.NewNop())

	total, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.WithinDuration(t, time.Now().Add(-60*24*time.Hour), subs.cutoff, time.Minute)
}

func TestSweeperContinuesPastFailures(t *testing.T) {
	store := &memNotifStore{rows: []models.Notification{aged(35, true)}}
	subs := &memSubStore{err: errors.New("db down")}
	s := NewSweeper(store, subs, retentionCfg(), zap.NewNop())

	total, err := s.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int64(1), total, "notification pruning still ran")
}
