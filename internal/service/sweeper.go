package service

import (
	"context"
	"errors"
	"time"

	"manu4/config"
	"manu4/internal/metrics"

	"go.uber.org/zap"
)

type SweepNotificationStore interface {
	DeleteReadBefore(cutoff time.Time) (int64, error)
	DeleteUnreadBefore(cutoff time.Time) (int64, error)
}

type SweepSubscriptionStore interface {
	DeleteInactiveBefore(cutoff time.Time) (int64, error)
}

// Sweeper prunes expired notifications and stale push subscriptions. Read
// notifications go first; unread ones get a longer grace period on the
// assumption the user has not seen them yet, but are still eventually pruned.
type Sweeper struct {
	notifications SweepNotificationStore
	subscriptions SweepSubscriptionStore
	cfg           config.RetentionConfig
	log           *zap.Logger
}

func NewSweeper(notifications SweepNotificationStore, subscriptions SweepSubscriptionStore, cfg config.RetentionConfig, log *zap.Logger) *Sweeper {
	return &Sweeper{
		notifications: notifications,
		subscriptions: subscriptions,
		cfg:           cfg,
		log:           log,
	}
}

// Run executes one sweep and returns the total rows removed. A failed delete
// does not stop the remaining ones.
func (s *Sweeper) Run(ctx context.Context) (int64, error) {
	now := time.Now()
	var total int64
	var errs []error

	if n, err := s.notifications.DeleteReadBefore(now.Add(-s.cfg.ReadAge)); err != nil {
		errs = append(errs, err)
	} else {
		total += n
	}
	if n, err := s.notifications.DeleteUnreadBefore(now.Add(-s.cfg.UnreadAge)); err != nil {
		errs = append(errs, err)
	} else {
		total += n
	}
	if n, err := s.subscriptions.DeleteInactiveBefore(now.Add(-s.cfg.SubscriptionAge)); err != nil {
		errs = append(errs, err)
	} else {
		total += n
	}

	if total > 0 {
		metrics.SweepRemoved.Add(float64(total))
		s.log.Info("retention sweep removed rows", zap.Int64("rows", total))
	}
	return total, errors.Join(errs...)
}
