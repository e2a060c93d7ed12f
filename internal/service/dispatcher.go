package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"manu4/internal/domain"
	"manu4/internal/metrics"
	"manu4/internal/models"
	"manu4/internal/ws"

	"go.uber.org/zap"
)

// Event is one dispatch request: a typed, addressed message to turn into
// persisted notifications and delivery attempts.
type Event struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	RelatedID   uint   `json:"related_id,omitempty"`
	RelatedType string `json:"related_type,omitempty"`
	Recipients  []uint `json:"recipients,omitempty"`
	AllActive   bool   `json:"all_active,omitempty"`
}

var ErrInvalidEvent = errors.New("invalid dispatch event")

func (e *Event) validate() error {
	if e.Type == "" || e.Title == "" || e.Message == "" {
		return fmt.Errorf("%w: type, title and message are required", ErrInvalidEvent)
	}
	if !domain.ValidNotificationType(e.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	if !e.AllActive && len(e.Recipients) == 0 {
		return fmt.Errorf("%w: recipients or allActive required", ErrInvalidEvent)
	}
	return nil
}

// Result aggregates the per-recipient outcome of one dispatch.
type Result struct {
	Created    int      `json:"notifications_created"`
	PushSent   int      `json:"push_sent"`
	PushFailed int      `json:"push_failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

type BatchResult struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

type UserStore interface {
	ListActiveIDs() ([]uint, error)
}

type DispatchNotificationStore interface {
	Create(n *models.Notification) error
	CountUnread(userID uint) (int64, error)
	ExistsRecent(notifType string, relatedID uint, since time.Time) (bool, error)
}

type SettingStore interface {
	Get(userID uint, notifType string) (*models.NotificationSetting, error)
}

// LiveSender is the live-connection registry as the dispatcher sees it.
type LiveSender interface {
	SendToUser(userID uint, payload interface{}) bool
}

// PushSender delivers one notification to every push subscription of a user.
type PushSender interface {
	Send(ctx context.Context, userID uint, n *models.Notification) (sent, failed int)
}

// Dispatcher resolves recipients and preferences, persists notification rows
// and fans delivery out through the live registry and the push channel.
type Dispatcher struct {
	users         UserStore
	notifications DispatchNotificationStore
	settings      SettingStore
	live          LiveSender
	push          PushSender
	dedupWindow   time.Duration
	log           *zap.Logger
}

func NewDispatcher(
	users UserStore,
	notifications DispatchNotificationStore,
	settings SettingStore,
	live LiveSender,
	push PushSender,
	dedupWindow time.Duration,
	log *zap.Logger,
) *Dispatcher {
	if dedupWindow <= 0 {
		dedupWindow = time.Hour
	}
	return &Dispatcher{
		users:         users,
		notifications: notifications,
		settings:      settings,
		live:          live,
		push:          push,
		dedupWindow:   dedupWindow,
		log:           log,
	}
}

// Dispatch runs the full fan-out for one event. A single recipient's failure
// never aborts the loop; it only shows up in the aggregated result.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (*Result, error) {
	if err := ev.validate(); err != nil {
		return nil, err
	}

	recipients := ev.Recipients
	if ev.AllActive {
		ids, err := d.users.ListActiveIDs()
		if err != nil {
			return nil, fmt.Errorf("resolve active recipients: %w", err)
		}
		recipients = ids
	}

	res := &Result{}

	// Anti-storm: a scanner firing every tick must not re-notify the same
	// related row within the window. Keyed (type, related_id), not just type.
	if ev.RelatedID != 0 {
		exists, err := d.notifications.ExistsRecent(ev.Type, ev.RelatedID, time.Now().Add(-d.dedupWindow))
		if err != nil {
			return nil, fmt.Errorf("dedup lookup: %w", err)
		}
		if exists {
			res.Skipped = len(recipients)
			d.log.Debug("event suppressed by dedup window",
				zap.String("type", ev.Type), zap.Uint("related_id", ev.RelatedID))
			return res, nil
		}
	}

	for _, uid := range recipients {
		d.dispatchTo(ctx, uid, ev, res)
	}
	return res, nil
}

func (d *Dispatcher) dispatchTo(ctx context.Context, userID uint, ev Event, res *Result) {
	setting, err := d.settings.Get(userID, ev.Type)
	if err != nil {
		metrics.DispatchErrors.Inc()
		res.Errors = append(res.Errors, fmt.Sprintf("user %d: load settings: %v", userID, err))
		return
	}
	if !setting.Enabled {
		res.Skipped++
		return
	}

	n := &models.Notification{
		RecipientID: userID,
		Type:        ev.Type,
		Title:       ev.Title,
		Message:     ev.Message,
		RelatedID:   ev.RelatedID,
		RelatedType: ev.RelatedType,
	}
	if err := d.notifications.Create(n); err != nil {
		metrics.DispatchErrors.Inc()
		res.Errors = append(res.Errors, fmt.Sprintf("user %d: persist: %v", userID, err))
		return
	}
	res.Created++
	metrics.NotificationsCreated.Inc()

	// Live channel: the notification itself, then a fresh unread counter.
	if d.live.SendToUser(userID, ws.NewNotificationPayload(n)) {
		if count, err := d.notifications.CountUnread(userID); err == nil {
			d.live.SendToUser(userID, ws.UnreadCountPayload(count))
		} else {
			d.log.Warn("unread count after live send failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	// Push fires regardless of the live outcome. Redundant on purpose; the
	// client dedupes on the payload tag.
	if setting.PushEnabled && d.push != nil {
		sent, failed := d.push.Send(ctx, userID, n)
		res.PushSent += sent
		res.PushFailed += failed
	}
}

// DispatchBatch processes each event independently and aggregates the outcome.
// Item failures are captured as strings, never raised.
func (d *Dispatcher) DispatchBatch(ctx context.Context, events []Event) *BatchResult {
	br := &BatchResult{Total: len(events)}
	for i, ev := range events {
		res, err := d.Dispatch(ctx, ev)
		if err != nil {
			br.Failed++
			br.Errors = append(br.Errors, fmt.Sprintf("event %d: %v", i, err))
			continue
		}
		br.Success++
		br.Errors = append(br.Errors, res.Errors...)
	}
	return br
}
