package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"manu4/config"
	"manu4/internal/domain"
	"manu4/internal/metrics"
	"manu4/internal/models"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
)

// PushSubscriptionStore is the subscription persistence the push sender needs.
type PushSubscriptionStore interface {
	ListActiveByUserID(userID uint) ([]models.PushSubscription, error)
	Deactivate(id uint) error
}

// PushService delivers notifications through the Web Push protocol with VAPID
// authentication. Each subscription is attempted independently; a permanently
// gone endpoint is deactivated, a transient error is logged and retained.
type PushService struct {
	subs       PushSubscriptionStore
	subscriber string
	vapidPub   string
	vapidPriv  string
	ttl        int
	client     *http.Client
	log        *zap.Logger
}

// NewPushService creates the push sender. Returns nil if no VAPID keys are
// configured, in which case push delivery is disabled.
func NewPushService(cfg *config.PushConfig, subs PushSubscriptionStore, log *zap.Logger) *PushService {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PushService{
		subs:       subs,
		subscriber: cfg.Subscriber,
		vapidPub:   cfg.VAPIDPublicKey,
		vapidPriv:  cfg.VAPIDPrivateKey,
		ttl:        int(ttl.Seconds()),
		client:     &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Send attempts delivery to every active subscription of the user. Never
// returns an error: outcomes surface only as counts.
func (s *PushService) Send(ctx context.Context, userID uint, n *models.Notification) (sent, failed int) {
	subs, err := s.subs.ListActiveByUserID(userID)
	if err != nil {
		s.log.Warn("push subscription lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		return 0, 1
	}
	if len(subs) == 0 {
		return 0, 0
	}
	payload := buildPushPayload(n)
	for _, sub := range subs {
		if err := s.sendOne(ctx, &sub, payload, n.Type); err != nil {
			failed++
			metrics.PushFailed.Inc()
			s.log.Warn("push delivery failed",
				zap.Uint("user_id", userID),
				zap.Uint("subscription_id", sub.ID),
				zap.Error(err))
			continue
		}
		sent++
		metrics.PushSent.Inc()
	}
	return sent, failed
}

func (s *PushService) sendOne(ctx context.Context, sub *models.PushSubscription, payload []byte, notifType string) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPub,
		VAPIDPrivateKey: s.vapidPriv,
		TTL:             s.ttl,
		Urgency:         urgencyFor(notifType),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// Endpoint is permanently gone; stop targeting it until the client
		// re-registers.
		if derr := s.subs.Deactivate(sub.ID); derr != nil {
			s.log.Warn("subscription deactivation failed", zap.Uint("subscription_id", sub.ID), zap.Error(derr))
		} else {
			s.log.Info("deactivated gone push subscription", zap.Uint("subscription_id", sub.ID))
		}
		return fmt.Errorf("endpoint gone: %s", resp.Status)
	case resp.StatusCode >= 400:
		return fmt.Errorf("relay rejected push: %s", resp.Status)
	}
	return nil
}

func urgencyFor(notifType string) webpush.Urgency {
	if notifType == domain.NotifSystemAlert {
		return webpush.UrgencyHigh
	}
	return webpush.UrgencyNormal
}

type pushAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

type pushData struct {
	NotificationID uint   `json:"notificationId"`
	Type           string `json:"type"`
	RelatedID      uint   `json:"relatedId,omitempty"`
	RelatedType    string `json:"relatedType,omitempty"`
	URL            string `json:"url"`
	Timestamp      int64  `json:"timestamp"`
}

type pushPayload struct {
	Title   string       `json:"title"`
	Body    string       `json:"body"`
	Icon    string       `json:"icon"`
	Badge   string       `json:"badge"`
	Tag     string       `json:"tag"`
	Data    pushData     `json:"data"`
	Actions []pushAction `json:"actions"`
}

func buildPushPayload(n *models.Notification) []byte {
	p := pushPayload{
		Title: n.Title,
		Body:  n.Message,
		Icon:  "/icons/icon-192.png",
		Badge: "/icons/badge-72.png",
		// Tag lets the client replace earlier payloads for the same row.
		Tag: fmt.Sprintf("notification-%d", n.ID),
		Data: pushData{
			NotificationID: n.ID,
			Type:           n.Type,
			RelatedID:      n.RelatedID,
			RelatedType:    n.RelatedType,
			URL:            notificationURL(n),
			Timestamp:      time.Now().UnixMilli(),
		},
		Actions: actionsFor(n.Type),
	}
	data, _ := json.Marshal(p)
	return data
}

// notificationURL maps (type, relatedId) to the client path opened on tap.
func notificationURL(n *models.Notification) string {
	switch n.Type {
	case domain.NotifEquipmentFailure, domain.NotifMaintenanceDue:
		if n.RelatedID != 0 {
			return fmt.Sprintf("/equipment/%d", n.RelatedID)
		}
	case domain.NotifServiceOrderUpdate:
		if n.RelatedID != 0 {
			return fmt.Sprintf("/service-orders/%d", n.RelatedID)
		}
	}
	return "/notifications"
}

func actionsFor(notifType string) []pushAction {
	switch notifType {
	case domain.NotifEquipmentFailure:
		return []pushAction{{Action: "view", Title: "View Equipment"}, {Action: "dismiss", Title: "Dismiss"}}
	case domain.NotifMaintenanceDue:
		return []pushAction{{Action: "view", Title: "View Maintenance"}, {Action: "dismiss", Title: "Dismiss"}}
	case domain.NotifServiceOrderUpdate:
		return []pushAction{{Action: "view", Title: "View Order"}, {Action: "dismiss", Title: "Dismiss"}}
	default:
		return []pushAction{{Action: "view", Title: "Open"}, {Action: "dismiss", Title: "Dismiss"}}
	}
}
