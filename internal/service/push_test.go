package service

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"manu4/config"
	"manu4/internal/domain"
	"manu4/internal/models"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSubStore struct {
	subs        []models.PushSubscription
	listErr     error
	deactivated []uint
}

func (f *fakeSubStore) ListActiveByUserID(userID uint) ([]models.PushSubscription, error) {
	return f.subs, f.listErr
}

func (f *fakeSubStore) Deactivate(id uint) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

// subscriptionKeys builds a valid client key pair so payload encryption succeeds.
func subscriptionKeys(t *testing.T) (p256dh, auth string) {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	p256dh = base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes())
	authBytes := make([]byte, 16)
	_, err = rand.Read(authBytes)
	require.NoError(t, err)
	auth = base64.RawURLEncoding.EncodeToString(authBytes)
	return p256dh, auth
}

func newTestPushService(t *testing.T, store *fakeSubStore) *PushService {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	svc := NewPushService(&config.PushConfig{
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		Subscriber:      "mailto:ops@example.com",
		TTL:             time.Hour,
		Timeout:         5 * time.Second,
	}, store, zap.NewNop())
	require.NotNil(t, svc)
	return svc
}

func relay(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testNotification() *models.Notification {
	return &models.Notification{
		ID:          17,
		RecipientID: 1,
		Type:        domain.NotifEquipmentFailure,
		Title:       "Equipment failure",
		Message:     "pump down",
		RelatedID:   12,
		RelatedType: domain.RelatedTypeEquipment,
	}
}

func TestPushServiceDisabledWithoutKeys(t *testing.T) {
	svc := NewPushService(&config.PushConfig{}, &fakeSubStore{}, zap.NewNop())
	assert.Nil(t, svc)
}

func TestPushSendSuccess(t *testing.T) {
	p256dh, auth := subscriptionKeys(t)
	ok := relay(t, http.StatusCreated)
	store := &fakeSubStore{subs: []models.PushSubscription{
		{ID: 1, UserID: 1, Endpoint: ok.URL, P256dhKey: p256dh, AuthKey: auth, Active: true},
	}}
	svc := newTestPushService(t, store)

	sent, failed := svc.Send(context.Background(), 1, testNotification())
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)
	assert.Empty(t, store.deactivated)
}

func TestPushGoneEndpointDeactivatesOnlyThatSubscription(t *testing.T) {
	p256dh, auth := subscriptionKeys(t)
	gone := relay(t, http.StatusGone)
	ok := relay(t, http.StatusCreated)
	store := &fakeSubStore{subs: []models.PushSubscription{
		{ID: 1, UserID: 1, Endpoint: gone.URL, P256dhKey: p256dh, AuthKey: auth, Active: true},
		{ID: 2, UserID: 1, Endpoint: ok.URL, P256dhKey: p256dh, AuthKey: auth, Active: true},
	}}
	svc := newTestPushService(t, store)

	sent, failed := svc.Send(context.Background(), 1, testNotification())

	assert.Equal(t, 1, sent, "sibling subscription must still be delivered")
	assert.Equal(t, 1, failed)
	assert.Equal(t, []uint{1}, store.deactivated)
}

func TestPushTransientErrorKeepsSubscription(t *testing.T) {
	p256dh, auth := subscriptionKeys(t)
	flaky := relay(t, http.StatusInternalServerError)
	store := &fakeSubStore{subs: []models.PushSubscription{
		{ID: 1, UserID: 1, Endpoint: flaky.URL, P256dhKey: p256dh, AuthKey: auth, Active: true},
	}}
	svc := newTestPushService(t, store)

	sent, failed := svc.Send(context.Background(), 1, testNotification())
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, failed)
	assert.Empty(t, store.deactivated, "transient failures must not deactivate")
}

func TestPushNoSubscriptions(t *testing.T) {
	svc := newTestPushService(t, &fakeSubStore{})
	sent, failed := svc.Send(context.Background(), 1, testNotification())
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)
}

func TestNotificationURLMapping(t *testing.T) {
	cases := []struct {
		notifType string
		relatedID uint
		want      string
	}{
		{domain.NotifEquipmentFailure, 12, "/equipment/12"},
		{domain.NotifMaintenanceDue, 8, "/equipment/8"},
		{domain.NotifServiceOrderUpdate, 3, "/service-orders/3"},
		{domain.NotifSystemAlert, 0, "/notifications"},
		{domain.NotifEquipmentFailure, 0, "/notifications"},
	}
	for _, tc := range cases {
		n := &models.Notification{Type: tc.notifType, RelatedID: tc.relatedID}
		assert.Equal(t, tc.want, notificationURL(n), tc.notifType)
	}
}

func TestUrgencyMapping(t *testing.T) {
	assert.Equal(t, webpush.UrgencyHigh, urgencyFor(domain.NotifSystemAlert))
	assert.Equal(t, webpush.UrgencyNormal, urgencyFor(domain.NotifEquipmentFailure))
}
