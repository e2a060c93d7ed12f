package ws

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	unread      int64
	unreadErr   error
	markedByID  []uint
	markedAll   []uint
	markReadErr error
}

func (f *fakeStore) CountUnread(userID uint) (int64, error) {
	return f.unread, f.unreadErr
}

func (f *fakeStore) MarkReadByID(id uint) error {
	if f.markReadErr != nil {
		return f.markReadErr
	}
	f.markedByID = append(f.markedByID, id)
	return nil
}

func (f *fakeStore) MarkAllRead(userID uint) error {
	f.markedAll = append(f.markedAll, userID)
	return nil
}

func newTestSession(store *fakeStore) (*Session, *Client, *Registry) {
	r := NewRegistry(zap.NewNop())
	c := NewClient(16)
	s := NewSession(c, r, store, zap.NewNop())
	return s, c, r
}

func TestAuthenticateBindsAndReports(t *testing.T) {
	store := &fakeStore{unread: 4}
	s, c, r := newTestSession(store)

	s.HandleMessage([]byte(`{"type":"authenticate","userId":7}`))

	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, uint(7), s.UserID())
	assert.Equal(t, MsgAuthenticated, recvFrame(t, c)["type"])
	frame := recvFrame(t, c)
	assert.Equal(t, MsgUnreadCount, frame["type"])
	assert.Equal(t, float64(4), frame["count"])
	assert.True(t, r.SendToUser(7, map[string]string{"type": "x"}))
}

func TestAuthenticateWithoutUserID(t *testing.T) {
	s, c, _ := newTestSession(&fakeStore{})
	s.HandleMessage([]byte(`{"type":"authenticate"}`))
	assert.Equal(t, MsgError, recvFrame(t, c)["type"])
	assert.Equal(t, StateUnauthenticated, s.State())
}

func TestMalformedInputKeepsChannelOpen(t *testing.T) {
	s, c, _ := newTestSession(&fakeStore{})

	s.HandleMessage([]byte(`{not json`))
	assert.Equal(t, MsgError, recvFrame(t, c)["type"])

	// The channel is still usable.
	s.HandleMessage([]byte(`{"type":"ping"}`))
	assert.Equal(t, MsgPong, recvFrame(t, c)["type"])
}

func TestUnknownTypeGetsDescriptiveError(t *testing.T) {
	s, c, _ := newTestSession(&fakeStore{})
	s.HandleMessage([]byte(`{"type":"subscribe"}`))
	frame := recvFrame(t, c)
	assert.Equal(t, MsgError, frame["type"])
	assert.Contains(t, frame["message"], "subscribe")
}

func TestGetUnreadCount(t *testing.T) {
	store := &fakeStore{unread: 9}
	s, c, _ := newTestSession(store)

	s.HandleMessage([]byte(`{"type":"get_unread_count","userId":3}`))
	frame := recvFrame(t, c)
	assert.Equal(t, MsgUnreadCount, frame["type"])
	assert.Equal(t, float64(9), frame["count"])
}

func TestGetUnreadCountStoreError(t *testing.T) {
	store := &fakeStore{unreadErr: errors.New("db down")}
	s, c, _ := newTestSession(store)
	s.HandleMessage([]byte(`{"type":"get_unread_count","userId":3}`))
	assert.Equal(t, MsgError, recvFrame(t, c)["type"])
}

func TestMarkAsReadBroadcastsToAllChannels(t *testing.T) {
	store := &fakeStore{unread: 1}
	s1, c1, r := newTestSession(store)
	s1.HandleMessage([]byte(`{"type":"authenticate","userId":1}`))
	recvFrame(t, c1) // authenticated
	recvFrame(t, c1) // unread_count

	c2 := NewClient(16)
	s2 := NewSession(c2, r, store, zap.NewNop())
	s2.HandleMessage([]byte(`{"type":"authenticate","userId":2}`))
	recvFrame(t, c2)
	recvFrame(t, c2)

	s1.HandleMessage([]byte(`{"type":"mark_as_read","notificationId":55}`))

	require.Equal(t, []uint{55}, store.markedByID)
	for _, c := range []*Client{c1, c2} {
		frame := recvFrame(t, c)
		assert.Equal(t, MsgNotificationRead, frame["type"])
		assert.Equal(t, float64(55), frame["notificationId"])
	}
}

func TestMarkAllReadRepliesOnlyToCaller(t *testing.T) {
	store := &fakeStore{}
	s1, c1, r := newTestSession(store)
	s1.HandleMessage([]byte(`{"type":"authenticate","userId":1}`))
	recvFrame(t, c1)
	recvFrame(t, c1)

	c2 := NewClient(16)
	s2 := NewSession(c2, r, store, zap.NewNop())
	s2.HandleMessage([]byte(`{"type":"authenticate","userId":2}`))
	recvFrame(t, c2)
	recvFrame(t, c2)

	s1.HandleMessage([]byte(`{"type":"mark_all_read","userId":1}`))

	assert.Equal(t, []uint{1}, store.markedAll)
	assert.Equal(t, MsgAllMarkedRead, recvFrame(t, c1)["type"])
	assertNoFrame(t, c2)
}

func TestStaleSessionCloseKeepsNewerBinding(t *testing.T) {
	store := &fakeStore{}
	s1, c1, r := newTestSession(store)
	s1.HandleMessage([]byte(`{"type":"authenticate","userId":7}`))
	recvFrame(t, c1)
	recvFrame(t, c1)

	c2 := NewClient(16)
	s2 := NewSession(c2, r, store, zap.NewNop())
	s2.HandleMessage([]byte(`{"type":"authenticate","userId":7}`))
	recvFrame(t, c2)
	recvFrame(t, c2)

	// The first, superseded session disconnects.
	s1.Close()

	require.True(t, r.SendToUser(7, map[string]string{"type": "x"}))
	recvFrame(t, c2)
	assertNoFrame(t, c1)
}

func TestReauthenticateReleasesPriorBinding(t *testing.T) {
	store := &fakeStore{}
	s, c, r := newTestSession(store)
	s.HandleMessage([]byte(`{"type":"authenticate","userId":3}`))
	recvFrame(t, c)
	recvFrame(t, c)

	// Same channel authenticates again as a different user. The old binding
	// must go away, or user 3's frames would keep landing on user 7's channel.
	s.HandleMessage([]byte(`{"type":"authenticate","userId":7}`))
	recvFrame(t, c)
	recvFrame(t, c)

	assert.Equal(t, uint(7), s.UserID())
	assert.False(t, r.SendToUser(3, map[string]string{"type": "x"}))
	assert.True(t, r.SendToUser(7, map[string]string{"type": "x"}))
	recvFrame(t, c)

	s.Close()
	assert.Equal(t, 0, r.GetStats().Count)
}

func TestClosedSessionIgnoresMessages(t *testing.T) {
	s, c, _ := newTestSession(&fakeStore{})
	s.Close()
	s.HandleMessage([]byte(`{"type":"ping"}`))
	assertNoFrame(t, c)
	assert.Equal(t, StateClosed, s.State())
}
