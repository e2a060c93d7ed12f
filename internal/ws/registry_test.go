package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func recvFrame(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.Send:
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected frame: %s", data)
	default:
	}
}

func TestSendToUserWithoutConnection(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	assert.False(t, r.SendToUser(42, map[string]string{"type": "ping"}))
}

func TestAuthenticateSupersedesPriorBinding(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	c1 := NewClient(8)
	c2 := NewClient(8)

	r.Bind(7, c1)
	r.Bind(7, c2)

	require.True(t, r.SendToUser(7, map[string]string{"type": "x"}))
	recvFrame(t, c2)
	assertNoFrame(t, c1)

	// Closing the stale channel must not evict the newer binding.
	r.Unbind(7, c1)
	require.True(t, r.SendToUser(7, map[string]string{"type": "y"}))
	recvFrame(t, c2)

	// The owner's close does evict.
	r.Unbind(7, c2)
	assert.False(t, r.SendToUser(7, map[string]string{"type": "z"}))
}

func TestSendToUsersAggregates(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	c1 := NewClient(8)
	c3 := NewClient(8)
	r.Bind(1, c1)
	r.Bind(3, c3)

	sent, failed := r.SendToUsers([]uint{1, 2, 3}, map[string]string{"type": "x"})
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)
}

func TestBroadcastSurvivesFailingChannel(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	c1 := NewClient(8)
	c2 := NewClient(8)
	c3 := NewClient(8)
	r.Bind(1, c1)
	r.Bind(2, c2)
	r.Bind(3, c3)

	// The second channel fails every write.
	c2.Close()

	r.Broadcast(map[string]string{"type": "announce"})
	recvFrame(t, c1)
	recvFrame(t, c3)
}

func TestGetStats(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Bind(1, NewClient(8))
	r.Bind(2, NewClient(8))

	stats := r.GetStats()
	assert.Equal(t, 2, stats.Count)
	assert.ElementsMatch(t, []uint{1, 2}, stats.UserIDs)
}

func TestClientWriteAfterClose(t *testing.T) {
	c := NewClient(8)
	c.Close()
	assert.ErrorIs(t, c.Write([]byte("x")), ErrClientClosed)
	// Close twice is safe.
	c.Close()
}

func TestClientWriteFullBuffer(t *testing.T) {
	c := NewClient(1)
	require.NoError(t, c.Write([]byte("a")))
	assert.ErrorIs(t, c.Write([]byte("b")), ErrBufferFull)
}
