package ws

import (
	"errors"
	"sync"
)

var (
	ErrClientClosed = errors.New("client closed")
	ErrBufferFull   = errors.New("send buffer full")
)

// Client is one live connection. Outbound frames go through Send and are
// drained to the transport by the connection's write pump.
type Client struct {
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{Send: make(chan []byte, buffer)}
}

// Write enqueues a frame for the write pump. It never blocks: a closed client
// or a full buffer is reported as an error so the caller can count the failure.
func (c *Client) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}
