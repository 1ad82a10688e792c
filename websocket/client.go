package websocket

import (
	"sync"
	"time"

	websocketcontrib "github.com/gofiber/contrib/websocket"
)

const (
	maxInboundBytes = 4096
	pongWait        = 60 * time.Second

	DefaultPingInterval = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// Conn is the part of a websocket connection the pumps use.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one live connection. Frames queued with enqueue are written by
// WritePump.
type Client struct {
	identity  string
	send      chan []byte
	closeOnce sync.Once
}

func NewClient(identity string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 1
	}
	return &Client{identity: identity, send: make(chan []byte, buffer)}
}

func (c *Client) Identity() string { return c.identity }

// Outbound is closed once the client leaves the hub.
func (c *Client) Outbound() <-chan []byte { return c.send }

func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// WritePump drains the outbound queue until it is closed or a write fails,
// pinging every pingInterval. Non-positive durations fall back to the
// defaults. It closes conn on return.
func (c *Client) WritePump(conn Conn, pingInterval, writeTimeout time.Duration) {
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				_ = conn.WriteControl(websocketcontrib.CloseMessage,
					websocketcontrib.FormatCloseMessage(websocketcontrib.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocketcontrib.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocketcontrib.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

// ReadPump keeps the read side alive for pongs and close frames. Clients do
// not send application frames; anything received is discarded. Returns the
// error that ended the connection.
func (c *Client) ReadPump(conn Conn) error {
	conn.SetReadLimit(maxInboundBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
