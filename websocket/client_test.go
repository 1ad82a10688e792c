package websocket

import (
	"errors"
	"sync"
	"testing"
	"time"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

type recordingConn struct {
	mu       sync.Mutex
	written  [][]byte
	controls []int
	closed   bool
	reads    chan error
}

func newRecordingConn() *recordingConn {
	return &recordingConn{reads: make(chan error, 1)}
}

func (c *recordingConn) ReadMessage() (int, []byte, error) {
	return 0, nil, <-c.reads
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, data)
	return nil
}

func (c *recordingConn) WriteControl(messageType int, _ []byte, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls = append(c.controls, messageType)
	return nil
}

func (c *recordingConn) SetReadDeadline(time.Time) error   { return nil }
func (c *recordingConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *recordingConn) SetReadLimit(int64)                {}
func (c *recordingConn) SetPongHandler(func(string) error) {}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestClient_WritePumpFlushesAndCloses(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	c := NewClient("u1", 4)
	hub.Join("u1", c)
	conn := newRecordingConn()

	done := make(chan struct{})
	go func() {
		c.WritePump(conn, time.Hour, time.Second)
		close(done)
	}()

	if err := hub.Emit("u1", "message:sent", "a"); err != nil {
		t.Fatal(err)
	}
	hub.Leave(c)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write pump did not stop after leave")
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.written) != 1 {
		t.Errorf("unexpected frames written: want 1, got %d", len(conn.written))
	}
	if len(conn.controls) != 1 || conn.controls[0] != websocketcontrib.CloseMessage {
		t.Errorf("want a close frame, got %v", conn.controls)
	}
	if !conn.closed {
		t.Error("connection not closed")
	}
}

func TestClient_ReadPumpReturnsReadError(t *testing.T) {
	c := NewClient("u1", 1)
	conn := newRecordingConn()
	want := errors.New("connection reset")
	conn.reads <- want

	if err := c.ReadPump(conn); !errors.Is(err, want) {
		t.Errorf("unexpected error: want %v, got %v", want, err)
	}
}

func TestClient_WritePumpZeroDurationsUseDefaults(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	c := NewClient("u1", 2)
	hub.Join("u1", c)
	conn := newRecordingConn()

	done := make(chan struct{})
	go func() {
		c.WritePump(conn, 0, 0)
		close(done)
	}()

	if err := hub.Emit("u1", "message:new", "a"); err != nil {
		t.Fatal(err)
	}
	hub.Leave(c)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write pump did not stop after leave")
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.written) != 1 {
		t.Errorf("unexpected frames written: want 1, got %d", len(conn.written))
	}
}
