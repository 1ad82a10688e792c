package websocket

import (
	"encoding/json"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func readEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case frame, ok := <-c.Outbound():
		if !ok {
			t.Fatal("outbound queue closed")
		}
		var ev Event
		if err := json.Unmarshal(frame, &ev); err != nil {
			t.Fatalf("invalid frame %s: %v", frame, err)
		}
		return ev
	default:
		t.Fatal("no frame queued")
	}
	return Event{}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame := <-c.Outbound():
		t.Fatalf("unexpected frame: %s", frame)
	default:
	}
}

func TestHub_EmitReachesEveryConnection(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	tab1, tab2, other := NewClient("u1", 4), NewClient("u1", 4), NewClient("u2", 4)
	hub.Join("u1", tab1)
	hub.Join("u1", tab2)
	hub.Join("u2", other)

	if err := hub.Emit("u1", "message:new", map[string]string{"text": "hi"}); err != nil {
		t.Fatal(err)
	}

	for _, c := range []*Client{tab1, tab2} {
		ev := readEvent(t, c)
		if ev.Name != "message:new" {
			t.Errorf("unexpected event: want %s, got %s", "message:new", ev.Name)
		}
		if string(ev.Data) != `{"text":"hi"}` {
			t.Errorf("unexpected data: %s", ev.Data)
		}
	}
	assertEmpty(t, other)
}

func TestHub_EmitWithoutConnectionsIsNoop(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	if err := hub.Emit("nobody", "message:new", struct{}{}); err != nil {
		t.Errorf("emit to an absent identity should succeed, got %v", err)
	}
}

func TestHub_EmptyIdentityIgnored(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	c := NewClient("", 1)
	hub.Join("", c)
	if n := hub.Connections(""); n != 0 {
		t.Errorf("empty identity joined: %d", n)
	}
}

func TestHub_LeaveIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	c := NewClient("u1", 1)
	hub.Join("u1", c)

	hub.Leave(c)
	hub.Leave(c)

	if n := hub.Connections("u1"); n != 0 {
		t.Errorf("unexpected connections after leave: %d", n)
	}
	if _, ok := <-c.Outbound(); ok {
		t.Error("outbound queue should be closed after leave")
	}
	if err := hub.Emit("u1", "message:new", 1); err != nil {
		t.Errorf("emit after leave: %v", err)
	}
}

func TestHub_FullQueueDropsWithoutBlocking(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	c := NewClient("u1", 1)
	hub.Join("u1", c)

	for i := 0; i < 3; i++ {
		if err := hub.Emit("u1", "message:new", i); err != nil {
			t.Fatal(err)
		}
	}

	ev := readEvent(t, c)
	if string(ev.Data) != "0" {
		t.Errorf("first frame should survive, got %s", ev.Data)
	}
	assertEmpty(t, c)
}

func TestHub_UnencodablePayload(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	if err := hub.Emit("u1", "message:new", make(chan int)); err == nil {
		t.Error("want an encoding error")
	}
}

func TestHub_ConcurrentJoinLeaveEmit(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := NewClient("u1", 2)
			hub.Join("u1", c)
			hub.Leave(c)
		}()
		go func() {
			defer wg.Done()
			_ = hub.Emit("u1", "message:new", "x")
		}()
	}
	wg.Wait()
	if n := hub.Connections("u1"); n != 0 {
		t.Errorf("connections leaked: %d", n)
	}
}

func TestHub_JoinLeaveReportCounts(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	tab1, tab2 := NewClient("u1", 1), NewClient("u1", 1)

	if n := hub.Join("u1", tab1); n != 1 {
		t.Errorf("first join: want 1, got %d", n)
	}
	if n := hub.Join("u1", tab2); n != 2 {
		t.Errorf("second join: want 2, got %d", n)
	}
	if n := hub.Join("u1", tab2); n != 2 {
		t.Errorf("repeated join: want 2, got %d", n)
	}
	if n := hub.Leave(tab1); n != 1 {
		t.Errorf("first leave: want 1, got %d", n)
	}
	if n := hub.Leave(tab2); n != 0 {
		t.Errorf("last leave: want 0, got %d", n)
	}
	if n := hub.Leave(tab2); n != 0 {
		t.Errorf("repeated leave: want 0, got %d", n)
	}
	if n := hub.Join("", NewClient("", 1)); n != 0 {
		t.Errorf("empty identity: want 0, got %d", n)
	}
}

func TestHub_ConcurrentJoinsSeeOneFirst(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		firsts int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if hub.Join("u1", NewClient("u1", 1)) == 1 {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if firsts != 1 {
		t.Errorf("exactly one join should be first, got %d", firsts)
	}
}

func TestHub_RejoinMovesClient(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	c := NewClient("u1", 2)
	hub.Join("u1", c)
	hub.Join("u2", c)

	if n := hub.Connections("u1"); n != 0 {
		t.Errorf("client still registered under the old identity: %d", n)
	}
	if n := hub.Connections("u2"); n != 1 {
		t.Errorf("want 1 connection under u2, got %d", n)
	}
	if err := hub.Emit("u1", "message:new", "old"); err != nil {
		t.Fatal(err)
	}
	assertEmpty(t, c)

	hub.Leave(c)
	if n := hub.Connections("u2"); n != 0 {
		t.Errorf("leave did not remove the moved client: %d", n)
	}
}
