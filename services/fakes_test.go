package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/anjiri1684/studlyf_network/database"
	"github.com/anjiri1684/studlyf_network/events"
	"github.com/anjiri1684/studlyf_network/storage"
	"go.uber.org/zap"
)

type emitted struct {
	Identity string
	Event    string
	Payload  any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []emitted
	fail   bool
}

func (n *recordingNotifier) Emit(identity, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, emitted{identity, event, payload})
	if n.fail {
		return errors.New("socket gone")
	}
	return nil
}

func (n *recordingNotifier) to(identity string) []emitted {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []emitted
	for _, e := range n.events {
		if e.Identity == identity {
			out = append(out, e)
		}
	}
	return out
}

type memoryAssets struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  bool
}

func (a *memoryAssets) Put(_ context.Context, folder string, asset storage.Asset) (*storage.StoredAsset, error) {
	if a.fail {
		return nil, errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(asset.Body)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.files == nil {
		a.files = map[string][]byte{}
	}
	url := "https://cdn.example.com/" + folder + "/" + asset.Name
	a.files[url] = b
	return &storage.StoredAsset{URL: url, Name: asset.Name, ContentType: asset.ContentType, Size: int64(len(b))}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type messagingFixture struct {
	svc       *MessagingService
	store     *database.MemoryMessageStore
	notifier  *recordingNotifier
	assets    *memoryAssets
	publisher *recordingPublisher
	clock     *clock
}

func newMessagingFixture() *messagingFixture {
	c := &clock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	f := &messagingFixture{
		store:     database.NewMemoryMessageStore(database.Retention{TTL: 24 * time.Hour, Now: c.Now}),
		notifier:  &recordingNotifier{},
		assets:    &memoryAssets{},
		publisher: &recordingPublisher{},
		clock:     c,
	}
	f.svc = NewMessagingService(f.store, f.assets, f.notifier, f.publisher, "messages", zap.NewNop().Sugar())
	return f
}
