//go:build integration

package database_test

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/database"
	"github.com/anjiri1684/studlyf_network/models"
	"github.com/anjiri1684/studlyf_network/testutil"
	"github.com/ory/dockertest/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	pg          *gorm.DB
	mongoClient *mongo.Client
)

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatal(err)
	}

	var cleanupPostgres testutil.Cleanup
	pg, cleanupPostgres, err = testutil.TestWithPostgres(pool)
	if err != nil {
		log.Fatal(err)
	}

	var cleanupMongo testutil.Cleanup
	mongoClient, cleanupMongo, err = testutil.TestWithMongo(pool)
	if err != nil {
		_ = cleanupPostgres()
		log.Fatal(err)
	}

	code := m.Run()

	if err = cleanupPostgres(); err != nil {
		log.Fatal(err)
	}
	if err = cleanupMongo(); err != nil {
		log.Fatal(err)
	}

	os.Exit(code)
}

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

func newClock() *clock {
	return &clock{now: time.Now().UTC().Truncate(time.Millisecond)}
}

func send(t *testing.T, s database.MessageStore, from, to, body string) *models.Message {
	t.Helper()
	m, err := s.Create(context.Background(), &models.Message{From: from, To: to, Content: models.Text{Body: body}})
	if err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	return m
}

func testMessageStore(t *testing.T, s database.MessageStore, clk *clock) {
	ctx := context.Background()

	first := send(t, s, "alice", "bob", "one")
	clk.Advance(time.Millisecond)
	send(t, s, "bob", "alice", "two")
	clk.Advance(time.Millisecond)
	send(t, s, "alice", "bob", "three")
	send(t, s, "carol", "bob", "other")

	got, err := s.FindByPair(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("failed to list pair: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected conversation length: want 3, got %d", len(got))
	}
	for i, want := range []string{"one", "two", "three"} {
		if body := models.FieldsOf(got[i].Content).Text; body != want {
			t.Errorf("unexpected message %d: want %s, got %s", i, want, body)
		}
	}

	found, err := s.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("failed to find message: %v", err)
	}
	if found.From != "alice" || !found.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("unexpected message: %+v", found)
	}
	if _, err := s.FindByID(ctx, "missing"); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Errorf("want not found, got %v", err)
	}

	counts, err := s.CountUnreadGroupedBySender(ctx, "bob")
	if err != nil {
		t.Fatalf("failed to count unread: %v", err)
	}
	if counts["alice"] != 2 || counts["carol"] != 1 || len(counts) != 2 {
		t.Errorf("unexpected unread counts: %v", counts)
	}

	n, err := s.MarkReadBulk(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("failed to mark read: %v", err)
	}
	if n != 2 {
		t.Errorf("unexpected modified count: want 2, got %d", n)
	}
	if n, _ = s.MarkReadBulk(ctx, "alice", "bob"); n != 0 {
		t.Errorf("second mark-read should modify nothing, got %d", n)
	}

	counts, _ = s.CountUnreadGroupedBySender(ctx, "bob")
	if _, ok := counts["alice"]; ok {
		t.Errorf("alice should have no unread entry, got %v", counts)
	}

	clk.Advance(24*time.Hour + time.Second)
	send(t, s, "alice", "bob", "fresh")

	got, _ = s.FindByPair(ctx, "alice", "bob")
	if len(got) != 1 {
		t.Errorf("expired messages should be hidden, got %d", len(got))
	}
	removed, err := s.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("failed to delete expired: %v", err)
	}
	if removed != 4 {
		t.Errorf("unexpected reaped count: want 4, got %d", removed)
	}
}

func TestPostgresMessageStore(t *testing.T) {
	clk := newClock()
	store := database.NewPostgresMessageStore(pg, database.Retention{TTL: 24 * time.Hour, Now: clk.Now})
	testMessageStore(t, store, clk)
}

func TestMongoMessageStore(t *testing.T) {
	clk := newClock()
	store, err := database.NewMongoMessageStore(context.Background(), mongoClient.Database("studlyf_test"),
		database.Retention{TTL: 24 * time.Hour, Now: clk.Now})
	if err != nil {
		t.Fatalf("failed to create mongo store: %v", err)
	}
	testMessageStore(t, store, clk)
}

func TestGormConnectionStore(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store := database.NewGormConnectionStore(pg, database.Retention{TTL: 24 * time.Hour, Now: clk.Now})

	if _, err := store.CreateRequest(ctx, "dan", "erin"); err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if _, err := store.CreateRequest(ctx, "dan", "erin"); !apperrors.Is(err, apperrors.KindConflict) {
		t.Errorf("want conflict, got %v", err)
	}

	conn, err := store.Accept(ctx, "dan", "erin")
	if err != nil {
		t.Fatalf("failed to accept: %v", err)
	}
	if conn.FromUID != "dan" || conn.ToUID != "erin" {
		t.Errorf("unexpected connection: %+v", conn)
	}
	if ok, _ := store.Connected(ctx, "erin", "dan"); !ok {
		t.Error("connection should be symmetric")
	}
	if err := store.Reject(ctx, "dan", "erin"); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Errorf("want not found after accept, got %v", err)
	}

	if _, err := store.CreateRequest(ctx, "hank", "ivy"); err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if _, err := store.CreateRequest(ctx, "ivy", "hank"); err != nil {
		t.Fatalf("failed to create crossed request: %v", err)
	}
	if _, err := store.Accept(ctx, "hank", "ivy"); err != nil {
		t.Fatalf("failed to accept: %v", err)
	}
	if _, err := store.Accept(ctx, "ivy", "hank"); !apperrors.Is(err, apperrors.KindConflict) {
		t.Errorf("want conflict for crossed request, got %v", err)
	}
	if conns, _ := store.ListConnections(ctx, "ivy"); len(conns) != 1 {
		t.Errorf("unexpected connections: want 1, got %d", len(conns))
	}

	if _, err := store.CreateRequest(ctx, "frank", "erin"); err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	clk.Advance(25 * time.Hour)
	if reqs, _ := store.ListRequests(ctx, "erin"); len(reqs) != 0 {
		t.Errorf("expired requests should be hidden, got %v", reqs)
	}
	if _, err := store.CreateRequest(ctx, "frank", "erin"); err != nil {
		t.Errorf("re-requesting after expiry should succeed, got %v", err)
	}
}

func TestGormProfileStore(t *testing.T) {
	ctx := context.Background()
	store := database.NewGormProfileStore(pg)

	p, err := store.CreateIfAbsent(ctx, &models.Profile{UID: "gina", Name: "Gina"})
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	if p.Name != "Gina" {
		t.Errorf("unexpected name: want Gina, got %s", p.Name)
	}
	if p, _ = store.CreateIfAbsent(ctx, &models.Profile{UID: "gina", Name: "Other"}); p.Name != "Gina" {
		t.Errorf("existing profile must not be overwritten, got %s", p.Name)
	}

	p, err = store.Upsert(ctx, "gina", func(p *models.Profile) { p.Skills = []string{"go", "sql"} })
	if err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if len(p.Skills) != 2 {
		t.Errorf("unexpected skills: %v", p.Skills)
	}

	if err := store.SetOnline(ctx, "gina", true); err != nil {
		t.Fatalf("failed to set online: %v", err)
	}
	p, _ = store.FindByUID(ctx, "gina")
	if !p.IsOnline || p.Skills[1] != "sql" {
		t.Errorf("unexpected stored profile: %+v", p)
	}
}
