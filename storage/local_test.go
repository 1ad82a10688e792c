package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads")
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Put(context.Background(), "messages", Asset{
		Name:        "cat.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("failed to store asset: %v", err)
	}
	if !strings.HasPrefix(got.URL, "/uploads/messages/") || !strings.HasSuffix(got.URL, ".png") {
		t.Errorf("unexpected url: %s", got.URL)
	}
	if got.Size != int64(len("png-bytes")) {
		t.Errorf("unexpected size: want %d, got %d", len("png-bytes"), got.Size)
	}

	b, err := os.ReadFile(filepath.Join(dir, "messages", filepath.Base(got.URL)))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "png-bytes" {
		t.Errorf("unexpected content: %q", b)
	}
}

func TestLocalStore_FolderCannotEscape(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads")
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Put(context.Background(), "../../etc", Asset{Name: "x.txt", Body: strings.NewReader("x")})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got.URL, "/uploads/etc/") {
		t.Errorf("unexpected url: %s", got.URL)
	}
	if _, err := os.Stat(filepath.Join(dir, "etc", filepath.Base(got.URL))); err != nil {
		t.Errorf("file not written under the upload dir: %v", err)
	}
}
