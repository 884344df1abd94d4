package inbox_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"postpilot/internal/inbox"
	"postpilot/internal/poststore"
	"postpilot/internal/testsupport"
)

func writeDraft(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write draft: %v", err)
	}
	return path
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWatcherIngestsDroppedDraft(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInbox())
	cfg.Inbox.SettleMillis = 20
	store := testsupport.MustOpenStore(t, cfg)

	watcher := inbox.New(cfg, store, nil, nil)
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer watcher.Stop()

	path := writeDraft(t, cfg.Paths.InboxDir, "launch.json",
		`{"platform":"twitter","content":"launch day","scheduled_time":"2030-06-01 09:00","timezone":"UTC"}`)

	var posts []*poststore.Post
	waitFor(t, "draft ingest", func() bool {
		var err error
		posts, err = store.List(context.Background(), poststore.Query{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		return len(posts) == 1
	})
	if posts[0].State != poststore.StateScheduled || posts[0].Content != "launch day" {
		t.Fatalf("post = %+v", posts[0])
	}

	// The processed draft is removed from the drop directory.
	waitFor(t, "draft cleanup", func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	})
}

func TestWatcherRejectsMalformedDraft(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInbox())
	cfg.Inbox.SettleMillis = 20
	store := testsupport.MustOpenStore(t, cfg)

	watcher := inbox.New(cfg, store, nil, nil)
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer watcher.Stop()

	writeDraft(t, cfg.Paths.InboxDir, "broken.json",
		`{"platform":"myspace","content":"nope","scheduled_time":"2030-06-01 09:00"}`)

	rejected := filepath.Join(cfg.Paths.InboxDir, "rejected", "broken.json")
	waitFor(t, "draft rejection", func() bool {
		_, err := os.Stat(rejected)
		return err == nil
	})

	posts, err := store.List(context.Background(), poststore.Query{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("posts = %d, want 0", len(posts))
	}
}

func TestWatcherDrainsExistingDrafts(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInbox())
	cfg.Inbox.SettleMillis = 20
	store := testsupport.MustOpenStore(t, cfg)

	// Dropped before the watcher starts.
	writeDraft(t, cfg.Paths.InboxDir, "early.json",
		`{"platform":"facebook","content":"was here first","scheduled_time":"2030-06-01 09:00"}`)

	watcher := inbox.New(cfg, store, nil, nil)
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer watcher.Stop()

	waitFor(t, "existing draft ingest", func() bool {
		posts, err := store.List(context.Background(), poststore.Query{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		return len(posts) == 1
	})
}

func TestWatcherKeepsProcessedWhenConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInbox())
	cfg.Inbox.SettleMillis = 20
	cfg.Inbox.KeepProcessed = true
	store := testsupport.MustOpenStore(t, cfg)

	watcher := inbox.New(cfg, store, nil, nil)
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer watcher.Stop()

	writeDraft(t, cfg.Paths.InboxDir, "keep.json",
		`{"platform":"facebook","content":"archive me","scheduled_time":"2030-06-01 09:00"}`)

	archived := filepath.Join(cfg.Paths.InboxDir, "processed", "keep.json")
	waitFor(t, "draft archive", func() bool {
		_, err := os.Stat(archived)
		return err == nil
	})
}

func TestWatcherDoubleStartRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInbox())
	store := testsupport.MustOpenStore(t, cfg)

	watcher := inbox.New(cfg, store, nil, nil)
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(context.Background()); err == nil {
		t.Fatal("double start accepted")
	}
	if !watcher.Active() {
		t.Fatal("watcher not active")
	}
}
