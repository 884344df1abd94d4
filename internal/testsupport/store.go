package testsupport

import (
	"context"
	"testing"
	"time"

	"postpilot/internal/config"
	"postpilot/internal/platform"
	"postpilot/internal/poststore"
)

// MustOpenStore opens a poststore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *poststore.Store {
	t.Helper()

	store, err := poststore.Open(cfg)
	if err != nil {
		t.Fatalf("poststore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewScheduledPost creates a scheduled post for tests using the provided store.
func NewScheduledPost(t testing.TB, store *poststore.Store, p platform.Platform, content string, at time.Time) *poststore.Post {
	t.Helper()

	post, err := store.Create(context.Background(), &poststore.Post{
		Platform:    p,
		Content:     content,
		ScheduledAt: at.UTC(),
		Timezone:    "UTC",
		State:       poststore.StateScheduled,
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return post
}

// NewDraftPost creates a draft post for tests using the provided store.
func NewDraftPost(t testing.TB, store *poststore.Store, p platform.Platform, content string, at time.Time) *poststore.Post {
	t.Helper()

	post, err := store.Create(context.Background(), &poststore.Post{
		Platform:    p,
		Content:     content,
		ScheduledAt: at.UTC(),
		Timezone:    "UTC",
		State:       poststore.StateDraft,
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return post
}
