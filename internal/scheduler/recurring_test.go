package scheduler

import (
	"context"
	"testing"
	"time"

	"postpilot/internal/config"
	"postpilot/internal/poststore"
	"postpilot/internal/testsupport"
)

func TestNewRecurringRejectsUnknownPlatform(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Recurring = []config.Recurring{
		{Name: "weekly", Schedule: "0 9 * * 1", Platform: "myspace", Content: "hi"},
	}
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := NewRecurring(cfg, store, nil, nil); err == nil {
		t.Fatal("expected error for unknown platform")
	}
}

func TestRecurringEnqueueCreatesScheduledPost(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Recurring = []config.Recurring{
		{Name: "morning-tip", Schedule: "0 9 * * *", Platform: "twitter", Content: "daily tip", Timezone: "America/Chicago"},
	}
	store := testsupport.MustOpenStore(t, cfg)

	recurring, err := NewRecurring(cfg, store, nil, nil)
	if err != nil {
		t.Fatalf("new recurring: %v", err)
	}
	if len(recurring.entries) != 1 {
		t.Fatalf("entries = %d", len(recurring.entries))
	}
	if recurring.entries[0].schedule != "CRON_TZ=America/Chicago 0 9 * * *" {
		t.Fatalf("schedule = %q", recurring.entries[0].schedule)
	}

	at := time.Date(2026, time.September, 2, 14, 0, 0, 0, time.UTC)
	if err := recurring.enqueue(context.Background(), recurring.entries[0], at); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	posts, err := store.List(context.Background(), poststore.Query{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len(posts) = %d", len(posts))
	}
	post := posts[0]
	if post.State != poststore.StateScheduled {
		t.Fatalf("state = %s", post.State)
	}
	if post.RecurringName != "morning-tip" || post.Content != "daily tip" {
		t.Fatalf("post = %+v", post)
	}
	if !post.ScheduledAt.Equal(at) {
		t.Fatalf("scheduled at = %v", post.ScheduledAt)
	}
	if post.Timezone != "America/Chicago" {
		t.Fatalf("timezone = %q", post.Timezone)
	}
}

func TestRecurringStartWithNoTemplates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	recurring, err := NewRecurring(cfg, store, nil, nil)
	if err != nil {
		t.Fatalf("new recurring: %v", err)
	}
	if err := recurring.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	recurring.Stop()
}
