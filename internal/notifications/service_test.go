package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postpilot/internal/config"
	"postpilot/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPostDelivered(context.Background(), "X (Twitter)", "hello"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		_ = r.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.Failed = true

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPostFailed(context.Background(), "X (Twitter)", "launch day!", "rate limited"); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}

	if captured.title != "Postpilot - Failed" {
		t.Fatalf("title = %q", captured.title)
	}
	if captured.tags != "postpilot,post,failed" {
		t.Fatalf("tags = %q", captured.tags)
	}
	if captured.priority != "high" {
		t.Fatalf("priority = %q", captured.priority)
	}
	if captured.body != "❌ Failed on X (Twitter): launch day!\nReason: rate limited" {
		t.Fatalf("body = %q", captured.body)
	}
}

func TestNtfyServiceHonorsSuppressionFlags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Scheduled = false
	cfg.Notifications.Retries = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPostScheduled(context.Background(), "Facebook", "ignored", time.Now()); err != nil {
		t.Fatalf("suppressed scheduled event returned error: %v", err)
	}
	if err := svc.NotifyRetryScheduled(context.Background(), "Facebook", 2, time.Now()); err != nil {
		t.Fatalf("suppressed retry event returned error: %v", err)
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from 404 response")
	}
}
