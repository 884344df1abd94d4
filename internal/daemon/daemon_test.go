package daemon_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"postpilot/internal/credentials"
	"postpilot/internal/daemon"
	"postpilot/internal/dispatch"
	"postpilot/internal/platform"
	"postpilot/internal/poststore"
	"postpilot/internal/scheduler"
	"postpilot/internal/testsupport"
)

func newDaemon(t *testing.T) (*daemon.Daemon, *poststore.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dispatcher := dispatch.New(store, platform.NewRegistry(), credentials.Static{}, nil, dispatch.DefaultPolicy(), nil)
	manager := scheduler.NewManager(cfg, store, dispatcher, nil)
	d, err := daemon.New(cfg, store, nil, manager, nil, nil, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("double start accepted")
	}

	status := d.Status(ctx)
	if !status.Running || !status.Scheduler.Running {
		t.Fatalf("status = %+v", status)
	}
	if status.PostStats == nil {
		t.Fatal("post stats missing")
	}

	d.Stop()
	d.Stop() // idempotent
	if d.Status(ctx).Running {
		t.Fatal("still running after stop")
	}
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	build := func() *daemon.Daemon {
		dispatcher := dispatch.New(store, platform.NewRegistry(), credentials.Static{}, nil, dispatch.DefaultPolicy(), nil)
		manager := scheduler.NewManager(cfg, store, dispatcher, nil)
		d, err := daemon.New(cfg, store, nil, manager, nil, nil, nil)
		if err != nil {
			t.Fatalf("new daemon: %v", err)
		}
		return d
	}

	first := build()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start first: %v", err)
	}
	defer first.Stop()

	second := build()
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance acquired the lock")
	}
}

func TestDaemonSchedulerDeliversWhileRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPollInterval(1))
	store := testsupport.MustOpenStore(t, cfg)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"remote-1"}`))
	}))
	t.Cleanup(server.Close)

	registry := platform.NewRegistry()
	adapter := platform.NewFacebookAdapter(server.URL, server.Client())
	if err := registry.Register(adapter, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	creds := credentials.Static{platform.Facebook.Key(): credentials.Token{AccessToken: "token"}}
	dispatcher := dispatch.New(store, registry, creds, nil, dispatch.DefaultPolicy(), nil)
	manager := scheduler.NewManager(cfg, store, dispatcher, nil)

	d, err := daemon.New(cfg, store, nil, manager, nil, nil, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	post := testsupport.NewScheduledPost(t, store, platform.Facebook, "go live", time.Now().UTC().Add(-time.Minute))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, err := store.GetByID(context.Background(), post.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.State == poststore.StateDelivered {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("post never delivered")
}

func TestDaemonAnalyticsUsesConfiguredClassifier(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"polarity":0.8}`))
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Sentiment.Endpoint = server.URL
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	dispatcher := dispatch.New(store, platform.NewRegistry(), credentials.Static{}, nil, dispatch.DefaultPolicy(), nil)
	manager := scheduler.NewManager(cfg, store, dispatcher, nil)
	d, err := daemon.New(cfg, store, nil, manager, nil, nil, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	at := time.Now().UTC().Add(-time.Hour)
	post := testsupport.NewScheduledPost(t, store, platform.Facebook, "launch recap", at)
	if err := store.Transition(ctx, post.ID, poststore.StateScheduled, poststore.StateDispatching, poststore.TransitionUpdate{}); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := store.Transition(ctx, post.ID, poststore.StateDispatching, poststore.StateDelivered, poststore.TransitionUpdate{}); err != nil {
		t.Fatalf("transition: %v", err)
	}
	err = store.AppendResult(ctx, &poststore.DeliveryResult{
		PostID:           post.ID,
		Attempt:          1,
		Success:          true,
		PlatformResponse: "great announcement",
	})
	if err != nil {
		t.Fatalf("append result: %v", err)
	}

	resp, err := d.Views().Analytics(ctx, 30, nil)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if hits.Load() == 0 {
		t.Fatal("configured sentiment endpoint never called")
	}
	if resp.Sentiment.Positive != 1 || resp.Sentiment.Total != 1 {
		t.Fatalf("sentiment = %+v", resp.Sentiment)
	}
}
