package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"postpilot/internal/credentials"
	"postpilot/internal/dispatch"
	"postpilot/internal/platform"
	"postpilot/internal/poststore"
	"postpilot/internal/scheduler"
	"postpilot/internal/testsupport"
)

type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	tick chan time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start, tick: make(chan time.Time)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	return c.tick
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()
	c.tick <- now
}

type countingAdapter struct {
	p     platform.Platform
	mu    sync.Mutex
	calls int
}

func (a *countingAdapter) Platform() platform.Platform { return a.p }

func (a *countingAdapter) Publish(ctx context.Context, req platform.PublishRequest) (*platform.Response, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return &platform.Response{RemoteID: "remote-1"}, nil
}

func (a *countingAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func newManager(t *testing.T, store *poststore.Store, adapter platform.Adapter, clock scheduler.Clock) *scheduler.Manager {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.PollInterval = 1
	cfg.Scheduler.MaxConcurrentDispatches = 4

	registry := platform.NewRegistry()
	if err := registry.Register(adapter, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	dispatcher := dispatch.New(store, registry, credentials.Static{
		adapter.Platform().Key(): {AccessToken: "token"},
	}, nil, dispatch.DefaultPolicy(), nil)

	return scheduler.NewManager(cfg, store, dispatcher, nil, scheduler.WithClock(clock))
}

func waitForState(t *testing.T, store *poststore.Store, id int64, want poststore.State) *poststore.Post {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		post, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if post.State == want {
			return post
		}
		time.Sleep(10 * time.Millisecond)
	}
	post, _ := store.GetByID(context.Background(), id)
	t.Fatalf("post %d never reached %s (state %s)", id, want, post.State)
	return nil
}

func TestManagerDispatchesDuePosts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	clock := newFakeClock(time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC))
	adapter := &countingAdapter{p: platform.Twitter}
	manager := newManager(t, store, adapter, clock)

	due := testsupport.NewScheduledPost(t, store, platform.Twitter, "due now", clock.Now().Add(-time.Minute))
	future := testsupport.NewScheduledPost(t, store, platform.Twitter, "later", clock.Now().Add(time.Hour))

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	waitForState(t, store, due.ID, poststore.StateDelivered)

	untouched, err := store.GetByID(context.Background(), future.ID)
	if err != nil {
		t.Fatalf("get future: %v", err)
	}
	if untouched.State != poststore.StateScheduled {
		t.Fatalf("future post state = %s", untouched.State)
	}

	// Advance past the future post's schedule; next poll should deliver it.
	clock.advance(2 * time.Hour)
	waitForState(t, store, future.ID, poststore.StateDelivered)

	if adapter.callCount() != 2 {
		t.Fatalf("adapter calls = %d, want 2", adapter.callCount())
	}
}

func TestManagerReclaimsStaleDispatchingOnStart(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	clock := newFakeClock(time.Now().UTC().Add(time.Hour))
	adapter := &countingAdapter{p: platform.Twitter}
	manager := newManager(t, store, adapter, clock)

	// Simulate a post orphaned mid-dispatch by a crash.
	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "orphan", time.Now().UTC().Add(-2*time.Hour))
	if err := store.Transition(context.Background(), post.ID, poststore.StateScheduled, poststore.StateDispatching, poststore.TransitionUpdate{}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	// Reclaim returns it to scheduled, then the first poll delivers it.
	waitForState(t, store, post.ID, poststore.StateDelivered)
}

func TestManagerRejectsDoubleStart(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	clock := newFakeClock(time.Now().UTC())
	manager := newManager(t, store, &countingAdapter{p: platform.Twitter}, clock)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("second start should fail")
	}

	status := manager.Status()
	if !status.Running {
		t.Fatal("status should report running")
	}
}

func TestManagerStopIsIdempotent(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	clock := newFakeClock(time.Now().UTC())
	manager := newManager(t, store, &countingAdapter{p: platform.Twitter}, clock)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	manager.Stop()
	manager.Stop()

	if manager.Status().Running {
		t.Fatal("status should report stopped")
	}
}
