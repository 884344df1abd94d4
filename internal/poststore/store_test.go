package poststore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"postpilot/internal/platform"
	"postpilot/internal/poststore"
	"postpilot/internal/testsupport"
)

func TestCreateAndGet(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	at := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	post, err := store.Create(ctx, &poststore.Post{
		Platform:    platform.Twitter,
		Content:     "launch announcement",
		ScheduledAt: at,
		Timezone:    "UTC",
		State:       poststore.StateScheduled,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if post.State != poststore.StateScheduled {
		t.Fatalf("state = %s", post.State)
	}
	if !post.ScheduledAt.Equal(at) {
		t.Fatalf("scheduled at = %v, want %v", post.ScheduledAt, at)
	}
	if post.CreatedAt.IsZero() || post.UpdatedAt.IsZero() {
		t.Fatal("timestamps not populated")
	}

	fetched, err := store.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Content != "launch announcement" || fetched.Platform != platform.Twitter {
		t.Fatalf("fetched = %+v", fetched)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.GetByID(context.Background(), 9999); !errors.Is(err, poststore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	post, err := store.Create(context.Background(), &poststore.Post{
		Platform:    platform.Facebook,
		Content:     "draft idea",
		ScheduledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.State != poststore.StateDraft {
		t.Fatalf("state = %s, want draft", post.State)
	}
}

func TestTransitionRejectsIllegalEdges(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "x", time.Now().UTC())

	cases := []struct{ from, to poststore.State }{
		{poststore.StateScheduled, poststore.StateDelivered},
		{poststore.StateDraft, poststore.StateDispatching},
		{poststore.StateDelivered, poststore.StateScheduled},
		{poststore.StateCanceled, poststore.StateScheduled},
		{poststore.StateFailed, poststore.StateDelivered},
	}
	for _, tc := range cases {
		err := store.Transition(ctx, post.ID, tc.from, tc.to, poststore.TransitionUpdate{})
		if !errors.Is(err, poststore.ErrConflict) {
			t.Fatalf("%s -> %s: err = %v, want ErrConflict", tc.from, tc.to, err)
		}
	}
}

func TestTransitionCASDetectsLostRace(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "x", time.Now().UTC())

	if err := store.Transition(ctx, post.ID, poststore.StateScheduled, poststore.StateDispatching, poststore.TransitionUpdate{}); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	// The post already moved; a second claim from scheduled must conflict.
	err := store.Transition(ctx, post.ID, poststore.StateScheduled, poststore.StateDispatching, poststore.TransitionUpdate{})
	if !errors.Is(err, poststore.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestTransitionUpdatesFields(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "x", time.Now().UTC())

	if err := store.Transition(ctx, post.ID, poststore.StateScheduled, poststore.StateDispatching, poststore.TransitionUpdate{}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	attempts := 1
	lastErr := "rate limited"
	next := time.Now().UTC().Add(time.Minute)
	err := store.Transition(ctx, post.ID, poststore.StateDispatching, poststore.StateScheduled, poststore.TransitionUpdate{
		AttemptCount:  &attempts,
		LastError:     &lastErr,
		NextAttemptAt: &next,
	})
	if err != nil {
		t.Fatalf("retry transition: %v", err)
	}

	fetched, err := store.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.AttemptCount != 1 || fetched.LastError != "rate limited" {
		t.Fatalf("fetched = %+v", fetched)
	}
	if fetched.NextAttemptAt == nil || !fetched.NextAttemptAt.Equal(next.Truncate(time.Nanosecond)) {
		t.Fatalf("next attempt = %v, want %v", fetched.NextAttemptAt, next)
	}
}

func TestClaimDueSkipsFuturePosts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()

	due := testsupport.NewScheduledPost(t, store, platform.Twitter, "due", now.Add(-time.Minute))
	testsupport.NewScheduledPost(t, store, platform.Twitter, "future", now.Add(time.Hour))

	claimed, err := store.ClaimDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("claim due: %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID != due.ID {
		t.Fatalf("claimed = %+v", claimed)
	}
	if claimed[0].State != poststore.StateDispatching {
		t.Fatalf("claimed state = %s", claimed[0].State)
	}
}

func TestClaimDueHonorsBackoff(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()

	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "backing off", now.Add(-time.Hour))
	next := now.Add(10 * time.Minute)
	post.NextAttemptAt = &next
	if err := store.Update(ctx, post); err != nil {
		t.Fatalf("update: %v", err)
	}

	claimed, err := store.ClaimDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("claim due: %v", err)
	}
	if len(claimed) != 0 {
		t.Fatalf("claimed %d posts during backoff window", len(claimed))
	}

	claimed, err = store.ClaimDue(ctx, next.Add(time.Second), 10)
	if err != nil {
		t.Fatalf("claim after backoff: %v", err)
	}
	if len(claimed) != 1 {
		t.Fatalf("claimed = %+v", claimed)
	}
}

func TestClaimDueIsAtMostOnce(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()
	testsupport.NewScheduledPost(t, store, platform.Twitter, "once", now.Add(-time.Minute))

	first, err := store.ClaimDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	second, err := store.ClaimDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if len(first) != 1 || len(second) != 0 {
		t.Fatalf("first = %d, second = %d; want 1 and 0", len(first), len(second))
	}
}

func TestCancelSemantics(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()

	draft := testsupport.NewDraftPost(t, store, platform.Twitter, "draft", now)
	if err := store.Cancel(ctx, draft.ID); err != nil {
		t.Fatalf("cancel draft: %v", err)
	}

	scheduled := testsupport.NewScheduledPost(t, store, platform.Twitter, "scheduled", now)
	if err := store.Cancel(ctx, scheduled.ID); err != nil {
		t.Fatalf("cancel scheduled: %v", err)
	}

	dispatching := testsupport.NewScheduledPost(t, store, platform.Twitter, "in flight", now)
	if err := store.Transition(ctx, dispatching.ID, poststore.StateScheduled, poststore.StateDispatching, poststore.TransitionUpdate{}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := store.Cancel(ctx, dispatching.ID); !errors.Is(err, poststore.ErrConflict) {
		t.Fatalf("cancel mid-dispatch: err = %v, want ErrConflict", err)
	}

	canceled, err := store.GetByID(ctx, draft.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if canceled.State != poststore.StateCanceled {
		t.Fatalf("state = %s", canceled.State)
	}
}

func TestRetryFailedResetsAttempts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "x", time.Now().UTC())

	if err := store.Transition(ctx, post.ID, poststore.StateScheduled, poststore.StateDispatching, poststore.TransitionUpdate{}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	attempts := 3
	lastErr := "content rejected"
	if err := store.Transition(ctx, post.ID, poststore.StateDispatching, poststore.StateFailed, poststore.TransitionUpdate{
		AttemptCount: &attempts,
		LastError:    &lastErr,
	}); err != nil {
		t.Fatalf("fail: %v", err)
	}

	if err := store.RetryFailed(ctx, post.ID); err != nil {
		t.Fatalf("retry: %v", err)
	}

	fetched, err := store.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.State != poststore.StateScheduled {
		t.Fatalf("state = %s", fetched.State)
	}
	if fetched.AttemptCount != 0 || fetched.LastError != "" || fetched.NextAttemptAt != nil {
		t.Fatalf("retry did not reset: %+v", fetched)
	}
}

func TestRetryFailedRequiresFailedState(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "x", time.Now().UTC())
	if err := store.RetryFailed(context.Background(), post.ID); !errors.Is(err, poststore.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestReclaimStaleDispatching(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "orphaned", time.Now().UTC().Add(-time.Hour))

	if err := store.Transition(ctx, post.ID, poststore.StateScheduled, poststore.StateDispatching, poststore.TransitionUpdate{}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Nothing is stale yet.
	count, err := store.ReclaimStaleDispatching(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if count != 0 {
		t.Fatalf("reclaimed %d posts with fresh updated_at", count)
	}

	count, err = store.ReclaimStaleDispatching(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if count != 1 {
		t.Fatalf("reclaimed = %d, want 1", count)
	}

	fetched, err := store.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.State != poststore.StateScheduled {
		t.Fatalf("state = %s, want scheduled", fetched.State)
	}
}

func TestListFilters(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	base := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	testsupport.NewScheduledPost(t, store, platform.Twitter, "sept tweet", base.Add(2*time.Hour))
	testsupport.NewScheduledPost(t, store, platform.Facebook, "sept fb", base.Add(3*time.Hour))
	testsupport.NewScheduledPost(t, store, platform.Twitter, "oct tweet", base.AddDate(0, 1, 5))

	posts, err := store.List(ctx, poststore.Query{
		Platform: platform.Twitter,
		From:     base,
		To:       base.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 || posts[0].Content != "sept tweet" {
		t.Fatalf("posts = %+v", posts)
	}

	all, err := store.List(ctx, poststore.Query{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d", len(all))
	}
}

func TestStatsAndHealth(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()

	testsupport.NewScheduledPost(t, store, platform.Twitter, "a", now)
	testsupport.NewScheduledPost(t, store, platform.Twitter, "b", now)
	testsupport.NewDraftPost(t, store, platform.Facebook, "c", now)

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[poststore.StateScheduled] != 2 || stats[poststore.StateDraft] != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Total != 3 || health.Scheduled != 2 || health.Draft != 1 {
		t.Fatalf("health = %+v", health)
	}
}

func TestDeliveryResultsRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "x", time.Now().UTC())

	if err := store.AppendResult(ctx, &poststore.DeliveryResult{
		PostID:       post.ID,
		Attempt:      1,
		Success:      false,
		ErrorMessage: "rate limited",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendResult(ctx, &poststore.DeliveryResult{
		PostID:           post.ID,
		Attempt:          2,
		Success:          true,
		RemoteID:         "tw-1790",
		PlatformResponse: `{"data":{"id":"tw-1790"}}`,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	results, err := store.ResultsForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d", len(results))
	}
	if results[0].Attempt != 1 || results[0].Success {
		t.Fatalf("first result = %+v", results[0])
	}
	if results[1].RemoteID != "tw-1790" || !results[1].Success {
		t.Fatalf("second result = %+v", results[1])
	}
	if results[0].ID == "" || results[0].CreatedAt.IsZero() {
		t.Fatal("result id/timestamp not assigned")
	}
}

func TestRemoveCascadesResults(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	post := testsupport.NewScheduledPost(t, store, platform.Twitter, "x", time.Now().UTC())

	if err := store.AppendResult(ctx, &poststore.DeliveryResult{PostID: post.ID, Attempt: 1, Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	removed, err := store.Remove(ctx, post.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Fatal("post not removed")
	}
	results, err := store.ResultsForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results survived cascade: %+v", results)
	}
}

func TestParseState(t *testing.T) {
	if state, ok := poststore.ParseState(" Scheduled "); !ok || state != poststore.StateScheduled {
		t.Fatalf("ParseState = %v %v", state, ok)
	}
	if _, ok := poststore.ParseState("bogus"); ok {
		t.Fatal("bogus state accepted")
	}
}
