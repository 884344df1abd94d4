package views_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"postpilot/internal/platform"
	"postpilot/internal/poststore"
	"postpilot/internal/sentiment"
	"postpilot/internal/testsupport"
	"postpilot/internal/views"
)

func TestCalendarGroupsPostsByDisplayDay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 2024-03-10 02:30 UTC is still 2024-03-09 in New York.
	testsupport.NewScheduledPost(t, store, platform.Facebook, "late night",
		time.Date(2024, time.March, 10, 2, 30, 0, 0, time.UTC))
	testsupport.NewScheduledPost(t, store, platform.Twitter, "morning",
		time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC))
	testsupport.NewScheduledPost(t, store, platform.Twitter, "same day",
		time.Date(2024, time.March, 10, 20, 0, 0, 0, time.UTC))
	// Outside March entirely.
	testsupport.NewScheduledPost(t, store, platform.LinkedIn, "april",
		time.Date(2024, time.April, 2, 12, 0, 0, 0, time.UTC))

	month, err := views.Calendar(ctx, store, 2024, time.March, loc)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(month.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(month.Days))
	}
	if month.Days[0].Date != "2024-03-09" || len(month.Days[0].Posts) != 1 {
		t.Fatalf("day[0] = %s with %d posts", month.Days[0].Date, len(month.Days[0].Posts))
	}
	if month.Days[1].Date != "2024-03-10" || len(month.Days[1].Posts) != 2 {
		t.Fatalf("day[1] = %s with %d posts", month.Days[1].Date, len(month.Days[1].Posts))
	}
}

func TestCalendarEmptyStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	month, err := views.Calendar(context.Background(), store, 2024, time.June, time.UTC)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(month.Days) != 0 {
		t.Fatalf("days = %d, want 0", len(month.Days))
	}
}

func TestSentimentBreakdownEmptyStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	counts, err := views.SentimentBreakdown(context.Background(), store,
		sentiment.NewLexicon(), nil, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if counts.Total != 0 || counts.Positive != 0 || counts.Neutral != 0 || counts.Negative != 0 {
		t.Fatalf("counts = %+v, want zeroes", counts)
	}
}

func TestSentimentBreakdownClassifiesComments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	comments := []string{
		"love this, amazing work",
		"terrible awful experience",
		"the meeting is at noon",
	}
	counts, err := views.SentimentBreakdown(context.Background(), store,
		sentiment.NewLexicon(), comments, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if counts.Positive != 1 || counts.Negative != 1 || counts.Neutral != 1 || counts.Total != 3 {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestSentimentBreakdownReadsPlatformResponses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	at := time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC)
	post := testsupport.NewScheduledPost(t, store, platform.Facebook, "terrible awful bad day", at)
	mustTransition(t, store, post.ID, poststore.StateScheduled, poststore.StateDispatching)
	mustTransition(t, store, post.ID, poststore.StateDispatching, poststore.StateDelivered)
	err := store.AppendResult(ctx, &poststore.DeliveryResult{
		PostID:           post.ID,
		Attempt:          1,
		Success:          true,
		CreatedAt:        at.Add(time.Minute),
		PlatformResponse: "love this, amazing work",
	})
	if err != nil {
		t.Fatalf("append result: %v", err)
	}

	counts, err := views.SentimentBreakdown(ctx, store, sentiment.NewLexicon(), nil,
		at.Add(-time.Hour), at.Add(time.Hour))
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	// The breakdown reflects the audience response, never the post body.
	if counts.Positive != 1 || counts.Negative != 0 || counts.Total != 1 {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestAnalyticsAggregatesOutcomes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	at := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	delivered := testsupport.NewScheduledPost(t, store, platform.Facebook, "shipped", at)
	failed := testsupport.NewScheduledPost(t, store, platform.Twitter, "bounced", at.Add(time.Hour))

	mustTransition(t, store, delivered.ID, poststore.StateScheduled, poststore.StateDispatching)
	mustTransition(t, store, delivered.ID, poststore.StateDispatching, poststore.StateDelivered)
	mustTransition(t, store, failed.ID, poststore.StateScheduled, poststore.StateDispatching)
	mustTransition(t, store, failed.ID, poststore.StateDispatching, poststore.StateFailed)

	appendResult(t, store, delivered.ID, 1, true, at.Add(time.Minute))
	appendResult(t, store, failed.ID, 1, false, at.Add(2*time.Minute))
	appendResult(t, store, failed.ID, 2, false, at.Add(3*time.Minute))

	stats, err := views.Analytics(ctx, store, at.Add(-time.Hour), at.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if stats.States[poststore.StateDelivered] != 1 || stats.States[poststore.StateFailed] != 1 {
		t.Fatalf("states = %v", stats.States)
	}
	if stats.Attempts != 3 || stats.Successes != 1 {
		t.Fatalf("attempts = %d, successes = %d", stats.Attempts, stats.Successes)
	}
	if got := stats.SuccessRate; got < 0.33 || got > 0.34 {
		t.Fatalf("success rate = %f", got)
	}
	if len(stats.Platforms) != 2 {
		t.Fatalf("platforms = %+v", stats.Platforms)
	}
	for _, p := range stats.Platforms {
		switch p.Platform {
		case platform.Facebook:
			if p.Delivered != 1 || p.Failed != 0 || p.Attempts != 1 {
				t.Fatalf("facebook stats = %+v", p)
			}
		case platform.Twitter:
			if p.Delivered != 0 || p.Failed != 1 || p.Attempts != 2 {
				t.Fatalf("twitter stats = %+v", p)
			}
		default:
			t.Fatalf("unexpected platform %q", p.Platform)
		}
	}
}

func TestExportCSVWritesHeaderAndRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	at := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)
	testsupport.NewScheduledPost(t, store, platform.Facebook, "first, with comma", at)
	testsupport.NewScheduledPost(t, store, platform.Twitter, "second", at.Add(time.Hour))

	var buf bytes.Buffer
	count, err := views.ExportCSV(ctx, store, &buf, poststore.Query{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0][0] != "id" || records[0][1] != "platform" {
		t.Fatalf("header = %v", records[0])
	}
	if records[1][2] != "first, with comma" {
		t.Fatalf("content = %q", records[1][2])
	}
	if records[2][1] != string(platform.Twitter) {
		t.Fatalf("platform = %q", records[2][1])
	}
}

func mustTransition(t *testing.T, store *poststore.Store, id int64, from, to poststore.State) {
	t.Helper()
	if err := store.Transition(context.Background(), id, from, to, poststore.TransitionUpdate{}); err != nil {
		t.Fatalf("transition %s -> %s: %v", from, to, err)
	}
}

func appendResult(t *testing.T, store *poststore.Store, postID int64, attempt int, success bool, at time.Time) {
	t.Helper()
	err := store.AppendResult(context.Background(), &poststore.DeliveryResult{
		PostID:    postID,
		Attempt:   attempt,
		Success:   success,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("append result: %v", err)
	}
}
