package views

import (
	"context"
	"fmt"
	"time"

	"postpilot/internal/platform"
	"postpilot/internal/poststore"
	"postpilot/internal/sentiment"
)

// SentimentCounts tallies classified texts per label.
type SentimentCounts struct {
	Positive int
	Neutral  int
	Negative int
	Total    int
}

// Add increments the bucket for the label.
func (c *SentimentCounts) Add(label sentiment.Label) {
	switch label {
	case sentiment.Positive:
		c.Positive++
	case sentiment.Negative:
		c.Negative++
	default:
		c.Neutral++
	}
	c.Total++
}

// SentimentBreakdown classifies the supplied comments, falling back to the
// platform responses recorded for delivery attempts in [from, to) when
// comments is empty. The post body itself is never classified. An empty
// store yields zero counts, not an error. Texts the classifier rejects are
// skipped.
func SentimentBreakdown(ctx context.Context, store *poststore.Store, classifier sentiment.Classifier, comments []string, from, to time.Time) (SentimentCounts, error) {
	var counts SentimentCounts
	texts := comments
	if len(texts) == 0 {
		results, err := store.ResultsInRange(ctx, from, to)
		if err != nil {
			return counts, fmt.Errorf("sentiment breakdown: list results: %w", err)
		}
		for _, result := range results {
			if result.PlatformResponse == "" {
				continue
			}
			texts = append(texts, result.PlatformResponse)
		}
	}
	for _, text := range texts {
		label, err := classifier.Classify(ctx, text)
		if err != nil {
			continue
		}
		counts.Add(label)
	}
	return counts, nil
}

// PlatformStats aggregates delivery outcomes for one platform.
type PlatformStats struct {
	Platform  platform.Platform
	Delivered int
	Failed    int
	Attempts  int
}

// DeliveryStats summarizes post states and per-platform delivery outcomes.
type DeliveryStats struct {
	States      map[poststore.State]int
	Platforms   []PlatformStats
	Attempts    int
	Successes   int
	SuccessRate float64
}

// Analytics computes delivery statistics for posts scheduled in [from, to).
func Analytics(ctx context.Context, store *poststore.Store, from, to time.Time) (*DeliveryStats, error) {
	states, err := store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: stats: %w", err)
	}
	posts, err := store.List(ctx, poststore.Query{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("analytics: list posts: %w", err)
	}
	results, err := store.ResultsInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics: list results: %w", err)
	}

	byPlatform := make(map[platform.Platform]*PlatformStats)
	order := make([]platform.Platform, 0, 4)
	postPlatform := make(map[int64]platform.Platform, len(posts))
	for _, post := range posts {
		postPlatform[post.ID] = post.Platform
		stats, ok := byPlatform[post.Platform]
		if !ok {
			stats = &PlatformStats{Platform: post.Platform}
			byPlatform[post.Platform] = stats
			order = append(order, post.Platform)
		}
		switch post.State {
		case poststore.StateDelivered:
			stats.Delivered++
		case poststore.StateFailed:
			stats.Failed++
		}
	}

	out := &DeliveryStats{States: states}
	for _, result := range results {
		out.Attempts++
		if result.Success {
			out.Successes++
		}
		if name, ok := postPlatform[result.PostID]; ok {
			byPlatform[name].Attempts++
		}
	}
	if out.Attempts > 0 {
		out.SuccessRate = float64(out.Successes) / float64(out.Attempts)
	}
	for _, name := range order {
		out.Platforms = append(out.Platforms, *byPlatform[name])
	}
	return out, nil
}
