package api

import (
	"time"

	"postpilot/internal/poststore"
	"postpilot/internal/timeutil"
	"postpilot/internal/views"
)

// FromPost converts a stored post to its API representation.
func FromPost(post *poststore.Post) Post {
	if post == nil {
		return Post{}
	}
	dto := Post{
		ID:            post.ID,
		Platform:      string(post.Platform),
		PlatformName:  post.Platform.DisplayName(),
		Content:       post.Content,
		MediaPath:     post.MediaPath,
		Timezone:      post.Timezone,
		State:         string(post.State),
		LastError:     post.LastError,
		AttemptCount:  post.AttemptCount,
		RemoteID:      post.RemoteID,
		RecurringName: post.RecurringName,
	}
	if !post.ScheduledAt.IsZero() {
		dto.ScheduledAt = post.ScheduledAt.UTC().Format(dateTimeFormat)
		if loc, err := time.LoadLocation(post.Timezone); err == nil {
			dto.LocalTime = timeutil.InZone(post.ScheduledAt, loc).Format("2006-01-02 15:04 MST")
		}
	}
	if post.NextAttemptAt != nil {
		dto.NextAttemptAt = post.NextAttemptAt.UTC().Format(dateTimeFormat)
	}
	if !post.CreatedAt.IsZero() {
		dto.CreatedAt = post.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !post.UpdatedAt.IsZero() {
		dto.UpdatedAt = post.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromPosts converts a slice of stored posts into API DTOs.
func FromPosts(posts []*poststore.Post) []Post {
	if len(posts) == 0 {
		return nil
	}
	out := make([]Post, 0, len(posts))
	for _, post := range posts {
		out = append(out, FromPost(post))
	}
	return out
}

// FromResult converts a delivery result record.
func FromResult(result *poststore.DeliveryResult) DeliveryResult {
	if result == nil {
		return DeliveryResult{}
	}
	dto := DeliveryResult{
		ID:           result.ID,
		PostID:       result.PostID,
		Attempt:      result.Attempt,
		Success:      result.Success,
		RemoteID:     result.RemoteID,
		ErrorMessage: result.ErrorMessage,
	}
	if !result.CreatedAt.IsZero() {
		dto.CreatedAt = result.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromCalendar converts the calendar view model.
func FromCalendar(month *views.CalendarMonth) CalendarResponse {
	if month == nil {
		return CalendarResponse{}
	}
	resp := CalendarResponse{
		Year:     month.Year,
		Month:    int(month.Month),
		Timezone: month.Timezone,
		Days:     make([]CalendarDay, 0, len(month.Days)),
	}
	for _, day := range month.Days {
		resp.Days = append(resp.Days, CalendarDay{Date: day.Date, Posts: FromPosts(day.Posts)})
	}
	return resp
}

// FromAnalytics converts delivery statistics and sentiment counts.
func FromAnalytics(stats *views.DeliveryStats, sentiments views.SentimentCounts) AnalyticsResponse {
	resp := AnalyticsResponse{
		States: make(map[string]int),
		Sentiment: SentimentCounts{
			Positive: sentiments.Positive,
			Neutral:  sentiments.Neutral,
			Negative: sentiments.Negative,
			Total:    sentiments.Total,
		},
	}
	if stats == nil {
		return resp
	}
	for state, count := range stats.States {
		resp.States[string(state)] = count
	}
	for _, p := range stats.Platforms {
		resp.Platforms = append(resp.Platforms, PlatformStats{
			Platform:  string(p.Platform),
			Delivered: p.Delivered,
			Failed:    p.Failed,
			Attempts:  p.Attempts,
		})
	}
	resp.Attempts = stats.Attempts
	resp.Successes = stats.Successes
	resp.SuccessRate = stats.SuccessRate
	return resp
}

// FromHealth converts the store health diagnostic.
func FromHealth(health poststore.DatabaseHealth) DatabaseHealth {
	return DatabaseHealth{
		DBPath:           health.DBPath,
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		TableExists:      health.TableExists,
		IntegrityCheck:   health.IntegrityCheck,
		TotalPosts:       health.TotalPosts,
		Error:            health.Error,
	}
}

// MergeStats converts typed state counts into the string-keyed API form,
// including zero entries for every known state.
func MergeStats(stats map[poststore.State]int) map[string]int {
	merged := make(map[string]int, len(poststore.AllStates()))
	for _, state := range poststore.AllStates() {
		merged[string(state)] = stats[state]
	}
	return merged
}
