package ipc

import "postpilot/internal/api"

// Post mirrors the API post DTO for IPC callers.
type Post = api.Post

// DeliveryResult mirrors the API delivery result DTO.
type DeliveryResult = api.DeliveryResult

// StartRequest triggers daemon startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon services.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse carries combined daemon runtime information.
type StatusResponse struct {
	Running     bool           `json:"running"`
	PID         int            `json:"pid"`
	DBPath      string         `json:"db_path"`
	LockPath    string         `json:"lock_path"`
	Scheduler   bool           `json:"scheduler_running"`
	LastPoll    string         `json:"last_poll,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
	PostStats   map[string]int `json:"post_stats"`
	InboxActive bool           `json:"inbox_active"`
	Recurring   int            `json:"recurring_templates"`
}

// PostScheduleRequest creates a post.
type PostScheduleRequest struct {
	Post api.CreatePostRequest `json:"post"`
}

// PostScheduleResponse returns the created post.
type PostScheduleResponse struct {
	Post Post `json:"post"`
}

// PostListRequest filters the post listing.
type PostListRequest struct {
	States   []string `json:"states,omitempty"`
	Platform string   `json:"platform,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// PostListResponse contains matching posts.
type PostListResponse struct {
	Posts []Post `json:"posts"`
}

// PostDescribeRequest fetches a single post by id.
type PostDescribeRequest struct {
	ID int64 `json:"id"`
}

// PostDescribeResponse contains the post and its delivery history.
type PostDescribeResponse struct {
	Post    Post             `json:"post"`
	Results []DeliveryResult `json:"results"`
}

// PostPromoteRequest moves a draft into the scheduler.
type PostPromoteRequest struct {
	ID int64 `json:"id"`
}

// PostPromoteResponse returns the scheduled post.
type PostPromoteResponse struct {
	Post Post `json:"post"`
}

// PostCancelRequest cancels a draft or scheduled post.
type PostCancelRequest struct {
	ID int64 `json:"id"`
}

// PostCancelResponse returns the canceled post.
type PostCancelResponse struct {
	Post Post `json:"post"`
}

// PostRetryRequest reschedules a failed post.
type PostRetryRequest struct {
	ID int64 `json:"id"`
}

// PostRetryResponse returns the rescheduled post.
type PostRetryResponse struct {
	Post Post `json:"post"`
}

// PostRemoveRequest deletes a post and its history.
type PostRemoveRequest struct {
	ID int64 `json:"id"`
}

// PostRemoveResponse reports whether a row was deleted.
type PostRemoveResponse struct {
	Removed bool `json:"removed"`
}

// ClearDeliveredRequest removes delivered posts.
type ClearDeliveredRequest struct{}

// ClearDeliveredResponse reports number of removed posts.
type ClearDeliveredResponse struct {
	Removed int64 `json:"removed"`
}

// CalendarRequest fetches the month grid. Zero values default to the
// current month in the display timezone.
type CalendarRequest struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

// CalendarResponse mirrors the API calendar DTO.
type CalendarResponse = api.CalendarResponse

// AnalyticsRequest aggregates the trailing number of days (default 30).
// When Comments is set the sentiment breakdown classifies those texts
// instead of the recorded platform responses.
type AnalyticsRequest struct {
	Days     int      `json:"days,omitempty"`
	Comments []string `json:"comments,omitempty"`
}

// AnalyticsResponse mirrors the API analytics DTO.
type AnalyticsResponse = api.AnalyticsResponse

// ExportRequest writes post history as CSV to a server-side path.
type ExportRequest struct {
	Path string `json:"path"`
}

// ExportResponse reports how many posts were exported.
type ExportResponse struct {
	Count int    `json:"count"`
	Path  string `json:"path"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse mirrors the API health DTO.
type DatabaseHealthResponse = api.DatabaseHealth

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
