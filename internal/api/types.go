package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Post describes a stored post in a transport-friendly format. Timestamps
// are RFC3339 UTC; LocalTime renders ScheduledAt in the post's timezone.
type Post struct {
	ID            int64  `json:"id"`
	Platform      string `json:"platform"`
	PlatformName  string `json:"platformName"`
	Content       string `json:"content"`
	MediaPath     string `json:"mediaPath,omitempty"`
	ScheduledAt   string `json:"scheduledAt"`
	LocalTime     string `json:"localTime,omitempty"`
	Timezone      string `json:"timezone"`
	State         string `json:"state"`
	LastError     string `json:"lastError,omitempty"`
	AttemptCount  int    `json:"attemptCount"`
	NextAttemptAt string `json:"nextAttemptAt,omitempty"`
	RemoteID      string `json:"remoteId,omitempty"`
	RecurringName string `json:"recurringName,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

// DeliveryResult is one dispatch attempt outcome.
type DeliveryResult struct {
	ID           string `json:"id"`
	PostID       int64  `json:"postId"`
	Attempt      int    `json:"attempt"`
	CreatedAt    string `json:"createdAt"`
	Success      bool   `json:"success"`
	RemoteID     string `json:"remoteId,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// PostDetail is a post together with its delivery history.
type PostDetail struct {
	Post    Post             `json:"post"`
	Results []DeliveryResult `json:"results"`
}

// PostListResponse wraps a collection of posts for API responses.
type PostListResponse struct {
	Posts []Post `json:"posts"`
}

// CreatePostRequest carries the fields needed to create a post. Draft posts
// stay out of the scheduler until scheduled explicitly.
type CreatePostRequest struct {
	Platform      string `json:"platform"`
	Content       string `json:"content"`
	MediaPath     string `json:"mediaPath,omitempty"`
	ScheduledTime string `json:"scheduledTime"`
	Timezone      string `json:"timezone,omitempty"`
	Draft         bool   `json:"draft,omitempty"`
	RecurringName string `json:"recurringName,omitempty"`
}

// ListPostsRequest filters the post listing.
type ListPostsRequest struct {
	States   []string `json:"states,omitempty"`
	Platform string   `json:"platform,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// CalendarDay is one populated day of the calendar grid.
type CalendarDay struct {
	Date  string `json:"date"`
	Posts []Post `json:"posts"`
}

// CalendarResponse is a month of posts grouped by display-timezone day.
type CalendarResponse struct {
	Year     int           `json:"year"`
	Month    int           `json:"month"`
	Timezone string        `json:"timezone"`
	Days     []CalendarDay `json:"days"`
}

// PlatformStats aggregates delivery outcomes for one platform.
type PlatformStats struct {
	Platform  string `json:"platform"`
	Delivered int    `json:"delivered"`
	Failed    int    `json:"failed"`
	Attempts  int    `json:"attempts"`
}

// SentimentCounts tallies classified texts per label.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
	Total    int `json:"total"`
}

// AnalyticsResponse aggregates delivery statistics and sentiment.
type AnalyticsResponse struct {
	States      map[string]int  `json:"states"`
	Platforms   []PlatformStats `json:"platforms"`
	Attempts    int             `json:"attempts"`
	Successes   int             `json:"successes"`
	SuccessRate float64         `json:"successRate"`
	Sentiment   SentimentCounts `json:"sentiment"`
}

// SchedulerStatus summarizes the delivery loop state.
type SchedulerStatus struct {
	Running  bool   `json:"running"`
	LastPoll string `json:"lastPoll,omitempty"`
	LastErr  string `json:"lastError,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool            `json:"running"`
	PID          int             `json:"pid"`
	DBPath       string          `json:"dbPath"`
	LockFilePath string          `json:"lockFilePath"`
	Scheduler    SchedulerStatus `json:"scheduler"`
	PostStats    map[string]int  `json:"postStats"`
	InboxActive  bool            `json:"inboxActive"`
	Recurring    int             `json:"recurringTemplates"`
}

// DatabaseHealth captures diagnostic information about the post database.
type DatabaseHealth struct {
	DBPath           string `json:"dbPath"`
	DatabaseExists   bool   `json:"databaseExists"`
	DatabaseReadable bool   `json:"databaseReadable"`
	TableExists      bool   `json:"tableExists"`
	IntegrityCheck   bool   `json:"integrityCheck"`
	TotalPosts       int    `json:"totalPosts"`
	Error            string `json:"error,omitempty"`
}
