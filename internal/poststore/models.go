package poststore

import (
	"strings"
	"time"

	"postpilot/internal/platform"
)

// State represents the lifecycle of a post.
type State string

const (
	StateDraft       State = "draft"
	StateScheduled   State = "scheduled"
	StateDispatching State = "dispatching"
	StateDelivered   State = "delivered"
	StateFailed      State = "failed"
	StateCanceled    State = "canceled"
)

var allStates = []State{
	StateDraft,
	StateScheduled,
	StateDispatching,
	StateDelivered,
	StateFailed,
	StateCanceled,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// allowedTransitions is the full edge set of the lifecycle. Any edge not
// listed here is rejected with ErrConflict.
var allowedTransitions = map[State]map[State]struct{}{
	StateDraft: {
		StateScheduled: {},
		StateCanceled:  {},
	},
	StateScheduled: {
		StateDispatching: {},
		StateCanceled:    {},
	},
	StateDispatching: {
		StateDelivered: {},
		StateFailed:    {},
		StateScheduled: {}, // automatic retry with backoff
	},
	StateFailed: {
		StateScheduled: {}, // explicit retry only
	},
	StateDelivered: {},
	StateCanceled:  {},
}

// AllStates returns the ordered list of known states.
func AllStates() []State {
	cp := make([]State, len(allStates))
	copy(cp, allStates)
	return cp
}

// ParseState converts a string into a known State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// CanTransition reports whether the lifecycle permits the given edge.
func CanTransition(from, to State) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// IsTerminal reports whether a state has no outgoing edges besides explicit
// retry. Delivered and canceled posts never move again.
func (s State) IsTerminal() bool {
	return s == StateDelivered || s == StateCanceled
}

// Post is a scheduled social-media post persisted in SQLite.
type Post struct {
	ID            int64
	Platform      platform.Platform
	Content       string
	MediaPath     string
	ScheduledAt   time.Time // always UTC
	Timezone      string    // IANA name the user scheduled in, for display
	State         State
	LastError     string
	AttemptCount  int
	NextAttemptAt *time.Time // set while backing off after a transient failure
	RemoteID      string     // platform-assigned id once delivered
	RecurringName string     // template that generated this post, if any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DueAt returns the instant the post becomes eligible for dispatch: the
// scheduled time, pushed back by retry backoff when one is pending.
func (p *Post) DueAt() time.Time {
	if p.NextAttemptAt != nil && p.NextAttemptAt.After(p.ScheduledAt) {
		return *p.NextAttemptAt
	}
	return p.ScheduledAt
}

// DeliveryResult records the outcome of one dispatch attempt. Exactly one
// result row is appended per attempt, success or not.
type DeliveryResult struct {
	ID               string // uuid
	PostID           int64
	Attempt          int
	CreatedAt        time.Time
	Success          bool
	RemoteID         string
	PlatformResponse string
	ErrorMessage     string
}

// HealthSummary describes aggregated post counts per key lifecycle states.
type HealthSummary struct {
	Total       int
	Draft       int
	Scheduled   int
	Dispatching int
	Delivered   int
	Failed      int
	Canceled    int
}

// DatabaseHealth captures diagnostic information about the post database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalPosts       int
	Error            string
}
