package dispatch

import "time"

// Policy bounds dispatch attempts and spaces retries after transient
// failures.
type Policy struct {
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	Timeout     time.Duration
}

// DefaultPolicy matches the shipped configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BackoffBase: time.Minute,
		BackoffCap:  time.Hour,
		Timeout:     30 * time.Second,
	}
}

// Backoff returns the delay before the given retry. attempt is the number of
// attempts already made, so the first retry (attempt=1) waits the base delay
// and each further retry doubles it up to the cap.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BackoffBase
	if delay <= 0 {
		delay = time.Minute
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.BackoffCap > 0 && delay >= p.BackoffCap {
			return p.BackoffCap
		}
	}
	if p.BackoffCap > 0 && delay > p.BackoffCap {
		return p.BackoffCap
	}
	return delay
}

// Exhausted reports whether the attempt budget is spent.
func (p Policy) Exhausted(attempts int) bool {
	max := p.MaxAttempts
	if max <= 0 {
		max = 3
	}
	return attempts >= max
}
