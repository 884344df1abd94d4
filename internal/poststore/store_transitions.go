package poststore

import (
	"context"
	"fmt"
	"time"
)

// TransitionUpdate carries the optional field changes applied alongside a
// state move. Nil pointers leave the column untouched.
type TransitionUpdate struct {
	LastError     *string
	AttemptCount  *int
	NextAttemptAt *time.Time
	ClearBackoff  bool
	RemoteID      *string
}

// Transition moves a post from one state to another as a single
// compare-and-swap. It returns ErrConflict when the post is not in the
// expected state and ErrNotFound when it does not exist.
func (s *Store) Transition(ctx context.Context, id int64, from, to State, update TransitionUpdate) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s is not a lifecycle edge", ErrConflict, from, to)
	}

	setClauses := `state = ?, updated_at = ?`
	args := []any{to, time.Now().UTC().Format(time.RFC3339Nano)}

	if update.LastError != nil {
		setClauses += `, last_error = ?`
		args = append(args, nullableString(*update.LastError))
	}
	if update.AttemptCount != nil {
		setClauses += `, attempt_count = ?`
		args = append(args, *update.AttemptCount)
	}
	switch {
	case update.NextAttemptAt != nil:
		setClauses += `, next_attempt_at = ?`
		args = append(args, update.NextAttemptAt.UTC().Format(time.RFC3339Nano))
	case update.ClearBackoff:
		setClauses += `, next_attempt_at = NULL`
	}
	if update.RemoteID != nil {
		setClauses += `, remote_id = ?`
		args = append(args, nullableString(*update.RemoteID))
	}

	args = append(args, id, from)
	res, err := s.execWithRetry(ctx,
		`UPDATE posts SET `+setClauses+` WHERE id = ? AND state = ?`, args...)
	if err != nil {
		return fmt.Errorf("transition post %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a missing post from a lost race.
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: post %d is not %s", ErrConflict, id, from)
}

// ClaimDue atomically claims up to limit scheduled posts that are due at the
// given instant, moving each to dispatching. A post backing off after a
// transient failure is due only once its next_attempt_at has passed. Posts
// claimed by a concurrent worker are skipped, so each post is dispatched at
// most once.
func (s *Store) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Post, error) {
	if limit <= 0 {
		return nil, nil
	}
	cutoff := now.UTC().Format(time.RFC3339Nano)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM posts
         WHERE state = ? AND scheduled_at <= ?
           AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
         ORDER BY scheduled_at, id LIMIT ?`,
		StateScheduled, cutoff, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query due posts: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var claimed []*Post
	for _, id := range ids {
		res, err := s.execWithRetry(ctx,
			`UPDATE posts SET state = ?, updated_at = ? WHERE id = ? AND state = ?`,
			StateDispatching, timestamp, id, StateScheduled)
		if err != nil {
			return claimed, fmt.Errorf("claim post %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return claimed, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			continue // lost the race to another worker
		}
		post, err := s.GetByID(ctx, id)
		if err != nil {
			return claimed, err
		}
		claimed = append(claimed, post)
	}
	return claimed, nil
}

// Cancel moves a draft or scheduled post to the terminal canceled state.
// Posts mid-dispatch or already settled return ErrConflict.
func (s *Store) Cancel(ctx context.Context, id int64) error {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch post.State {
	case StateDraft, StateScheduled:
		return s.Transition(ctx, id, post.State, StateCanceled, TransitionUpdate{ClearBackoff: true})
	default:
		return fmt.Errorf("%w: cannot cancel post %d in state %s", ErrConflict, id, post.State)
	}
}

// RetryFailed moves a failed post back to scheduled, resetting its attempt
// budget so the dispatcher starts fresh.
func (s *Store) RetryFailed(ctx context.Context, id int64) error {
	zero := 0
	empty := ""
	return s.Transition(ctx, id, StateFailed, StateScheduled, TransitionUpdate{
		AttemptCount: &zero,
		LastError:    &empty,
		ClearBackoff: true,
	})
}

// ReclaimStaleDispatching returns posts stuck in dispatching back to
// scheduled when they have not been touched since the cutoff. This recovers
// posts orphaned by a crash mid-dispatch.
func (s *Store) ReclaimStaleDispatching(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE posts SET state = ?, updated_at = ?
         WHERE state = ? AND updated_at < ?`,
		StateScheduled,
		time.Now().UTC().Format(time.RFC3339Nano),
		StateDispatching,
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("reclaim stale dispatching: %w", err)
	}
	return res.RowsAffected()
}
