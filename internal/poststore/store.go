package poststore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"postpilot/internal/config"
	"postpilot/internal/platform"
)

// Store manages post persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the post database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the post database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Create inserts a new post. The caller decides the initial state: drafts
// stay put, scheduled posts become visible to the scheduler immediately.
func (s *Store) Create(ctx context.Context, post *Post) (*Post, error) {
	if post == nil {
		return nil, errors.New("post is nil")
	}
	state := post.State
	if state == "" {
		state = StateDraft
	}
	if _, ok := stateSet[state]; !ok {
		return nil, fmt.Errorf("create post: unknown state %q", state)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO posts (
            platform, content, media_path, scheduled_at, timezone, state,
            last_error, attempt_count, next_attempt_at, remote_id,
            recurring_name, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.Platform.Key(),
		post.Content,
		nullableString(post.MediaPath),
		post.ScheduledAt.UTC().Format(time.RFC3339Nano),
		nullableString(post.Timezone),
		state,
		nullableString(post.LastError),
		post.AttemptCount,
		nullableTime(post.NextAttemptAt),
		nullableString(post.RemoteID),
		nullableString(post.RecurringName),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a post by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// Update persists changes to an existing post. It does not enforce lifecycle
// edges; use Transition for state changes.
func (s *Store) Update(ctx context.Context, post *Post) error {
	if post == nil {
		return errors.New("post is nil")
	}
	post.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE posts
         SET platform = ?, content = ?, media_path = ?, scheduled_at = ?,
             timezone = ?, state = ?, last_error = ?, attempt_count = ?,
             next_attempt_at = ?, remote_id = ?, recurring_name = ?, updated_at = ?
         WHERE id = ?`,
		post.Platform.Key(),
		post.Content,
		nullableString(post.MediaPath),
		post.ScheduledAt.UTC().Format(time.RFC3339Nano),
		nullableString(post.Timezone),
		post.State,
		nullableString(post.LastError),
		post.AttemptCount,
		nullableTime(post.NextAttemptAt),
		nullableString(post.RemoteID),
		nullableString(post.RecurringName),
		post.UpdatedAt.Format(time.RFC3339Nano),
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Query narrows List results. Zero values mean "no filter".
type Query struct {
	States   []State
	Platform platform.Platform
	From     time.Time // scheduled_at >= From
	To       time.Time // scheduled_at < To
	Limit    int
}

// List returns posts matching the query ordered by scheduled time.
func (s *Store) List(ctx context.Context, q Query) ([]*Post, error) {
	var (
		clauses []string
		args    []any
	)
	if len(q.States) > 0 {
		placeholders := makePlaceholders(len(q.States))
		clauses = append(clauses, `state IN (`+placeholders+`)`)
		for _, state := range q.States {
			args = append(args, state)
		}
	}
	if q.Platform != "" {
		clauses = append(clauses, `platform = ?`)
		args = append(args, q.Platform.Key())
	}
	if !q.From.IsZero() {
		clauses = append(clauses, `scheduled_at >= ?`)
		args = append(args, q.From.UTC().Format(time.RFC3339Nano))
	}
	if !q.To.IsZero() {
		clauses = append(clauses, `scheduled_at < ?`)
		args = append(args, q.To.UTC().Format(time.RFC3339Nano))
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY scheduled_at, id`
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Stats returns a count of posts grouped by state.
func (s *Store) Stats(ctx context.Context) (map[State]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(1) FROM posts GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("post stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[State]int)
	for rows.Next() {
		var state State
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		stats[state] = count
	}
	return stats, rows.Err()
}

// Health aggregates post state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for state, count := range stats {
		health.Total += count
		switch state {
		case StateDraft:
			health.Draft += count
		case StateScheduled:
			health.Scheduled += count
		case StateDispatching:
			health.Dispatching += count
		case StateDelivered:
			health.Delivered += count
		case StateFailed:
			health.Failed += count
		case StateCanceled:
			health.Canceled += count
		}
	}
	return health, nil
}

// Remove deletes a post by identifier. Delivery history goes with it via the
// foreign-key cascade.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearDelivered removes only delivered posts.
func (s *Store) ClearDelivered(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM posts WHERE state = ?`, StateDelivered)
	if err != nil {
		return 0, fmt.Errorf("clear delivered: %w", err)
	}
	return res.RowsAffected()
}
