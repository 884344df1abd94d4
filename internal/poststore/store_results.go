package poststore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendResult records the outcome of one dispatch attempt. The result id is
// assigned here when the caller leaves it empty.
func (s *Store) AppendResult(ctx context.Context, result *DeliveryResult) error {
	if result == nil {
		return fmt.Errorf("result is nil")
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	_, err := s.execWithRetry(ctx,
		`INSERT INTO delivery_results (
            id, post_id, attempt, created_at, success, remote_id,
            platform_response, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.PostID,
		result.Attempt,
		result.CreatedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(result.Success),
		nullableString(result.RemoteID),
		nullableString(result.PlatformResponse),
		nullableString(result.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("insert delivery result: %w", err)
	}
	return nil
}

// ResultsForPost returns the full attempt history for a post, oldest first.
func (s *Store) ResultsForPost(ctx context.Context, postID int64) ([]*DeliveryResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM delivery_results WHERE post_id = ? ORDER BY attempt, created_at`,
		postID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	return collectResults(rows)
}

// ResultsInRange returns delivery attempts recorded within [from, to),
// oldest first. Analytics views aggregate over this.
func (s *Store) ResultsInRange(ctx context.Context, from, to time.Time) ([]*DeliveryResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM delivery_results
         WHERE created_at >= ? AND created_at < ? ORDER BY created_at`,
		from.UTC().Format(time.RFC3339Nano),
		to.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("query results in range: %w", err)
	}
	defer rows.Close()
	return collectResults(rows)
}

const resultColumns = "id, post_id, attempt, created_at, success, remote_id, platform_response, error_message"

func collectResults(rows *sql.Rows) ([]*DeliveryResult, error) {
	var results []*DeliveryResult
	for rows.Next() {
		var (
			result     DeliveryResult
			createdRaw string
			success    int
			remoteID   sql.NullString
			response   sql.NullString
			errMsg     sql.NullString
		)
		if err := rows.Scan(
			&result.ID,
			&result.PostID,
			&result.Attempt,
			&createdRaw,
			&success,
			&remoteID,
			&response,
			&errMsg,
		); err != nil {
			return nil, err
		}
		result.Success = success != 0
		result.RemoteID = remoteID.String
		result.PlatformResponse = response.String
		result.ErrorMessage = errMsg.String
		if created, err := parseTimeString(createdRaw); err == nil {
			result.CreatedAt = created
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
