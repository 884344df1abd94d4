package poststore

import (
	"database/sql"
	"errors"
	"time"

	"postpilot/internal/platform"
)

const postColumns = "id, platform, content, media_path, scheduled_at, timezone, state, last_error, attempt_count, next_attempt_at, remote_id, recurring_name, created_at, updated_at"

func scanPost(scanner interface{ Scan(dest ...any) error }) (*Post, error) {
	var (
		id            int64
		platformStr   string
		content       string
		mediaPath     sql.NullString
		scheduledRaw  string
		timezone      sql.NullString
		stateStr      string
		lastError     sql.NullString
		attemptCount  int
		nextAttemptAt sql.NullString
		remoteID      sql.NullString
		recurringName sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&platformStr,
		&content,
		&mediaPath,
		&scheduledRaw,
		&timezone,
		&stateStr,
		&lastError,
		&attemptCount,
		&nextAttemptAt,
		&remoteID,
		&recurringName,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	post := &Post{
		ID:            id,
		Platform:      platform.Platform(platformStr),
		Content:       content,
		MediaPath:     mediaPath.String,
		Timezone:      timezone.String,
		State:         State(stateStr),
		LastError:     lastError.String,
		AttemptCount:  attemptCount,
		RemoteID:      remoteID.String,
		RecurringName: recurringName.String,
	}

	if scheduled, err := parseTimeString(scheduledRaw); err == nil {
		post.ScheduledAt = scheduled
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		post.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		post.UpdatedAt = updated
	}
	if nextAttemptAt.Valid {
		if next, err := parseTimeString(nextAttemptAt.String); err == nil {
			post.NextAttemptAt = &next
		}
	}
	return post, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
