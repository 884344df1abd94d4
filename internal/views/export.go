package views

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"postpilot/internal/poststore"
	"postpilot/internal/timeutil"
)

var exportHeader = []string{
	"id", "platform", "content", "media_path", "scheduled_at", "timezone",
	"state", "attempt_count", "remote_id", "last_error", "created_at",
}

// ExportCSV writes the posts matching the query to w as CSV, including a
// header row. Timestamps are exported in storage form (UTC RFC 3339).
func ExportCSV(ctx context.Context, store *poststore.Store, w io.Writer, q poststore.Query) (int, error) {
	posts, err := store.List(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("export csv: list posts: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("export csv: write header: %w", err)
	}
	for _, post := range posts {
		record := []string{
			strconv.FormatInt(post.ID, 10),
			string(post.Platform),
			post.Content,
			post.MediaPath,
			timeutil.FormatStorage(post.ScheduledAt),
			post.Timezone,
			string(post.State),
			strconv.Itoa(post.AttemptCount),
			post.RemoteID,
			post.LastError,
			timeutil.FormatStorage(post.CreatedAt),
		}
		if err := writer.Write(record); err != nil {
			return 0, fmt.Errorf("export csv: write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("export csv: flush: %w", err)
	}
	return len(posts), nil
}
