package views

import (
	"context"
	"fmt"
	"sort"
	"time"

	"postpilot/internal/poststore"
	"postpilot/internal/timeutil"
)

// CalendarDay is one day of the month grid with the posts landing on it.
type CalendarDay struct {
	// Date is the day key in the display timezone, YYYY-MM-DD.
	Date  string
	Posts []*poststore.Post
}

// CalendarMonth is a month of posts grouped by day in the display timezone.
type CalendarMonth struct {
	Year     int
	Month    time.Month
	Timezone string
	Days     []CalendarDay
}

// Calendar returns the posts scheduled within the given month, grouped by
// day in loc. Days without posts are omitted; an empty store yields an
// empty grid.
func Calendar(ctx context.Context, store *poststore.Store, year int, month time.Month, loc *time.Location) (*CalendarMonth, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("calendar: invalid month %d", month)
	}
	if loc == nil {
		loc = time.UTC
	}
	from, to := timeutil.MonthBounds(year, month, loc)
	posts, err := store.List(ctx, poststore.Query{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("calendar: list posts: %w", err)
	}

	grouped := make(map[string][]*poststore.Post)
	for _, post := range posts {
		key := timeutil.DayKey(post.ScheduledAt, loc)
		grouped[key] = append(grouped[key], post)
	}
	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &CalendarMonth{
		Year:     year,
		Month:    month,
		Timezone: loc.String(),
		Days:     make([]CalendarDay, 0, len(keys)),
	}
	for _, key := range keys {
		result.Days = append(result.Days, CalendarDay{Date: key, Posts: grouped[key]})
	}
	return result, nil
}
