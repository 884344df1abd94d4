package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"postpilot/internal/poststore"
	"postpilot/internal/sentiment"
	"postpilot/internal/views"
)

// ViewService exposes the read-only projections: calendar, analytics, and
// CSV export.
type ViewService struct {
	store      *poststore.Store
	classifier sentiment.Classifier
	timezone   string
}

// NewViewService constructs a ViewService. A nil classifier falls back to
// the built-in lexicon.
func NewViewService(store *poststore.Store, classifier sentiment.Classifier, displayTimezone string) *ViewService {
	if classifier == nil {
		classifier = sentiment.NewLexicon()
	}
	return &ViewService{store: store, classifier: classifier, timezone: displayTimezone}
}

func (s *ViewService) location() *time.Location {
	if s.timezone != "" {
		if loc, err := time.LoadLocation(s.timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// Calendar returns the month grid for the display timezone. Zero year/month
// default to the current month.
func (s *ViewService) Calendar(ctx context.Context, year, month int) (CalendarResponse, error) {
	loc := s.location()
	if year == 0 || month == 0 {
		now := time.Now().In(loc)
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}
	}
	if month < 1 || month > 12 {
		return CalendarResponse{}, validationErrorf("invalid month %d", month)
	}
	grid, err := views.Calendar(ctx, s.store, year, time.Month(month), loc)
	if err != nil {
		return CalendarResponse{}, err
	}
	return FromCalendar(grid), nil
}

// Analytics aggregates delivery statistics and sentiment over the trailing
// number of days. Zero days means the trailing 30. When comments is empty
// the sentiment breakdown classifies the platform responses recorded in the
// window instead.
func (s *ViewService) Analytics(ctx context.Context, days int, comments []string) (AnalyticsResponse, error) {
	if days <= 0 {
		days = 30
	}
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	stats, err := views.Analytics(ctx, s.store, from, to)
	if err != nil {
		return AnalyticsResponse{}, err
	}
	counts, err := views.SentimentBreakdown(ctx, s.store, s.classifier, comments, from, to)
	if err != nil {
		return AnalyticsResponse{}, err
	}
	return FromAnalytics(stats, counts), nil
}

// Export writes post history as CSV to the given path and returns the row
// count. The parent directory must already exist.
func (s *ViewService) Export(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, validationErrorf("export path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return 0, validationErrorf("export directory %q: %v", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("export: create %s: %w", path, err)
	}
	defer file.Close()

	count, err := views.ExportCSV(ctx, s.store, file, poststore.Query{})
	if err != nil {
		return 0, err
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("export: close %s: %w", path, err)
	}
	return count, nil
}

// DisplayTimezone reports the timezone views render in.
func (s *ViewService) DisplayTimezone() string {
	return s.location().String()
}
