package api

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"postpilot/internal/platform"
	"postpilot/internal/poststore"
	"postpilot/internal/timeutil"
)

// ErrValidation marks request errors callers should surface verbatim.
var ErrValidation = errors.New("invalid request")

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ValidatePost checks a creation request and converts it to a store record.
// The default timezone applies when the request carries none.
func ValidatePost(req CreatePostRequest, defaultTimezone string) (*poststore.Post, error) {
	name, ok := platform.Parse(req.Platform)
	if !ok {
		return nil, validationErrorf("unknown platform %q (choices: %s)", req.Platform, platformChoices())
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, validationErrorf("content is required")
	}
	if limit := name.CharLimit(); utf8.RuneCountInString(content) > limit {
		return nil, validationErrorf("content exceeds the %d character limit for %s (%d characters)",
			limit, name.DisplayName(), utf8.RuneCountInString(content))
	}

	media := strings.TrimSpace(req.MediaPath)
	if media != "" {
		if !name.SupportsMedia() {
			return nil, validationErrorf("%s does not accept media attachments", name.DisplayName())
		}
		if !platform.ValidMediaPath(media) {
			return nil, validationErrorf("unsupported media file %q (only .jpg and .png)", media)
		}
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = strings.TrimSpace(defaultTimezone)
	}
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, validationErrorf("unknown timezone %q", tz)
	}

	scheduledAt, err := timeutil.ParseSchedule(req.ScheduledTime, loc)
	if err != nil {
		return nil, validationErrorf("invalid scheduled time %q: %v", req.ScheduledTime, err)
	}

	state := poststore.StateScheduled
	if req.Draft {
		state = poststore.StateDraft
	}
	return &poststore.Post{
		Platform:      name,
		Content:       content,
		MediaPath:     media,
		ScheduledAt:   scheduledAt,
		Timezone:      tz,
		State:         state,
		RecurringName: strings.TrimSpace(req.RecurringName),
	}, nil
}

func platformChoices() string {
	names := platform.All()
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, name.Key())
	}
	return strings.Join(keys, ", ")
}
