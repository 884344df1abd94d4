package platform

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrTransient marks failures worth retrying (network faults, rate
	// limits, upstream 5xx).
	ErrTransient = errors.New("transient failure")
	// ErrPermanent marks failures that will not succeed on retry (rejected
	// credentials, rejected content, missing adapter).
	ErrPermanent = errors.New("permanent failure")
	// ErrTimeout marks attempts that exceeded the dispatch deadline. The
	// dispatcher treats it like a transient failure.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes platform context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, platform Platform, operation, message string, err error) error {
	detail := buildDetail(string(platform), operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether a dispatch failure is eligible for automatic retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}

// classifyStatus maps an HTTP response code to the sentinel taxonomy.
func classifyStatus(platform Platform, operation string, status int, body string) error {
	detail := strings.TrimSpace(body)
	if len(detail) > 200 {
		detail = detail[:200]
	}
	message := fmt.Sprintf("unexpected status %d", status)
	if detail != "" {
		message = fmt.Sprintf("status %d: %s", status, detail)
	}
	switch {
	case status == 429 || status >= 500:
		return Wrap(ErrTransient, platform, operation, message, nil)
	case status == 401 || status == 403:
		return Wrap(ErrPermanent, platform, operation, "credentials rejected: "+message, nil)
	case status == 400 || status == 422:
		return Wrap(ErrPermanent, platform, operation, "content rejected: "+message, nil)
	default:
		return Wrap(ErrPermanent, platform, operation, message, nil)
	}
}

// classifyTransport maps a transport-level error to the sentinel taxonomy.
func classifyTransport(platform Platform, operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(ErrTimeout, platform, operation, "request deadline exceeded", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return Wrap(ErrTimeout, platform, operation, "request timed out", err)
	}
	return Wrap(ErrTransient, platform, operation, "request failed", err)
}

func buildDetail(platform, operation, message string) string {
	parts := make([]string, 0, 3)
	if platform = strings.TrimSpace(platform); platform != "" {
		parts = append(parts, platform)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "adapter failure"
	}
	return strings.Join(parts, ": ")
}
