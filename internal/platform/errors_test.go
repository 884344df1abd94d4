package platform

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		marker error
	}{
		{429, ErrTransient},
		{500, ErrTransient},
		{503, ErrTransient},
		{401, ErrPermanent},
		{403, ErrPermanent},
		{400, ErrPermanent},
		{422, ErrPermanent},
		{418, ErrPermanent},
	}
	for _, tc := range cases {
		err := classifyStatus(Twitter, "publish", tc.status, "details")
		if !errors.Is(err, tc.marker) {
			t.Fatalf("status %d classified as %v, want marker %v", tc.status, err, tc.marker)
		}
	}
}

func TestClassifyStatusTruncatesBody(t *testing.T) {
	err := classifyStatus(Facebook, "publish", 400, strings.Repeat("x", 500))
	if len(err.Error()) > 300 {
		t.Fatalf("error message not truncated: %d chars", len(err.Error()))
	}
}

func TestClassifyTransportDeadline(t *testing.T) {
	err := classifyTransport(LinkedIn, "publish", context.DeadlineExceeded)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("deadline error classified as %v, want ErrTimeout", err)
	}
	if !IsRetryable(err) {
		t.Fatal("timeout should be retryable")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(Wrap(ErrTransient, Twitter, "publish", "rate limited", nil)) {
		t.Fatal("transient should be retryable")
	}
	if IsRetryable(Wrap(ErrPermanent, Twitter, "publish", "rejected", nil)) {
		t.Fatal("permanent should not be retryable")
	}
	if IsRetryable(nil) {
		t.Fatal("nil should not be retryable")
	}
}

func TestWrapIncludesContext(t *testing.T) {
	err := Wrap(ErrPermanent, Facebook, "publish", "content rejected", errors.New("boom"))
	msg := err.Error()
	for _, want := range []string{"facebook", "publish", "content rejected", "boom"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
}
