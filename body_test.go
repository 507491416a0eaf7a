package weave

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestBoundedBody_WithinLimitReadsEverything(t *testing.T) {
	body := newBoundedBody(io.NopCloser(strings.NewReader("hello")), 10)
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(b) != "hello" {
		t.Errorf("expected %q, got %q", "hello", b)
	}
}

func TestBoundedBody_OverLimitReturnsBodyTooLarge(t *testing.T) {
	body := newBoundedBody(io.NopCloser(strings.NewReader("this is way too long")), 5)
	_, err := io.ReadAll(body)
	if err == nil {
		t.Fatal("expected a body-too-large error")
	}
	var tooLarge *bodyTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected a *bodyTooLarge error, got %T: %v", err, err)
	}
	if tooLarge.limit != 5 {
		t.Errorf("expected limit 5, got %d", tooLarge.limit)
	}
}

func TestBoundedBody_ZeroLimitDisablesWrapping(t *testing.T) {
	inner := io.NopCloser(strings.NewReader("anything"))
	body := newBoundedBody(inner, 0)
	if body != inner {
		t.Error("expected a limit <= 0 to return the inner reader unwrapped")
	}
}
