package summarize

import (
	"context"
	"errors"
	"testing"
)

func TestResultText(t *testing.T) {
	if got := (Result{Summary: "fine"}).Text(); got != "fine" {
		t.Errorf("Text() = %q", got)
	}
	got := (Result{Err: errors.New("rate limited")}).Text()
	if got != "Summary unavailable: rate limited" {
		t.Errorf("Text() = %q", got)
	}
}

func TestSummarizeBlankInput(t *testing.T) {
	c := NewCohere("test-key", "command-r")

	for _, text := range []string{"", "   ", "\n\t"} {
		res := c.Summarize(context.Background(), "title", text, "link", "date")
		if res.Err != nil {
			t.Errorf("blank input %q returned error: %v", text, res.Err)
		}
		if res.Summary != NoContentMarker {
			t.Errorf("blank input %q summary = %q, want marker", text, res.Summary)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("ab", 4); got != "ab" {
		t.Errorf("truncate = %q", got)
	}
}
