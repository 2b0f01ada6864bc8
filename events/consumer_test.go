package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"newsweave/types"
)

func TestArticleEventHandler(t *testing.T) {
	var got *ArticleEvent
	h := &ArticleEventHandler{
		Process: func(ctx context.Context, event *ArticleEvent) error {
			got = event
			return nil
		},
	}

	event := ArticleEvent{
		Article:    types.Article{ID: "a1", Title: "hello", Link: "https://example.com/1"},
		IngestedAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}

	mark, err := h.HandleMessage(context.Background(), payload)
	if err != nil || !mark {
		t.Fatalf("HandleMessage = %v, %v", mark, err)
	}
	if got == nil || got.Article.ID != "a1" {
		t.Errorf("handler received %+v", got)
	}
}

func TestArticleEventHandlerMalformed(t *testing.T) {
	called := false
	h := &ArticleEventHandler{
		Process: func(ctx context.Context, event *ArticleEvent) error {
			called = true
			return nil
		},
	}

	// Malformed and incomplete payloads are marked without processing so they
	// are not redelivered forever.
	for _, payload := range []string{
		"not json",
		`{"article":{}}`,
		`{"article":{"id":"a1"}}`,
	} {
		mark, err := h.HandleMessage(context.Background(), []byte(payload))
		if err != nil || !mark {
			t.Errorf("HandleMessage(%q) = %v, %v, want mark without error", payload, mark, err)
		}
	}
	if called {
		t.Error("process must not run for malformed payloads")
	}
}

func TestArticleEventHandlerProcessFailure(t *testing.T) {
	h := &ArticleEventHandler{
		Process: func(ctx context.Context, event *ArticleEvent) error {
			return errors.New("index down")
		},
	}
	payload, _ := json.Marshal(ArticleEvent{
		Article: types.Article{ID: "a1", Link: "https://example.com/1"},
	})

	mark, err := h.HandleMessage(context.Background(), payload)
	if err == nil {
		t.Error("expected the processing error to propagate")
	}
	if mark {
		t.Error("failed messages must not be marked")
	}
}
