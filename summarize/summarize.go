// Package summarize turns article text into one-sentence summaries via an
// external text-generation service. Outcomes are tagged results; rendering
// failures into placeholder strings happens at the persistence boundary.
package summarize

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// NoContentMarker is returned for blank input without calling the service.
const NoContentMarker = "No news content available to summarize"

// Result is the outcome of a summarization call.
type Result struct {
	Summary string
	Err     error
}

// Text renders the result for persistence. Bundles must never carry a null
// summary, so failures become explanatory placeholders.
func (r Result) Text() string {
	if r.Err != nil {
		return "Summary unavailable: " + r.Err.Error()
	}
	return r.Summary
}

// Summarizer is a stateless (title, text) -> summary function. Failures are
// reported in the Result, never panicked or propagated past the aggregator.
type Summarizer interface {
	Summarize(ctx context.Context, title, text, link, date string) Result
}

const summaryPrompt = `You are a technology analyst. Summarize the following AI news article in exactly one sentence, focused on its technology and business implications. Respond with only the sentence, no preamble.

Title: %s
Date: %s
Link: %s

Article:
%s`

// Cohere summarizes through the Cohere chat API.
type Cohere struct {
	client *cohereclient.Client
	model  string
}

// NewCohere builds a summarizer. The HTTP client forces HTTP/1.1 to avoid
// HTTP/2 protocol errors observed against the Cohere endpoint.
func NewCohere(apiKey, model string) *Cohere {
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &Cohere{client: client, model: model}
}

func (c *Cohere) Summarize(ctx context.Context, title, text, link, date string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Summary: NoContentMarker}
	}

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message: fmt.Sprintf(summaryPrompt, title, date, link, truncate(text, 6000)),
		Model:   cohere.String(c.model),
	})
	if err != nil {
		return Result{Err: fmt.Errorf("summarization failed: %w", err)}
	}
	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		return Result{Err: fmt.Errorf("summarization returned empty response")}
	}
	return Result{Summary: summary}
}

// Chat sends a free-form prompt through the same model, used by the chat
// endpoint to answer questions grounded in indexed articles.
func (c *Cohere) Chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message: prompt,
		Model:   cohere.String(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
