// Package aggregate merges per-source stores into weekly bundles: filter by
// week tag, summarize, sort, and persist a combined artifact per week.
package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"newsweave/config"
	"newsweave/store"
	"newsweave/summarize"
	"newsweave/types"
	"newsweave/week"
)

// Aggregator builds weekly bundles from the configured sources. Source order
// is fixed by configuration; within a source, store order is preserved until
// the final sort.
type Aggregator struct {
	DataDir    string
	Sources    []config.Source
	Summarizer summarize.Summarizer

	now func() time.Time
}

func New(dataDir string, sources []config.Source, s summarize.Summarizer) *Aggregator {
	return &Aggregator{DataDir: dataDir, Sources: sources, Summarizer: s, now: time.Now}
}

// Aggregate builds and persists the combined bundle for weekTag (current
// week when empty). Returns (nil, nil) when no articles match: a zero-result
// run writes nothing and must not disturb an existing bundle file.
//
// The combined file for a week is overwritten in full on every run, so
// re-runs against unchanged stores are deterministic up to summarizer output.
func (a *Aggregator) Aggregate(ctx context.Context, weekTag string) (*types.WeeklyBundle, error) {
	if weekTag == "" {
		weekTag = week.Tag(a.now())
	}

	var all []types.Article
	for _, src := range a.Sources {
		filtered := a.articlesForWeek(src, weekTag)
		log.Printf("[aggregate] %s: %d article(s) for %s", src.Name, len(filtered), weekTag)
		all = append(all, filtered...)
	}
	if len(all) == 0 {
		log.Printf("[aggregate] no articles found for week %s", weekTag)
		return nil, nil
	}

	a.fillSummaries(ctx, all)
	sortByDateDesc(all)

	bundle := a.buildBundle(weekTag, all)
	path := CombinedPath(a.DataDir, weekTag)
	if err := writeBundle(path, bundle); err != nil {
		return nil, err
	}
	log.Printf("[aggregate] wrote %s (%d articles, sources: %s)",
		path, bundle.ArticleCount, strings.Join(bundle.Sources, ", "))
	return bundle, nil
}

// AggregateSource persists the per-source weekly artifact for one feed.
func (a *Aggregator) AggregateSource(ctx context.Context, src config.Source, weekTag string) (*types.WeeklyBundle, error) {
	if weekTag == "" {
		weekTag = week.Tag(a.now())
	}
	filtered := a.articlesForWeek(src, weekTag)
	if len(filtered) == 0 {
		return nil, nil
	}

	a.fillSummaries(ctx, filtered)
	sortByDateDesc(filtered)

	bundle := a.buildBundle(weekTag, filtered)
	if err := writeBundle(SourceWeekPath(a.DataDir, src.Name, weekTag), bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

// ProcessWeek writes every per-source weekly artifact plus the combined one.
// Per-source failures are logged and skipped, matching the fetch pipeline's
// fail-soft behavior.
func (a *Aggregator) ProcessWeek(ctx context.Context, weekTag string) (*types.WeeklyBundle, error) {
	if weekTag == "" {
		weekTag = week.Tag(a.now())
	}
	for _, src := range a.Sources {
		if _, err := a.AggregateSource(ctx, src, weekTag); err != nil {
			log.Printf("[aggregate] %s weekly artifact failed: %v", src.Name, err)
		}
	}
	return a.Aggregate(ctx, weekTag)
}

// articlesForWeek loads one source store filtered to the given week. The
// source name is stamped defensively; older store files already carry it.
func (a *Aggregator) articlesForWeek(src config.Source, weekTag string) []types.Article {
	var out []types.Article
	for _, art := range store.ForSource(a.DataDir, src.Name).Load() {
		if art.Week != weekTag {
			continue
		}
		if art.Source == "" {
			art.Source = src.Name
		}
		out = append(out, art)
	}
	return out
}

// fillSummaries invokes the summarizer for every article lacking one,
// sequentially in list order. Failures become placeholder strings; bundles
// never persist an empty summary.
func (a *Aggregator) fillSummaries(ctx context.Context, articles []types.Article) {
	for i := range articles {
		if articles[i].Summary != "" {
			continue
		}
		if a.Summarizer == nil {
			articles[i].Summary = summarize.Result{Err: fmt.Errorf("summarizer not configured")}.Text()
			continue
		}
		log.Printf("[aggregate] summarizing: %s", articles[i].Title)
		res := a.Summarizer.Summarize(ctx, articles[i].Title, articles[i].Content, articles[i].Link, articles[i].Date)
		articles[i].Summary = res.Text()
	}
}

func (a *Aggregator) buildBundle(weekTag string, articles []types.Article) *types.WeeklyBundle {
	// Week bounds come from the first article's parsed date when available,
	// else from the current instant.
	anchor := a.now()
	if parsed, ok := week.Parse(articles[0].Date); ok {
		anchor = parsed
	}
	start, end := week.Bounds(anchor)

	return &types.WeeklyBundle{
		Week:         weekTag,
		StartOfWeek:  start,
		EndOfWeek:    end,
		ArticleCount: len(articles),
		Sources:      sourceNames(articles),
		Articles:     articles,
	}
}

// sortByDateDesc orders articles newest-first. The sort is stable so ties,
// including all unparsable dates (treated as the minimum date), keep their
// concatenation order.
func sortByDateDesc(articles []types.Article) {
	type dated struct {
		article types.Article
		at      time.Time
	}
	entries := make([]dated, len(articles))
	for i, a := range articles {
		at, _ := week.Parse(a.Date)
		entries[i] = dated{article: a, at: at}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.After(entries[j].at)
	})
	for i, e := range entries {
		articles[i] = e.article
	}
}

func sourceNames(articles []types.Article) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range articles {
		name := a.Source
		if name == "" {
			name = "Unknown"
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func writeBundle(path string, bundle *types.WeeklyBundle) error {
	data, err := json.MarshalIndent(bundle, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}
