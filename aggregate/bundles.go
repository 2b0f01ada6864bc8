package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"newsweave/types"
	"newsweave/week"
)

const combinedPrefix = "combined-week-"

// CombinedPath is the combined bundle file for a week.
func CombinedPath(dataDir, weekTag string) string {
	return filepath.Join(dataDir, combinedPrefix+weekTag+".json")
}

// SourceWeekPath is the per-source weekly artifact for a week,
// e.g. data/techmeme-week-2025-W31.json.
func SourceWeekPath(dataDir, source, weekTag string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(source), "-"))
	return filepath.Join(dataDir, slug+"-week-"+weekTag+".json")
}

// WeekInfo summarizes one persisted combined bundle. Bounds are derived from
// the tag so the listing stays consistent even for bundles whose articles had
// unparsable dates.
type WeekInfo struct {
	Week         string    `json:"week"`
	StartOfWeek  time.Time `json:"start_of_week"`
	EndOfWeek    time.Time `json:"end_of_week"`
	ArticleCount int       `json:"article_count"`
	Sources      []string  `json:"sources"`
}

// ListWeeks scans the data directory for combined bundles, newest week
// first. Unreadable files are skipped.
func ListWeeks(dataDir string) []WeekInfo {
	matches, _ := filepath.Glob(filepath.Join(dataDir, combinedPrefix+"*.json"))
	var weeks []WeekInfo
	for _, path := range matches {
		tag := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), combinedPrefix), ".json")
		bundle, err := LoadBundle(dataDir, tag)
		if err != nil {
			continue
		}
		info := WeekInfo{Week: tag, ArticleCount: bundle.ArticleCount, Sources: bundle.Sources}
		if start, end, err := week.BoundsForTag(tag); err == nil {
			info.StartOfWeek, info.EndOfWeek = start, end
		}
		weeks = append(weeks, info)
	}
	// Tags are zero-padded ("2025-W05"), so string order is week order.
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Week > weeks[j].Week })
	return weeks
}

// LoadBundle reads the combined bundle for a week.
func LoadBundle(dataDir, weekTag string) (*types.WeeklyBundle, error) {
	data, err := os.ReadFile(CombinedPath(dataDir, weekTag))
	if err != nil {
		return nil, fmt.Errorf("no bundle for week %s: %w", weekTag, err)
	}
	var bundle types.WeeklyBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("corrupt bundle for week %s: %w", weekTag, err)
	}
	return &bundle, nil
}

// LoadBundleOrLatest loads the requested week, falling back to the most
// recent available bundle so the news page always has something to show.
func LoadBundleOrLatest(dataDir, weekTag string) (*types.WeeklyBundle, error) {
	if weekTag != "" {
		if bundle, err := LoadBundle(dataDir, weekTag); err == nil {
			return bundle, nil
		}
	}
	weeks := ListWeeks(dataDir)
	if len(weeks) == 0 {
		return nil, fmt.Errorf("no weekly bundles available")
	}
	return LoadBundle(dataDir, weeks[0].Week)
}
