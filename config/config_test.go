package config

import "testing"

func TestParseSources(t *testing.T) {
	got := parseSources("MIT AI News=https://news.mit.edu/rss, Techmeme=https://www.techmeme.com/feed.xml")
	if len(got) != 2 {
		t.Fatalf("parsed %d sources, want 2", len(got))
	}
	if got[0].Name != "MIT AI News" || got[0].URL != "https://news.mit.edu/rss" {
		t.Errorf("sources[0] = %+v", got[0])
	}
	if got[1].Name != "Techmeme" {
		t.Errorf("sources[1] = %+v", got[1])
	}
}

func TestParseSourcesDropsMalformed(t *testing.T) {
	got := parseSources("nourl, =https://example.com, Good=https://example.com/feed")
	if len(got) != 1 || got[0].Name != "Good" {
		t.Errorf("parsed = %+v, want only Good", got)
	}
	if parseSources("") != nil {
		t.Error("empty input should parse to nil")
	}
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		raw          string
		hour, minute int
	}{
		{"07:00", 7, 0},
		{"23:59", 23, 59},
		{"9:5", 9, 5},
		{"bogus", 7, 0},
		{"25:99", 7, 0},
		{"", 7, 0},
	}
	for _, tt := range tests {
		h, m := parseSchedule(tt.raw)
		if h != tt.hour || m != tt.minute {
			t.Errorf("parseSchedule(%q) = %d:%d, want %d:%d", tt.raw, h, m, tt.hour, tt.minute)
		}
	}
}

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"DATA_DIR", "FEEDS", "MAX_ARTICLES_PER_SOURCE", "SCHEDULE_AT", "PORT", "KAFKA_BROKERS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.MaxArticlesPerSource != 10 {
		t.Errorf("MaxArticlesPerSource = %d", cfg.MaxArticlesPerSource)
	}
	if len(cfg.Sources) != len(DefaultSources) {
		t.Errorf("Sources = %+v, want defaults", cfg.Sources)
	}
	if cfg.ScheduleHour != 7 || cfg.ScheduleMinute != 0 {
		t.Errorf("schedule = %d:%d", cfg.ScheduleHour, cfg.ScheduleMinute)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("KafkaBrokers = %v, want empty", cfg.KafkaBrokers)
	}
}

func TestFromEnvClampsMaxArticles(t *testing.T) {
	for _, raw := range []string{"-1", "0"} {
		t.Setenv("MAX_ARTICLES_PER_SOURCE", raw)
		cfg := FromEnv()
		if cfg.MaxArticlesPerSource != 10 {
			t.Errorf("MAX_ARTICLES_PER_SOURCE=%s gave %d, want default 10", raw, cfg.MaxArticlesPerSource)
		}
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/news")
	t.Setenv("FEEDS", "Custom=https://example.com/feed")
	t.Setenv("SCHEDULE_AT", "09:30")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")

	cfg := FromEnv()
	if cfg.DataDir != "/tmp/news" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "Custom" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if cfg.ScheduleHour != 9 || cfg.ScheduleMinute != 30 {
		t.Errorf("schedule = %d:%d", cfg.ScheduleHour, cfg.ScheduleMinute)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"bundles", "bundles/"},
		{"/bundles/", "bundles/"},
		{"a/b", "a/b/"},
	}
	for _, tt := range tests {
		if got := normalizePrefix(tt.in); got != tt.want {
			t.Errorf("normalizePrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
