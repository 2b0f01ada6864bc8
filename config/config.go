package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source describes a single configured RSS feed.
type Source struct {
	Name string
	URL  string
}

// Config carries all runtime settings for the pipeline. Components receive it
// (or the relevant slice of it) at construction instead of reading the
// environment themselves.
type Config struct {
	// DataDir is where per-source stores and weekly bundles are written.
	DataDir string

	// Sources is the ordered list of feeds to aggregate. Order is significant:
	// the weekly aggregator concatenates filtered articles in this order.
	Sources              []Source
	MaxArticlesPerSource int
	// ExtractFullContent enables the readability worker pool for new articles.
	ExtractFullContent bool

	// LLM settings (Cohere chat for summaries, Cohere/OpenAI for embeddings).
	CohereAPIKey   string
	CohereModel    string
	OpenAIAPIKey   string
	EmbeddingModel string

	// Chroma vector store.
	ChromaHost       string
	ChromaPort       int
	ChromaCollection string

	// Redis-backed seen-link filter for the vector indexer. Empty Addr
	// disables the fast path.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SeenKey       string
	SeenTTL       time.Duration

	// Kafka article events. Empty Brokers disables publishing.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Optional S3 upload of weekly bundles.
	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	// HTTP server.
	Port string

	// Daily schedule (local time).
	ScheduleHour   int
	ScheduleMinute int
}

// DefaultSources are the feeds tracked when FEEDS is not set.
var DefaultSources = []Source{
	{Name: "MIT AI News", URL: "https://news.mit.edu/topic/mitartificial-intelligence2-rss.xml"},
	{Name: "Techmeme", URL: "https://www.techmeme.com/feed.xml"},
}

// FromEnv builds a Config from environment variables, loading a .env file
// first if one is present (non-fatal if missing).
func FromEnv() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:              getEnvOrDefault("DATA_DIR", "data"),
		Sources:              parseSources(os.Getenv("FEEDS")),
		MaxArticlesPerSource: getEnvInt("MAX_ARTICLES_PER_SOURCE", 10),
		ExtractFullContent:   getEnvBool("EXTRACT_FULL_CONTENT", false),

		CohereAPIKey:   os.Getenv("COHERE_API_KEY"),
		CohereModel:    getEnvOrDefault("COHERE_MODEL", "command-r-08-2024"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),

		ChromaHost:       getEnvOrDefault("CHROMA_HOST", "localhost"),
		ChromaPort:       getEnvInt("CHROMA_PORT", 8000),
		ChromaCollection: getEnvOrDefault("CHROMA_COLLECTION", "weekly_news"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASS"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SeenKey:       getEnvOrDefault("SEEN_LINKS_KEY", "articles:indexed"),
		SeenTTL:       time.Duration(getEnvInt("SEEN_LINKS_TTL_SECONDS", 30*24*3600)) * time.Second,

		KafkaBrokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnvOrDefault("KAFKA_TOPIC", "news.articles"),
		KafkaGroupID: getEnvOrDefault("KAFKA_GROUP_ID", "newsweave-indexer"),

		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3Prefix:       normalizePrefix(os.Getenv("S3_PREFIX")),
		S3UsePathStyle: getEnvBool("S3_USE_PATH_STYLE", false),

		Port: getEnvOrDefault("PORT", "8080"),
	}

	cfg.ScheduleHour, cfg.ScheduleMinute = parseSchedule(getEnvOrDefault("SCHEDULE_AT", "07:00"))

	if cfg.MaxArticlesPerSource < 1 {
		cfg.MaxArticlesPerSource = 10
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources
	}
	return cfg
}

// parseSources reads a "Name=URL,Name=URL" list. Entries without a name use
// the URL host as the source name upstream, so malformed entries are dropped.
func parseSources(raw string) []Source {
	var out []Source
	for _, entry := range splitAndTrim(raw) {
		name, url, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
			continue
		}
		out = append(out, Source{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)})
	}
	return out
}

func parseSchedule(raw string) (hour, minute int) {
	hour, minute = 7, 0
	h, m, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		m = "0"
	}
	if v, err := strconv.Atoi(h); err == nil && v >= 0 && v <= 23 {
		hour = v
	}
	if v, err := strconv.Atoi(m); err == nil && v >= 0 && v <= 59 {
		minute = v
	}
	return hour, minute
}

func normalizePrefix(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.Trim(raw, "/") + "/"
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
