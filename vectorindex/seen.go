package vectorindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenConfig configures the RedisBloom-backed seen-link filter.
type SeenConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
	// Capacity sets the initial BF.RESERVE capacity (number of items).
	Capacity int
	// ErrorRate sets the desired false positive probability (e.g. 0.001).
	ErrorRate float64
}

// SeenLinks is a probabilistic filter over already-indexed article links,
// backed by RedisBloom. A false positive only means an article is not
// re-indexed, which is acceptable for a search index; the Chroma metadata
// scan remains the authoritative fallback.
type SeenLinks struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSeenLinks connects to Redis and reserves the bloom filter when the key
// does not exist yet. BF.RESERVE failure is non-fatal; BF.ADD can auto-create
// the filter depending on RedisBloom settings.
func NewSeenLinks(cfg SeenConfig) (*SeenLinks, error) {
	if cfg.Key == "" {
		cfg.Key = "articles:indexed"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100000
	}
	if cfg.ErrorRate <= 0 {
		cfg.ErrorRate = 0.001
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	exists, err := client.Exists(ctx, cfg.Key).Result()
	if err == nil && exists == 0 {
		// BF.RESERVE <key> <error_rate> <capacity>
		_ = client.Do(ctx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity).Err()
	}

	return &SeenLinks{client: client, key: cfg.Key, ttl: cfg.TTL}, nil
}

func (s *SeenLinks) Close() error {
	return s.client.Close()
}

// Exists checks whether the link hash is present in the filter.
func (s *SeenLinks) Exists(link string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := s.client.Do(ctx, "BF.EXISTS", s.key, HashLink(link)).Result()
	if err != nil {
		return false, err
	}
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Add inserts the link hash and refreshes the key TTL, so the filter stays
// alive for ttl after the most recent insertion.
func (s *SeenLinks) Add(link string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Do(ctx, "BF.ADD", s.key, HashLink(link)).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, s.key, s.ttl).Err()
}

// HashLink normalizes a link and returns a sha256 hex hash. Normalization:
// lowercase scheme and host, drop the fragment, drop common tracking query
// params (utm_*, fbclid, gclid).
func HashLink(raw string) string {
	h := sha256.Sum256([]byte(normalizeLink(raw)))
	return hex.EncodeToString(h[:])
}

func normalizeLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
