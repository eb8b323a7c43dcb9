package config

import (
	"fmt"
	"strings"
	"time"

	"graph-crawler/common"
	"graph-crawler/internal/crawler"
	"graph-crawler/internal/neighbors"
)

// Visited-set backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is built once per process and handed to every component.
type Config struct {
	ServiceURL   string
	FetchTimeout time.Duration
	UserAgent    string
	Workers      int
	Debug        bool

	VisitedBackend string
	RedisAddr      string
	VisitedTTL     time.Duration
	StatusStore    bool

	KafkaBroker    string // empty disables publishing
	VisitsTopic    string
	EdgesTopic     string
	PublishTimeout time.Duration

	MetricsAddr string // empty disables /metrics
}

// FromEnv reads the environment. Unparseable values fall back to defaults.
func FromEnv() Config {
	return Config{
		ServiceURL:   common.GetEnv("NEIGHBOR_SERVICE_URL", neighbors.DefaultBaseURL),
		FetchTimeout: common.ParseDuration(common.GetEnv("FETCH_TIMEOUT", ""), crawler.DefaultFetchTimeout),
		UserAgent:    common.GetEnv("USER_AGENT", neighbors.DefaultUserAgent),
		Workers:      common.ParseInt(common.GetEnv("CRAWL_WORKERS", ""), crawler.DefaultWorkers),
		Debug:        common.ParseBool(common.GetEnv("DEBUG", ""), false),

		VisitedBackend: strings.ToLower(common.GetEnv("VISITED_BACKEND", BackendMemory)),
		RedisAddr:      common.GetEnv("REDIS_ADDR", "localhost:6379"),
		VisitedTTL:     common.ParseDuration(common.GetEnv("VISITED_TTL", ""), time.Hour),
		StatusStore:    common.ParseBool(common.GetEnv("STATUS_STORE", ""), false),

		KafkaBroker:    common.GetEnv("KAFKA_BROKER", ""),
		VisitsTopic:    common.GetEnv("KAFKA_VISITS_TOPIC", "graph.crawl.visits"),
		EdgesTopic:     common.GetEnv("KAFKA_EDGES_TOPIC", "graph.crawl.edges"),
		PublishTimeout: common.ParseDuration(common.GetEnv("PUBLISH_TIMEOUT", ""), 5*time.Second),

		MetricsAddr: common.GetEnv("METRICS_ADDR", ""),
	}
}

// Validate rejects combinations the crawler cannot run with.
func (c Config) Validate() error {
	switch c.VisitedBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("config: unknown visited backend %q", c.VisitedBackend)
	}
	if strings.TrimSpace(c.ServiceURL) == "" {
		return fmt.Errorf("config: neighbor service url is empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: default worker count must be > 0, got %d", c.Workers)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("config: fetch timeout must be > 0, got %s", c.FetchTimeout)
	}
	return nil
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c Config) NeedsRedis() bool {
	return c.VisitedBackend == BackendRedis || c.StatusStore
}
