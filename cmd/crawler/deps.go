package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"graph-crawler/internal/config"
	"graph-crawler/internal/crawler"
	"graph-crawler/internal/kafka"
	"graph-crawler/internal/models"
	"graph-crawler/internal/neighbors"
	"graph-crawler/internal/store"
)

const (
	statusKeyPrefix = "crawl:status:"
	statusTTL       = 24 * time.Hour
	statusTimeout   = 3 * time.Second
)

// deps are the collaborators of one crawl. Fields left nil are built from config by wire.
type deps struct {
	service crawler.NeighborService
	visited crawler.VisitedSet
	sink    crawler.Sink
	status  store.StatusStore

	redis   *redis.Client // shared by the Redis visited set and status store
	closers []func() error
}

func (d *deps) wire(cfg config.Config, sessionID string) {
	if d.service == nil {
		d.service = neighbors.NewClient(cfg.ServiceURL, cfg.UserAgent, cfg.FetchTimeout, cfg.Debug)
	}
	if cfg.NeedsRedis() {
		d.connectRedis(cfg)
	}
	if d.visited == nil && cfg.VisitedBackend == config.BackendRedis {
		d.visited = store.NewRedisVisitedSet(store.NewRedisDedupeClient(d.redis), sessionID, cfg.VisitedTTL)
	}
	if d.sink == nil && cfg.KafkaBroker != "" {
		publisher := kafka.NewPublisher(cfg.KafkaBroker, cfg.VisitsTopic, cfg.EdgesTopic)
		d.closers = append(d.closers, publisher.Close)
		d.sink = publisher
	}
	if cfg.StatusStore {
		d.wireStatus(cfg)
	}
}

func (d *deps) wireStatus(cfg config.Config) {
	if d.status != nil {
		return
	}
	d.connectRedis(cfg)
	d.status = store.NewRedisStatusStore(d.redis, statusKeyPrefix, statusTTL)
}

func (d *deps) connectRedis(cfg config.Config) {
	if d.redis != nil {
		return
	}
	d.redis = store.NewRedisClient(cfg.RedisAddr)
	d.closers = append(d.closers, d.redis.Close)
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Printf("close error: %v", err)
		}
	}
	d.closers = nil
	d.redis = nil
}

// recordStatus is best effort; a failing store never fails the crawl.
func (d *deps) recordStatus(ctx context.Context, status models.CrawlStatus) {
	if d.status == nil {
		return
	}
	status.UpdatedAt = time.Now().UTC()
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	if err := d.status.SetStatus(ctx, status); err != nil {
		log.Printf("status store error session=%s status=%s err=%v", status.SessionID, status.Status, err)
	}
}
