package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"graph-crawler/internal/models"
)

// DedupeClient is the slice of Redis the visited set relies on.
type DedupeClient interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Close() error
}

type redisDedupeClient struct {
	client *redis.Client
}

// NewRedisClient opens a client for addr that the Redis-backed stores can share.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewRedisDedupeClient wraps client as a DedupeClient. Close closes client.
func NewRedisDedupeClient(client *redis.Client) DedupeClient {
	return &redisDedupeClient{client: client}
}

func (c *redisDedupeClient) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

func (c *redisDedupeClient) Close() error {
	return c.client.Close()
}

// RedisVisitedSet is a crawler.VisitedSet backed by Redis SETNX. Keys are namespaced by
// session, so two crawls never share membership.
type RedisVisitedSet struct {
	client    DedupeClient
	sessionID string
	ttl       time.Duration
	inserted  atomic.Int64
}

func NewRedisVisitedSet(client DedupeClient, sessionID string, ttl time.Duration) *RedisVisitedSet {
	return &RedisVisitedSet{client: client, sessionID: sessionID, ttl: ttl}
}

// InsertIfAbsent relies on SETNX atomicity: exactly one caller per key sees true.
func (s *RedisVisitedSet) InsertIfAbsent(ctx context.Context, id models.NodeID) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.Key(id), "1", s.ttl)
	if err != nil {
		return false, err
	}
	if ok {
		s.inserted.Add(1)
	}
	return ok, nil
}

// Len counts the inserts this process performed, which for a session-scoped key space
// is the set's cardinality.
func (s *RedisVisitedSet) Len() int {
	return int(s.inserted.Load())
}

// Key returns the Redis key for id.
func (s *RedisVisitedSet) Key(id models.NodeID) string {
	return "visited:" + s.sessionID + ":" + string(id)
}
