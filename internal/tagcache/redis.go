// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package tagcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petar-djukic/repomap/pkg/types"
)

const (
	defaultKeyPrefix = "repomap:tags:"
	defaultTTL       = 7 * 24 * time.Hour
	pingTimeout      = 5 * time.Second
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration // Entry lifetime (default 7 days)
	Prefix   string        // Key prefix (default "repomap:tags:")
}

// RedisStore keeps extraction results in Redis so they survive restarts and
// can be shared between processes.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with a PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStoreFromClient(rdb, cfg), nil
}

// NewRedisStoreFromClient wraps an existing client. Addr, Password, DB and
// PoolSize in cfg are ignored.
func NewRedisStoreFromClient(rdb *redis.Client, cfg RedisConfig) *RedisStore {
	s := &RedisStore{rdb: rdb, ttl: cfg.TTL, prefix: cfg.Prefix}
	if s.ttl == 0 {
		s.ttl = defaultTTL
	}
	if s.prefix == "" {
		s.prefix = defaultKeyPrefix
	}
	return s
}

// Get returns the tags stored for key.
func (s *RedisStore) Get(ctx context.Context, key types.CacheKey) ([]types.Tag, bool, error) {
	data, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var tags []types.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, false, fmt.Errorf("decoding tags for %s: %w", key, err)
	}
	return tags, true, nil
}

// Put stores tags with SETNX, so an existing entry is never replaced.
func (s *RedisStore) Put(ctx context.Context, key types.CacheKey, tags []types.Tag) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags for %s: %w", key, err)
	}
	if err := s.rdb.SetNX(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) redisKey(key types.CacheKey) string {
	return s.prefix + key.String()
}
