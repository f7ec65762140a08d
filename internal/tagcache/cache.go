// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tagcache memoizes tag extraction keyed by file path and content
// hash. A Cache sits in front of a types.TagStore; store failures are logged
// and treated as misses, so a cold or broken store only costs re-parsing.
package tagcache

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"

	"github.com/petar-djukic/repomap/pkg/types"
)

// KeyFor returns the cache key of content stored at path.
func KeyFor(path string, content []byte) types.CacheKey {
	return types.CacheKey{Path: path, Hash: xxh3.Hash(content)}
}

// Cache is a read-through cache over a TagStore. Concurrent misses for one
// key compute once; the first value stored for a key wins.
type Cache struct {
	store  types.TagStore
	group  singleflight.Group
	logger zerolog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New returns a cache backed by store. A nil store disables caching.
func New(store types.TagStore, logger zerolog.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logger.With().Str("component", "tag-cache").Logger(),
	}
}

type outcome struct {
	tags []types.Tag
	hit  bool
}

// GetOrCompute returns the tags stored for key, calling compute and storing
// its result on a miss. hit reports whether the tags came from the store. A
// compute error is returned and nothing is stored.
func (c *Cache) GetOrCompute(ctx context.Context, key types.CacheKey, compute func() ([]types.Tag, error)) (tags []types.Tag, hit bool, err error) {
	if c == nil || c.store == nil {
		tags, err := compute()
		return tags, false, err
	}
	if tags, ok := c.get(ctx, key); ok {
		c.hits.Add(1)
		return tags, true, nil
	}

	v, err := c.flight(ctx, key, compute)
	if err != nil {
		return nil, false, err
	}
	out := v.(outcome)
	if out.hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return out.tags, out.hit, nil
}

// flight runs one singleflight call for key. A caller that joined the flight
// of a caller whose context ended retries with its own compute while its own
// context is live.
func (c *Cache) flight(ctx context.Context, key types.CacheKey, compute func() ([]types.Tag, error)) (any, error) {
	k := key.String()
	for {
		v, err, shared := c.group.Do(k, func() (any, error) {
			if tags, ok := c.get(ctx, key); ok {
				return outcome{tags: tags, hit: true}, nil
			}
			tags, err := compute()
			if err != nil {
				return nil, err
			}
			if err := c.store.Put(ctx, key, tags); err != nil {
				c.logger.Warn().Err(err).Str("key", k).Msg("tag store put failed")
			}
			return outcome{tags: tags}, nil
		})
		if err != nil && shared && ctx.Err() == nil && isContextErr(err) {
			c.group.Forget(k)
			continue
		}
		return v, err
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *Cache) get(ctx context.Context, key types.CacheKey) ([]types.Tag, bool) {
	tags, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("tag store get failed")
		return nil, false
	}
	return tags, ok
}

// Stats returns the hit and miss counts since the cache was created.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
