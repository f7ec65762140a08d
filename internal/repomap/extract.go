// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repomap builds a ranked, token-budgeted map of a repository's
// definitions: extract tags, aggregate them into a symbol table, link files
// by reference, rank with personalized PageRank and render.
package repomap

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/repomap/internal/metrics"
	"github.com/petar-djukic/repomap/internal/tagcache"
	"github.com/petar-djukic/repomap/internal/tags"
	"github.com/petar-djukic/repomap/pkg/types"
)

// ExtractStats tracks extraction statistics.
type ExtractStats struct {
	FilesProcessed int
	FilesSkipped   int
	CacheHits      int
	ParseCount     int
}

// Extractor extracts tags from many files in parallel, reading through a tag
// cache.
type Extractor struct {
	registry *tags.Registry
	cache    *tagcache.Cache
	workers  int
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// ExtractorConfig configures NewExtractor. A nil Registry uses the built-in
// adapters; a nil Cache parses every file.
type ExtractorConfig struct {
	Registry *tags.Registry
	Cache    *tagcache.Cache
	Workers  int
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
}

// NewExtractor creates an extractor.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.Registry == nil {
		cfg.Registry = tags.NewRegistry()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Extractor{
		registry: cfg.Registry,
		cache:    cfg.Cache,
		workers:  cfg.Workers,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// ExtractAll extracts the tags of every file. The result has an entry for
// each input path, including files whose language has no adapter. It returns
// ctx.Err() if ctx is cancelled before every file is done.
func (e *Extractor) ExtractAll(ctx context.Context, files []types.SourceFile) (map[string][]types.Tag, ExtractStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, ExtractStats{}, err
	}

	var processed, skipped, hits, parses atomic.Int64
	results := make([][]types.Tag, len(files))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)
	for i, f := range files {
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			if _, err := e.registry.Lookup(f.Language); err != nil {
				skipped.Add(1)
				e.metrics.ObserveSkipped()
				e.logger.Debug().Str("file", f.Path).Str("language", f.Language).Msg("no adapter")
				return nil
			}

			key := tagcache.KeyFor(f.Path, f.Content)
			found, hit, err := e.cache.GetOrCompute(ectx, key, func() ([]types.Tag, error) {
				parses.Add(1)
				parsed := e.registry.Collect(ectx, f.Path, f.Content, f.Language)
				// A parse cut short by cancellation is incomplete.
				if err := ectx.Err(); err != nil {
					return nil, err
				}
				return parsed, nil
			})
			if err != nil {
				return err
			}

			results[i] = found
			processed.Add(1)
			if hit {
				hits.Add(1)
			}
			e.metrics.ObserveFile(f.Language, hit)
			return nil
		})
	}

	err := eg.Wait()
	stats := ExtractStats{
		FilesProcessed: int(processed.Load()),
		FilesSkipped:   int(skipped.Load()),
		CacheHits:      int(hits.Load()),
		ParseCount:     int(parses.Load()),
	}
	if err != nil {
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	out := make(map[string][]types.Tag, len(files))
	for i, f := range files {
		out[f.Path] = results[i]
	}
	return out, stats, nil
}
