// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"fmt"
	"sync"

	"github.com/petar-djukic/repomap/internal/metrics"
	internalmap "github.com/petar-djukic/repomap/internal/repomap"
	"github.com/petar-djukic/repomap/internal/tagcache"
	"github.com/petar-djukic/repomap/internal/tags"
	"github.com/petar-djukic/repomap/pkg/types"
)

const defaultSelfLoopFactor = 0.1

// New validates the config and returns a ready-to-use Mapper.
func New(cfg Config) (Mapper, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	var mt *metrics.Metrics
	if cfg.Registerer != nil {
		mt = metrics.New(cfg.Registerer)
	}

	selfLoop := cfg.SelfLoopFactor
	if selfLoop < 0 {
		selfLoop = 0
	}

	inner := internalmap.NewMapper(internalmap.Options{
		Extractor: internalmap.ExtractorConfig{
			Registry: tags.NewRegistry(),
			Cache:    tagcache.New(cfg.Store, cfg.Logger),
			Workers:  cfg.Workers,
		},
		Graph: internalmap.GraphConfig{SelfLoopFactor: selfLoop},
		Rank: internalmap.RankConfig{
			Damping:               cfg.Damping,
			MaxIterations:         cfg.MaxIterations,
			Tolerance:             cfg.Tolerance,
			PersonalizationWeight: cfg.PersonalizationWeight,
			Workers:               cfg.Workers,
		},
		TokenRatio: cfg.TokenRatio,
		OmitHeader: cfg.OmitHeader,
		Logger:     cfg.Logger,
		Metrics:    mt,
	})

	return &mapperAdapter{inner: inner, metrics: mt}, nil
}

// mapperAdapter adapts internal/repomap.Mapper to the public Mapper interface.
type mapperAdapter struct {
	inner   *internalmap.Mapper
	metrics *metrics.Metrics
}

func (a *mapperAdapter) GenerateMap(ctx context.Context, files []types.SourceFile, focus []string, tokenBudget int) (*types.RepoMapResult, error) {
	if err := validateRequest(files, focus, tokenBudget); err != nil {
		a.metrics.ObserveOutcome("invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return a.inner.Generate(ctx, files, focus, tokenBudget)
}

var defaultMapper = sync.OnceValue(func() Mapper {
	m, _ := New(Config{})
	return m
})

// GenerateMap renders a map with the default configuration and a process-wide
// in-memory tag cache.
func GenerateMap(ctx context.Context, files []types.SourceFile, focus []string, tokenBudget int) (string, error) {
	res, err := defaultMapper().GenerateMap(ctx, files, focus, tokenBudget)
	if err != nil {
		return "", err
	}
	return res.Map, nil
}

var registry = sync.OnceValue(tags.NewRegistry)

// DetectLanguage returns the language name for path's extension, or "" if no
// built-in adapter handles it.
func DetectLanguage(path string) string {
	return registry().LanguageForPath(path)
}

// Languages returns the names of the built-in languages, sorted.
func Languages() []string {
	return registry().Languages()
}

// validateConfig rejects out-of-range settings.
func validateConfig(cfg Config) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("Workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Damping < 0 || cfg.Damping >= 1 {
		return fmt.Errorf("Damping must be in [0, 1), got %g", cfg.Damping)
	}
	if cfg.MaxIterations < 0 {
		return fmt.Errorf("MaxIterations must not be negative, got %d", cfg.MaxIterations)
	}
	if cfg.Tolerance < 0 {
		return fmt.Errorf("Tolerance must not be negative, got %g", cfg.Tolerance)
	}
	if cfg.PersonalizationWeight < 0 {
		return fmt.Errorf("PersonalizationWeight must not be negative, got %g", cfg.PersonalizationWeight)
	}
	if cfg.TokenRatio < 0 || cfg.TokenRatio > 1 {
		return fmt.Errorf("TokenRatio must be in [0, 1], got %g", cfg.TokenRatio)
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults. The ranking
// defaults live with the ranker.
func applyDefaults(cfg *Config) {
	if cfg.SelfLoopFactor == 0 {
		cfg.SelfLoopFactor = defaultSelfLoopFactor
	}
	if cfg.Store == nil {
		cfg.Store = tagcache.NewMemoryStore()
	}
}

// validateRequest checks the arguments of one GenerateMap call.
func validateRequest(files []types.SourceFile, focus []string, tokenBudget int) error {
	if tokenBudget < 0 {
		return fmt.Errorf("token budget must not be negative, got %d", tokenBudget)
	}
	paths := make(map[string]bool, len(files))
	for i, f := range files {
		if f.Path == "" {
			return fmt.Errorf("file %d has an empty path", i)
		}
		if paths[f.Path] {
			return fmt.Errorf("duplicate file path %q", f.Path)
		}
		paths[f.Path] = true
	}
	for _, p := range focus {
		if !paths[p] {
			return fmt.Errorf("focus file %q is not in the file list", p)
		}
	}
	return nil
}
