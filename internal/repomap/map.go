// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/repomap/internal/logging"
	"github.com/petar-djukic/repomap/internal/metrics"
	"github.com/petar-djukic/repomap/pkg/types"
)

// Options configures a Mapper.
type Options struct {
	Extractor  ExtractorConfig
	Graph      GraphConfig
	Rank       RankConfig // Focus is ignored; it is set per call
	TokenRatio float64
	OmitHeader bool
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

// Mapper runs the full pipeline. It is safe for concurrent use.
type Mapper struct {
	extractor *Extractor
	opts      Options
	logger    zerolog.Logger
}

// NewMapper creates a Mapper.
func NewMapper(opts Options) *Mapper {
	logger := logging.WithComponent(opts.Logger, "repomap")
	ec := opts.Extractor
	ec.Logger = logger
	ec.Metrics = opts.Metrics
	return &Mapper{
		extractor: NewExtractor(ec),
		opts:      opts,
		logger:    logger,
	}
}

// Generate maps files, biasing the ranking toward focus, within budget
// tokens. Arguments are assumed valid. Extraction stops with ctx and returns
// its error; a ranking cut short by ctx renders the scores reached so far.
func (m *Mapper) Generate(ctx context.Context, files []types.SourceFile, focus []string, budget int) (*types.RepoMapResult, error) {
	start := time.Now()
	log, _ := logging.WithRunID(m.logger)

	tagsByFile, stats, err := m.extractor.ExtractAll(ctx, files)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			m.opts.Metrics.ObserveOutcome("cancelled")
		} else {
			m.opts.Metrics.ObserveOutcome("error")
		}
		log.Warn().Err(err).Msg("extraction stopped")
		return nil, fmt.Errorf("extracting tags: %w", err)
	}
	log.Debug().
		Int("files", stats.FilesProcessed).
		Int("skipped", stats.FilesSkipped).
		Int("cache_hits", stats.CacheHits).
		Int("parsed", stats.ParseCount).
		Msg("extracted tags")

	st := BuildSymbolTable(tagsByFile)
	g := BuildGraph(st, m.opts.Graph)
	log.Debug().
		Int("symbols", st.Len()).
		Int("definitions", st.DefinitionCount()).
		Int("nodes", g.Len()).
		Int("edges", g.EdgeCount()).
		Msg("built reference graph")

	rc := m.opts.Rank
	rc.Focus = focus
	ranked := Rank(ctx, g, st, rc)
	log.Debug().
		Int("iterations", ranked.Iterations).
		Bool("converged", ranked.Converged).
		Int("focus", len(focus)).
		Msg("ranked definitions")

	res := Render(ranked.Tags, RenderConfig{
		TokenBudget: budget,
		TokenRatio:  m.opts.TokenRatio,
		OmitHeader:  m.opts.OmitHeader,
		TotalFiles:  len(files),
		TotalTags:   st.DefinitionCount(),
	})
	res.Iterations = ranked.Iterations
	res.Converged = ranked.Converged

	elapsed := time.Since(start)
	m.opts.Metrics.ObserveMap(res.Iterations, res.TokensUsed, elapsed)
	log.Info().
		Int("files", res.FileCount).
		Int("total_files", res.TotalFiles).
		Int("tags", res.TagCount).
		Int("total_tags", res.TotalTags).
		Int("tokens", res.TokensUsed).
		Int("budget", budget).
		Dur("elapsed", elapsed).
		Msg("rendered repo map")
	return res, nil
}
