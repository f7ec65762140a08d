// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repomap defines the public interface for building repository maps:
// compact, ranked listings of the definitions in a set of source files that
// fit a token budget.
package repomap

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/petar-djukic/repomap/pkg/types"
)

// Error types for the repomap API.
var (
	ErrInvalidConfig   = errors.New("invalid config")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Config configures a Mapper. Zero fields take their defaults.
type Config struct {
	Workers               int     // Parallel extraction workers (default runtime.NumCPU)
	Damping               float64 // PageRank damping factor (default 0.85)
	MaxIterations         int     // PageRank pass limit (default 100)
	Tolerance             float64 // PageRank L1 tolerance (default 1e-6)
	PersonalizationWeight float64 // Teleport weight of focus files (default 100)
	SelfLoopFactor        float64 // Weight of a file's references to itself (default 0.1, negative disables)
	TokenRatio            float64 // Tokens per character, at most 1 (default 0.25)
	OmitHeader            bool    // Drop the "Repository map (...)" line

	// Store caches extracted tags across calls. Nil uses an in-memory store
	// owned by the Mapper.
	Store types.TagStore

	// Logger receives structured logs. The zero value discards them.
	Logger zerolog.Logger

	// Registerer, when set, receives the Mapper's Prometheus collectors.
	Registerer prometheus.Registerer
}

// Mapper builds repository maps.
type Mapper interface {
	// GenerateMap ranks the definitions in files, biased toward the focus
	// paths, and renders as many as fit in tokenBudget estimated tokens.
	// Invalid arguments return an error wrapping ErrInvalidArgument before
	// any work starts. Cancelling ctx during extraction returns ctx.Err();
	// during ranking it renders the best scores reached.
	GenerateMap(ctx context.Context, files []types.SourceFile, focus []string, tokenBudget int) (*types.RepoMapResult, error)
}
