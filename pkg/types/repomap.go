// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"context"
	"fmt"
)

// RankedTag is a definition tag with its importance score.
type RankedTag struct {
	Tag
	Score float64 `json:"score"`
}

// RepoMapResult holds the rendered repository map and metadata.
type RepoMapResult struct {
	Map        string `json:"map"`         // Rendered map text
	FileCount  int    `json:"file_count"`  // Files shown in the map
	TotalFiles int    `json:"total_files"` // Files handed to the engine
	TagCount   int    `json:"tag_count"`   // Definition tags shown in the map
	TotalTags  int    `json:"total_tags"`  // Definition tags extracted
	TokensUsed int    `json:"tokens_used"` // Estimated token count of Map
	Iterations int    `json:"iterations"`  // Rank passes performed
	Converged  bool   `json:"converged"`   // False if ranking hit the cap or was cancelled
}

// CacheKey identifies one extraction result: a path and the hash of its content.
type CacheKey struct {
	Path string
	Hash uint64
}

// String renders the key as path@hash.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s@%016x", k.Path, k.Hash)
}

// TagStore persists extraction results across runs. Implementations must be
// safe for concurrent use and must keep the first value stored for a key.
type TagStore interface {
	Get(ctx context.Context, key CacheKey) ([]Tag, bool, error)
	Put(ctx context.Context, key CacheKey, tags []Tag) error
}
