// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/petar-djukic/repomap/pkg/types"
)

const (
	defaultTokenRatio = 0.25
	maxLineLength     = 100
)

// RenderConfig configures map rendering.
type RenderConfig struct {
	TokenBudget int     // Maximum estimated tokens; zero or less renders nothing
	TokenRatio  float64 // Tokens per character (default 0.25)
	OmitHeader  bool    // Drop the "Repository map (...)" line
	TotalFiles  int     // Denominator for the header's file count
	TotalTags   int     // Denominator for the header's tag count
}

// EstimateTokens returns the estimated token count of text.
func EstimateTokens(text string, ratio float64) int {
	if ratio <= 0 {
		ratio = defaultTokenRatio
	}
	return int(math.Ceil(float64(len(text)) * ratio))
}

// Render writes the largest prefix of ranked that fits the token budget.
// ranked must be ordered best first. If not even the top tag fits, the map is
// the top tag's file line cut to the budget, keeping at least its first rune.
func Render(ranked []types.RankedTag, cfg RenderConfig) *types.RepoMapResult {
	if cfg.TokenRatio <= 0 {
		cfg.TokenRatio = defaultTokenRatio
	}
	res := &types.RepoMapResult{TotalFiles: cfg.TotalFiles, TotalTags: cfg.TotalTags}
	if cfg.TokenBudget <= 0 || len(ranked) == 0 {
		return res
	}

	fits := func(n int) (string, int, bool) {
		text, files := renderPrefix(ranked[:n], cfg)
		return text, files, EstimateTokens(text, cfg.TokenRatio) <= cfg.TokenBudget
	}

	if _, _, ok := fits(1); !ok {
		maxChars := int(float64(cfg.TokenBudget) / cfg.TokenRatio)
		if _, first := utf8.DecodeRuneInString(ranked[0].File); maxChars < first {
			maxChars = first
		}
		res.Map = truncate(ranked[0].File+":", maxChars)
		res.FileCount = 1
		res.TokensUsed = EstimateTokens(res.Map, cfg.TokenRatio)
		return res
	}

	// Largest n in [1, len(ranked)] that fits; rendering length grows with n.
	lo, hi := 1, len(ranked)
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if _, _, ok := fits(mid); ok {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	text, files, _ := fits(lo)
	res.Map = text
	res.FileCount = files
	res.TagCount = lo
	res.TokensUsed = EstimateTokens(text, cfg.TokenRatio)
	return res
}

// renderPrefix renders the given tags grouped by file. Files keep the order of
// their first tag; tags within a file are sorted by line.
func renderPrefix(tags []types.RankedTag, cfg RenderConfig) (string, int) {
	var order []string
	byFile := make(map[string][]types.Tag)
	for _, t := range tags {
		if _, ok := byFile[t.File]; !ok {
			order = append(order, t.File)
		}
		byFile[t.File] = append(byFile[t.File], t.Tag)
	}

	var b strings.Builder
	if !cfg.OmitHeader {
		fmt.Fprintf(&b, "Repository map (%d/%d files, %d/%d tags)\n", len(order), cfg.TotalFiles, len(tags), cfg.TotalTags)
	}
	for _, file := range order {
		ft := byFile[file]
		sort.SliceStable(ft, func(i, j int) bool {
			if ft[i].Line != ft[j].Line {
				return ft[i].Line < ft[j].Line
			}
			return ft[i].Name < ft[j].Name
		})

		b.WriteString(truncate(file+":", maxLineLength))
		b.WriteByte('\n')
		for _, t := range ft {
			sig := t.Signature
			if sig == "" {
				sig = t.Name
			}
			b.WriteString(truncate(fmt.Sprintf("  %d: %s", t.Line, sig), maxLineLength))
			b.WriteByte('\n')
		}
	}
	return b.String(), len(order)
}

// truncate cuts s to at most n bytes on a rune boundary, marking the cut with
// "..." when there is room for it.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return cutRunes(s, n)
	}
	return cutRunes(s, n-3) + "..."
}

func cutRunes(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
