// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/repomap/pkg/types"
)

const (
	defaultDamping        = 0.85
	defaultMaxIter        = 100
	defaultTolerance      = 1e-6
	defaultPersonalWeight = 100.0

	// definitionFloor is the share of a file's rank spread over its
	// definitions regardless of incoming references.
	definitionFloor = 0.01

	// parallelRankThreshold is the node count above which a pass is split
	// across workers.
	parallelRankThreshold = 4096
)

// RankConfig configures Rank. Zero fields take their defaults.
type RankConfig struct {
	Damping               float64  // Damping factor (default 0.85)
	MaxIterations         int      // Maximum passes (default 100)
	Tolerance             float64  // L1 convergence tolerance (default 1e-6)
	PersonalizationWeight float64  // Teleport weight of focus files (default 100)
	Focus                 []string // Files biased in the teleport vector
	Workers               int      // Goroutines per pass on large graphs
}

func (c RankConfig) withDefaults() RankConfig {
	if c.Damping <= 0 || c.Damping >= 1 {
		c.Damping = defaultDamping
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaultMaxIter
	}
	if c.Tolerance <= 0 {
		c.Tolerance = defaultTolerance
	}
	if c.PersonalizationWeight <= 0 {
		c.PersonalizationWeight = defaultPersonalWeight
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

// RankResult holds the outcome of Rank.
type RankResult struct {
	FileScores map[string]float64
	Tags       []types.RankedTag // Definition tags, best first
	Iterations int
	Converged  bool
}

type inEdge struct {
	from   int
	weight float64 // normalized by the source's out-weight
}

// Rank runs personalized PageRank over g and scores every definition in st.
// Cancellation stops iterating and keeps the latest completed pass, with
// Converged false.
func Rank(ctx context.Context, g *Graph, st *SymbolTable, cfg RankConfig) *RankResult {
	cfg = cfg.withDefaults()
	n := g.Len()
	if n == 0 {
		return &RankResult{FileScores: map[string]float64{}, Converged: true}
	}

	personal := teleportVector(g, cfg)

	in, outWeight := transitions(g)
	var dangling []int
	for i, w := range outWeight {
		if w == 0 {
			dangling = append(dangling, i)
		}
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}
	next := make([]float64, n)

	res := &RankResult{}
	for res.Iterations < cfg.MaxIterations {
		if ctx.Err() != nil {
			break
		}

		danglingMass := 0.0
		for _, i := range dangling {
			danglingMass += rank[i]
		}
		pass := func(lo, hi int) {
			for j := lo; j < hi; j++ {
				sum := 0.0
				for _, e := range in[j] {
					sum += rank[e.from] * e.weight
				}
				next[j] = (1-cfg.Damping)*personal[j] + cfg.Damping*(danglingMass*personal[j]+sum)
			}
		}
		runPass(n, cfg.Workers, pass)

		diff := 0.0
		for i := range rank {
			diff += math.Abs(next[i] - rank[i])
		}
		rank, next = next, rank
		res.Iterations++
		if diff < cfg.Tolerance {
			res.Converged = true
			break
		}
	}

	res.FileScores = make(map[string]float64, n)
	for i, f := range g.files {
		res.FileScores[f] = rank[i]
	}
	res.Tags = rankDefinitions(g, st, rank, outWeight)
	return res
}

// transitions reads the in-edges of every node from the gonum graph, with
// parallel lines merged and weights normalized by the source's out-weight.
// In-edges are ordered by source and line weights are summed in sorted order
// so every run adds in the same order.
func transitions(g *Graph) ([][]inEdge, []float64) {
	n := g.Len()
	merged := make([]map[int]float64, n)
	outWeight := make([]float64, n)
	for to := 0; to < n; to++ {
		for it := g.g.To(int64(to)); it.Next(); {
			from := it.Node().ID()
			var ws []float64
			lines := g.g.WeightedLines(from, int64(to))
			for lines.Next() {
				ws = append(ws, lines.WeightedLine().Weight())
			}
			sort.Float64s(ws)
			sum := 0.0
			for _, w := range ws {
				sum += w
			}
			if merged[to] == nil {
				merged[to] = make(map[int]float64)
			}
			merged[to][int(from)] = sum
		}
	}

	// Out-weights in node order of targets, matching the in-edge sums.
	for to := 0; to < n; to++ {
		for _, from := range sortedKeys(merged[to]) {
			outWeight[from] += merged[to][from]
		}
	}

	in := make([][]inEdge, n)
	for to := 0; to < n; to++ {
		for _, from := range sortedKeys(merged[to]) {
			in[to] = append(in[to], inEdge{from: from, weight: merged[to][from] / outWeight[from]})
		}
	}
	return in, outWeight
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// runPass calls pass over [0, n), split across workers when n is large.
func runPass(n, workers int, pass func(lo, hi int)) {
	if workers <= 1 || n < parallelRankThreshold {
		pass(0, n)
		return
	}
	var eg errgroup.Group
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		eg.Go(func() error {
			pass(lo, hi)
			return nil
		})
	}
	_ = eg.Wait()
}

// teleportVector weights focus files by cfg.PersonalizationWeight and every
// other file by 1, normalized to sum to 1.
func teleportVector(g *Graph, cfg RankConfig) []float64 {
	focus := make(map[string]bool, len(cfg.Focus))
	for _, f := range cfg.Focus {
		focus[f] = true
	}
	p := make([]float64, g.Len())
	total := 0.0
	for i, f := range g.files {
		p[i] = 1.0
		if focus[f] {
			p[i] = cfg.PersonalizationWeight
		}
		total += p[i]
	}
	for i := range p {
		p[i] /= total
	}
	return p
}

type defKey struct {
	file   string
	symbol string
}

// rankDefinitions spreads each file's rank over the symbols it references
// and adds a floor per definition so every definition scores above zero.
func rankDefinitions(g *Graph, st *SymbolTable, rank, outWeight []float64) []types.RankedTag {
	share := make(map[defKey]float64)
	for i, out := range g.out {
		if outWeight[i] == 0 {
			continue
		}
		for _, e := range out {
			share[defKey{e.To, e.Symbol}] += rank[i] * e.Weight / outWeight[i]
		}
	}

	var ranked []types.RankedTag
	for i, f := range g.files {
		defs := st.Definitions(f)
		if len(defs) == 0 {
			continue
		}
		perName := make(map[string]int, len(defs))
		for _, d := range defs {
			perName[d.Name]++
		}
		floor := rank[i] * definitionFloor / float64(len(defs))
		for _, d := range defs {
			score := share[defKey{f, d.Name}]/float64(perName[d.Name]) + floor
			ranked = append(ranked, types.RankedTag{Tag: d, Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Name < b.Name
	})
	return ranked
}
