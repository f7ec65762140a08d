// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/network"

	"github.com/petar-djukic/repomap/pkg/types"
)

func rankTags(t *testing.T, tags map[string][]types.Tag, cfg RankConfig) *RankResult {
	t.Helper()
	st := BuildSymbolTable(tags)
	return Rank(context.Background(), BuildGraph(st, DefaultGraphConfig()), st, cfg)
}

func sumScores(scores map[string]float64) float64 {
	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total
}

func TestRank_FooScenario(t *testing.T) {
	tags := fooScenario()
	tags["c.go"] = []types.Tag{def("c.go", "Unused", 1)}
	res := rankTags(t, tags, RankConfig{})

	assert.True(t, res.Converged)
	assert.Greater(t, res.FileScores["a.go"], res.FileScores["b.go"])
	assert.Greater(t, res.FileScores["a.go"], res.FileScores["c.go"])
	assert.InDelta(t, 1.0, sumScores(res.FileScores), 1e-6)

	require.Len(t, res.Tags, 2)
	assert.Equal(t, "foo", res.Tags[0].Name)
	assert.Equal(t, "Unused", res.Tags[1].Name)
}

func TestRank_FocusBias(t *testing.T) {
	// a.go and b.go are symmetric: each is referenced once by user.go.
	tags := map[string][]types.Tag{
		"a.go":    {def("a.go", "Alpha", 1)},
		"b.go":    {def("b.go", "Bravo", 1)},
		"user.go": {ref("user.go", "Alpha", 3), ref("user.go", "Bravo", 4)},
	}

	plain := rankTags(t, tags, RankConfig{})
	assert.InDelta(t, plain.FileScores["a.go"], plain.FileScores["b.go"], 1e-9)

	focused := rankTags(t, tags, RankConfig{Focus: []string{"a.go"}})
	assert.Greater(t, focused.FileScores["a.go"]/focused.FileScores["b.go"],
		plain.FileScores["a.go"]/plain.FileScores["b.go"])
	require.NotEmpty(t, focused.Tags)
	assert.Equal(t, "Alpha", focused.Tags[0].Name)
}

func TestRank_EmptyGraph(t *testing.T) {
	res := rankTags(t, nil, RankConfig{})
	assert.Empty(t, res.Tags)
	assert.Empty(t, res.FileScores)
	assert.True(t, res.Converged)
}

func TestRank_NoEdgesGivesUniformScores(t *testing.T) {
	res := rankTags(t, map[string][]types.Tag{
		"a.go": {def("a.go", "Alpha", 1)},
		"b.go": {def("b.go", "Bravo", 1)},
		"c.go": nil,
	}, RankConfig{})

	for _, f := range []string{"a.go", "b.go", "c.go"} {
		assert.InDelta(t, 1.0/3, res.FileScores[f], 1e-9, f)
	}
	require.Len(t, res.Tags, 2)
	assert.Equal(t, res.Tags[0].Score, res.Tags[1].Score)
	// Equal scores fall back to path order.
	assert.Equal(t, "a.go", res.Tags[0].File)
}

func TestRank_ReadsTransitionsFromUnderlyingGraph(t *testing.T) {
	st := BuildSymbolTable(map[string][]types.Tag{
		"a.go": {def("a.go", "Alpha", 1)},
		"b.go": {def("b.go", "Bravo", 1)},
	})
	g := BuildGraph(st, GraphConfig{})
	require.Zero(t, g.EdgeCount())

	a, _ := g.NodeID("a.go")
	b, _ := g.NodeID("b.go")
	u := g.Underlying()
	u.SetWeightedLine(u.NewWeightedLine(u.Node(a), u.Node(b), 1))

	res := Rank(context.Background(), g, st, RankConfig{})
	assert.Greater(t, res.FileScores["b.go"], res.FileScores["a.go"])
}

func TestRank_EveryDefinitionScoresAboveZero(t *testing.T) {
	res := rankTags(t, map[string][]types.Tag{
		"lib.go":  {def("lib.go", "Used", 1), def("lib.go", "Unused", 5)},
		"main.go": {def("main.go", "main", 1), ref("main.go", "Used", 2)},
	}, RankConfig{})

	require.Len(t, res.Tags, 3)
	for _, rt := range res.Tags {
		assert.Positive(t, rt.Score, rt.Name)
	}
	assert.Equal(t, "Used", res.Tags[0].Name)
}

func TestRank_SameNameDefinitionsShareTheirSymbolScore(t *testing.T) {
	res := rankTags(t, map[string][]types.Tag{
		"shape.cpp": {def("shape.cpp", "area", 3), def("shape.cpp", "area", 9)},
		"use.cpp":   {ref("use.cpp", "area", 1)},
	}, RankConfig{})

	require.Len(t, res.Tags, 2)
	assert.InDelta(t, res.Tags[0].Score, res.Tags[1].Score, 1e-12)
	assert.Equal(t, 3, res.Tags[0].Line)
}

func TestRank_CancelledKeepsBestScores(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := BuildSymbolTable(fooScenario())
	res := Rank(ctx, BuildGraph(st, DefaultGraphConfig()), st, RankConfig{})

	assert.False(t, res.Converged)
	assert.Zero(t, res.Iterations)
	assert.InDelta(t, 0.5, res.FileScores["a.go"], 1e-12)
	require.Len(t, res.Tags, 1)
	assert.Positive(t, res.Tags[0].Score)
}

func TestRank_MaxIterationsStopsEarly(t *testing.T) {
	res := rankTags(t, fooScenario(), RankConfig{MaxIterations: 1})
	assert.Equal(t, 1, res.Iterations)
	assert.False(t, res.Converged)
}

// ring builds n files where file i references a symbol of file i+1 and,
// for even i, also a symbol of file i+2.
func ring(n int) map[string][]types.Tag {
	name := func(i int) string { return fmt.Sprintf("f%03d.go", i%n) }
	sym := func(i int) string { return fmt.Sprintf("Symbol%03d", i%n) }
	tags := make(map[string][]types.Tag, n)
	for i := 0; i < n; i++ {
		f := name(i)
		tags[f] = append(tags[f], def(f, sym(i), 1), ref(f, sym(i+1), 2))
		if i%2 == 0 {
			tags[f] = append(tags[f], ref(f, sym(i+2), 3))
		}
	}
	return tags
}

func TestRank_AgreesWithGonumPageRank(t *testing.T) {
	st := BuildSymbolTable(ring(9))
	g := BuildGraph(st, GraphConfig{})
	res := Rank(context.Background(), g, st, RankConfig{Tolerance: 1e-12, MaxIterations: 1000})
	require.True(t, res.Converged)

	want := network.PageRank(g.Underlying(), defaultDamping, 1e-12)
	for _, f := range g.Files() {
		id, ok := g.NodeID(f)
		require.True(t, ok)
		assert.InDelta(t, want[id], res.FileScores[f], 1e-6, f)
	}
}

func TestRank_ParallelPassesMatchSerial(t *testing.T) {
	tags := ring(parallelRankThreshold + 10)
	st := BuildSymbolTable(tags)
	g := BuildGraph(st, DefaultGraphConfig())

	serial := Rank(context.Background(), g, st, RankConfig{Workers: 1})
	parallel := Rank(context.Background(), g, st, RankConfig{Workers: 4})

	assert.Equal(t, serial.Iterations, parallel.Iterations)
	for f, s := range serial.FileScores {
		assert.InDelta(t, s, parallel.FileScores[f], 1e-15)
	}
}
