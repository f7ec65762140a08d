// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/multi"
)

const (
	lowWeight             = 0.1
	shortNameLength       = 2
	commonThreshold       = 5
	commonFactor          = 0.1
	defaultSelfLoopFactor = 0.1
)

// genericNames are identifiers too common to say much about a dependency.
var genericNames = map[string]bool{
	"get": true, "set": true, "init": true, "new": true, "run": true,
	"main": true, "self": true, "this": true, "data": true, "value": true,
	"len": true, "size": true, "item": true, "key": true, "err": true,
}

// GraphConfig configures BuildGraph.
type GraphConfig struct {
	// SelfLoopFactor scales the weight of a file's references to its own
	// definitions. Zero or less adds no self-loops.
	SelfLoopFactor float64
}

// DefaultGraphConfig returns the configuration the pipeline uses.
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{SelfLoopFactor: defaultSelfLoopFactor}
}

// Edge is one weighted reference from a file to a file defining Symbol.
type Edge struct {
	From   string
	To     string
	Symbol string
	Weight float64
}

// Graph is a directed multigraph with one node per file and one edge per
// (referencing file, defining file, symbol).
type Graph struct {
	files []string
	index map[string]int
	out   [][]Edge
	edges int
	g     *multi.WeightedDirectedGraph
}

// BuildGraph derives the reference graph from st. Every file of st is a
// node, isolated files included, and node IDs follow st.Files() order.
func BuildGraph(st *SymbolTable, cfg GraphConfig) *Graph {
	files := st.Files()
	g := &Graph{
		files: files,
		index: make(map[string]int, len(files)),
		out:   make([][]Edge, len(files)),
		g:     multi.NewWeightedDirectedGraph(),
	}
	for i, f := range files {
		g.index[f] = i
		g.g.AddNode(multi.Node(int64(i)))
	}

	for _, name := range st.Names() {
		sym, _ := st.Symbol(name)
		if len(sym.DefiningFiles) == 0 || len(sym.Refs) == 0 {
			continue
		}
		base := identifierWeight(name) * commonWeight(len(sym.DefiningFiles))

		refFiles := make([]string, 0, len(sym.Refs))
		for f := range sym.Refs {
			refFiles = append(refFiles, f)
		}
		sort.Strings(refFiles)

		for _, from := range refFiles {
			w := float64(sym.Refs[from]) * base
			for _, to := range sym.DefiningFiles {
				if from == to {
					if cfg.SelfLoopFactor <= 0 {
						continue
					}
					g.addEdge(Edge{From: from, To: to, Symbol: name, Weight: w * cfg.SelfLoopFactor})
					continue
				}
				g.addEdge(Edge{From: from, To: to, Symbol: name, Weight: w})
			}
		}
	}

	for _, out := range g.out {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].To != out[j].To {
				return out[i].To < out[j].To
			}
			return out[i].Symbol < out[j].Symbol
		})
	}
	return g
}

func (g *Graph) addEdge(e Edge) {
	from, to := g.index[e.From], g.index[e.To]
	g.out[from] = append(g.out[from], e)
	g.edges++
	g.g.SetWeightedLine(g.g.NewWeightedLine(multi.Node(int64(from)), multi.Node(int64(to)), e.Weight))
}

// Files returns the node files in node ID order.
func (g *Graph) Files() []string { return g.files }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.files) }

// EdgeCount returns the number of edges, self-loops included.
func (g *Graph) EdgeCount() int { return g.edges }

// NodeID returns the node ID of file.
func (g *Graph) NodeID(file string) (int64, bool) {
	i, ok := g.index[file]
	return int64(i), ok
}

// Out returns the outgoing edges of file ordered by target then symbol.
func (g *Graph) Out(file string) []Edge {
	i, ok := g.index[file]
	if !ok {
		return nil
	}
	return g.out[i]
}

// Edges returns every edge, grouped by source in node order.
func (g *Graph) Edges() []Edge {
	all := make([]Edge, 0, g.edges)
	for _, out := range g.out {
		all = append(all, out...)
	}
	return all
}

// Underlying returns the gonum graph. Parallel lines between two nodes carry
// one symbol each; the edge weight between them is their sum.
func (g *Graph) Underlying() *multi.WeightedDirectedGraph { return g.g }

// identifierWeight discounts names that say little about a dependency.
func identifierWeight(name string) float64 {
	switch {
	case len(name) <= shortNameLength:
		return lowWeight
	case strings.HasPrefix(name, "_"):
		return lowWeight
	case genericNames[strings.ToLower(name)]:
		return lowWeight
	}
	return 1.0
}

// commonWeight discounts symbols defined in many files.
func commonWeight(definingFiles int) float64 {
	if definingFiles >= commonThreshold {
		return commonFactor
	}
	return 1.0
}
