// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package tags

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/repomap/pkg/types"
)

func TestRegistry_Languages(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"c", "cpp", "go", "javascript", "python", "rust", "typescript"}, r.Languages())
}

func TestRegistry_LanguageForPath(t *testing.T) {
	r := NewRegistry()
	tests := map[string]string{
		"src/engine.cpp":   "cpp",
		"include/game.HPP": "cpp",
		"lib.rs":           "rust",
		"main.go":          "go",
		"app.py":           "python",
		"web/index.js":     "javascript",
		"web/types.ts":     "typescript",
		"vendor/x.c":       "c",
		"README.md":        "",
		"Makefile":         "",
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, want, r.LanguageForPath(path))
		})
	}
}

func TestRegistry_UnsupportedLanguage(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("cobol")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	tags := r.Collect(context.Background(), "x.cob", []byte("IDENTIFICATION DIVISION."), "cobol")
	assert.Empty(t, tags)
}

// countingAdapter records how often it parses.
type countingAdapter struct {
	calls atomic.Int32
}

func (a *countingAdapter) Language() string     { return "counting" }
func (a *countingAdapter) Extensions() []string { return []string{".cnt"} }
func (a *countingAdapter) Tags(_ context.Context, path string, _ []byte) []types.Tag {
	a.calls.Add(1)
	return []types.Tag{
		{Name: "one", Kind: types.Definition, File: path, Line: 1, Signature: "one"},
		{Name: "two", Kind: types.Definition, File: path, Line: 2, Signature: "two"},
	}
}

func TestRegistry_ExtractIsLazyAndRestartable(t *testing.T) {
	r := NewRegistry()
	a := &countingAdapter{}
	r.Register(a)
	assert.Equal(t, "counting", r.LanguageForPath("f.cnt"))

	seq := r.Extract(context.Background(), "f.cnt", nil, "counting")
	assert.Equal(t, int32(0), a.calls.Load(), "nothing parsed before ranging")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), a.calls.Load())

	// Early break stops the sequence.
	var seen int
	for range seq {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}
