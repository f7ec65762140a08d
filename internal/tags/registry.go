// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tags extracts definition and reference tags from source text.
//
// Each supported language has an Adapter. Tree-sitter adapters cover C, C++,
// Rust, Python, JavaScript and TypeScript; Go uses go/parser. Extraction never
// fails: unknown languages yield no tags and syntax errors yield the tags the
// parser could recover.
package tags

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/petar-djukic/repomap/pkg/types"
)

// ErrUnsupportedLanguage is returned by Lookup for languages with no adapter.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Adapter extracts tags for one language. Implementations must be safe for
// concurrent use.
type Adapter interface {
	Language() string
	Extensions() []string
	Tags(ctx context.Context, path string, src []byte) []types.Tag
}

// Registry maps language names and file extensions to adapters.
type Registry struct {
	adapters map[string]Adapter
	byExt    map[string]string
}

// NewRegistry returns a registry holding every built-in adapter.
func NewRegistry() *Registry {
	r := &Registry{
		adapters: make(map[string]Adapter),
		byExt:    make(map[string]string),
	}
	r.Register(newGoAdapter())
	for _, spec := range builtinSpecs() {
		r.Register(newTreeSitterAdapter(spec))
	}
	return r
}

// Register adds or replaces the adapter for a.Language().
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Language()] = a
	for _, ext := range a.Extensions() {
		r.byExt[ext] = a.Language()
	}
}

// Lookup returns the adapter for language.
func (r *Registry) Lookup(language string) (Adapter, error) {
	a, ok := r.adapters[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return a, nil
}

// Languages returns the registered language names, sorted.
func (r *Registry) Languages() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LanguageForPath returns the language registered for path's extension, or ""
// if none is.
func (r *Registry) LanguageForPath(path string) string {
	return r.byExt[strings.ToLower(filepath.Ext(path))]
}

// Extract returns the tags of src as a lazy sequence. Parsing happens when the
// sequence is ranged, and each range parses again. Tags come in line order,
// definitions before references on the same line.
func (r *Registry) Extract(ctx context.Context, path string, src []byte, language string) iter.Seq[types.Tag] {
	return func(yield func(types.Tag) bool) {
		a, err := r.Lookup(language)
		if err != nil {
			return
		}
		for _, t := range a.Tags(ctx, path, src) {
			if !yield(t) {
				return
			}
		}
	}
}

// Collect runs Extract and gathers the result.
func (r *Registry) Collect(ctx context.Context, path string, src []byte, language string) []types.Tag {
	return slices.Collect(r.Extract(ctx, path, src, language))
}

// sortTags orders tags by line, definitions first, then by name.
func sortTags(tags []types.Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Line != tags[j].Line {
			return tags[i].Line < tags[j].Line
		}
		if tags[i].Kind != tags[j].Kind {
			return tags[i].Kind < tags[j].Kind
		}
		return tags[i].Name < tags[j].Name
	})
}
