// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/repomap/internal/tagcache"
	"github.com/petar-djukic/repomap/pkg/types"
)

func source(path, language, content string) types.SourceFile {
	return types.SourceFile{Path: path, Language: language, Content: []byte(content)}
}

const mathSource = `package math

type Calculator struct{}

func (c *Calculator) Add(a, b int) int { return a + b }

func Multiply(a, b int) int { return a * b }
`

const appSource = `class Calculator:
    def add(self, a, b):
        return a + b

def multiply(a, b):
    return a * b
`

func TestExtractAll_Languages(t *testing.T) {
	ext := NewExtractor(ExtractorConfig{Workers: 2})
	files := []types.SourceFile{
		source("pkg/math/math.go", "go", mathSource),
		source("app.py", "python", appSource),
		source("README.md", "markdown", "# readme"),
	}

	got, stats, err := ext.ExtractAll(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesProcessed)
	assert.Equal(t, 1, stats.FilesSkipped)
	assert.Equal(t, 2, stats.ParseCount)
	assert.Len(t, got, 3)
	assert.Contains(t, got, "README.md")
	assert.Empty(t, got["README.md"])

	assert.Subset(t, defNames(got["pkg/math/math.go"]), []string{"Calculator", "Add", "Multiply"})
	assert.Subset(t, defNames(got["app.py"]), []string{"Calculator", "add", "multiply"})
	for _, tag := range got["app.py"] {
		assert.Equal(t, "app.py", tag.File)
	}
}

func TestExtractAll_CacheHits(t *testing.T) {
	cache := tagcache.New(tagcache.NewMemoryStore(), zerolog.Nop())
	ext := NewExtractor(ExtractorConfig{Cache: cache, Workers: 4})
	files := []types.SourceFile{source("pkg/math/math.go", "go", mathSource)}

	first, stats, err := ext.ExtractAll(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CacheHits)
	assert.Equal(t, 1, stats.ParseCount)

	second, stats, err := ext.ExtractAll(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CacheHits)
	assert.Equal(t, 0, stats.ParseCount)
	assert.Equal(t, first, second)

	// Changed content misses.
	files[0].Content = append(files[0].Content, []byte("\nfunc Divide(a, b int) int { return a / b }\n")...)
	third, stats, err := ext.ExtractAll(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CacheHits)
	assert.Contains(t, defNames(third["pkg/math/math.go"]), "Divide")
}

func TestExtractAll_ManyFilesInParallel(t *testing.T) {
	var files []types.SourceFile
	for i := 0; i < 64; i++ {
		files = append(files, source(fmt.Sprintf("pkg/f%02d.go", i), "go", fmt.Sprintf("package pkg\n\nfunc Func%02d() {}\n", i)))
	}

	got, stats, err := NewExtractor(ExtractorConfig{Workers: 8}).ExtractAll(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 64, stats.FilesProcessed)
	for i := 0; i < 64; i++ {
		path := fmt.Sprintf("pkg/f%02d.go", i)
		assert.Equal(t, []string{fmt.Sprintf("Func%02d", i)}, defNames(got[path]), path)
	}
}

func TestExtractAll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewExtractor(ExtractorConfig{}).ExtractAll(ctx, []types.SourceFile{source("a.go", "go", mathSource)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractAll_MalformedKeepsEarlierDeclarations(t *testing.T) {
	src := "package p\n\nfunc Before() {}\n\nfunc Broken( {\n"
	got, _, err := NewExtractor(ExtractorConfig{}).ExtractAll(context.Background(), []types.SourceFile{source("p.go", "go", src)})
	require.NoError(t, err)
	assert.Contains(t, defNames(got["p.go"]), "Before")
}

func defNames(tags []types.Tag) []string {
	var names []string
	for _, t := range tags {
		if t.IsDefinition() {
			names = append(names, t.Name)
		}
	}
	return names
}
