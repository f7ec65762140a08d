// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package discover finds the source files of a repository and loads them for
// mapping. Git work trees list tracked and untracked, non-ignored files;
// anything else is walked with the root .gitignore applied.
package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/repomap/internal/git"
	"github.com/petar-djukic/repomap/internal/tags"
	"github.com/petar-djukic/repomap/pkg/types"
)

const (
	defaultMaxFileSize = 1 << 20
	binarySniffLength  = 8000
)

// skipDirs contains directory names that are never mapped.
var skipDirs = map[string]bool{
	"vendor":        true,
	".git":          true,
	".hg":           true,
	".svn":          true,
	"testdata":      true,
	"node_modules":  true,
	"__pycache__":   true,
	"venv":          true,
	".venv":         true,
	"build":         true,
	"dist":          true,
	"target":        true,
	".tox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
}

// Options configures Files.
type Options struct {
	Root        string
	Include     []string // Slash paths relative to Root; empty means everything
	Languages   []string // Language names to keep; empty means all supported
	NoGit       bool     // Walk the tree even inside a git work tree
	MaxFileSize int64    // Larger files are skipped (default 1 MiB)
	Workers     int      // Parallel reads (default runtime.NumCPU)
	Registry    *tags.Registry
	Logger      zerolog.Logger
}

// Stats counts what Files saw.
type Stats struct {
	Candidates  int
	Unsupported int
	TooLarge    int
	Binary      int
	FromGit     bool
	Revision    string // Abbreviated HEAD hash when listed from git
	Dirty       bool   // Work tree differs from HEAD
}

// Files discovers and reads the supported source files under opts.Root. Paths
// in the result are slash-separated and relative to the root, sorted.
func Files(ctx context.Context, opts Options) ([]types.SourceFile, Stats, error) {
	if opts.Registry == nil {
		opts.Registry = tags.NewRegistry()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, Stats{}, fmt.Errorf("%s is not a directory", root)
	}

	var stats Stats
	paths, err := candidates(root, opts, &stats)
	if err != nil {
		return nil, stats, err
	}

	langs := make(map[string]bool, len(opts.Languages))
	for _, l := range opts.Languages {
		langs[l] = true
	}

	var keep []types.SourceFile
	for _, p := range paths {
		if !included(p, opts.Include) || skipped(p) {
			continue
		}
		stats.Candidates++
		lang := opts.Registry.LanguageForPath(p)
		if lang == "" || (len(langs) > 0 && !langs[lang]) {
			stats.Unsupported++
			continue
		}
		keep = append(keep, types.SourceFile{Path: p, Language: lang})
	}

	loaded := make([]bool, len(keep))
	reasons := make([]string, len(keep))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for i := range keep {
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			ok, reason, err := load(root, &keep[i], opts.MaxFileSize)
			if err != nil {
				opts.Logger.Debug().Err(err).Str("file", keep[i].Path).Msg("skipping unreadable file")
				return nil
			}
			loaded[i], reasons[i] = ok, reason
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, stats, err
	}

	files := make([]types.SourceFile, 0, len(keep))
	for i, f := range keep {
		switch {
		case loaded[i]:
			files = append(files, f)
		case reasons[i] == "too large":
			stats.TooLarge++
		case reasons[i] == "binary":
			stats.Binary++
		}
	}

	opts.Logger.Debug().
		Str("root", root).
		Bool("git", stats.FromGit).
		Str("revision", stats.Revision).
		Bool("dirty", stats.Dirty).
		Int("candidates", stats.Candidates).
		Int("files", len(files)).
		Int("unsupported", stats.Unsupported).
		Int("too_large", stats.TooLarge).
		Int("binary", stats.Binary).
		Msg("discovered files")
	return files, stats, nil
}

// candidates lists every file path under root, from git when possible, and
// records the git state in stats.
func candidates(root string, opts Options, stats *Stats) ([]string, error) {
	if !opts.NoGit {
		repo, err := git.Open(root)
		if err == nil {
			paths, err := repo.Files()
			if err != nil {
				return nil, fmt.Errorf("listing git files: %w", err)
			}
			stats.FromGit = true
			if stats.Revision, err = repo.Head(); err != nil {
				opts.Logger.Debug().Err(err).Msg("reading HEAD")
			}
			if stats.Dirty, err = repo.IsDirty(); err != nil {
				opts.Logger.Debug().Err(err).Msg("reading status")
			}
			return paths, nil
		}
		if !errors.Is(err, git.ErrNoGit) {
			return nil, err
		}
	}
	return walk(root)
}

// walk lists files under root, skipping hidden entries, symlinks and paths
// matched by the root .gitignore.
func walk(root string) ([]string, error) {
	gi, _ := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))

	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if p == root {
			return nil
		}
		name := d.Name()
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDirs[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// load reads f from disk. It reports false with a reason for files that are
// too large or look binary.
func load(root string, f *types.SourceFile, maxSize int64) (bool, string, error) {
	full := filepath.Join(root, filepath.FromSlash(f.Path))
	info, err := os.Stat(full)
	if err != nil {
		return false, "", err
	}
	if !info.Mode().IsRegular() {
		return false, "not regular", nil
	}
	if info.Size() > maxSize {
		return false, "too large", nil
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return false, "", err
	}
	if bytes.IndexByte(content[:min(len(content), binarySniffLength)], 0) >= 0 {
		return false, "binary", nil
	}
	f.Content = content
	f.ModTime = info.ModTime()
	return true, "", nil
}

// included reports whether p equals or lies under one of the include paths.
func included(p string, include []string) bool {
	if len(include) == 0 {
		return true
	}
	for _, inc := range include {
		inc = strings.TrimSuffix(path.Clean(inc), "/")
		if inc == "." || p == inc || strings.HasPrefix(p, inc+"/") {
			return true
		}
	}
	return false
}

// skipped reports whether any directory of p is in skipDirs.
func skipped(p string) bool {
	dir := path.Dir(p)
	for dir != "." && dir != "/" {
		if skipDirs[path.Base(dir)] {
			return true
		}
		dir = path.Dir(dir)
	}
	return false
}
