// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git lists the source files of a git work tree: tracked files plus
// untracked files that are not ignored.
package git

import (
	"errors"
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNoGit is returned when the working directory is not a git repository.
var ErrNoGit = errors.New("not a git repository")

// Repo lists the files of a git working tree.
type Repo struct {
	repo    *gogit.Repository
	workDir string
}

// Open opens an existing git repository rooted at workDir.
// Returns ErrNoGit if the directory is not a git repository.
func Open(workDir string) (*Repo, error) {
	r, err := gogit.PlainOpen(workDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r, workDir: workDir}, nil
}

// WorkDir returns the work tree root.
func (r *Repo) WorkDir() string { return r.workDir }

// Files returns the slash-separated paths, relative to the work tree root, of
// every file in the index that still exists plus every untracked file not
// matched by a .gitignore. The result is sorted.
func (r *Repo) Files() ([]string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}

	seen := make(map[string]bool, len(idx.Entries))
	for _, e := range idx.Entries {
		if s, ok := status[e.Name]; ok && s.Worktree == gogit.Deleted {
			continue
		}
		seen[e.Name] = true
	}
	for path, s := range status {
		if s.Worktree == gogit.Untracked {
			seen[path] = true
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// IsDirty reports whether the worktree differs from HEAD
// in the index or on disk.
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	return !status.IsClean(), nil
}

// Head returns the abbreviated hash of the HEAD commit, or "" for a
// repository with no commits.
func (r *Repo) Head() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("getting HEAD: %w", err)
	}
	return head.Hash().String()[:12], nil
}
