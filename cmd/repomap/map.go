// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/repomap/internal/discover"
	"github.com/petar-djukic/repomap/internal/logging"
)

// newMapCmd creates the "map" command.
func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map [paths...]",
		Short: "Print the repository map",
		Long: "Map prints the definitions of the repository ranked by how much the rest of the code depends on them.\n" +
			"A single directory argument is the repository root; otherwise the current directory is the root and the\n" +
			"arguments restrict the files considered.",
		RunE: runMap,
	}

	cmd.Flags().StringSlice("focus", nil, "Files being worked on, relative to the root; ranking favours what they use")
	cmd.Flags().Int("tokens", 1024, "Token budget for the map")
	cmd.Flags().StringSlice("lang", nil, "Languages to include (default: all)")
	cmd.Flags().Bool("json", false, "Print the result with its counts as JSON")

	viper.BindPFlag("tokens", cmd.Flags().Lookup("tokens"))
	viper.BindPFlag("lang", cmd.Flags().Lookup("lang"))

	return cmd
}

// runMap discovers files, builds the map and prints it.
func runMap(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	logger = logging.WithComponent(logger, "cli")

	root, include, err := resolvePaths(args)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	files, _, err := discover.Files(ctx, discover.Options{
		Root:        root,
		Include:     include,
		Languages:   viper.GetStringSlice("lang"),
		NoGit:       viper.GetBool("no-git"),
		MaxFileSize: viper.GetInt64("max-file-size"),
		Workers:     viper.GetInt("workers"),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	m, closeStore, err := newMapper(ctx, logger, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	focusFlags, _ := cmd.Flags().GetStringSlice("focus")
	focus := make([]string, len(focusFlags))
	for i, f := range focusFlags {
		focus[i] = filepath.ToSlash(filepath.Clean(f))
	}

	result, err := m.GenerateMap(ctx, files, focus, viper.GetInt("tokens"))
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), result.Map)
	return nil
}

// resolvePaths maps the positional arguments to a root directory and the
// slash paths under it to include.
func resolvePaths(args []string) (string, []string, error) {
	if len(args) == 0 {
		return ".", nil, nil
	}
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return args[0], nil, nil
		}
	}

	include := make([]string, 0, len(args))
	for _, a := range args {
		if _, err := os.Stat(a); err != nil {
			return "", nil, fmt.Errorf("path %s: %w", a, err)
		}
		rel := filepath.Clean(a)
		if filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
			return "", nil, fmt.Errorf("path %s is outside the current directory", a)
		}
		include = append(include, filepath.ToSlash(rel))
	}
	return ".", include, nil
}
