// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command repomap prints ranked repository maps and serves them over MCP.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/repomap/internal/logging"
	"github.com/petar-djukic/repomap/internal/tagcache"
	"github.com/petar-djukic/repomap/pkg/repomap"
	"github.com/petar-djukic/repomap/pkg/types"
)

const version = "0.1.0"

var envKeyReplacer = strings.NewReplacer("-", "_")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "repomap",
		Short:         "Ranked, token-budgeted maps of source repositories",
		Long:          "repomap extracts the definitions and references of a repository, ranks files with personalized PageRank and prints the most relevant definitions that fit a token budget.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags.
	rootCmd.PersistentFlags().Int("workers", 0, "Parallel extraction workers (0 = number of CPUs)")
	rootCmd.PersistentFlags().Bool("no-git", false, "Walk the directory instead of listing git files")
	rootCmd.PersistentFlags().Int64("max-file-size", 1<<20, "Skip files larger than this many bytes")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the shared tag cache (empty = in-memory)")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database number")
	rootCmd.PersistentFlags().Duration("redis-ttl", 7*24*time.Hour, "Lifetime of cached tags in Redis")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (json, console)")

	// Bind flags to viper.
	for _, name := range []string{
		"workers", "no-git", "max-file-size",
		"redis-addr", "redis-password", "redis-db", "redis-ttl",
		"log-level", "log-format",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Env vars: REPOMAP_REDIS_ADDR, REPOMAP_LOG_LEVEL, etc.
	viper.SetEnvPrefix("REPOMAP")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".repomap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newMapCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLanguagesCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newLogger builds the CLI logger on stderr.
func newLogger() (zerolog.Logger, error) {
	return logging.New(logging.Options{
		Level:  viper.GetString("log-level"),
		Format: viper.GetString("log-format"),
		Writer: os.Stderr,
	})
}

// newMapper builds a Mapper from the global flags. The returned close
// function releases the tag store.
func newMapper(ctx context.Context, logger zerolog.Logger, reg prometheus.Registerer) (repomap.Mapper, func(), error) {
	var store types.TagStore
	closeStore := func() {}

	if addr := viper.GetString("redis-addr"); addr != "" {
		rs, err := tagcache.NewRedisStore(ctx, tagcache.RedisConfig{
			Addr:     addr,
			Password: viper.GetString("redis-password"),
			DB:       viper.GetInt("redis-db"),
			TTL:      viper.GetDuration("redis-ttl"),
		})
		if err != nil {
			return nil, nil, err
		}
		store = rs
		closeStore = func() { rs.Close() }
	}

	m, err := repomap.New(repomap.Config{
		Workers:    viper.GetInt("workers"),
		Store:      store,
		Logger:     logger,
		Registerer: reg,
	})
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("initialization failed: %w", err)
	}
	return m, closeStore, nil
}

// newLanguagesCmd creates the "languages" command.
func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Run: func(cmd *cobra.Command, args []string) {
			for _, l := range repomap.Languages() {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
		},
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print repomap version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "repomap %s\n", version)
		},
	}
}
