// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/repomap/internal/logging"
	"github.com/petar-djukic/repomap/internal/mcpserver"
	"github.com/petar-djukic/repomap/internal/metrics"
)

// newServeCmd creates the "serve" command.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generate_repo_map MCP tool over stdio",
		RunE:  runServe,
	}

	cmd.Flags().String("metrics-addr", "", "Address for the Prometheus /metrics endpoint (empty = disabled)")
	viper.BindPFlag("metrics-addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

// runServe runs the MCP server until stdin closes or the process is
// interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	base, err := newLogger()
	if err != nil {
		return err
	}
	logger := logging.WithComponent(base, "cli")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var reg *prometheus.Registry
	if addr := viper.GetString("metrics-addr"); addr != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		go serveMetrics(ctx, addr, reg, logger)
	}

	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	m, closeStore, err := newMapper(ctx, base, registerer)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := mcpserver.NewService(mcpserver.Config{
		Mapper:      m,
		NoGit:       viper.GetBool("no-git"),
		MaxFileSize: viper.GetInt64("max-file-size"),
		Workers:     viper.GetInt("workers"),
		Logger:      base,
	})
	logger.Info().Msg("serving MCP over stdio")
	return mcpserver.Run(ctx, mcpserver.NewServer(svc, version))
}

// serveMetrics exposes reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
