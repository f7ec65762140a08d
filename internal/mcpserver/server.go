// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package mcpserver exposes repository map generation as an MCP tool.
package mcpserver

import (
	"context"
	"fmt"
	"path"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/petar-djukic/repomap/internal/discover"
	"github.com/petar-djukic/repomap/pkg/repomap"
)

const (
	serverName         = "repomap"
	defaultTokenBudget = 1024
)

// GenerateInput is the input of the generate_repo_map tool.
type GenerateInput struct {
	Root        string   `json:"root" jsonschema:"absolute path of the repository to map"`
	Focus       []string `json:"focus,omitempty" jsonschema:"repository-relative paths of the files being worked on; the map favours what they use"`
	TokenBudget int      `json:"token_budget,omitempty" jsonschema:"maximum estimated tokens in the map (default 1024)"`
	Languages   []string `json:"languages,omitempty" jsonschema:"languages to include (default: all). Values: c, cpp, go, javascript, python, rust, typescript"`
}

// GenerateOutput is the result of the generate_repo_map tool.
type GenerateOutput struct {
	Map        string `json:"map"`
	FileCount  int    `json:"file_count"`
	TotalFiles int    `json:"total_files"`
	TagCount   int    `json:"tag_count"`
	TotalTags  int    `json:"total_tags"`
	TokensUsed int    `json:"tokens_used"`
}

// Config configures a Service.
type Config struct {
	Mapper      repomap.Mapper
	NoGit       bool
	MaxFileSize int64
	Workers     int
	Logger      zerolog.Logger
}

// Service implements the MCP tool handlers.
type Service struct {
	cfg    Config
	logger zerolog.Logger
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	return &Service{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "mcp").Logger(),
	}
}

// NewServer creates an MCP server with the generate_repo_map tool registered.
func NewServer(svc *Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_repo_map",
		Description: "Build a ranked map of the definitions in a repository that fits a token budget. Files that the focus files reference are ranked first. Returns the map text and counts of what was included.",
	}, svc.GenerateRepoMap)

	return server
}

// Run serves the MCP server over stdin and stdout until ctx is done or the
// client disconnects.
func Run(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// GenerateRepoMap handles the generate_repo_map tool.
func (s *Service) GenerateRepoMap(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	if input.Root == "" {
		return nil, GenerateOutput{}, fmt.Errorf("root is required")
	}
	budget := input.TokenBudget
	if budget == 0 {
		budget = defaultTokenBudget
	}

	files, _, err := discover.Files(ctx, discover.Options{
		Root:        input.Root,
		Languages:   input.Languages,
		NoGit:       s.cfg.NoGit,
		MaxFileSize: s.cfg.MaxFileSize,
		Workers:     s.cfg.Workers,
		Logger:      s.logger,
	})
	if err != nil {
		return nil, GenerateOutput{}, fmt.Errorf("discovering files: %w", err)
	}

	focus := make([]string, len(input.Focus))
	for i, f := range input.Focus {
		focus[i] = path.Clean(f)
	}

	res, err := s.cfg.Mapper.GenerateMap(ctx, files, focus, budget)
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	s.logger.Info().
		Str("root", input.Root).
		Int("files", res.FileCount).
		Int("tokens", res.TokensUsed).
		Msg("generated repo map")

	return nil, GenerateOutput{
		Map:        res.Map,
		FileCount:  res.FileCount,
		TotalFiles: res.TotalFiles,
		TagCount:   res.TagCount,
		TotalTags:  res.TotalTags,
		TokensUsed: res.TokensUsed,
	}, nil
}
