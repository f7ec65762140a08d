// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/repomap/pkg/repomap"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports.
func setupServerClient(t *testing.T) *mcp.ClientSession {
	t.Helper()

	mapper, err := repomap.New(repomap.Config{})
	require.NoError(t, err)
	server := NewServer(NewService(Config{Mapper: mapper, NoGit: true}), "test")

	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err = server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})
	return session
}

func fixtureRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"engine/engine.go": "package engine\n\ntype Engine struct{}\n\nfunc (e *Engine) Start() error { return nil }\n",
		"cmd/main.go":      "package main\n\nfunc main() {\n\tvar e Engine\n\t_ = e.Start()\n}\n",
		"util.py":          "def helper():\n    return 1\n",
	} {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func callGenerate(t *testing.T, session *mcp.ClientSession, input GenerateInput) (*mcp.CallToolResult, GenerateOutput) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "generate_repo_map",
		Arguments: input,
	})
	require.NoError(t, err)

	var out GenerateOutput
	if !result.IsError {
		raw, err := json.Marshal(result.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return result, out
}

func TestMCPListTools(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "generate_repo_map", result.Tools[0].Name)
}

func TestMCPGenerateRepoMap(t *testing.T) {
	session := setupServerClient(t)
	root := fixtureRepo(t)

	result, out := callGenerate(t, session, GenerateInput{Root: root})
	require.False(t, result.IsError)

	assert.Equal(t, 3, out.TotalFiles)
	assert.Equal(t, 4, out.TotalTags)
	assert.Equal(t, 3, out.FileCount)
	assert.Contains(t, out.Map, "engine/engine.go:\n")
	assert.Contains(t, out.Map, "def helper()")
	assert.LessOrEqual(t, out.TokensUsed, defaultTokenBudget)
}

func TestMCPGenerateRepoMap_LanguagesAndBudget(t *testing.T) {
	session := setupServerClient(t)
	root := fixtureRepo(t)

	result, out := callGenerate(t, session, GenerateInput{Root: root, Languages: []string{"python"}, TokenBudget: 200})
	require.False(t, result.IsError)
	assert.Equal(t, 1, out.TotalFiles)
	assert.NotContains(t, out.Map, "engine")
}

func TestMCPGenerateRepoMap_Errors(t *testing.T) {
	session := setupServerClient(t)
	root := fixtureRepo(t)

	tests := []struct {
		name  string
		input GenerateInput
	}{
		{"missing root", GenerateInput{}},
		{"root does not exist", GenerateInput{Root: filepath.Join(root, "missing")}},
		{"unknown focus", GenerateInput{Root: root, Focus: []string{"nope.go"}}},
		{"negative budget", GenerateInput{Root: root, TokenBudget: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
				Name:      "generate_repo_map",
				Arguments: tt.input,
			})
			// Failures surface either at the protocol level or as IsError.
			assert.True(t, err != nil || result.IsError)
		})
	}
}
