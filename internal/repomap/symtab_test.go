// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/repomap/pkg/types"
)

func def(file, name string, line int) types.Tag {
	return types.Tag{
		Name:       name,
		Kind:       types.Definition,
		SymbolKind: types.Function,
		File:       file,
		Line:       line,
		Signature:  "func " + name + "()",
	}
}

func ref(file, name string, line int) types.Tag {
	return types.Tag{Name: name, Kind: types.Reference, File: file, Line: line}
}

// fooScenario: a.go defines foo, b.go calls it three times and defines nothing.
func fooScenario() map[string][]types.Tag {
	return map[string][]types.Tag{
		"a.go": {def("a.go", "foo", 3)},
		"b.go": {ref("b.go", "foo", 3), ref("b.go", "foo", 4), ref("b.go", "foo", 5)},
	}
}

func TestBuildSymbolTable_Aggregates(t *testing.T) {
	st := BuildSymbolTable(map[string][]types.Tag{
		"lib/math.go": {def("lib/math.go", "Add", 3), def("lib/math.go", "Sub", 7), ref("lib/math.go", "Add", 9)},
		"cmd/main.go": {def("cmd/main.go", "main", 5), ref("cmd/main.go", "Add", 6), ref("cmd/main.go", "Add", 7)},
		"empty.go":    nil,
	})

	assert.Equal(t, []string{"cmd/main.go", "empty.go", "lib/math.go"}, st.Files())
	assert.Equal(t, []string{"Add", "Sub", "main"}, st.Names())
	assert.Equal(t, 3, st.Len())
	assert.Equal(t, 3, st.DefinitionCount())

	add, ok := st.Symbol("Add")
	require.True(t, ok)
	assert.Equal(t, []string{"lib/math.go"}, add.DefiningFiles)
	assert.Equal(t, map[string]int{"cmd/main.go": 2, "lib/math.go": 1}, add.Refs)
	require.Len(t, add.Definitions, 1)
	assert.Equal(t, 3, add.Definitions[0].Line)

	defs := st.Definitions("lib/math.go")
	require.Len(t, defs, 2)
	assert.Equal(t, "Add", defs[0].Name)
	assert.Equal(t, "Sub", defs[1].Name)
	assert.Empty(t, st.Definitions("empty.go"))

	_, ok = st.Symbol("Missing")
	assert.False(t, ok)
}

func TestBuildSymbolTable_SameNameInManyFiles(t *testing.T) {
	st := BuildSymbolTable(map[string][]types.Tag{
		"b.cpp": {def("b.cpp", "update", 3)},
		"a.cpp": {def("a.cpp", "update", 10), def("a.cpp", "update", 20)},
	})

	sym, ok := st.Symbol("update")
	require.True(t, ok)
	assert.Equal(t, []string{"a.cpp", "b.cpp"}, sym.DefiningFiles)
	assert.Len(t, sym.Definitions, 3)
	assert.Empty(t, sym.Refs)
}

func TestBuildSymbolTable_Empty(t *testing.T) {
	st := BuildSymbolTable(nil)
	assert.Empty(t, st.Files())
	assert.Empty(t, st.Names())
	assert.Zero(t, st.DefinitionCount())
}
