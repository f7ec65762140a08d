// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"sort"

	"github.com/petar-djukic/repomap/pkg/types"
)

// Symbol aggregates every tag sharing one name across the repository.
// Same-named symbols in different scopes are merged.
type Symbol struct {
	Name string

	// DefiningFiles lists the files holding a definition of Name, sorted.
	DefiningFiles []string

	// Definitions holds the definition tags in file then line order.
	Definitions []types.Tag

	// Refs counts references to Name per file, self-references included.
	Refs map[string]int
}

// SymbolTable indexes tags by name and by file.
type SymbolTable struct {
	symbols map[string]*Symbol
	byFile  map[string][]types.Tag
	files   []string
	defs    int
}

// BuildSymbolTable aggregates the tags of every file. Files with no tags are
// still recorded.
func BuildSymbolTable(tagsByFile map[string][]types.Tag) *SymbolTable {
	st := &SymbolTable{
		symbols: make(map[string]*Symbol),
		byFile:  make(map[string][]types.Tag),
		files:   make([]string, 0, len(tagsByFile)),
	}

	for file := range tagsByFile {
		st.files = append(st.files, file)
	}
	sort.Strings(st.files)

	for _, file := range st.files {
		for _, t := range tagsByFile[file] {
			sym := st.symbol(t.Name)
			if t.IsDefinition() {
				if n := len(sym.DefiningFiles); n == 0 || sym.DefiningFiles[n-1] != file {
					sym.DefiningFiles = append(sym.DefiningFiles, file)
				}
				sym.Definitions = append(sym.Definitions, t)
				st.byFile[file] = append(st.byFile[file], t)
				st.defs++
				continue
			}
			sym.Refs[file]++
		}
	}

	return st
}

func (st *SymbolTable) symbol(name string) *Symbol {
	sym, ok := st.symbols[name]
	if !ok {
		sym = &Symbol{Name: name, Refs: make(map[string]int)}
		st.symbols[name] = sym
	}
	return sym
}

// Symbol returns the symbol called name.
func (st *SymbolTable) Symbol(name string) (*Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}

// Names returns every symbol name, sorted.
func (st *SymbolTable) Names() []string {
	names := make([]string, 0, len(st.symbols))
	for name := range st.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the definition tags of file in source order.
func (st *SymbolTable) Definitions(file string) []types.Tag {
	return st.byFile[file]
}

// Files returns every file passed to BuildSymbolTable, sorted.
func (st *SymbolTable) Files() []string {
	return st.files
}

// Len returns the number of distinct symbol names.
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// DefinitionCount returns the number of definition tags.
func (st *SymbolTable) DefinitionCount() int {
	return st.defs
}
