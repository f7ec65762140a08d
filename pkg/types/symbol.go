// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the value types shared by the repomap packages.
package types

import "time"

// TagKind distinguishes symbol definitions from references.
type TagKind int

const (
	Definition TagKind = iota
	Reference
)

// String returns the lower-case name of the tag kind.
func (k TagKind) String() string {
	switch k {
	case Definition:
		return "def"
	case Reference:
		return "ref"
	default:
		return "unknown"
	}
}

// SymbolKind identifies the category of a defined symbol.
type SymbolKind int

const (
	UnknownKind SymbolKind = iota
	Function               // Free function
	Method                 // Function declared inside a type or qualified by one
	Class                  // C++/Python/JS/TS class
	Struct                 // C/C++/Rust/Go struct
	Interface              // Go/TS interface, Rust trait
	Enum                   // Enum declaration
	Namespace              // C++ namespace, Rust module
	Type                   // Type alias or other named type
	Variable               // Top-level variable
	Constant               // Top-level constant
)

var symbolKindNames = [...]string{
	UnknownKind: "unknown",
	Function:    "function",
	Method:      "method",
	Class:       "class",
	Struct:      "struct",
	Interface:   "interface",
	Enum:        "enum",
	Namespace:   "namespace",
	Type:        "type",
	Variable:    "variable",
	Constant:    "constant",
}

// String returns the lower-case name of the symbol kind.
func (k SymbolKind) String() string {
	if k < 0 || int(k) >= len(symbolKindNames) {
		return "unknown"
	}
	return symbolKindNames[k]
}

// ParseSymbolKind maps a name produced by String back to its kind.
func ParseSymbolKind(s string) SymbolKind {
	for i, name := range symbolKindNames {
		if name == s {
			return SymbolKind(i)
		}
	}
	return UnknownKind
}

// MarshalText encodes the kind by name.
func (k SymbolKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name; unrecognized names decode as UnknownKind.
func (k *SymbolKind) UnmarshalText(text []byte) error {
	*k = ParseSymbolKind(string(text))
	return nil
}

// Tag is one occurrence of a symbol in a file.
type Tag struct {
	Name       string     `json:"name"`
	Kind       TagKind    `json:"kind"`
	SymbolKind SymbolKind `json:"symbol_kind,omitempty"`
	File       string     `json:"file"`
	Line       int        `json:"line"`                // 1-based
	Signature  string     `json:"signature,omitempty"` // definitions only
}

// IsDefinition reports whether the tag declares its symbol.
func (t Tag) IsDefinition() bool { return t.Kind == Definition }

// SourceFile is one input file handed to the engine.
type SourceFile struct {
	Path     string    // Unique key, usually relative to the repository root
	Language string    // Registry language name, e.g. "cpp"
	Content  []byte    // Raw text
	ModTime  time.Time // Optional
}
