// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package tags

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	gotypes "go/types"
	"path"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/petar-djukic/repomap/pkg/types"
)

// goPredeclared holds identifiers of the universe scope. They never resolve to
// a definition in the repository.
var goPredeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "comparable": true, "complex64": true,
	"complex128": true, "error": true, "float32": true, "float64": true, "int": true,
	"int8": true, "int16": true, "int32": true, "int64": true, "rune": true,
	"string": true, "uint": true, "uint8": true, "uint16": true, "uint32": true,
	"uint64": true, "uintptr": true, "true": true, "false": true, "iota": true,
	"nil": true, "append": true, "cap": true, "clear": true, "close": true,
	"complex": true, "copy": true, "delete": true, "imag": true, "len": true,
	"make": true, "max": true, "min": true, "new": true, "panic": true,
	"print": true, "println": true, "real": true, "recover": true,
}

// goAdapter extracts Go tags with go/parser. The parser returns a partial
// file on syntax errors; declarations it could not parse are BadDecl nodes
// and are skipped.
type goAdapter struct{}

func newGoAdapter() *goAdapter { return &goAdapter{} }

func (goAdapter) Language() string     { return "go" }
func (goAdapter) Extensions() []string { return []string{".go"} }

func (goAdapter) Tags(_ context.Context, filePath string, src []byte) []types.Tag {
	if len(src) == 0 {
		return nil
	}
	fset := token.NewFileSet()
	file, _ := parser.ParseFile(fset, filePath, src, parser.SkipObjectResolution)
	if file == nil {
		return nil
	}

	tags := goDefinitions(fset, filePath, file)
	tags = append(tags, goReferences(fset, filePath, file)...)
	sortTags(tags)
	return tags
}

func goDefinitions(fset *token.FileSet, filePath string, file *ast.File) []types.Tag {
	var tags []types.Tag
	def := func(id *ast.Ident, kind types.SymbolKind, sig string) {
		if id == nil || id.Name == "_" {
			return
		}
		tags = append(tags, types.Tag{
			Name:       id.Name,
			Kind:       types.Definition,
			SymbolKind: kind,
			File:       filePath,
			Line:       fset.Position(id.Pos()).Line,
			Signature:  sig,
		})
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			kind := types.Function
			if d.Recv != nil {
				kind = types.Method
			}
			def(d.Name, kind, funcSignature(d))
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					kind, sig := typeSignature(s)
					def(s.Name, kind, sig)
					if it, ok := s.Type.(*ast.InterfaceType); ok && it.Methods != nil {
						for _, m := range it.Methods.List {
							if ft, ok := m.Type.(*ast.FuncType); ok && len(m.Names) > 0 {
								def(m.Names[0], types.Method, m.Names[0].Name+funcTypeString(ft))
							}
						}
					}
				case *ast.ValueSpec:
					kind := types.Variable
					if d.Tok == token.CONST {
						kind = types.Constant
					}
					for _, name := range s.Names {
						sig := d.Tok.String() + " " + name.Name
						if s.Type != nil {
							sig += " " + exprString(s.Type)
						}
						def(name, kind, sig)
					}
				}
			}
		}
	}
	return tags
}

// goReferences collects every identifier use that is not itself a declared
// name, a package qualifier or a predeclared identifier.
func goReferences(fset *token.FileSet, filePath string, file *ast.File) []types.Tag {
	imports := make(map[string]bool)
	for _, imp := range file.Imports {
		if imp.Name != nil {
			imports[imp.Name.Name] = true
			continue
		}
		if p, err := strconv.Unquote(imp.Path.Value); err == nil {
			imports[path.Base(p)] = true
		}
	}

	var tags []types.Tag
	astutil.Apply(file, func(c *astutil.Cursor) bool {
		id, ok := c.Node().(*ast.Ident)
		if !ok {
			return true
		}
		if id.Name == "_" || goPredeclared[id.Name] || isDeclaredName(c) {
			return true
		}
		if _, ok := c.Parent().(*ast.SelectorExpr); ok && c.Name() == "X" && imports[id.Name] {
			return true
		}
		tags = append(tags, types.Tag{
			Name: id.Name,
			Kind: types.Reference,
			File: filePath,
			Line: fset.Position(id.Pos()).Line,
		})
		return true
	}, nil)
	return tags
}

// isDeclaredName reports whether the identifier under c introduces a name.
func isDeclaredName(c *astutil.Cursor) bool {
	switch p := c.Parent().(type) {
	case *ast.File:
		return c.Name() == "Name"
	case *ast.FuncDecl:
		return c.Name() == "Name"
	case *ast.TypeSpec:
		return c.Name() == "Name"
	case *ast.ValueSpec:
		return c.Name() == "Names"
	case *ast.Field:
		return c.Name() == "Names"
	case *ast.ImportSpec:
		return true
	case *ast.LabeledStmt, *ast.BranchStmt:
		return true
	case *ast.AssignStmt:
		return p.Tok == token.DEFINE && c.Name() == "Lhs"
	case *ast.RangeStmt:
		return p.Tok == token.DEFINE && (c.Name() == "Key" || c.Name() == "Value")
	}
	return false
}

// funcSignature renders a function or method header without its body.
func funcSignature(fn *ast.FuncDecl) string {
	var b strings.Builder
	b.WriteString("func ")
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		b.WriteString("(")
		b.WriteString(fieldListString(fn.Recv))
		b.WriteString(") ")
	}
	b.WriteString(fn.Name.Name)
	if fn.Type.TypeParams != nil && len(fn.Type.TypeParams.List) > 0 {
		b.WriteString("[" + fieldListString(fn.Type.TypeParams) + "]")
	}
	b.WriteString(funcTypeString(fn.Type))
	return b.String()
}

// funcTypeString renders "(params) results".
func funcTypeString(ft *ast.FuncType) string {
	sig := "(" + fieldListString(ft.Params) + ")"
	switch res := ft.Results; {
	case res == nil || len(res.List) == 0:
	case len(res.List) == 1 && len(res.List[0].Names) == 0:
		sig += " " + exprString(res.List[0].Type)
	default:
		sig += " (" + fieldListString(res) + ")"
	}
	return sig
}

// typeSignature renders a type header such as "type Set[T comparable] struct".
func typeSignature(ts *ast.TypeSpec) (types.SymbolKind, string) {
	head := "type " + ts.Name.Name
	if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
		head += "[" + fieldListString(ts.TypeParams) + "]"
	}
	switch t := ts.Type.(type) {
	case *ast.StructType:
		return types.Struct, head + " struct"
	case *ast.InterfaceType:
		return types.Interface, head + " interface"
	default:
		if ts.Assign.IsValid() {
			return types.Type, head + " = " + exprString(t)
		}
		return types.Type, head + " " + exprString(t)
	}
}

// fieldListString joins the fields of fl as "a, b int, c string".
func fieldListString(fl *ast.FieldList) string {
	if fl == nil {
		return ""
	}
	parts := make([]string, 0, len(fl.List))
	for _, f := range fl.List {
		names := make([]string, 0, len(f.Names))
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
		if len(names) == 0 {
			parts = append(parts, exprString(f.Type))
			continue
		}
		parts = append(parts, strings.Join(names, ", ")+" "+exprString(f.Type))
	}
	return strings.Join(parts, ", ")
}

// exprString renders a type expression as Go source.
func exprString(expr ast.Expr) string {
	if expr == nil {
		return ""
	}
	return gotypes.ExprString(expr)
}
