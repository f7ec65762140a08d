// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package tags

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/petar-djukic/repomap/pkg/types"
)

const maxSignatureLength = 200

var commentNodes = map[string]bool{
	"comment":       true,
	"line_comment":  true,
	"block_comment": true,
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	identRe      = regexp.MustCompile(`^~?[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// defKinds maps @def.<kind> capture names to symbol kinds.
var defKinds = map[string]types.SymbolKind{
	"def.function":  types.Function,
	"def.method":    types.Method,
	"def.class":     types.Class,
	"def.struct":    types.Struct,
	"def.interface": types.Interface,
	"def.enum":      types.Enum,
	"def.namespace": types.Namespace,
	"def.type":      types.Type,
	"def.variable":  types.Variable,
	"def.constant":  types.Constant,
}

// functionNodes end the search for an enclosing type: a function nested in a
// method is a plain function.
var functionNodes = map[string]bool{
	"function_definition":  true,
	"function_item":        true,
	"function_declaration": true,
	"method_definition":    true,
	"arrow_function":       true,
	"lambda_expression":    true,
}

// langSpec holds the tree-sitter language and tag query for one language.
//
// The query uses three kinds of captures: @name marks the identifier that a
// definition declares, @def.<kind> marks the declaring node, and @ref marks a
// referencing identifier.
type langSpec struct {
	name         string
	extensions   []string
	lang         *sitter.Language
	query        string
	methodScopes map[string]bool // ancestor node types that turn a function into a method
}

type treeSitterAdapter struct {
	spec langSpec

	once     sync.Once
	query    *sitter.Query
	queryErr error
}

func newTreeSitterAdapter(spec langSpec) *treeSitterAdapter {
	return &treeSitterAdapter{spec: spec}
}

func (a *treeSitterAdapter) Language() string     { return a.spec.name }
func (a *treeSitterAdapter) Extensions() []string { return a.spec.extensions }

// compiled returns the tag query, compiling it on first use. A compiled query
// is safe to share; cursors and parsers are not.
func (a *treeSitterAdapter) compiled() (*sitter.Query, error) {
	a.once.Do(func() {
		a.query, a.queryErr = sitter.NewQuery([]byte(a.spec.query), a.spec.lang)
	})
	return a.query, a.queryErr
}

type refCandidate struct {
	start uint32
	tag   types.Tag
}

// Tags parses src and runs the tag query over the whole tree. ERROR nodes
// produced by tree-sitter's recovery are ignored, so a syntax error only costs
// the declarations it spans.
func (a *treeSitterAdapter) Tags(ctx context.Context, path string, src []byte) []types.Tag {
	if len(src) == 0 {
		return nil
	}
	q, err := a.compiled()
	if err != nil {
		return nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(a.spec.lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var (
		tags     []types.Tag
		refs     []refCandidate
		defNames = make(map[uint32]bool)
		refSeen  = make(map[uint32]bool)
	)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}

		var nameNode, defNode, refNode *sitter.Node
		kind := types.UnknownKind
		for _, c := range m.Captures {
			cname := q.CaptureNameForId(c.Index)
			switch {
			case cname == "name":
				nameNode = c.Node
			case cname == "ref":
				refNode = c.Node
			case strings.HasPrefix(cname, "def."):
				defNode = c.Node
				kind = defKinds[cname]
			}
		}

		switch {
		case nameNode != nil && defNode != nil:
			if defNames[nameNode.StartByte()] {
				continue
			}
			if tag, ok := a.definition(path, src, nameNode, defNode, kind); ok {
				defNames[nameNode.StartByte()] = true
				tags = append(tags, tag)
			}
		case refNode != nil:
			start := refNode.StartByte()
			if refSeen[start] {
				continue
			}
			refSeen[start] = true
			name := refNode.Content(src)
			if !identRe.MatchString(name) {
				continue
			}
			refs = append(refs, refCandidate{start: start, tag: types.Tag{
				Name: name,
				Kind: types.Reference,
				File: path,
				Line: int(refNode.StartPoint().Row) + 1,
			}})
		}
	}

	// A definition's own name node is not a reference to itself.
	for _, r := range refs {
		if !defNames[r.start] {
			tags = append(tags, r.tag)
		}
	}
	sortTags(tags)
	return tags
}

// definition builds a definition tag from a match. It reports false for names
// that are not plain identifiers after qualification is stripped.
func (a *treeSitterAdapter) definition(path string, src []byte, nameNode, defNode *sitter.Node, kind types.SymbolKind) (types.Tag, bool) {
	name, qualified := normalizeName(nameNode.Content(src))
	if !validName(name) {
		return types.Tag{}, false
	}

	root := declarationRoot(defNode)
	if root.Type() == "parameter_declaration" {
		return types.Tag{}, false
	}
	if kind == types.Function && (qualified || a.insideType(root)) {
		kind = types.Method
	}

	sig := signature(root, src)
	if sig == "" {
		sig = name
	}
	return types.Tag{
		Name:       name,
		Kind:       types.Definition,
		SymbolKind: kind,
		File:       path,
		Line:       int(nameNode.StartPoint().Row) + 1,
		Signature:  sig,
	}, true
}

// insideType reports whether n is declared in a type body.
func (a *treeSitterAdapter) insideType(n *sitter.Node) bool {
	if len(a.spec.methodScopes) == 0 {
		return false
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if a.spec.methodScopes[p.Type()] {
			return true
		}
		if functionNodes[p.Type()] {
			return false
		}
	}
	return false
}

// declarationRoot climbs from a captured declarator to the declaration that
// owns it, and onto an enclosing template declaration.
func declarationRoot(n *sitter.Node) *sitter.Node {
	for strings.HasSuffix(n.Type(), "declarator") {
		p := n.Parent()
		if p == nil {
			break
		}
		n = p
	}
	if p := n.Parent(); p != nil && p.Type() == "template_declaration" {
		n = p
	}
	return n
}

// signature returns the declaration text up to its body. Comments between
// the header and the body are left out.
func signature(n *sitter.Node, src []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if b := bodyNode(n); b != nil && b.StartByte() > start {
		end = b.StartByte()
		if e := codeEnd(n, end); e > start {
			end = e
		}
	}
	sig := collapseWhitespace(string(src[start:end]))
	sig = strings.TrimRight(sig, " {;:=")
	if len(sig) > maxSignatureLength {
		sig = cutRunes(sig, maxSignatureLength-3) + "..."
	}
	return sig
}

// codeEnd returns the end of the last non-comment token of n that ends at or
// before limit, or 0 if there is none.
func codeEnd(n *sitter.Node, limit uint32) uint32 {
	var end uint32
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.StartByte() >= limit {
			break
		}
		if commentNodes[c.Type()] {
			continue
		}
		if c.EndByte() <= limit {
			end = max(end, c.EndByte())
			continue
		}
		end = max(end, codeEnd(c, limit))
	}
	return end
}

// cutRunes cuts s to at most n bytes without splitting a rune.
func cutRunes(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// bodyNode returns the node where a declaration's body (or constructor
// initializer list) begins, or nil for declarations without one.
func bodyNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "template_declaration" {
		if c := int(n.NamedChildCount()); c > 0 {
			return bodyNode(n.NamedChild(c - 1))
		}
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "field_initializer_list" {
			return c
		}
	}
	if b := n.ChildByFieldName("body"); b != nil {
		return b
	}
	if v := n.ChildByFieldName("value"); v != nil {
		return bodyNode(v)
	}
	return nil
}

// normalizeName strips namespace qualification and template arguments.
func normalizeName(raw string) (name string, qualified bool) {
	name = collapseWhitespace(raw)
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
		qualified = true
	}
	if !strings.HasPrefix(name, "operator") {
		if i := strings.IndexByte(name, '<'); i > 0 {
			name = name[:i]
		}
	}
	return name, qualified
}

func validName(name string) bool {
	if strings.HasPrefix(name, "operator") && len(name) > len("operator") {
		return true
	}
	return identRe.MatchString(name)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
