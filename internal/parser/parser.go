package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"

	"guardcheck/internal/token"
)

// Extensions lists the source file extensions the front end accepts.
var Extensions = []string{".c", ".h", ".cpp", ".cxx", ".cc", ".c++", ".hpp", ".hxx", ".hh", ".h++"}

// GetLanguage returns the grammar for a file name. Headers are parsed as C++.
func GetLanguage(filename string) (*sitter.Language, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".c":
		return c.GetLanguage(), nil
	case ".cpp", ".cxx", ".cc", ".c++", ".hpp", ".hxx", ".hh", ".h++", ".h":
		return cpp.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSourceFile reports whether the path has one of Extensions.
func IsSourceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ParseFile reads and lowers one source file.
func ParseFile(ctx context.Context, path string) (*token.List, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return ParseSource(ctx, path, source)
}

// ParseSource parses source with tree-sitter and lowers the syntax tree into
// a token list with AST links, variables and function scopes. The path only
// selects the grammar and names the list.
func ParseSource(ctx context.Context, path string, source []byte) (*token.List, error) {
	lang, err := GetLanguage(path)
	if err != nil {
		return nil, err
	}

	p := sitter.NewParser()
	p.SetLanguage(lang)
	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	defer tree.Close()

	b := newBuilder(path, source)
	root := tree.RootNode()
	b.tokenize(root)
	if err := b.list.LinkBrackets(); err != nil {
		return nil, fmt.Errorf("failed to link tokens: %w", err)
	}
	for _, pair := range b.templates {
		b.list.SetLink(pair[0], pair[1])
	}
	b.top(root)
	return b.list, nil
}

type builder struct {
	src  []byte
	list *token.List

	// token start offsets, parallel to list.Tokens()
	starts    []uint32
	templates [][2]*token.Token

	blocks  []map[string]*token.Variable
	globals map[string]*token.Variable
}

func newBuilder(path string, src []byte) *builder {
	return &builder{
		src:     src,
		list:    token.NewList(path),
		globals: make(map[string]*token.Variable),
	}
}

var atomicNodes = map[string]bool{
	"string_literal":     true,
	"char_literal":       true,
	"raw_string_literal": true,
	"system_lib_string":  true,
}

var skippedNodes = map[string]bool{
	"comment":              true,
	"preproc_include":      true,
	"preproc_def":          true,
	"preproc_function_def": true,
	"preproc_call":         true,
}

var conditionalDirectives = map[string]bool{
	"preproc_if":    true,
	"preproc_ifdef": true,
	"preproc_else":  true,
	"preproc_elif":  true,
}

// tokenize appends one token per leaf in program order.
func (b *builder) tokenize(n *sitter.Node) {
	typ := n.Type()
	switch {
	case skippedNodes[typ]:
		return
	case atomicNodes[typ] || n.ChildCount() == 0:
		b.appendLeaf(n)
		return
	}

	conditional := conditionalDirectives[typ]
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if conditional {
			field := n.FieldNameForChild(i)
			if strings.HasPrefix(child.Type(), "#") || field == "name" || field == "condition" {
				continue
			}
		}
		b.tokenize(child)
	}

	if typ == "template_argument_list" || typ == "template_parameter_list" {
		open, close := b.first(n), b.last(n)
		if open.Str() == "<" && close.Str() == ">" {
			b.templates = append(b.templates, [2]*token.Token{open, close})
		}
	}
}

func (b *builder) appendLeaf(n *sitter.Node) {
	if n.IsMissing() || n.EndByte() <= n.StartByte() {
		return
	}
	text := n.Content(b.src)
	if strings.TrimSpace(text) == "" {
		return
	}
	kind := token.KindOf(text)
	switch n.Type() {
	case "string_literal", "raw_string_literal", "system_lib_string":
		kind = token.KindString
	case "char_literal":
		kind = token.KindChar
	case "number_literal":
		kind = token.KindNumber
	}
	pos := n.StartPoint()
	b.list.Append(text, kind, int(pos.Row)+1, int(pos.Column)+1)
	b.starts = append(b.starts, n.StartByte())
}

// first returns the first token inside n.
func (b *builder) first(n *sitter.Node) *token.Token {
	if n == nil {
		return nil
	}
	i := sort.Search(len(b.starts), func(i int) bool { return b.starts[i] >= n.StartByte() })
	if i < len(b.starts) && b.starts[i] < n.EndByte() {
		return b.list.Tokens()[i]
	}
	return nil
}

// last returns the last token inside n.
func (b *builder) last(n *sitter.Node) *token.Token {
	if n == nil {
		return nil
	}
	i := sort.Search(len(b.starts), func(i int) bool { return b.starts[i] >= n.EndByte() }) - 1
	if i >= 0 && b.starts[i] >= n.StartByte() {
		return b.list.Tokens()[i]
	}
	return nil
}

// leaf returns the token of the first direct child spelled typ.
func (b *builder) leaf(n *sitter.Node, typ string) *token.Token {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == typ {
			return b.first(child)
		}
	}
	return nil
}

func (b *builder) leaves(n *sitter.Node, typ string) []*token.Token {
	var toks []*token.Token
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == typ {
			toks = append(toks, b.first(child))
		}
	}
	return toks
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	if n == nil {
		return out
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (b *builder) pushBlock() {
	b.blocks = append(b.blocks, make(map[string]*token.Variable))
}

func (b *builder) popBlock() {
	b.blocks = b.blocks[:len(b.blocks)-1]
}

func (b *builder) declare(v *token.Variable) {
	if len(b.blocks) == 0 {
		b.globals[v.Name()] = v
		return
	}
	b.blocks[len(b.blocks)-1][v.Name()] = v
}

func (b *builder) lookup(name string) *token.Variable {
	for i := len(b.blocks) - 1; i >= 0; i-- {
		if v, ok := b.blocks[i][name]; ok {
			return v
		}
	}
	return b.globals[name]
}

func (b *builder) bind(tok *token.Token) {
	if tok == nil || tok.VarID() != 0 {
		return
	}
	b.list.Bind(tok, b.lookup(tok.Str()))
}
