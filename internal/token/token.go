package token

import "strings"

// Kind classifies a lexical unit
type Kind int

const (
	KindName Kind = iota
	KindKeyword
	KindNumber
	KindString
	KindChar
	KindBoolean
	KindOp
	KindPunct
)

// Token is one lexical unit of a translation unit. Tokens form a doubly
// linked list in program order and carry cppcheck-style AST links: an
// operator token is the parent of its operands.
type Token struct {
	str          string
	originalName string
	kind         Kind

	varID    int
	variable *Variable

	prev *Token
	next *Token
	link *Token

	astParent   *Token
	astOperand1 *Token
	astOperand2 *Token

	line   int
	column int
	index  int
}

func (t *Token) Str() string {
	if t == nil {
		return ""
	}
	return t.str
}

// OriginalName is the source spelling when Str was normalized, e.g. "->"
// for a member access whose Str is ".".
func (t *Token) OriginalName() string {
	if t == nil {
		return ""
	}
	return t.originalName
}

// Spelling returns the original spelling if there is one, else Str.
func (t *Token) Spelling() string {
	if t.OriginalName() != "" {
		return t.originalName
	}
	return t.Str()
}

func (t *Token) Kind() Kind { return t.kind }

func (t *Token) VarID() int {
	if t == nil {
		return 0
	}
	return t.varID
}

func (t *Token) Variable() *Variable {
	if t == nil {
		return nil
	}
	return t.variable
}

func (t *Token) Next() *Token {
	if t == nil {
		return nil
	}
	return t.next
}

func (t *Token) Previous() *Token {
	if t == nil {
		return nil
	}
	return t.prev
}

// TokAt walks n tokens forward (n > 0) or backward (n < 0).
func (t *Token) TokAt(n int) *Token {
	tok := t
	for ; n > 0 && tok != nil; n-- {
		tok = tok.next
	}
	for ; n < 0 && tok != nil; n++ {
		tok = tok.prev
	}
	return tok
}

func (t *Token) StrAt(n int) string {
	return t.TokAt(n).Str()
}

// Link is the matching bracket for ( ) [ ] { } and template < >.
func (t *Token) Link() *Token {
	if t == nil {
		return nil
	}
	return t.link
}

func (t *Token) LinkAt(n int) *Token {
	return t.TokAt(n).Link()
}

func (t *Token) ASTParent() *Token {
	if t == nil {
		return nil
	}
	return t.astParent
}

func (t *Token) ASTOperand1() *Token {
	if t == nil {
		return nil
	}
	return t.astOperand1
}

func (t *Token) ASTOperand2() *Token {
	if t == nil {
		return nil
	}
	return t.astOperand2
}

// IsUnaryOp reports whether the token is s applied to a single operand.
func (t *Token) IsUnaryOp(s string) bool {
	return t != nil && t.str == s && t.astOperand1 != nil && t.astOperand2 == nil
}

func (t *Token) IsName() bool {
	return t != nil && (t.kind == KindName || t.kind == KindKeyword)
}

func (t *Token) IsLiteral() bool {
	if t == nil {
		return false
	}
	switch t.kind {
	case KindNumber, KindString, KindChar, KindBoolean:
		return true
	}
	return false
}

func (t *Token) IsOp() bool {
	return t != nil && t.kind == KindOp
}

// IsUpperCaseName reports identifiers such as CATCH_ALL: letters are all
// upper case and the spelling is longer than one character.
func (t *Token) IsUpperCaseName() bool {
	if t == nil || t.kind != KindName || len(t.str) < 2 {
		return false
	}
	return strings.ToUpper(t.str) == t.str && strings.ToLower(t.str) != t.str
}

func (t *Token) Line() int {
	if t == nil {
		return 0
	}
	return t.line
}

func (t *Token) Column() int {
	if t == nil {
		return 0
	}
	return t.column
}

// Index is the position of the token in its list.
func (t *Token) Index() int { return t.index }

func (t *Token) String() string {
	return t.Spelling()
}
