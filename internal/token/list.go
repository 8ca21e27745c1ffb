package token

import (
	"fmt"
	"strings"
	"unicode"
)

// Scope is a function body bounded by its braces. Every scan done by the
// checks stays between BodyStart and BodyEnd.
type Scope struct {
	name      string
	bodyStart *Token
	bodyEnd   *Token
}

func (s *Scope) Name() string      { return s.name }
func (s *Scope) BodyStart() *Token { return s.bodyStart }
func (s *Scope) BodyEnd() *Token   { return s.bodyEnd }

// Contains reports whether tok lies inside the body, braces included.
func (s *Scope) Contains(tok *Token) bool {
	return tok != nil && tok.index >= s.bodyStart.index && tok.index <= s.bodyEnd.index
}

// List owns every token, variable and scope of one translation unit.
// Checks only read from it.
type List struct {
	path      string
	tokens    []*Token
	variables []*Variable
	scopes    []*Scope
}

func NewList(path string) *List {
	return &List{path: path}
}

func (l *List) Path() string { return l.path }
func (l *List) Len() int     { return len(l.tokens) }

func (l *List) Front() *Token {
	if len(l.tokens) == 0 {
		return nil
	}
	return l.tokens[0]
}

func (l *List) Back() *Token {
	if len(l.tokens) == 0 {
		return nil
	}
	return l.tokens[len(l.tokens)-1]
}

func (l *List) Tokens() []*Token       { return l.tokens }
func (l *List) Variables() []*Variable { return l.variables }
func (l *List) Scopes() []*Scope       { return l.scopes }

// Append adds a token at the end of the list.
func (l *List) Append(str string, kind Kind, line, column int) *Token {
	tok := &Token{
		str:    str,
		kind:   kind,
		line:   line,
		column: column,
		index:  len(l.tokens),
	}
	if back := l.Back(); back != nil {
		back.next = tok
		tok.prev = back
	}
	l.tokens = append(l.tokens, tok)
	return tok
}

// AppendText splits space separated words and appends them on one line.
// Used to build small lists by hand.
func (l *List) AppendText(text string, line int) []*Token {
	var toks []*Token
	column := 1
	for _, word := range strings.Fields(text) {
		toks = append(toks, l.Append(word, KindOf(word), line, column))
		column += len(word) + 1
	}
	return toks
}

// Normalize replaces the spelling of tok and remembers the original one.
func (l *List) Normalize(tok *Token, str string) {
	if tok.str == str {
		return
	}
	tok.originalName = tok.str
	tok.str = str
}

// SetAST makes parent the AST parent of op1 and op2. Either operand may be nil.
func (l *List) SetAST(parent, op1, op2 *Token) {
	if parent == nil {
		return
	}
	parent.astOperand1 = op1
	parent.astOperand2 = op2
	if op1 != nil {
		op1.astParent = parent
	}
	if op2 != nil {
		op2.astParent = parent
	}
}

func (l *List) SetLink(open, close *Token) {
	if open == nil || close == nil {
		return
	}
	open.link = close
	close.link = open
}

// LinkBrackets pairs ( ) [ ] { } with a stack. Unbalanced closers are left
// unlinked.
func (l *List) LinkBrackets() error {
	var stack []*Token
	var unbalanced int
	for _, tok := range l.tokens {
		switch tok.str {
		case "(", "[", "{":
			stack = append(stack, tok)
		case ")", "]", "}":
			if len(stack) == 0 || !pairs(stack[len(stack)-1].str, tok.str) {
				unbalanced++
				continue
			}
			l.SetLink(stack[len(stack)-1], tok)
			stack = stack[:len(stack)-1]
		}
	}
	unbalanced += len(stack)
	if unbalanced > 0 {
		return fmt.Errorf("%s: %d unbalanced brackets", l.path, unbalanced)
	}
	return nil
}

func pairs(open, close string) bool {
	switch open {
	case "(":
		return close == ")"
	case "[":
		return close == "]"
	case "{":
		return close == "}"
	}
	return false
}

// AddVariable registers a variable and binds its name token to it.
func (l *List) AddVariable(spec VariableSpec) *Variable {
	v := &Variable{
		id:        len(l.variables) + 1,
		nameToken: spec.Name,
		kind:      spec.Kind,
		pointer:   spec.Pointer,
		array:     spec.Array,
		reference: spec.Reference,
		typeStart: spec.TypeStart,
		typeEnd:   spec.TypeEnd,
	}
	l.variables = append(l.variables, v)
	l.Bind(spec.Name, v)
	return v
}

// Bind points tok at the variable v.
func (l *List) Bind(tok *Token, v *Variable) {
	if tok == nil || v == nil {
		return
	}
	tok.varID = v.id
	tok.variable = v
}

func (l *List) AddScope(name string, bodyStart, bodyEnd *Token) *Scope {
	s := &Scope{name: name, bodyStart: bodyStart, bodyEnd: bodyEnd}
	l.scopes = append(l.scopes, s)
	return s
}

var keywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "default": true, "break": true, "continue": true,
	"return": true, "goto": true, "try": true, "catch": true, "throw": true,
	"new": true, "delete": true, "sizeof": true, "decltype": true, "typeof": true,
	"struct": true, "class": true, "union": true, "enum": true, "namespace": true,
	"template": true, "typename": true, "using": true, "operator": true, "this": true,
}

var punctuation = map[string]bool{
	"(": true, ")": true, "[": true, "]": true, "{": true, "}": true, ";": true,
}

// KindOf guesses the kind of a token from its spelling.
func KindOf(str string) Kind {
	if str == "" {
		return KindPunct
	}
	switch {
	case str == "true" || str == "false":
		return KindBoolean
	case keywords[str]:
		return KindKeyword
	case punctuation[str]:
		return KindPunct
	}
	first := rune(str[0])
	switch {
	case first == '"' || strings.HasPrefix(str, "L\"") || strings.HasPrefix(str, "u8\"") || strings.HasPrefix(str, "R\""):
		return KindString
	case first == '\'' || strings.HasPrefix(str, "L'"):
		return KindChar
	case unicode.IsDigit(first):
		return KindNumber
	case first == '_' || unicode.IsLetter(first):
		return KindName
	}
	return KindOp
}
