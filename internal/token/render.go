package token

import "strings"

// Render spells the tokens from start to end (both included) the way they
// would be written in source: "a->b->get(x, y)".
func Render(start, end *Token) string {
	var sb strings.Builder
	var prev *Token
	for tok := start; tok != nil; tok = tok.Next() {
		if prev != nil && needsSpace(prev, tok) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Spelling())
		if tok == end {
			break
		}
		prev = tok
	}
	return sb.String()
}

// Words returns the normalized spellings of the tokens from start to end.
func Words(start, end *Token) []string {
	var words []string
	for tok := start; tok != nil; tok = tok.Next() {
		words = append(words, tok.Str())
		if tok == end {
			break
		}
	}
	return words
}

// LineText renders every token on the line of tok.
func LineText(tok *Token) string {
	if tok == nil {
		return ""
	}
	start, end := tok, tok
	for start.Previous() != nil && start.Previous().Line() == tok.Line() {
		start = start.Previous()
	}
	for end.Next() != nil && end.Next().Line() == tok.Line() {
		end = end.Next()
	}
	return Render(start, end)
}

func needsSpace(prev, tok *Token) bool {
	if prev.Str() == "," || binary(prev) || binary(tok) {
		return true
	}
	word := func(t *Token) bool { return t.IsName() || t.IsLiteral() }
	return word(prev) && word(tok)
}

// binary reports whether tok is an infix operator other than member access
// or scope resolution.
func binary(tok *Token) bool {
	if tok.Kind() != KindOp || tok.ASTOperand1() == nil || tok.ASTOperand2() == nil {
		return false
	}
	switch tok.Str() {
	case ".", "::", ",":
		return false
	}
	return true
}
