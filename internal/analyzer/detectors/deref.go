package detectors

import "guardcheck/internal/token"

// Verdict is the classification of one use of a pointer.
type Verdict int

const (
	NotDereference Verdict = iota
	Dereference
	// Ambiguous uses are treated as NotDereference by every caller.
	Ambiguous
)

func (v Verdict) String() string {
	switch v {
	case NotDereference:
		return "not-dereference"
	case Dereference:
		return "dereference"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

var streamTypes = map[string]bool{
	"fstream": true, "ifstream": true, "iostream": true, "istream": true,
	"istringstream": true, "ofstream": true, "ostream": true, "ostringstream": true,
	"stringstream": true, "wistringstream": true, "wostringstream": true, "wstringstream": true,
}

// Classify decides from the AST around tok whether tok is dereferenced.
// Only strong local evidence yields Dereference.
func Classify(tok *token.Token) Verdict {
	parent := tok.ASTParent()
	if parent == nil {
		return NotDereference
	}
	if parent.Str() == "." && parent.ASTOperand2() == tok {
		return Classify(parent)
	}

	firstOperand := parent.ASTOperand1() == tok
	for isCast(parent) {
		parent = parent.ASTParent()
		if parent == nil {
			return NotDereference
		}
	}

	if parent.IsUnaryOp("*") && !token.Match(parent.TokAt(-2), "sizeof|decltype|typeof") {
		return Dereference
	}

	if firstOperand && parent.Str() == "[" && !parent.ASTParent().IsUnaryOp("&") {
		if declaredHere(tok) {
			return NotDereference
		}
		return Dereference
	}

	outer := parent
	for token.Match(outer, "[|.") {
		outer = outer.ASTParent()
	}
	if outer != parent && outer.IsUnaryOp("&") {
		return NotDereference
	}

	if firstOperand && parent.Str() == "." && !parent.ASTParent().IsUnaryOp("&") {
		return memberAccess(tok, parent)
	}

	if token.Match(tok, "%name% (") {
		return Dereference
	}

	if token.Match(tok, "%var% = %var% .") && tok.VarID() == tok.TokAt(2).VarID() {
		return Dereference
	}

	if token.Match(parent.TokAt(-3), "std :: string|wstring (") && tok.StrAt(1) == ")" {
		return Dereference
	}
	if token.Match(parent.Previous(), "%name% (") && tok.StrAt(1) == ")" {
		if isStringValue(tok.TokAt(-2).Variable()) {
			return Dereference
		}
	}

	if !firstOperand && token.Match(parent, "<<|>>") && streamsCharPointer(tok, parent) {
		return Dereference
	}

	var other *token.Token
	if token.Match(parent, "+|==|!=") || (parent.Str() == "=" && !firstOperand) {
		if parent.ASTOperand1() == tok && parent.ASTOperand2() != nil {
			other = parent.ASTOperand2()
		} else if parent.ASTOperand1() != nil && parent.ASTOperand2() == tok {
			other = parent.ASTOperand1()
		}
	}
	if isStringValue(other.Variable()) {
		return Dereference
	}

	return NotDereference
}

// isCast reports whether tok is a parenthesis holding a C style cast.
func isCast(tok *token.Token) bool {
	return tok.Str() == "(" && tok.ASTOperand2() == nil && tok.StrAt(1) != ")"
}

// declaredHere reports whether the subscript on tok belongs to the
// declaration of its variable.
func declaredHere(tok *token.Token) bool {
	v := tok.Variable()
	if v == nil {
		return false
	}
	return v.NameToken() == tok || v.TypeStartToken().Line() == tok.Line()
}

func memberAccess(tok, dot *token.Token) Verdict {
	call := dot.ASTParent()
	if call.Str() != "(" {
		return Dereference
	}
	if token.Match(call.ASTOperand1(), "sizeof|decltype|typeof|alignof") {
		return NotDereference
	}
	// p->f()
	if call.ASTOperand1() == dot && !isCast(call) {
		return Dereference
	}
	if call.ASTOperand2() != dot || call == leftmost(tok).Previous() {
		return Dereference
	}
	return Ambiguous
}

// leftmost returns the first token of the expression rooted at tok.
func leftmost(tok *token.Token) *token.Token {
	for op := tok.ASTOperand1(); op != nil && op.Index() < tok.Index(); op = tok.ASTOperand1() {
		tok = op
	}
	return tok
}

func isStringValue(v *token.Variable) bool {
	return v != nil && !v.IsPointer() && !v.IsArray() && v.IsStlStringType()
}

// streamsCharPointer reports whether tok, a character pointer, is written to
// or read from a stream object at the start of the statement.
func streamsCharPointer(tok, op *token.Token) bool {
	v := tok.Variable()
	if v == nil || !v.IsPointer() || !token.Match(v.TypeStartToken(), "char|wchar_t") {
		return false
	}

	start := op
	for start != nil && !token.Match(start.Previous(), ";|{|}|:") {
		start = start.Previous()
	}
	if start == nil {
		return false
	}
	if token.Match(start, "std :: cout|cin|cerr|clog|wcout|wcin|wcerr|wclog") {
		return true
	}
	if start.VarID() != 0 {
		return start.Variable().IsStlType(streamTypes)
	}
	return false
}
