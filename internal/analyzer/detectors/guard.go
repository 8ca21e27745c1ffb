package detectors

import "guardcheck/internal/token"

var nullLiterals = map[string]bool{
	"NULL":    true,
	"nullptr": true,
}

func isNullLiteral(tok *token.Token) bool {
	return tok != nil && nullLiterals[tok.Str()]
}

// HasPrecedingGuard walks back from site to the start of scope looking for
// the same spelling under a negation or compared against a null literal.
// Spellings are compared as text, so two variables with the same name guard
// each other.
func HasPrecedingGuard(scope *token.Scope, site *token.Token) bool {
	for tok := site.Previous(); tok != nil && tok != scope.BodyStart(); tok = tok.Previous() {
		if tok.Str() != site.Str() {
			continue
		}
		parent := tok.ASTParent()
		if parent == nil {
			continue
		}
		if parent.Str() == "!" {
			return true
		}
		if token.Match(parent, "==|!=") &&
			(isNullLiteral(parent.ASTOperand1()) || isNullLiteral(parent.ASTOperand2())) {
			return true
		}
	}
	return false
}

// GuardStrategy answers the questions the checks resolve by matching text
// rather than by block structure.
type GuardStrategy interface {
	// ChainGuarded reports whether record's expression is null checked
	// before the chain is dereferenced.
	ChainGuarded(scope *token.Scope, record ChainRecord) bool
	// InsideTry reports whether call appears between try and catch.
	InsideTry(try, catch, call *token.Token) bool
}

// TextualGuardStrategy matches token spellings and ignores nesting.
type TextualGuardStrategy struct{}

func (TextualGuardStrategy) ChainGuarded(scope *token.Scope, record ChainRecord) bool {
	forms := guardForms(record.Words)
	for tok := scope.BodyStart(); tok != nil && tok != record.Anchor.End; tok = tok.Next() {
		for i, form := range forms {
			if !token.MatchWords(tok, form) {
				continue
			}
			// "! a . b . c" negates a longer expression
			if i == 0 && token.Match(tok.TokAt(len(form)), ".|(|[") {
				continue
			}
			return true
		}
	}
	return false
}

func (TextualGuardStrategy) InsideTry(try, catch, call *token.Token) bool {
	for tok := try; tok != nil && tok != catch; tok = tok.Next() {
		if tok.Str() == call.Str() {
			return true
		}
	}
	return false
}

// guardForms spells the null checks that protect the expression words.
func guardForms(words []string) [][]string {
	join := func(parts ...[]string) []string {
		var out []string
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}
	forms := [][]string{join([]string{"!"}, words)}
	for _, null := range []string{"NULL", "nullptr"} {
		for _, op := range []string{"==", "!="} {
			forms = append(forms,
				join([]string{null, op}, words),
				join(words, []string{op, null}))
		}
	}
	return forms
}
