package detectors

import (
	"strings"

	"guardcheck/internal/token"
)

// Anchor is the token span a chain record refers to.
type Anchor struct {
	Start *token.Token
	End   *token.Token
}

// ChainRecord is one guarded prefix of a pointer-member chain: for a->b->c
// the prefix a->b must be null checked before ->c is read.
type ChainRecord struct {
	// Words is the normalized prefix, one entry per token ("a", ".", "b").
	Words []string
	// Original is the prefix as written ("a->b").
	Original string
	// Access is the whole expression dereferencing the prefix ("a->b->c").
	Access string
	Anchor Anchor
}

// Signature joins the normalized words with single spaces.
func (r ChainRecord) Signature() string {
	return strings.Join(r.Words, " ")
}

// BuildChains climbs from candidate through member accesses and calls and
// records every prefix that is itself dereferenced by a later "->". The
// first hop is never recorded.
func BuildChains(candidate *token.Token) []ChainRecord {
	var records []ChainRecord
	end := candidate
	hops := 0

	cur := candidate
	for parent := cur.ASTParent(); parent != nil; cur, parent = parent, parent.ASTParent() {
		switch {
		case parent.Str() == "." && parent.ASTOperand1() == cur:
			member := memberEnd(parent.ASTOperand2())
			if parent.OriginalName() == "->" && hops > 0 {
				records = append(records, ChainRecord{
					Words:    token.Words(candidate, end),
					Original: token.Render(candidate, end),
					Access:   token.Render(candidate, member),
					Anchor:   Anchor{Start: candidate, End: parent.Previous()},
				})
			}
			end = member
		case parent.Str() == "(" && parent.ASTOperand1() == cur && !isCast(parent) && parent.Link() != nil:
			end = parent.Link()
		default:
			return records
		}
		hops++
	}
	return records
}

// memberEnd is the last token of a member name, past any template
// arguments.
func memberEnd(member *token.Token) *token.Token {
	if member.StrAt(1) == "<" && member.LinkAt(1) != nil {
		return member.LinkAt(1)
	}
	return member
}
