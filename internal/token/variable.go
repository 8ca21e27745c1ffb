package token

import "strings"

// VariableKind tells where a variable was declared
type VariableKind int

const (
	VariableLocal VariableKind = iota
	VariableArgument
	VariableThrow // catch clause parameter
	VariableGlobal
)

// Variable is the symbol a name token is bound to through its var id.
type Variable struct {
	id        int
	nameToken *Token
	kind      VariableKind

	pointer   bool
	array     bool
	reference bool

	typeStart *Token
	typeEnd   *Token
}

// VariableSpec describes a variable to register in a List.
type VariableSpec struct {
	Name      *Token
	Kind      VariableKind
	Pointer   bool
	Array     bool
	Reference bool
	TypeStart *Token
	TypeEnd   *Token
}

var stlStringTypes = map[string]bool{
	"string":    true,
	"wstring":   true,
	"u16string": true,
	"u32string": true,
}

func (v *Variable) ID() int { return v.id }
func (v *Variable) NameToken() *Token { return v.nameToken }
func (v *Variable) Name() string { return v.nameToken.Str() }
func (v *Variable) Kind() VariableKind { return v.kind }
func (v *Variable) IsLocal() bool { return v.kind == VariableLocal }
func (v *Variable) IsArgument() bool { return v.kind == VariableArgument }
func (v *Variable) IsPointer() bool { return v.pointer }
func (v *Variable) IsArray() bool { return v.array }
func (v *Variable) IsReference() bool { return v.reference }
func (v *Variable) TypeStartToken() *Token { return v.typeStart }
func (v *Variable) TypeEndToken() *Token { return v.typeEnd }

// TypeTokens returns the tokens from the type start to the type end, both
// included.
func (v *Variable) TypeTokens() []*Token {
	var toks []*Token
	if v.typeStart == nil {
		return toks
	}
	for tok := v.typeStart; tok != nil; tok = tok.Next() {
		toks = append(toks, tok)
		if tok == v.typeEnd || tok == v.nameToken {
			break
		}
	}
	return toks
}

// TypeString joins the type tokens, each followed by a space
// ("boost :: bad_lexical_cast & ").
func (v *Variable) TypeString() string {
	var sb strings.Builder
	for _, tok := range v.TypeTokens() {
		sb.WriteString(tok.Str())
		sb.WriteByte(' ')
	}
	return sb.String()
}

// IsStlStringType reports std::string and friends, qualified or not.
func (v *Variable) IsStlStringType() bool {
	return v.IsStlType(stlStringTypes)
}

// IsStlType reports whether the declared type is one of names, either
// spelled std::name or bare name.
func (v *Variable) IsStlType(names map[string]bool) bool {
	toks := v.TypeTokens()
	for i, tok := range toks {
		if tok.Str() == "const" || tok.Str() == "volatile" {
			continue
		}
		if Match(tok, "std ::") && i+2 < len(toks) {
			return names[toks[i+2].Str()]
		}
		return names[tok.Str()]
	}
	return false
}

// HasTypeToken reports whether any type token is spelled like one of strs.
func (v *Variable) HasTypeToken(strs ...string) bool {
	for _, tok := range v.TypeTokens() {
		for _, s := range strs {
			if tok.Str() == s {
				return true
			}
		}
	}
	return false
}
