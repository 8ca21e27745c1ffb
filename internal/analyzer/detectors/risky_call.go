package detectors

import (
	"sort"
	"strings"

	"guardcheck/internal/config"
	"guardcheck/internal/token"
)

type QualifierKind int

const (
	// AnyReceiver matches member calls on any non-literal receiver.
	AnyReceiver QualifierKind = iota
	// GlobalOnly matches calls that are not member calls.
	GlobalOnly
	// TypeSubstring matches member calls whose receiver type contains a name.
	TypeSubstring
)

// Qualifier restricts which call sites a risky-call rule applies to.
type Qualifier struct {
	Kind     QualifierKind
	TypeName string
}

// ParseQualifier reads the class field of a configured rule: empty for any
// receiver, "::" for free functions, anything else a receiver type name.
func ParseQualifier(class string) Qualifier {
	switch strings.TrimSpace(class) {
	case "":
		return Qualifier{Kind: AnyReceiver}
	case "::":
		return Qualifier{Kind: GlobalOnly}
	default:
		return Qualifier{Kind: TypeSubstring, TypeName: compact(class)}
	}
}

func (q Qualifier) String() string {
	switch q.Kind {
	case AnyReceiver:
		return ""
	case GlobalOnly:
		return "::"
	default:
		return q.TypeName
	}
}

func (q Qualifier) accepts(call *token.Token) bool {
	switch q.Kind {
	case AnyReceiver:
		dot := call.Previous()
		return dot.Str() == "." && dot.Previous() != nil && !dot.Previous().IsLiteral()
	case GlobalOnly:
		return call.StrAt(-1) != "."
	default:
		dot := call.ASTParent()
		if dot.Str() != "." || dot.ASTOperand2() != call {
			return false
		}
		v := dot.ASTOperand1().Variable()
		return v != nil && strings.Contains(compact(v.TypeString()), q.TypeName)
	}
}

// RiskyCallRule names calls that may throw and the exception types a catch
// clause must name to handle them.
type RiskyCallRule struct {
	Qualifier Qualifier
	// Functions are token patterns, e.g. "lexical_cast < %name% >".
	Functions  []string
	Exceptions []string
}

func (r RiskyCallRule) key() string {
	return r.Qualifier.String() + "\x00" + strings.Join(r.Functions, "\x00")
}

// Registry is an ordered, read-only set of rules.
type Registry struct {
	rules []RiskyCallRule
}

// NewRegistry normalizes rules and sorts them by qualifier then patterns.
// Rules with the same qualifier and patterns collapse into the first one;
// rules without patterns are dropped.
func NewRegistry(rules []RiskyCallRule) *Registry {
	seen := make(map[string]bool)
	var out []RiskyCallRule
	for _, rule := range rules {
		rule.Functions = normalizeSet(rule.Functions)
		rule.Exceptions = normalizeSet(rule.Exceptions)
		if len(rule.Functions) == 0 {
			continue
		}
		if seen[rule.key()] {
			continue
		}
		seen[rule.key()] = true
		out = append(out, rule)
	}
	sort.SliceStable(out, func(i, j int) bool {
		qi, qj := out[i].Qualifier, out[j].Qualifier
		if qi.Kind != qj.Kind {
			return qi.Kind < qj.Kind
		}
		if qi.TypeName != qj.TypeName {
			return qi.TypeName < qj.TypeName
		}
		return strings.Join(out[i].Functions, "\x00") < strings.Join(out[j].Functions, "\x00")
	})
	return &Registry{rules: out}
}

// RegistryFromConfig builds the registry for the try_catch rule.
func RegistryFromConfig(cfg *config.Config) *Registry {
	var rules []RiskyCallRule
	for _, fn := range cfg.Rules.TryCatch.Functions {
		rules = append(rules, RiskyCallRule{
			Qualifier:  ParseQualifier(fn.Class),
			Functions:  fn.Functions,
			Exceptions: fn.Exceptions,
		})
	}
	return NewRegistry(rules)
}

func (r *Registry) Len() int {
	return len(r.rules)
}

func (r *Registry) Rules() []RiskyCallRule {
	return append([]RiskyCallRule(nil), r.rules...)
}

// Match reports whether tok starts a call to a risky function and returns
// the exception patterns of the first rule that applies.
func (r *Registry) Match(tok *token.Token) ([]string, bool) {
	for _, rule := range r.rules {
		for _, fn := range rule.Functions {
			pattern := fn + " ("
			if !token.Match(tok, pattern) {
				continue
			}
			if tok.TokAt(token.PatternLen(pattern)-1).Link() == nil {
				continue
			}
			if rule.Qualifier.accepts(tok) {
				return rule.Exceptions, true
			}
		}
	}
	return nil, false
}

// normalizeSet collapses whitespace, then sorts and dedupes.
func normalizeSet(items []string) []string {
	set := make(map[string]bool)
	for _, item := range items {
		item = strings.Join(strings.Fields(item), " ")
		if item != "" {
			set[item] = true
		}
	}
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
