package detectors

import (
	"fmt"

	"guardcheck/internal/config"
	"guardcheck/internal/models"
	"guardcheck/internal/token"
)

// PointerBeforeUseDetector reports local pointers, and pointer-member
// chains, that are dereferenced without a preceding null check.
type PointerBeforeUseDetector struct {
	containerTypes map[string]bool
	guards         GuardStrategy
}

func NewPointerBeforeUseDetector(containerTypes []string, guards GuardStrategy) *PointerBeforeUseDetector {
	filter := make(map[string]bool, len(containerTypes))
	for _, t := range containerTypes {
		filter[t] = true
	}
	if guards == nil {
		guards = TextualGuardStrategy{}
	}
	return &PointerBeforeUseDetector{containerTypes: filter, guards: guards}
}

func NewPointerBeforeUseDetectorWithConfig(cfg *config.Config) *PointerBeforeUseDetector {
	return NewPointerBeforeUseDetector(cfg.Rules.PointerBeforeUse.ContainerTypes, TextualGuardStrategy{})
}

func (d *PointerBeforeUseDetector) Name() string {
	return "pointer_before_use"
}

func (d *PointerBeforeUseDetector) Run(scope *token.Scope) []Diagnostic {
	var candidates []*token.Token
	for tok := scope.BodyStart(); tok != nil && tok != scope.BodyEnd(); tok = tok.Next() {
		if d.isCandidate(tok) {
			candidates = append(candidates, tok)
		}
	}

	var chains []ChainRecord
	heads := make(map[*token.Token]bool)
	for _, tok := range candidates {
		if records := BuildChains(tok); len(records) > 0 {
			heads[tok] = true
			chains = append(chains, records...)
		}
	}

	type useKey struct {
		varID     int
		statement *token.Token
	}
	reported := make(map[useKey]bool)

	var diags []Diagnostic
	for _, tok := range candidates {
		if heads[tok] || HasPrecedingGuard(scope, tok) {
			continue
		}
		// q = q->next reads q twice; one report per statement
		key := useKey{tok.VarID(), statementStart(tok)}
		if reported[key] {
			continue
		}
		reported[key] = true
		diags = append(diags, errorAt(tok, models.IssueMissingNullCheck,
			fmt.Sprintf("%s may cause segment fault", tok.Str()),
			fmt.Sprintf("Check %s against NULL before dereferencing it", tok.Str())))
	}
	for _, record := range chains {
		if d.guards.ChainGuarded(scope, record) {
			continue
		}
		diags = append(diags, errorAt(record.Anchor.Start, models.IssueMissingNullCheck,
			fmt.Sprintf("%s may cause segment fault in %s", record.Original, record.Access),
			fmt.Sprintf("Check %s against NULL before accessing its members", record.Original)))
	}
	return diags
}

func (d *PointerBeforeUseDetector) isCandidate(tok *token.Token) bool {
	v := tok.Variable()
	// subscripting an array of pointers reads the array itself
	if v == nil || !v.IsLocal() || !v.IsPointer() || v.IsArray() {
		return false
	}
	if d.isContainerType(v) {
		return false
	}
	return Classify(tok) == Dereference
}

// isContainerType reports whether a type token before the declarator
// names a configured container.
func (d *PointerBeforeUseDetector) isContainerType(v *token.Variable) bool {
	for tok := v.TypeStartToken(); tok != nil && tok != v.TypeEndToken(); tok = tok.Next() {
		if d.containerTypes[tok.Str()] {
			return true
		}
	}
	return false
}

// statementStart returns the first token of the statement holding tok.
func statementStart(tok *token.Token) *token.Token {
	for tok.Previous() != nil && !token.Match(tok.Previous(), ";|{|}") {
		tok = tok.Previous()
	}
	return tok
}
