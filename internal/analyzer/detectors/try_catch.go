package detectors

import (
	"fmt"
	"strings"

	"guardcheck/internal/config"
	"guardcheck/internal/models"
	"guardcheck/internal/token"
)

// TryCatchDetector reports risky calls that are not inside a try block or
// whose catch clauses do not name the exceptions the call may throw.
type TryCatchDetector struct {
	registry *Registry
	strategy GuardStrategy
}

func NewTryCatchDetector(registry *Registry, strategy GuardStrategy) *TryCatchDetector {
	if strategy == nil {
		strategy = TextualGuardStrategy{}
	}
	return &TryCatchDetector{registry: registry, strategy: strategy}
}

func NewTryCatchDetectorWithConfig(cfg *config.Config) *TryCatchDetector {
	return NewTryCatchDetector(RegistryFromConfig(cfg), TextualGuardStrategy{})
}

func (d *TryCatchDetector) Name() string {
	return "try_catch"
}

// Registry returns the rules the detector matches calls against.
func (d *TryCatchDetector) Registry() *Registry {
	return d.registry
}

func (d *TryCatchDetector) Run(scope *token.Scope) []Diagnostic {
	var diags []Diagnostic
	for tok := scope.BodyStart(); tok != nil && tok != scope.BodyEnd(); tok = tok.Next() {
		patterns, ok := d.registry.Match(tok)
		if !ok {
			continue
		}
		diags = append(diags, d.validate(scope, tok, patterns)...)
	}
	return diags
}

func (d *TryCatchDetector) validate(scope *token.Scope, call *token.Token, patterns []string) []Diagnostic {
	try := findTry(scope, call)
	if try == nil || try.Next().Link() == nil {
		return []Diagnostic{missingHandler(call)}
	}

	var diags []Diagnostic
	catch := try.Next().Link().Next()
	if !d.strategy.InsideTry(try, catch, call) {
		diags = append(diags, missingHandler(call))
	}

	covered, warnings := catchesCover(catch, patterns)
	diags = append(diags, warnings...)
	if !covered {
		diags = append(diags, errorAt(call, models.IssueWrongExceptionType,
			fmt.Sprintf("%s is caught with the wrong exception type", call.Str()),
			fmt.Sprintf("Catch one of: %s", strings.Join(patterns, ", "))))
	}
	return diags
}

// findTry returns the nearest try keyword before call in scope.
func findTry(scope *token.Scope, call *token.Token) *token.Token {
	for tok := call; tok != nil && tok != scope.BodyStart(); tok = tok.Previous() {
		if tok.Str() == "try" {
			return tok
		}
	}
	return nil
}

func missingHandler(call *token.Token) Diagnostic {
	return errorAt(call, models.IssueMissingHandler,
		fmt.Sprintf("%s may throw exception, need try and catch", call.Str()),
		fmt.Sprintf("Wrap the call to %s in a try block", call.Str()))
}

// catchesCover walks the catch clauses starting at clause until one covers
// patterns or the chain of clauses ends.
func catchesCover(clause *token.Token, patterns []string) (bool, []Diagnostic) {
	var warnings []Diagnostic
	for clause != nil {
		// CATCH_ALL style macros
		if clause.IsUpperCaseName() {
			return true, warnings
		}
		if clause.Str() != "catch" {
			break
		}

		ok, warning := clauseCovers(clause, patterns)
		if warning != nil {
			warnings = append(warnings, *warning)
		}
		if ok {
			return true, warnings
		}

		body := clause.Next().Link().Next()
		if body.Str() != "{" || body.Link() == nil {
			break
		}
		clause = body.Link().Next()
	}
	return false, warnings
}

func clauseCovers(clause *token.Token, patterns []string) (bool, *Diagnostic) {
	open := clause.Next()
	if open.Str() != "(" || open.Link() == nil {
		return false, nil
	}
	if open.Next().IsUpperCaseName() && open.Next().Next() == open.Link() {
		return true, nil
	}

	decl := open.Link().Previous()
	v := decl.Variable()
	if v == nil {
		return token.Match(open.Next(), "... )"), nil
	}

	var warning *Diagnostic
	if !v.IsReference() && !v.IsPointer() {
		w := warningAt(clause, models.IssueNonReferenceException,
			"exception variable must be pointer or reference",
			fmt.Sprintf("Catch %s by reference", strings.TrimSpace(v.TypeString())))
		warning = &w
	}

	typeText := compact(v.TypeString())
	for _, p := range patterns {
		if strings.Contains(typeText, compact(p)) {
			return true, warning
		}
	}
	return false, warning
}
