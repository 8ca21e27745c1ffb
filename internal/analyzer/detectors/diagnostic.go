package detectors

import (
	"guardcheck/internal/models"
	"guardcheck/internal/token"
)

// Diagnostic is one finding of a check, anchored at a token of the scope
// the check ran over.
type Diagnostic struct {
	Anchor     *token.Token
	Severity   models.Severity
	Category   models.IssueType
	Message    string
	Suggestion string
	CWE        int
}

// Issue converts d into a report issue for the file path in function.
func (d Diagnostic) Issue(path, function, check string) models.Issue {
	issue := models.Issue{
		Type:        d.Category,
		Check:       check,
		Severity:    d.Severity,
		CWE:         d.CWE,
		File:        path,
		Line:        d.Anchor.Line(),
		Column:      d.Anchor.Column(),
		Function:    function,
		Message:     d.Message,
		Suggestion:  d.Suggestion,
		CodeSnippet: token.LineText(d.Anchor),
	}
	issue.Fingerprint = issue.ComputeFingerprint()
	return issue
}

func errorAt(anchor *token.Token, category models.IssueType, message, suggestion string) Diagnostic {
	return Diagnostic{
		Anchor:     anchor,
		Severity:   models.SeverityError,
		Category:   category,
		Message:    message,
		Suggestion: suggestion,
		CWE:        models.CWEPoorCodeQuality,
	}
}

func warningAt(anchor *token.Token, category models.IssueType, message, suggestion string) Diagnostic {
	d := errorAt(anchor, category, message, suggestion)
	d.Severity = models.SeverityWarning
	return d
}
