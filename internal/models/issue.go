package models

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

type IssueType string

const (
	IssueMissingNullCheck      IssueType = "missing_null_check"
	IssueMissingHandler        IssueType = "missing_exception_handler"
	IssueWrongExceptionType    IssueType = "wrong_exception_type"
	IssueNonReferenceException IssueType = "non_reference_exception_catch"
)

// CWEPoorCodeQuality is the weakness every finding is tagged with.
const CWEPoorCodeQuality = 398

type Issue struct {
	Type        IssueType `json:"type"`
	Check       string    `json:"check"`
	Severity    Severity  `json:"severity"`
	CWE         int       `json:"cwe"`
	File        string    `json:"file"`
	Line        int       `json:"line"`
	Column      int       `json:"column"`
	Function    string    `json:"function,omitempty"`
	Message     string    `json:"message"`
	Suggestion  string    `json:"suggestion"`
	CodeSnippet string    `json:"code_snippet,omitempty"`
	Fingerprint string    `json:"fingerprint"`
}

// ComputeFingerprint hashes the fields that identify a finding. Two issues
// with the same fingerprint are the same report.
func (i *Issue) ComputeFingerprint() string {
	key := fmt.Sprintf("%s|%d|%d|%s|%s", i.File, i.Line, i.Column, i.Type, i.Message)
	return fmt.Sprintf("%016x", xxh3.HashString(key))
}

type AnalysisResult struct {
	Files            []string       `json:"files_analyzed"`
	TotalIssues      int            `json:"total_issues"`
	IssuesBySeverity map[string]int `json:"issues_by_severity"`
	Issues           []Issue        `json:"issues"`
	SafetyScore      int            `json:"safety_score"` // 0-100 scale
	AnalysisDuration string         `json:"analysis_duration"`

	seen map[string]bool
}

func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Files:            make([]string, 0),
		Issues:           make([]Issue, 0),
		IssuesBySeverity: make(map[string]int),
		seen:             make(map[string]bool),
	}
}

// AddIssue records issue unless an identical one was already recorded.
func (ar *AnalysisResult) AddIssue(issue Issue) bool {
	if issue.Fingerprint == "" {
		issue.Fingerprint = issue.ComputeFingerprint()
	}
	if ar.seen == nil {
		ar.seen = make(map[string]bool)
	}
	if ar.seen[issue.Fingerprint] {
		return false
	}
	ar.seen[issue.Fingerprint] = true

	ar.Issues = append(ar.Issues, issue)
	ar.TotalIssues++
	ar.IssuesBySeverity[issue.Severity.String()]++
	return true
}

// HasErrors reports whether any recorded issue has error severity.
func (ar *AnalysisResult) HasErrors() bool {
	return ar.IssuesBySeverity[SeverityError.String()] > 0
}

func (ar *AnalysisResult) CalculateScore() {
	if ar.TotalIssues == 0 {
		ar.SafetyScore = 100
		return
	}

	penalty := 0
	for _, issue := range ar.Issues {
		basePenalty := 0
		switch issue.Severity {
		case SeverityWarning:
			basePenalty = 5
		case SeverityError:
			basePenalty = 15
		}

		switch issue.Type {
		case IssueMissingNullCheck:
			basePenalty = int(float64(basePenalty) * 1.5) // crashes outrank handler issues
		case IssueMissingHandler:
			basePenalty = int(float64(basePenalty) * 1.2)
		}

		penalty += basePenalty
	}

	ar.SafetyScore = max(100-penalty, 0)
}
