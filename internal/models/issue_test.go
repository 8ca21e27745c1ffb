package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityText(t *testing.T) {
	text, err := SeverityError.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "error", string(text))

	var s Severity
	require.NoError(t, s.UnmarshalText([]byte("WARNING")))
	assert.Equal(t, SeverityWarning, s)
	assert.Error(t, s.UnmarshalText([]byte("fatal")))
	assert.Equal(t, "unknown", Severity(7).String())
}

func TestAddIssueDropsDuplicates(t *testing.T) {
	issue := Issue{
		Type:     IssueMissingNullCheck,
		Severity: SeverityError,
		File:     "a.cpp",
		Line:     3,
		Column:   5,
		Message:  "p may cause segment fault",
	}
	result := NewAnalysisResult()
	assert.True(t, result.AddIssue(issue))
	assert.False(t, result.AddIssue(issue))

	moved := issue
	moved.Line = 4
	assert.True(t, result.AddIssue(moved))

	assert.Equal(t, 2, result.TotalIssues)
	assert.Equal(t, 2, result.IssuesBySeverity["error"])
	assert.Equal(t, issue.ComputeFingerprint(), result.Issues[0].Fingerprint)
	assert.NotEqual(t, result.Issues[0].Fingerprint, result.Issues[1].Fingerprint)
	assert.True(t, result.HasErrors())
}

func TestCalculateScore(t *testing.T) {
	result := NewAnalysisResult()
	result.CalculateScore()
	assert.Equal(t, 100, result.SafetyScore)
	assert.False(t, result.HasErrors())

	for line := 1; line <= 5; line++ {
		result.AddIssue(Issue{Type: IssueMissingNullCheck, Severity: SeverityError, File: "a.cpp", Line: line})
	}
	result.CalculateScore()
	assert.Equal(t, 0, result.SafetyScore)

	result = NewAnalysisResult()
	result.AddIssue(Issue{Type: IssueMissingHandler, Severity: SeverityError, File: "a.cpp", Line: 1})
	result.AddIssue(Issue{Type: IssueNonReferenceException, Severity: SeverityWarning, File: "a.cpp", Line: 2})
	result.CalculateScore()
	assert.Equal(t, 100-18-5, result.SafetyScore)
}
