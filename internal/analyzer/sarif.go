package analyzer

import (
	"bytes"
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"guardcheck/internal/models"
)

const (
	toolName           = "guardcheck"
	toolInformationURI = "https://cwe.mitre.org/data/definitions/398.html"
	fingerprintKey     = "guardcheck/v1"
)

var ruleDescriptions = map[models.IssueType]string{
	models.IssueMissingNullCheck:      "Pointer is dereferenced without a preceding null check",
	models.IssueMissingHandler:        "Call that may throw is not enclosed in a try block",
	models.IssueWrongExceptionType:    "No catch clause handles the exception the call may throw",
	models.IssueNonReferenceException: "Exception is caught by value instead of by reference or pointer",
}

// GenerateSARIF renders result as a SARIF 2.1.0 log with one rule per issue type.
func GenerateSARIF(result *models.AnalysisResult) (string, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return "", fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)
	for _, file := range result.Files {
		run.AddDistinctArtifact(file)
	}

	for _, issue := range result.Issues {
		level := toSarifLevel(issue.Severity)
		rule := run.AddRule(string(issue.Type)).
			WithDescription(ruleDescriptions[issue.Type]).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})
		if issue.CWE != 0 {
			props := sarif.NewPropertyBag()
			props.Add("tags", []string{fmt.Sprintf("CWE-%d", issue.CWE)})
			rule.AttachPropertyBag(props)
		}

		region := sarif.NewRegion().WithStartLine(issue.Line)
		if issue.Column > 0 {
			region = region.WithStartColumn(issue.Column)
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(issue.File)).
				WithRegion(region),
		)

		res := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(issue.Message)).
			WithLevel(level).
			WithLocations([]*sarif.Location{location})
		if issue.Fingerprint != "" {
			res = res.WithPartialFingerPrints(map[string]interface{}{fingerprintKey: issue.Fingerprint})
		}
		run.AddResult(res)
	}
	report.AddRun(run)

	var buf bytes.Buffer
	if err := report.PrettyWrite(&buf); err != nil {
		return "", fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return buf.String(), nil
}

func toSarifLevel(severity models.Severity) string {
	switch severity {
	case models.SeverityError:
		return "error"
	case models.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
