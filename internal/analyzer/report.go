package analyzer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"guardcheck/internal/config"
	"guardcheck/internal/models"

	"github.com/fatih/color"
)

// ReportGenerator handles formatting and displaying analysis results
type ReportGenerator struct {
	format string
	config *config.Config
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(format string) *ReportGenerator {
	return &ReportGenerator{
		format: format,
		config: config.DefaultConfig(),
	}
}

func NewReportGeneratorWithConfig(cfg *config.Config) *ReportGenerator {
	return &ReportGenerator{
		format: cfg.Output.Format,
		config: cfg,
	}
}

// Generate creates a formatted report from analysis results
func (r *ReportGenerator) Generate(result *models.AnalysisResult) (string, error) {
	switch r.format {
	case "json":
		return r.generateJSON(result)
	case "sarif":
		return GenerateSARIF(result)
	default:
		return r.generateConsole(result), nil
	}
}

func (r *ReportGenerator) generateJSON(result *models.AnalysisResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON report: %w", err)
	}
	return string(data), nil
}

// generateConsole creates a colorized console report
func (r *ReportGenerator) generateConsole(result *models.AnalysisResult) string {
	var report strings.Builder

	useColors := r.config.Output.Colors
	verbose := r.config.Output.Verbose
	showSuggestions := r.config.Output.ShowSuggestions

	if useColors {
		report.WriteString(color.CyanString("🔍 GuardCheck Analysis Report\n"))
		report.WriteString(color.WhiteString("═══════════════════════════════════════\n\n"))
	} else {
		report.WriteString("GuardCheck Analysis Report\n")
		report.WriteString("=======================================\n\n")
	}

	if verbose {
		r.writeConfigInfo(&report, useColors)
	}

	r.writeSummary(&report, result, useColors)
	r.writeSafetyScore(&report, result, useColors)

	if len(result.Issues) > 0 {
		r.writeIssuesSummary(&report, result, useColors)
		report.WriteString("\n")
		r.writeDetailedIssues(&report, result, useColors, showSuggestions)
	} else if useColors {
		report.WriteString(color.GreenString("🎉 No unchecked pointers or unhandled exceptions found!\n\n"))
	} else {
		report.WriteString("No unchecked pointers or unhandled exceptions found!\n\n")
	}

	if useColors {
		report.WriteString(color.WhiteString("Analysis completed in %s\n", result.AnalysisDuration))
	} else {
		report.WriteString(fmt.Sprintf("Analysis completed in %s\n", result.AnalysisDuration))
	}

	return report.String()
}

func (r *ReportGenerator) writeSafetyScore(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	score := result.SafetyScore
	thresholds := r.config.Analysis.ScoreThresholds

	var scoreColor func(a ...interface{}) string
	var emoji string
	switch {
	case score >= thresholds.Excellent:
		scoreColor = color.New(color.FgGreen).SprintFunc()
		emoji = "🌟"
	case score >= thresholds.Good:
		scoreColor = color.New(color.FgYellow).SprintFunc()
		emoji = "⚡"
	case score >= thresholds.Fair:
		scoreColor = color.New(color.FgHiYellow).SprintFunc()
		emoji = "⚠️"
	default:
		scoreColor = color.New(color.FgRed).SprintFunc()
		emoji = "🚨"
	}

	if useColors {
		report.WriteString(fmt.Sprintf("%s Safety Score: %s/100\n\n", emoji, scoreColor(fmt.Sprintf("%d", score))))
	} else {
		report.WriteString(fmt.Sprintf("Safety Score: %d/100\n\n", score))
	}
}

// getSeverityDisplay returns emoji and color function for a severity level
func (r *ReportGenerator) getSeverityDisplay(severity models.Severity) (string, func(a ...interface{}) string) {
	switch severity {
	case models.SeverityError:
		return "❌", color.New(color.FgRed, color.Bold).SprintFunc()
	case models.SeverityWarning:
		return "⚠️", color.New(color.FgYellow).SprintFunc()
	default:
		return "❓", color.New(color.FgWhite).SprintFunc()
	}
}

func (r *ReportGenerator) writeConfigInfo(report *strings.Builder, useColors bool) {
	checks := strings.Join(r.config.Analysis.EnabledChecks, ", ")
	st := r.config.Analysis.ScoreThresholds
	if useColors {
		report.WriteString(color.WhiteString("📋 Configuration:\n"))
		report.WriteString(fmt.Sprintf("   Enabled checks: %s\n", color.CyanString(checks)))
		report.WriteString(fmt.Sprintf("   Risky function groups: %s\n",
			color.CyanString("%d", len(r.config.Rules.TryCatch.Functions))))
		report.WriteString(fmt.Sprintf("   Score thresholds: %s\n",
			color.CyanString("%d/%d/%d", st.Excellent, st.Good, st.Fair)))
	} else {
		report.WriteString("Configuration:\n")
		report.WriteString(fmt.Sprintf("   Enabled checks: %s\n", checks))
		report.WriteString(fmt.Sprintf("   Risky function groups: %d\n", len(r.config.Rules.TryCatch.Functions)))
		report.WriteString(fmt.Sprintf("   Score thresholds: %d/%d/%d\n", st.Excellent, st.Good, st.Fair))
	}
	report.WriteString("\n")
}

func (r *ReportGenerator) writeSummary(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	if useColors {
		report.WriteString(color.WhiteString("📊 Summary:\n"))
	} else {
		report.WriteString("Summary:\n")
	}
	report.WriteString(fmt.Sprintf("   Files analyzed: %d\n", len(result.Files)))
	report.WriteString(fmt.Sprintf("   Issues found: %d\n", result.TotalIssues))
	report.WriteString("\n")
}

func (r *ReportGenerator) writeIssuesSummary(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	if useColors {
		report.WriteString(color.WhiteString("📋 Issues by Severity:\n"))
	} else {
		report.WriteString("Issues by Severity:\n")
	}

	for _, severity := range []models.Severity{models.SeverityError, models.SeverityWarning} {
		count := result.IssuesBySeverity[severity.String()]
		if count == 0 {
			continue
		}
		if useColors {
			emoji, colorFunc := r.getSeverityDisplay(severity)
			report.WriteString(fmt.Sprintf("   %s %s: %s\n", emoji, severity, colorFunc(fmt.Sprintf("%d", count))))
		} else {
			report.WriteString(fmt.Sprintf("   %s: %d\n", severity, count))
		}
	}
}

func (r *ReportGenerator) writeDetailedIssues(report *strings.Builder, result *models.AnalysisResult, useColors, showSuggestions bool) {
	if useColors {
		report.WriteString(color.WhiteString("🔍 Detailed Issues:\n"))
	} else {
		report.WriteString("Detailed Issues:\n")
	}
	report.WriteString(strings.Repeat("─", 50) + "\n\n")

	// errors first, then source order
	sortedIssues := make([]models.Issue, len(result.Issues))
	copy(sortedIssues, result.Issues)
	sort.SliceStable(sortedIssues, func(i, j int) bool {
		return sortedIssues[i].Severity > sortedIssues[j].Severity
	})

	for i, issue := range sortedIssues {
		r.writeIssueDetail(report, issue, i+1, useColors, showSuggestions)
		report.WriteString("\n")
	}
}

func (r *ReportGenerator) writeIssueDetail(report *strings.Builder, issue models.Issue, index int, useColors, showSuggestions bool) {
	if useColors {
		emoji, severityColor := r.getSeverityDisplay(issue.Severity)

		report.WriteString(fmt.Sprintf("%s Issue #%d - %s %s\n",
			emoji, index, severityColor(issue.Severity.String()),
			color.WhiteString("%s (CWE-%d)", strings.ToUpper(string(issue.Type)), issue.CWE)))

		report.WriteString(color.CyanString("   📍 Location: %s:%d:%d", issue.File, issue.Line, issue.Column))
		if issue.Function != "" {
			report.WriteString(color.CyanString(" in function '%s'", issue.Function))
		}
		report.WriteString("\n")

		report.WriteString(color.WhiteString("   💭 Issue: %s\n", issue.Message))
		if issue.CodeSnippet != "" {
			report.WriteString(color.YellowString("   📄 Code: %s\n", issue.CodeSnippet))
		}

		if showSuggestions && issue.Suggestion != "" {
			report.WriteString(color.GreenString("   💡 Suggestion: %s\n", issue.Suggestion))
		}
		return
	}

	report.WriteString(fmt.Sprintf("Issue #%d - %s %s (CWE-%d)\n",
		index, issue.Severity, strings.ToUpper(string(issue.Type)), issue.CWE))

	report.WriteString(fmt.Sprintf("   Location: %s:%d:%d", issue.File, issue.Line, issue.Column))
	if issue.Function != "" {
		report.WriteString(fmt.Sprintf(" in function '%s'", issue.Function))
	}
	report.WriteString("\n")

	report.WriteString(fmt.Sprintf("   Issue: %s\n", issue.Message))
	if issue.CodeSnippet != "" {
		report.WriteString(fmt.Sprintf("   Code: %s\n", issue.CodeSnippet))
	}

	if showSuggestions && issue.Suggestion != "" {
		report.WriteString(fmt.Sprintf("   Suggestion: %s\n", issue.Suggestion))
	}
}
