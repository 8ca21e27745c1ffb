package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardcheck/internal/analyzer/detectors"
	"guardcheck/internal/config"
	"guardcheck/internal/models"
	"guardcheck/internal/token"
)

const derefSource = `
void f() {
    Node *p = get();
    p->x = 1;
}
`

const castSource = `
int g(const std::string &s) {
    return lexical_cast<int>(s);
}
`

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func types(issues []models.Issue) []models.IssueType {
	out := make([]models.IssueType, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Type)
	}
	return out
}

func TestNewAnalyzerRegistersEnabledChecks(t *testing.T) {
	assert.Equal(t, []string{"pointer_before_use", "try_catch"}, NewAnalyzer(nil).GetDetectorNames())

	cfg := config.DefaultConfig()
	cfg.Rules.PointerBeforeUse.Enabled = false
	assert.Equal(t, []string{"try_catch"}, NewAnalyzerWithConfig(cfg, nil).GetDetectorNames())

	cfg = config.DefaultConfig()
	cfg.Rules.TryCatch.Functions = nil
	assert.Equal(t, []string{"pointer_before_use"}, NewAnalyzerWithConfig(cfg, nil).GetDetectorNames())

	cfg = config.DefaultConfig()
	cfg.Analysis.EnabledChecks = []string{config.RuleTryCatch}
	a := NewAnalyzerWithConfig(cfg, nil)
	assert.Equal(t, 1, a.GetDetectorCount())
}

func TestAnalyzeSource(t *testing.T) {
	a := NewAnalyzer(nil)
	issues, err := a.AnalyzeSource(context.Background(), "mixed.cpp", []byte(derefSource+castSource))
	require.NoError(t, err)

	require.Equal(t, []models.IssueType{models.IssueMissingNullCheck, models.IssueMissingHandler}, types(issues))

	deref := issues[0]
	assert.Equal(t, "mixed.cpp", deref.File)
	assert.Equal(t, "f", deref.Function)
	assert.Equal(t, "pointer_before_use", deref.Check)
	assert.Equal(t, 4, deref.Line)
	assert.Equal(t, "p->x = 1;", strings.TrimSpace(deref.CodeSnippet))
	assert.NotEmpty(t, deref.Fingerprint)

	handler := issues[1]
	assert.Equal(t, "g", handler.Function)
	assert.Equal(t, "try_catch", handler.Check)
	assert.Equal(t, "lexical_cast may throw exception, need try and catch", handler.Message)

	_, err = a.AnalyzeSource(context.Background(), "script.py", []byte("print(1)"))
	assert.Error(t, err)
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	deref := writeSource(t, dir, "deref.cpp", derefSource)
	cast := writeSource(t, dir, "cast.cpp", castSource)
	missing := filepath.Join(dir, "missing.cpp")

	cfg := config.DefaultConfig()
	cfg.Analysis.MaxWorkers = 2
	result, err := NewAnalyzerWithConfig(cfg, nil).AnalyzeFiles(context.Background(),
		[]string{cast, missing, deref, cast})
	require.NoError(t, err)

	assert.Equal(t, []string{cast, deref}, result.Files)
	assert.Equal(t, []models.IssueType{models.IssueMissingHandler, models.IssueMissingNullCheck}, types(result.Issues))
	assert.Equal(t, 2, result.TotalIssues)
	assert.Equal(t, 2, result.IssuesBySeverity["error"])
	assert.Equal(t, 60, result.SafetyScore)
	assert.True(t, result.HasErrors())
	assert.NotEmpty(t, result.AnalysisDuration)
}

func TestAnalyzeFilesSkipsLargeFiles(t *testing.T) {
	dir := t.TempDir()
	big := writeSource(t, dir, "big.cpp", derefSource+"// "+strings.Repeat("x", 2048)+"\n")

	cfg := config.DefaultConfig()
	cfg.Files.MaxFileSize = 1
	result, err := NewAnalyzerWithConfig(cfg, nil).AnalyzeFiles(context.Background(), []string{big})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, 100, result.SafetyScore)
}

func TestAnalyzeFilesCanceled(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "deref.cpp", derefSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAnalyzer(nil).AnalyzeFiles(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

type scopeRecorder struct {
	names []string
}

func (r *scopeRecorder) Name() string { return "recorder" }

func (r *scopeRecorder) Run(scope *token.Scope) []detectors.Diagnostic {
	r.names = append(r.names, scope.Name())
	return nil
}

func TestRegisterRunsOncePerScope(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.PointerBeforeUse.Enabled = false
	cfg.Rules.TryCatch.Enabled = false
	a := NewAnalyzerWithConfig(cfg, nil)
	require.Zero(t, a.GetDetectorCount())

	rec := &scopeRecorder{}
	a.Register(rec)
	issues, err := a.AnalyzeSource(context.Background(), "two.cpp", []byte(derefSource+castSource))
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, []string{"f", "g"}, rec.names)
}

func TestAnalyzeSampleFile(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "sample.cpp")
	result, err := NewAnalyzer(nil).AnalyzeFiles(context.Background(), []string{path})
	require.NoError(t, err)
	require.Equal(t, []string{path}, result.Files)

	got := make(map[string]models.IssueType)
	for _, issue := range result.Issues {
		got[issue.Function] = issue.Type
	}
	assert.Equal(t, map[string]models.IssueType{
		"unchecked_write":  models.IssueMissingNullCheck,
		"unchecked_chain":  models.IssueMissingNullCheck,
		"parse_unhandled":  models.IssueMissingHandler,
		"parse_wrong_type": models.IssueWrongExceptionType,
		"parse_by_value":   models.IssueNonReferenceException,
	}, got)
	assert.Len(t, result.Issues, 5)
}
