package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardcheck/internal/config"
	"guardcheck/internal/models"
)

func lexicalCastDetector() *TryCatchDetector {
	return NewTryCatchDetectorWithConfig(config.DefaultConfig())
}

func runTryCatch(t *testing.T, body string) []Diagnostic {
	t.Helper()
	_, scope := onlyScope(t, "void f(const std::string &s) {\n"+body+"\n}\n")
	return lexicalCastDetector().Run(scope)
}

func TestTryCatch(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "no try",
			body: `    int v = lexical_cast<int>(s);`,
			want: []string{"missing_exception_handler"},
		},
		{
			name: "matching catch",
			body: `    try {
        int v = lexical_cast<int>(s);
    } catch (const boost::bad_lexical_cast &e) {
    }`,
			want: []string{},
		},
		{
			name: "wrong exception type",
			body: `    try {
        int v = lexical_cast<int>(s);
    } catch (std::exception &e) {
    }`,
			want: []string{"wrong_exception_type"},
		},
		{
			name: "second clause matches",
			body: `    try {
        int v = lexical_cast<int>(s);
    } catch (std::runtime_error &e) {
    } catch (boost::bad_lexical_cast *e) {
    }`,
			want: []string{},
		},
		{
			name: "catch all",
			body: `    try {
        int v = lexical_cast<int>(s);
    } catch (...) {
    }`,
			want: []string{},
		},
		{
			name: "catch all macro",
			body: `    try {
        int v = lexical_cast<int>(s);
    } catch (ANY_EXCEPTION) {
    }`,
			want: []string{},
		},
		{
			name: "unnamed exception",
			body: `    try {
        int v = lexical_cast<int>(s);
    } catch (boost::bad_lexical_cast &) {
    }`,
			want: []string{"wrong_exception_type"},
		},
		{
			name: "caught by value",
			body: `    try {
        int v = lexical_cast<int>(s);
    } catch (boost::bad_lexical_cast e) {
    }`,
			want: []string{"non_reference_exception_catch"},
		},
		{
			name: "call after the try block",
			body: `    try {
        g();
    } catch (...) {
    }
    int v = lexical_cast<int>(s);`,
			want: []string{"missing_exception_handler"},
		},
		{
			name: "every call is checked",
			body: `    int a = lexical_cast<int>(s);
    int b = lexical_cast<long>(s);`,
			want: []string{"missing_exception_handler", "missing_exception_handler"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, categories(runTryCatch(t, tt.body)))
		})
	}
}

func TestTryCatchDiagnostics(t *testing.T) {
	diags := runTryCatch(t, `    try {
        int v = lexical_cast<int>(s);
    } catch (std::exception e) {
    }`)
	require.Len(t, diags, 2)

	warning := diags[0]
	assert.Equal(t, models.IssueNonReferenceException, warning.Category)
	assert.Equal(t, models.SeverityWarning, warning.Severity)
	assert.Equal(t, "catch", warning.Anchor.Str())

	wrong := diags[1]
	assert.Equal(t, models.IssueWrongExceptionType, wrong.Category)
	assert.Equal(t, models.SeverityError, wrong.Severity)
	assert.Equal(t, "lexical_cast", wrong.Anchor.Str())
	assert.Equal(t, 3, wrong.Anchor.Line())
	assert.Equal(t, models.CWEPoorCodeQuality, wrong.CWE)
	assert.Contains(t, wrong.Suggestion, "boost :: bad_lexical_cast")
}

func TestTryCatchIsIdempotent(t *testing.T) {
	_, scope := onlyScope(t, "void f(const std::string &s) {\n    int v = lexical_cast<int>(s);\n}\n")
	d := lexicalCastDetector()
	assert.Equal(t, d.Run(scope), d.Run(scope))
	assert.Equal(t, 1, d.Registry().Len())
}
