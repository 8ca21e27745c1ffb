package detectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"guardcheck/internal/parser"
	"guardcheck/internal/token"
)

func parseCPP(t *testing.T, src string) *token.List {
	t.Helper()
	list, err := parser.ParseSource(context.Background(), "snippet.cpp", []byte(src))
	require.NoError(t, err)
	return list
}

// onlyScope parses src and returns its single function scope.
func onlyScope(t *testing.T, src string) (*token.List, *token.Scope) {
	t.Helper()
	list := parseCPP(t, src)
	require.Len(t, list.Scopes(), 1)
	return list, list.Scopes()[0]
}

// nth returns the n-th (0 based) token spelled str.
func nth(t *testing.T, list *token.List, str string, n int) *token.Token {
	t.Helper()
	for _, tok := range list.Tokens() {
		if tok.Spelling() == str {
			if n == 0 {
				return tok
			}
			n--
		}
	}
	t.Fatalf("token %q not found", str)
	return nil
}

func categories(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, string(d.Category))
	}
	return out
}
