package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardcheck/internal/config"
)

func TestParseQualifier(t *testing.T) {
	assert.Equal(t, Qualifier{Kind: AnyReceiver}, ParseQualifier(""))
	assert.Equal(t, Qualifier{Kind: GlobalOnly}, ParseQualifier(" :: "))
	assert.Equal(t, Qualifier{Kind: TypeSubstring, TypeName: "json::Reader"}, ParseQualifier("json :: Reader"))
	assert.Equal(t, "::", ParseQualifier("::").String())
}

func TestNewRegistryCollapsesDuplicates(t *testing.T) {
	reg := NewRegistry([]RiskyCallRule{
		{Qualifier: ParseQualifier("Parser"), Functions: []string{"parse"}, Exceptions: []string{"ParseError"}},
		{Qualifier: ParseQualifier("::"), Functions: []string{"stoi", "stol"}, Exceptions: []string{"std :: invalid_argument"}},
		{Qualifier: ParseQualifier("::"), Functions: []string{"stol", "stoi", "stoi"}, Exceptions: []string{"other"}},
		{Qualifier: ParseQualifier(""), Functions: []string{"at"}, Exceptions: []string{"std :: out_of_range"}},
		{Qualifier: ParseQualifier("::"), Functions: nil},
	})

	rules := reg.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, AnyReceiver, rules[0].Qualifier.Kind)
	assert.Equal(t, GlobalOnly, rules[1].Qualifier.Kind)
	assert.Equal(t, TypeSubstring, rules[2].Qualifier.Kind)
	assert.Equal(t, []string{"stoi", "stol"}, rules[1].Functions)
	assert.Equal(t, []string{"std :: invalid_argument"}, rules[1].Exceptions, "first rule wins")

	again := NewRegistry(reg.Rules())
	assert.Equal(t, reg.Rules(), again.Rules())
}

func TestRegistryMatch(t *testing.T) {
	list := parseCPP(t, `
void f(const std::string &s, Parser &parser, Other &other) {
    int a = lexical_cast<int>(s);
    int b = util.lexical_cast<int>(s);
    int c = other.parse(s);
    int d = parser.parse(s);
    int e = parse(s);
    char g = s.at(0);
}
`)
	reg := NewRegistry([]RiskyCallRule{
		{Qualifier: ParseQualifier("::"), Functions: []string{"lexical_cast < %name% >"}, Exceptions: []string{"boost :: bad_lexical_cast"}},
		{Qualifier: ParseQualifier("Parser"), Functions: []string{"parse"}, Exceptions: []string{"ParseError"}},
		{Qualifier: ParseQualifier(""), Functions: []string{"at"}, Exceptions: []string{"std :: out_of_range"}},
	})

	tests := []struct {
		name  string
		spell string
		n     int
		want  []string
	}{
		{"global call", "lexical_cast", 0, []string{"boost :: bad_lexical_cast"}},
		{"member call is not global", "lexical_cast", 1, nil},
		{"receiver of another type", "parse", 0, nil},
		{"receiver type matches", "parse", 1, []string{"ParseError"}},
		{"free call is not a member", "parse", 2, nil},
		{"any receiver", "at", 0, []string{"std :: out_of_range"}},
		{"not a call", "s", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reg.Match(nth(t, list, tt.spell, tt.n))
			assert.Equal(t, tt.want != nil, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryFromConfig(t *testing.T) {
	reg := RegistryFromConfig(config.DefaultConfig())
	require.Equal(t, 1, reg.Len())
	assert.Equal(t, GlobalOnly, reg.Rules()[0].Qualifier.Kind)

	cfg := config.DefaultConfig()
	cfg.Rules.TryCatch.Functions = nil
	assert.Equal(t, 0, RegistryFromConfig(cfg).Len())
}
