package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"**/*.cpp", "main.cpp", true},
		{"**/*.cpp", "src/net/socket.cpp", true},
		{"**/*.cpp", "src/net/socket.hpp", false},
		{"vendor/**", "vendor/boost/any.hpp", true},
		{"vendor/**", "src/vendor.cpp", false},
		{"*.gen.cc", "src/proto/msg.gen.cc", true},
		{"src/*/main.c", "src/tool/main.c", true},
		{"src/*/main.c", "src/tool/sub/main.c", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchPattern(tt.pattern, tt.name))
		})
	}
}

func TestShouldAnalyze(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.ShouldAnalyze("src/parser.cpp"))
	assert.True(t, cfg.ShouldAnalyze("./include/parser.h"))
	assert.False(t, cfg.ShouldAnalyze("src/parser.go"))
	assert.False(t, cfg.ShouldAnalyze("build/gen/parser.cpp"))
	assert.False(t, cfg.ShouldAnalyze("third_party/zlib/inflate.c"))

	assert.True(t, cfg.IsExcluded("build"))
	assert.True(t, cfg.IsExcluded("project/.git"))
	assert.False(t, cfg.IsExcluded("src"))

	cfg.Files.Include = []string{"src/**"}
	assert.True(t, cfg.ShouldAnalyze("src/a/b.cc"))
	assert.False(t, cfg.ShouldAnalyze("tests/b.cc"))
}
