package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardcheck/internal/config"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("int main() { return 0; }\n"), 0644))
	}
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"src/parser.cpp",
		"src/parser.h",
		"src/util.c",
		"src/README.md",
		"build/gen/parser.cpp",
		"vendor/json/json.hpp",
		".git/hooks/sample.c",
	)

	cfg := config.DefaultConfig()
	files := collectFiles(cfg, hclog.NewNullLogger(), []string{root, filepath.Join(root, "src", "parser.cpp")})

	assert.Equal(t, []string{
		filepath.Join(root, "src", "parser.cpp"),
		filepath.Join(root, "src", "parser.h"),
		filepath.Join(root, "src", "util.c"),
	}, files)
}

func TestCollectFilesKeepsExplicitFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "build/gen.cc", "notes.txt")

	cfg := config.DefaultConfig()
	files := collectFiles(cfg, hclog.NewNullLogger(), []string{
		filepath.Join(root, "build", "gen.cc"),
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "missing.cpp"),
	})
	assert.Equal(t, []string{filepath.Join(root, "build", "gen.cc")}, files)
}

func TestWriteReportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "out.json")
	require.NoError(t, writeReportToFile("{}", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
