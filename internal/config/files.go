package config

import (
	"path"
	"path/filepath"
	"strings"
)

// ShouldAnalyze reports whether a file found while walking the inputs is a
// source file the configuration selects: a known extension, matched by an
// include pattern (when there are any) and by no exclude pattern.
func (c *Config) ShouldAnalyze(file string) bool {
	if !c.HasExtension(strings.ToLower(filepath.Ext(file))) {
		return false
	}
	if c.IsExcluded(file) {
		return false
	}
	if len(c.Files.Include) == 0 {
		return true
	}
	rel := filepath.ToSlash(filepath.Clean(file))
	for _, pattern := range c.Files.Include {
		if matchPattern(pattern, rel) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether a file or directory matches an exclude pattern.
// A pattern ending in "/**" also excludes the directory itself.
func (c *Config) IsExcluded(file string) bool {
	rel := filepath.ToSlash(filepath.Clean(file))
	for _, pattern := range c.Files.Exclude {
		if matchPattern(pattern, rel) {
			return true
		}
		if dir, ok := strings.CutSuffix(pattern, "/**"); ok && matchPattern("**/"+dir, rel) {
			return true
		}
	}
	return false
}

// matchPattern matches a slash separated name against a glob where "**"
// spans any number of path segments, including none. A pattern without a
// slash is matched against the base name only.
func matchPattern(pattern, name string) bool {
	if !strings.Contains(pattern, "/") {
		ok, _ := path.Match(pattern, path.Base(name))
		return ok
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(strings.TrimPrefix(name, "./"), "/"))
}

func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for i := 0; i <= len(name); i++ {
				if matchSegments(pattern[1:], name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], name[0]); !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}
