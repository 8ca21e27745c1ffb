// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration for guardcheck
type Config struct {
	// General settings
	Version     string `yaml:"version" json:"version"`
	ProjectName string `yaml:"project_name,omitempty" json:"project_name,omitempty"`

	// Analysis settings
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Rule-specific configurations
	Rules RulesConfig `yaml:"rules" json:"rules"`

	// File patterns
	Files FilesConfig `yaml:"files" json:"files"`
}

type AnalysisConfig struct {
	// Safety score thresholds
	ScoreThresholds ScoreThresholds `yaml:"score_thresholds" json:"score_thresholds"`

	// Checks to run; empty runs every enabled rule
	EnabledChecks []string `yaml:"enabled_checks" json:"enabled_checks"`

	// Parallel analysis
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`

	// Exit with status 1 when an error diagnostic is reported
	FailOnError bool `yaml:"fail_on_error" json:"fail_on_error"`
}

type ScoreThresholds struct {
	Excellent int `yaml:"excellent" json:"excellent"` // >= 90
	Good      int `yaml:"good" json:"good"`           // >= 75
	Fair      int `yaml:"fair" json:"fair"`           // >= 50
	Poor      int `yaml:"poor" json:"poor"`           // < 50
}

type OutputConfig struct {
	// Default output format
	Format string `yaml:"format" json:"format"`

	// Colorized output
	Colors bool `yaml:"colors" json:"colors"`

	// Verbosity level
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Show suggestions
	ShowSuggestions bool `yaml:"show_suggestions" json:"show_suggestions"`

	// Output file path (optional)
	OutputFile string `yaml:"output_file,omitempty" json:"output_file,omitempty"`
}

type RulesConfig struct {
	// Null checks before pointer dereference
	PointerBeforeUse PointerBeforeUseRules `yaml:"pointer_before_use" json:"pointer_before_use"`

	// Exception handling around risky calls
	TryCatch TryCatchRules `yaml:"try_catch" json:"try_catch"`
}

type PointerBeforeUseRules struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Pointers whose declared type contains one of these tokens are skipped
	ContainerTypes []string `yaml:"container_types" json:"container_types"`
}

type TryCatchRules struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Calls that must be wrapped in try/catch
	Functions []RiskyFunction `yaml:"functions" json:"functions"`
}

// RiskyFunction configures one group of risky calls. Class is empty for
// member calls on any receiver, "::" for free functions, or a substring of
// the receiver's declared type. Functions and Exceptions are token patterns
// with tokens separated by spaces ("lexical_cast < %name% >").
type RiskyFunction struct {
	Class      string   `yaml:"class" json:"class"`
	Functions  []string `yaml:"functions" json:"functions"`
	Exceptions []string `yaml:"exceptions" json:"exceptions"`
}

type FilesConfig struct {
	// Include patterns
	Include []string `yaml:"include" json:"include"`

	// Exclude patterns
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Source file extensions to analyze
	Extensions []string `yaml:"extensions" json:"extensions"`

	// Whether to follow symlinks
	FollowSymlinks bool `yaml:"follow_symlinks" json:"follow_symlinks"`

	// Max file size (in KB)
	MaxFileSize int `yaml:"max_file_size" json:"max_file_size"`
}

// Rule names accepted by IsRuleEnabled and analysis.enabled_checks.
const (
	RulePointerBeforeUse = "pointer_before_use"
	RuleTryCatch         = "try_catch"
)

var validFormats = []string{"console", "json", "sarif"}

func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			ScoreThresholds: ScoreThresholds{
				Excellent: 90,
				Good:      75,
				Fair:      50,
				Poor:      0,
			},
			EnabledChecks: []string{RulePointerBeforeUse, RuleTryCatch},
			MaxWorkers:    4,
			FailOnError:   false,
		},
		Output: OutputConfig{
			Format:          "console",
			Colors:          true,
			Verbose:         false,
			ShowSuggestions: false,
		},
		Rules: RulesConfig{
			PointerBeforeUse: PointerBeforeUseRules{
				Enabled: true,
				ContainerTypes: []string{
					"vector", "list", "deque", "map", "set", "multimap", "multiset",
					"unordered_map", "unordered_set", "array", "string",
				},
			},
			TryCatch: TryCatchRules{
				Enabled: true,
				Functions: []RiskyFunction{
					{
						Class:      "::",
						Functions:  []string{"lexical_cast < %name% >"},
						Exceptions: []string{"boost :: bad_lexical_cast"},
					},
				},
			},
		},
		Files: FilesConfig{
			Include:        []string{"**/*.c", "**/*.cc", "**/*.cpp", "**/*.cxx", "**/*.h", "**/*.hh", "**/*.hpp", "**/*.hxx"},
			Exclude:        []string{"vendor/**", ".git/**", "third_party/**", "build/**"},
			Extensions:     []string{".c", ".h", ".cpp", ".cxx", ".cc", ".c++", ".hpp", ".hxx", ".hh", ".h++"},
			FollowSymlinks: false,
			MaxFileSize:    1024, // 1MB
		},
	}
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	// If no config path provided, look for default config files
	if configPath == "" {
		configPath = findConfigFile()
	}

	// If still no config found, return default
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return Parse(data, configPath)
}

// Parse decodes YAML over the defaults and validates the result. Lists in
// data replace the default lists.
func Parse(data []byte, source string) (*Config, error) {
	config := DefaultConfig() // Start with defaults

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", source, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	possiblePaths := []string{
		".guardcheck.yml",
		".guardcheck.yaml",
		"guardcheck.yml",
		"guardcheck.yaml",
		".config/guardcheck.yml",
		".config/guardcheck.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate score thresholds
	st := c.Analysis.ScoreThresholds
	if st.Excellent < st.Good || st.Good < st.Fair || st.Fair < st.Poor {
		return fmt.Errorf("score thresholds must be in descending order")
	}

	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, validFormats)
	}

	if c.Analysis.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1")
	}

	for _, check := range c.Analysis.EnabledChecks {
		if check != RulePointerBeforeUse && check != RuleTryCatch {
			return fmt.Errorf("unknown check in enabled_checks: %s", check)
		}
	}

	for i, fn := range c.Rules.TryCatch.Functions {
		if len(fn.Functions) == 0 {
			return fmt.Errorf("try_catch.functions[%d]: at least one function pattern is required", i)
		}
	}

	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateConfig creates a sample configuration file
func GenerateConfig(configPath string) error {
	config := DefaultConfig()
	return config.SaveConfig(configPath)
}

// IsRuleEnabled reports whether a rule is both listed in enabled_checks
// (or the list is empty) and enabled in its own section.
func (c *Config) IsRuleEnabled(ruleType string) bool {
	if len(c.Analysis.EnabledChecks) > 0 && !slices.Contains(c.Analysis.EnabledChecks, ruleType) {
		return false
	}
	switch ruleType {
	case RulePointerBeforeUse:
		return c.Rules.PointerBeforeUse.Enabled
	case RuleTryCatch:
		return c.Rules.TryCatch.Enabled
	default:
		return false
	}
}

// HasExtension reports whether ext is one of the configured source extensions.
func (c *Config) HasExtension(ext string) bool {
	return slices.Contains(c.Files.Extensions, ext)
}
