package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"guardcheck/internal/analyzer"
	"guardcheck/internal/config"
	"guardcheck/internal/models"
	"guardcheck/internal/watcher"
)

var (
	formatFlag         string
	watchFlag          bool
	configFlag         string
	generateConfigFlag bool
	verboseFlag        bool
	outputFlag         string
)

// errIssuesFound makes the process exit non-zero without printing a usage error.
var errIssuesFound = errors.New("error diagnostics found")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "guardcheck [files or directories]",
	Short: "A C/C++ checker for unguarded pointer dereferences and unhandled exceptions",
	Long: `guardcheck scans C and C++ sources for pointers dereferenced without a
null check (including a->b->c chains) and for calls that may throw but are
not wrapped in a try block catching the right exception type.

Examples:
  guardcheck .                             # Analyze current directory
  guardcheck src/parser.cpp src/lexer.cpp  # Analyze specific files
  guardcheck --format=sarif -o out.sarif . # Write a SARIF report
  guardcheck --config=.guardcheck.yml .    # Use custom config
  guardcheck --generate-config             # Generate sample config file
  guardcheck --watch src                   # Re-analyze files as they change`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAnalysis,
}

// Execute adds all child commands to the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errIssuesFound) {
			color.Red("Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func init() {
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (console, json, sarif)")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch mode for development")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().BoolVar(&generateConfigFlag, "generate-config", false, "Generate sample configuration file")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output and debug logging")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the report to a file")
}

func newLogger(verbose bool) hclog.Logger {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "guardcheck",
		Output: os.Stderr,
		Level:  level,
	})
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	if generateConfigFlag {
		return generateConfig()
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if verboseFlag {
		cfg.Output.Verbose = true
	}
	if outputFlag != "" {
		cfg.Output.OutputFile = outputFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Output.Verbose)

	if len(args) == 0 {
		args = []string{"."}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := analyzer.NewAnalyzerWithConfig(cfg, logger)
	reportGen := analyzer.NewReportGeneratorWithConfig(cfg)

	if watchFlag {
		return runWatch(ctx, cfg, logger, engine, reportGen, args)
	}

	files := collectFiles(cfg, logger, args)
	if len(files) == 0 {
		color.Yellow("⚠️  No C/C++ files found to analyze\n")
		return nil
	}

	if cfg.Output.Format == "console" {
		if cfg.Output.Verbose {
			color.Cyan("🔍 Analyzing %d C/C++ files with %d checks...\n", len(files), engine.GetDetectorCount())
			if configFlag != "" {
				color.Cyan("📋 Using configuration: %s\n", configFlag)
			}
			color.Cyan("🎯 Enabled checks: %s\n\n", strings.Join(engine.GetDetectorNames(), ", "))
		} else {
			color.Cyan("🔍 Analyzing %d C/C++ files...\n\n", len(files))
		}
	}

	result, err := engine.AnalyzeFiles(ctx, files)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if err := emitReport(cfg, reportGen, result); err != nil {
		return err
	}

	if cfg.Analysis.FailOnError && result.HasErrors() {
		return errIssuesFound
	}
	return nil
}

func emitReport(cfg *config.Config, reportGen *analyzer.ReportGenerator, result *models.AnalysisResult) error {
	report, err := reportGen.Generate(result)
	if err != nil {
		return err
	}

	if cfg.Output.OutputFile == "" {
		fmt.Print(report)
		return nil
	}
	if err := writeReportToFile(report, cfg.Output.OutputFile); err != nil {
		return fmt.Errorf("failed to write report to file: %w", err)
	}
	color.Green("📄 Report saved to: %s\n", cfg.Output.OutputFile)
	return nil
}

func runWatch(ctx context.Context, cfg *config.Config, logger hclog.Logger, engine *analyzer.Analyzer,
	reportGen *analyzer.ReportGenerator, paths []string) error {
	fw, err := watcher.NewFileWatcher(cfg, logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	handler := func(changed []string) error {
		color.Cyan("🔄 %d file(s) changed, re-analyzing...\n", len(changed))
		result, err := engine.AnalyzeFiles(ctx, changed)
		if err != nil {
			return err
		}
		return emitReport(cfg, reportGen, result)
	}

	if files := collectFiles(cfg, logger, paths); len(files) > 0 {
		if err := handler(files); err != nil {
			logger.Error("initial analysis failed", "error", err)
		}
	}
	if err := fw.Watch(paths, handler); err != nil {
		return err
	}

	color.Cyan("👀 Watching %d directories for changes (Ctrl+C to stop)\n", len(fw.GetWatchedPaths()))
	<-ctx.Done()
	return nil
}

func writeReportToFile(report, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(filePath, []byte(report), 0644)
}

func generateConfig() error {
	configPath := ".guardcheck.yml"
	if err := config.GenerateConfig(configPath); err != nil {
		return fmt.Errorf("failed to generate config file: %w", err)
	}
	color.Green("✅ Generated sample configuration file: %s\n", configPath)
	color.Cyan("📝 Edit this file to customize guardcheck behavior\n")
	color.Cyan("🚀 Run 'guardcheck --config=%s .' to use it\n", configPath)
	return nil
}

// collectFiles expands the command line arguments into the source files to
// analyze. Files named explicitly are kept when their extension is known,
// even if an include or exclude pattern would drop them.
func collectFiles(cfg *config.Config, logger hclog.Logger, args []string) []string {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			logger.Warn("skipping path", "path", arg, "error", err)
			continue
		}
		if !info.IsDir() {
			if cfg.HasExtension(strings.ToLower(filepath.Ext(arg))) {
				add(arg)
			}
			continue
		}
		found, err := collectSourceFiles(cfg, arg)
		if err != nil {
			logger.Warn("error collecting files", "path", arg, "error", err)
		}
		for _, f := range found {
			add(f)
		}
	}
	return files
}

// collectSourceFiles recursively finds the C/C++ files below root
func collectSourceFiles(cfg *config.Config, root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && (name == ".git" || name == ".svn" || cfg.IsExcluded(path)) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !cfg.Files.FollowSymlinks {
			return nil
		}

		if cfg.ShouldAnalyze(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}
