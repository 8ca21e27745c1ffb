package analyzer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"guardcheck/internal/analyzer/detectors"
	"guardcheck/internal/config"
	"guardcheck/internal/models"
	"guardcheck/internal/parser"
	"guardcheck/internal/token"
)

type Analyzer struct {
	config    *config.Config
	logger    hclog.Logger
	detectors []Detector
}

// Detector is a check run once per function scope. Run must not keep state
// between calls.
type Detector interface {
	Name() string
	Run(scope *token.Scope) []detectors.Diagnostic
}

func NewAnalyzer(logger hclog.Logger) *Analyzer {
	return NewAnalyzerWithConfig(config.DefaultConfig(), logger)
}

// NewAnalyzerWithConfig registers every check the configuration enables.
// Checks that are disabled or have nothing to match are logged and left out.
func NewAnalyzerWithConfig(cfg *config.Config, logger hclog.Logger) *Analyzer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	analyzer := &Analyzer{
		config: cfg,
		logger: logger,
	}

	if cfg.IsRuleEnabled(config.RulePointerBeforeUse) {
		analyzer.Register(detectors.NewPointerBeforeUseDetectorWithConfig(cfg))
	} else {
		logger.Info("check disabled", "check", config.RulePointerBeforeUse)
	}

	if !cfg.IsRuleEnabled(config.RuleTryCatch) {
		logger.Info("check disabled", "check", config.RuleTryCatch)
	} else if tryCatch := detectors.NewTryCatchDetectorWithConfig(cfg); tryCatch.Registry().Len() == 0 {
		logger.Info("check disabled", "check", config.RuleTryCatch, "reason", "no risky functions configured")
	} else {
		analyzer.Register(tryCatch)
	}

	return analyzer
}

// Register adds a detector. It must not be called while files are analyzed.
func (a *Analyzer) Register(d Detector) {
	a.detectors = append(a.detectors, d)
	a.logger.Debug("check registered", "check", d.Name())
}

// AnalyzeFiles analyzes files in parallel, bounded by analysis.max_workers.
// Files that cannot be read or parsed are logged and skipped. Issues are
// merged in the order of filenames.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, filenames []string) (*models.AnalysisResult, error) {
	startTime := time.Now()
	result := models.NewAnalysisResult()
	filenames = uniqueFiles(filenames)

	type fileResult struct {
		issues []models.Issue
		ok     bool
	}
	results := make([]fileResult, len(filenames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.config.Analysis.MaxWorkers, 1))
	for i, filename := range filenames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			issues, err := a.analyzeFile(gctx, filename)
			if err != nil {
				a.logger.Warn("skipping file", "file", filename, "error", err)
				return nil
			}
			results[i] = fileResult{issues: issues, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	for i, filename := range filenames {
		if !results[i].ok {
			continue
		}
		result.Files = append(result.Files, filename)
		for _, issue := range results[i].issues {
			result.AddIssue(issue)
		}
	}

	result.AnalysisDuration = time.Since(startTime).String()
	result.CalculateScore()
	return result, nil
}

func uniqueFiles(filenames []string) []string {
	seen := make(map[string]bool, len(filenames))
	out := make([]string, 0, len(filenames))
	for _, f := range filenames {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func (a *Analyzer) analyzeFile(ctx context.Context, filename string) ([]models.Issue, error) {
	if limit := a.config.Files.MaxFileSize; limit > 0 {
		info, err := os.Stat(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", filename, err)
		}
		if info.Size() > int64(limit)*1024 {
			return nil, fmt.Errorf("%s is larger than %d KB", filename, limit)
		}
	}

	start := time.Now()
	list, err := parser.ParseFile(ctx, filename)
	if err != nil {
		return nil, err
	}
	issues := a.AnalyzeList(list)
	a.logger.Debug("file analyzed", "file", filename, "scopes", len(list.Scopes()),
		"issues", len(issues), "duration", time.Since(start))
	return issues, nil
}

// AnalyzeSource parses source as the file path and runs every check on it.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte) ([]models.Issue, error) {
	list, err := parser.ParseSource(ctx, path, source)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeList(list), nil
}

// AnalyzeList runs the registered checks over each function scope of list.
func (a *Analyzer) AnalyzeList(list *token.List) []models.Issue {
	var issues []models.Issue
	for _, scope := range list.Scopes() {
		for _, detector := range a.detectors {
			for _, diag := range detector.Run(scope) {
				issues = append(issues, diag.Issue(list.Path(), scope.Name(), detector.Name()))
			}
		}
	}
	return issues
}

// GetDetectorCount returns the number of active detectors
func (a *Analyzer) GetDetectorCount() int {
	return len(a.detectors)
}

// GetDetectorNames returns the names of all active detectors
func (a *Analyzer) GetDetectorNames() []string {
	names := make([]string, len(a.detectors))
	for i, detector := range a.detectors {
		names[i] = detector.Name()
	}
	return names
}
