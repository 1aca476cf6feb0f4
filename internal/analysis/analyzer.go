// Package analysis sends each file of a DirectoryReport to an LLM and merges
// the answers back into the report.
package analysis

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"repodoc/config"
	"repodoc/internal/files"
	"repodoc/internal/llm"
	"repodoc/internal/models"
)

// Options tunes an analysis run.
type Options struct {
	MaxFileReadSize    int64
	MaxStructureLength int
	Language           string
	InputCostPer1K     float64
	OutputCostPer1K    float64
}

// OptionsFromConfig reads the analysis section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxFileReadSize:    cfg.Analysis.MaxFileReadSize,
		MaxStructureLength: cfg.Analysis.MaxStructureLength,
		Language:           cfg.Analysis.Language,
		InputCostPer1K:     cfg.Analysis.InputCostPer1K,
		OutputCostPer1K:    cfg.Analysis.OutputCostPer1K,
	}
}

// RunStats counts what happened to each file during one run.
type RunStats struct {
	Analyzed  int
	Failed    int
	Skipped   int
	Unchanged int
}

// Analyzer orchestrates the per-file analysis.
type Analyzer struct {
	client  llm.Client
	confirm Confirmer
	opts    Options
	now     func() time.Time
}

// New creates an Analyzer. A nil confirm analyzes every file.
func New(client llm.Client, confirm Confirmer, opts Options) *Analyzer {
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	return &Analyzer{client: client, confirm: confirm, opts: opts, now: time.Now}
}

// Run analyzes every file of report in order and records one entry per
// file. A failure on one file is recorded and the run moves on; Run only
// returns an error when ctx is done or the confirmer fails, and report
// then holds every entry recorded so far.
func (a *Analyzer) Run(ctx context.Context, report *models.DirectoryReport) (RunStats, error) {
	structureText := truncateStructure(FormatStructure(report, false), a.opts.MaxStructureLength)
	systemPrompt := SystemPrompt(structureText, a.opts.Language)

	logrus.Infof("Analyzing %d files with %s...", len(report.Files), a.client.Name())

	var (
		stats  RunStats
		usage  models.Usage
		yesAll bool
	)
	for _, rel := range report.Files {
		if err := ctx.Err(); err != nil {
			a.finish(report, usage, stats)
			return stats, err
		}

		info, err := os.Stat(report.AbsPath(rel))
		if err != nil {
			logrus.Errorf("Could not read %s: %v", rel, err)
			report.SetAnalysis(a.errorEntry(rel, time.Time{}, fmt.Errorf("file read error: %w", err)))
			stats.Failed++
			continue
		}
		modTime := info.ModTime().UTC()

		if prev, ok := report.Analysis(rel); ok && prev.Status == models.StatusOK && prev.ModTime.Equal(modTime) {
			logrus.Infof("Skipping %s: not modified since the last analysis.", rel)
			stats.Unchanged++
			continue
		}

		if !yesAll {
			decision, err := a.confirm.Confirm(rel)
			if err != nil {
				a.finish(report, usage, stats)
				return stats, fmt.Errorf("confirmation for %s: %w", rel, err)
			}
			switch decision {
			case DecisionAll:
				yesAll = true
			case DecisionNo:
				if _, ok := report.Analysis(rel); !ok {
					report.SetAnalysis(models.AnalysisEntry{FilePath: rel, Status: models.StatusSkipped, ModTime: modTime})
				}
				stats.Skipped++
				continue
			}
		}

		entry, err := a.analyzeFile(ctx, report, rel, modTime, systemPrompt)
		if err != nil {
			a.finish(report, usage, stats)
			return stats, err
		}
		report.SetAnalysis(entry)
		if entry.Status == models.StatusOK {
			stats.Analyzed++
			usage.InputTokens += entry.InputTokens
			usage.OutputTokens += entry.OutputTokens
		} else {
			stats.Failed++
		}
	}

	a.finish(report, usage, stats)
	return stats, nil
}

// analyzeFile returns the entry for one file. The error is non-nil only when
// ctx was cancelled during the request.
func (a *Analyzer) analyzeFile(ctx context.Context, report *models.DirectoryReport, rel string, modTime time.Time, systemPrompt string) (models.AnalysisEntry, error) {
	logrus.Infof("Analyzing file: %s", rel)

	content, err := files.ReadFileContent(report.AbsPath(rel), a.opts.MaxFileReadSize)
	if err != nil {
		logrus.Errorf("Could not read %s: %v", rel, err)
		return a.errorEntry(rel, modTime, fmt.Errorf("file read error: %w", err)), nil
	}

	resp, err := a.client.Generate(ctx, systemPrompt, UserPrompt(rel, content))
	if err != nil {
		if ctx.Err() != nil {
			return models.AnalysisEntry{}, ctx.Err()
		}
		logrus.Errorf("LLM invocation failed for %s: %v", rel, err)
		return a.errorEntry(rel, modTime, fmt.Errorf("llm invocation error: %w", err)), nil
	}

	entry := models.AnalysisEntry{
		FilePath:     rel,
		Status:       models.StatusOK,
		Text:         resp.Text,
		ModTime:      modTime,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		AnalyzedAt:   a.now().UTC(),
	}
	if summary, ok := parseSummary(resp.Text); ok {
		entry.Summary = summary
	} else {
		logrus.Warnf("Answer for %s is not a JSON summary, keeping raw text.", rel)
	}
	return entry, nil
}

func (a *Analyzer) errorEntry(rel string, modTime time.Time, err error) models.AnalysisEntry {
	return models.AnalysisEntry{
		FilePath:   rel,
		Status:     models.StatusError,
		Error:      err.Error(),
		ModTime:    modTime,
		AnalyzedAt: a.now().UTC(),
	}
}

// finish folds the run's usage into the report totals.
func (a *Analyzer) finish(report *models.DirectoryReport, usage models.Usage, stats RunStats) {
	report.Usage.InputTokens += usage.InputTokens
	report.Usage.OutputTokens += usage.OutputTokens
	report.Usage.EstimatedCostUSD = EstimateCost(report.Usage.InputTokens, report.Usage.OutputTokens,
		a.opts.InputCostPer1K, a.opts.OutputCostPer1K)
	report.AnalyzedAt = a.now().UTC()

	logrus.Infof("Analysis finished: %d analyzed, %d failed, %d skipped, %d unchanged.",
		stats.Analyzed, stats.Failed, stats.Skipped, stats.Unchanged)
	logrus.Infof("Run input tokens: %d, output tokens: %d, estimated cost: $%.4f",
		usage.InputTokens, usage.OutputTokens,
		EstimateCost(usage.InputTokens, usage.OutputTokens, a.opts.InputCostPer1K, a.opts.OutputCostPer1K))
}
