// Package menu drives the interactive new / inter / update / final workflow.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"repodoc/internal/analysis"
	"repodoc/internal/models"
	"repodoc/internal/store"
)

// LineReader reads user input (bufio.Reader satisfies it, tests mock it).
type LineReader interface {
	ReadString(delim byte) (string, error)
}

// NewStdinReader wraps r for line input.
func NewStdinReader(r io.Reader) LineReader {
	return bufio.NewReader(r)
}

// Walker builds a report for a directory.
type Walker interface {
	Walk(root string) (*models.DirectoryReport, error)
}

// Analyzer fills a report with per-file analyses.
type Analyzer interface {
	Run(ctx context.Context, report *models.DirectoryReport) (analysis.RunStats, error)
}

// AnalyzerFactory builds an Analyzer once the controller knows how files are
// confirmed. It is called lazily so that viewing results never needs an LLM.
type AnalyzerFactory func(confirm analysis.Confirmer) (Analyzer, error)

// Options configures a Controller.
type Options struct {
	In               LineReader
	Out              io.Writer
	Walker           Walker
	NewAnalyzer      AnalyzerFactory
	IntermediatePath string
	FinalPath        string
	// AssumeYes answers every yes/no question with yes.
	AssumeYes bool
}

// Controller runs one menu workflow.
type Controller struct {
	opts Options
}

// NewController creates a Controller.
func NewController(opts Options) *Controller {
	return &Controller{opts: opts}
}

// Run prints the menu and dispatches the first valid choice. Invalid input is
// answered with a usage message and asked again.
func (c *Controller) Run(ctx context.Context) error {
	printBanner(c.opts.Out)
	for {
		input, err := c.ask(ctx, "> ")
		if err != nil {
			return fmt.Errorf("failed to read choice: %w", err)
		}
		cmd, ok := ParseCommand(input)
		if !ok {
			printUsage(c.opts.Out)
			continue
		}
		if cmd == CommandQuit {
			return nil
		}
		return c.Dispatch(ctx, cmd)
	}
}

// Dispatch runs the operation for cmd. CommandNew asks for the folder path.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd {
	case CommandNew:
		return c.New(ctx, "")
	case CommandInter:
		return c.Inter(ctx)
	case CommandUpdate:
		return c.Update(ctx)
	case CommandFinal:
		return c.Final(ctx)
	case CommandQuit:
		return nil
	default:
		printUsage(c.opts.Out)
		return fmt.Errorf("unknown command %d", cmd)
	}
}

// New walks root, shows the structure and, once confirmed, saves the
// intermediate file and continues as Inter. An empty root is asked for.
func (c *Controller) New(ctx context.Context, root string) error {
	if root == "" {
		answer, err := c.ask(ctx, "Enter the folder path to analyze: ")
		if err != nil {
			return fmt.Errorf("failed to read folder path: %w", err)
		}
		root = answer
	}
	if root == "" {
		return errors.New("no folder path given")
	}

	report, err := c.opts.Walker.Walk(root)
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	printReport(c.opts.Out, report, false)

	ok, err := c.confirm(ctx, "Is the structure OK? (yes/no): ")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.opts.Out, "Stats were not written to file.")
		return nil
	}

	if err := store.Save(c.opts.IntermediatePath, report); err != nil {
		return fmt.Errorf("could not save intermediate file: %w", err)
	}
	logrus.Infof("Stats have been written to %s", c.opts.IntermediatePath)

	return c.Inter(ctx)
}

// Inter resumes from the intermediate file without walking the directory again.
func (c *Controller) Inter(ctx context.Context) error {
	report, err := store.Load(c.opts.IntermediatePath)
	if err != nil {
		return fmt.Errorf("could not load intermediate file: %w", err)
	}
	return c.analyzeAndSave(ctx, report)
}

// Update re-analyzes the files of the final file that changed since the last run.
func (c *Controller) Update(ctx context.Context) error {
	report, err := store.Load(c.opts.FinalPath)
	if err != nil {
		return fmt.Errorf("could not load final file: %w", err)
	}
	return c.analyzeAndSave(ctx, report)
}

// Final shows the final file.
func (c *Controller) Final(ctx context.Context) error {
	if _, err := store.Load(c.opts.FinalPath); err != nil {
		return fmt.Errorf("could not load final file: %w", err)
	}
	return c.offerView(ctx)
}

// analyzeAndSave runs the analyzer and writes the final file, also when the
// run stopped early so that completed entries are kept.
func (c *Controller) analyzeAndSave(ctx context.Context, report *models.DirectoryReport) error {
	analyzer, err := c.opts.NewAnalyzer(c.fileConfirmer(ctx))
	if err != nil {
		return fmt.Errorf("could not create analyzer: %w", err)
	}

	stats, runErr := analyzer.Run(ctx, report)
	if err := store.Save(c.opts.FinalPath, report); err != nil {
		return errors.Join(runErr, fmt.Errorf("could not save final file: %w", err))
	}
	logrus.Infof("Analysis results have been written to %s", c.opts.FinalPath)
	printStats(c.opts.Out, stats)
	if runErr != nil {
		return fmt.Errorf("analysis stopped: %w", runErr)
	}

	return c.offerView(ctx)
}

func (c *Controller) offerView(ctx context.Context) error {
	ok, err := c.confirm(ctx, "Check the result? (yes/no)(y/n): ")
	if err != nil || !ok {
		return err
	}
	report, err := store.Load(c.opts.FinalPath)
	if err != nil {
		return fmt.Errorf("could not load final file: %w", err)
	}
	printReport(c.opts.Out, report, true)
	return nil
}

func (c *Controller) fileConfirmer(ctx context.Context) analysis.Confirmer {
	if c.opts.AssumeYes {
		return analysis.AlwaysConfirm
	}
	return analysis.ConfirmFunc(func(rel string) (analysis.Decision, error) {
		answer, err := c.ask(ctx, fmt.Sprintf("Analyze %s? (yes/no/all)(y/n/a): ", color.CyanString(rel)))
		if err != nil {
			return analysis.DecisionNo, err
		}
		switch strings.ToLower(answer) {
		case "yes", "y":
			return analysis.DecisionYes, nil
		case "all", "a", "yesall":
			return analysis.DecisionAll, nil
		default:
			return analysis.DecisionNo, nil
		}
	})
}

// confirm asks a yes/no question. Anything but yes/y means no.
func (c *Controller) confirm(ctx context.Context, prompt string) (bool, error) {
	if c.opts.AssumeYes {
		return true, nil
	}
	answer, err := c.ask(ctx, prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}

type readResult struct {
	line string
	err  error
}

// ask prints prompt and returns the trimmed answer. A last line without a
// trailing newline is still returned. It gives up with ctx.Err() when ctx is
// done before a line arrives.
func (c *Controller) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.opts.Out, prompt)

	done := make(chan readResult, 1)
	go func() {
		line, err := c.opts.In.ReadString('\n')
		done <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.opts.Out)
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", r.err
		}
		return strings.TrimSpace(r.line), nil
	}
}
