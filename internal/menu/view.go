package menu

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"repodoc/internal/analysis"
	"repodoc/internal/models"
)

const banner = `
*****************************************
**               REPO DOC              **
*****************************************
Select an option:
    - Start a new analysis: (new)/(n)
    - Continue from an intermediate file: (inter)/(i)
    - Update the analysis *changed files only: (update)/(u)
    - Confirm a final file: (final)/(f)
    - Quit: (quit)/(q)`

const usage = "Invalid choice. Please enter 'new', 'inter', 'update', or 'final' ('quit' to exit)."

func printBanner(out io.Writer) {
	color.New(color.Bold).Fprintln(out, banner)
}

func printUsage(out io.Writer) {
	color.New(color.FgRed).Fprintln(out, usage)
}

// printSummary writes the totals of report.
func printSummary(out io.Writer, report *models.DirectoryReport) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	fmt.Fprintln(out, strings.Repeat("=", 70))
	bold.Fprintf(out, "%s", report.FolderName)
	fmt.Fprintf(out, " (%s)\n", report.Path)
	fmt.Fprintf(out, "  %s, %s, %s\n",
		green.Sprintf("%d files", report.FileCount),
		green.Sprintf("%d directories", report.DirectoryCount),
		green.Sprint(humanize.Bytes(uint64(report.TotalSize))))
	if len(report.Skipped) > 0 {
		color.New(color.FgYellow).Fprintf(out, "  %d entries could not be read\n", len(report.Skipped))
	}
	if report.Usage.InputTokens > 0 || report.Usage.OutputTokens > 0 {
		fmt.Fprintf(out, "  tokens: %d in / %d out, estimated cost $%.4f\n",
			report.Usage.InputTokens, report.Usage.OutputTokens, report.Usage.EstimatedCostUSD)
	}
	fmt.Fprintln(out, strings.Repeat("=", 70))
}

// printReport writes the totals and the tree, with analyses when asked.
func printReport(out io.Writer, report *models.DirectoryReport, withAnalyses bool) {
	printSummary(out, report)
	fmt.Fprintln(out, analysis.FormatStructure(report, withAnalyses))
}

func printStats(out io.Writer, stats analysis.RunStats) {
	cyan := color.New(color.FgCyan)
	cyan.Fprintf(out, "Analyzed %d, failed %d, skipped %d, unchanged %d.\n",
		stats.Analyzed, stats.Failed, stats.Skipped, stats.Unchanged)
}
