package analysis

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"repodoc/internal/models"
)

// FormatStructure renders the report as an indented tree, one directory
// header per listing. With withAnalyses set, each file is followed by its
// recorded analysis.
func FormatStructure(report *models.DirectoryReport, withAnalyses bool) string {
	var lines []string
	for _, listing := range report.Structure {
		depth := 0
		name := report.FolderName
		if listing.Dir != "." {
			depth = strings.Count(listing.Dir, "/") + 1
			name = path.Base(listing.Dir)
		}
		indent := strings.Repeat(" ", 4*depth)
		lines = append(lines, fmt.Sprintf("%s%s/", indent, name))

		for _, file := range listing.Files {
			lines = append(lines, indent+"    "+file)
			if !withAnalyses {
				continue
			}
			rel := file
			if listing.Dir != "." {
				rel = listing.Dir + "/" + file
			}
			lines = append(lines, analysisLines(report, rel, indent+"        ")...)
		}
	}
	return strings.Join(lines, "\n")
}

func analysisLines(report *models.DirectoryReport, rel, indent string) []string {
	entry, ok := report.Analysis(rel)
	if !ok {
		return []string{indent + "(not analyzed)"}
	}
	switch entry.Status {
	case models.StatusOK:
		if entry.Summary != nil {
			lines := []string{indent + orDash(entry.Summary.FileType)}
			return append(lines, indentLines(orDash(entry.Summary.Description), indent)...)
		}
		return indentLines(entry.Text, indent)
	case models.StatusError:
		return []string{indent + "(analysis failed: " + entry.Error + ")"}
	default:
		return []string{indent + "(skipped)"}
	}
}

func indentLines(text, indent string) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		out = append(out, indent+strings.TrimRight(line, " \t\r"))
	}
	return out
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "---"
	}
	return s
}

// truncateStructure caps the tree text sent with every prompt.
func truncateStructure(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "\n...(structure truncated)"
}
