package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"repodoc/internal/models"
)

func structureReport() *models.DirectoryReport {
	return &models.DirectoryReport{
		FolderName: "project",
		Structure: []models.DirectoryListing{
			{Dir: ".", Dirs: []string{"pkg"}, Files: []string{"main.go", "notes.txt"}},
			{Dir: "pkg", Dirs: []string{"util"}, Files: []string{"a.go"}},
			{Dir: "pkg/util", Files: []string{"u.go"}},
		},
	}
}

func TestFormatStructure_Tree(t *testing.T) {
	want := strings.Join([]string{
		"project/",
		"    main.go",
		"    notes.txt",
		"    pkg/",
		"        a.go",
		"        util/",
		"            u.go",
	}, "\n")
	assert.Equal(t, want, FormatStructure(structureReport(), false))
}

func TestFormatStructure_WithAnalyses(t *testing.T) {
	report := structureReport()
	report.Analyses = []models.AnalysisEntry{
		{FilePath: "main.go", Status: models.StatusOK, Summary: &models.FileSummary{FileType: "Go source", Description: "- starts the app\n- parses flags"}},
		{FilePath: "pkg/a.go", Status: models.StatusError, Error: "llm invocation error: timeout"},
		{FilePath: "pkg/util/u.go", Status: models.StatusOK, Text: "raw answer"},
	}

	out := FormatStructure(report, true)
	assert.Contains(t, out, "    main.go\n        Go source\n        - starts the app\n        - parses flags")
	assert.Contains(t, out, "    notes.txt\n        (not analyzed)")
	assert.Contains(t, out, "(analysis failed: llm invocation error: timeout)")
	assert.Contains(t, out, "            u.go\n                raw answer")
}

func TestTruncateStructure(t *testing.T) {
	assert.Equal(t, "abc", truncateStructure("abc", 10))
	assert.Equal(t, "ab\n...(structure truncated)", truncateStructure("abcdef", 2))
	assert.Equal(t, "abcdef", truncateStructure("abcdef", 0))

	// "プ" is three bytes; a cut inside the next rune keeps only whole runes.
	out := truncateStructure("プロジェクト/\n    説明.md", 5)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "プ\n...(structure truncated)", out)
}

func TestParseSummary(t *testing.T) {
	summary, ok := parseSummary("Here you go:\n{\"type\":\"config\",\"file_type\":\"YAML\",\"description\":\"CI workflow\"}")
	assert.True(t, ok)
	assert.Equal(t, &models.FileSummary{Type: "config", FileType: "YAML", Description: "CI workflow"}, summary)

	_, ok = parseSummary("no json here")
	assert.False(t, ok)
	_, ok = parseSummary("{\"unrelated\": true}")
	assert.False(t, ok)
}

func TestPrompts(t *testing.T) {
	sys := SystemPrompt("project/\n    main.go", "Japanese")
	assert.Contains(t, sys, "written in Japanese")
	assert.Contains(t, sys, "project/\n    main.go")
	assert.Equal(t, "# Content of main.go:\npackage main\n", UserPrompt("main.go", "package main"))
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 0.0025+0.01, EstimateCost(1000, 1000, 0.0025, 0.01), 1e-12)
	assert.Zero(t, EstimateCost(0, 0, 0.0025, 0.01))
}
