package models

import (
	"path/filepath"
	"time"
)

// DirectoryReport is the result of walking a project tree. The same shape is
// written to the intermediate file (no analyses yet) and to the final file.
type DirectoryReport struct {
	RunID          string             `json:"run_id"`
	FolderName     string             `json:"folder_name"`
	Path           string             `json:"path"`
	FileCount      int                `json:"num_files"`
	DirectoryCount int                `json:"num_dirs"`
	TotalSize      int64              `json:"total_size"`
	Files          []string           `json:"files"`
	Structure      []DirectoryListing `json:"structure"`
	Skipped        []SkippedEntry     `json:"skipped,omitempty"`
	Analyses       []AnalysisEntry    `json:"analyses,omitempty"`
	Usage          Usage              `json:"usage"`
	CreatedAt      time.Time          `json:"created_at"`
	AnalyzedAt     time.Time          `json:"analyzed_at,omitzero"`
}

// DirectoryListing holds the kept children of one visited directory.
// Dir is relative to the report root ("." for the root itself).
type DirectoryListing struct {
	Dir   string   `json:"dir"`
	Dirs  []string `json:"dirs"`
	Files []string `json:"files"`
}

// SkippedEntry records a sub-entry the walker could not read.
type SkippedEntry struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Usage accumulates token counts across analysis runs.
type Usage struct {
	InputTokens      int     `json:"input_tokens"`
	OutputTokens     int     `json:"output_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// AbsPath resolves a report-relative slash path against the report root.
func (r *DirectoryReport) AbsPath(rel string) string {
	return filepath.Join(r.Path, filepath.FromSlash(rel))
}

// Analysis returns the entry recorded for rel, if any.
func (r *DirectoryReport) Analysis(rel string) (AnalysisEntry, bool) {
	for _, entry := range r.Analyses {
		if entry.FilePath == rel {
			return entry, true
		}
	}
	return AnalysisEntry{}, false
}

// SetAnalysis records entry, replacing an earlier entry for the same file.
func (r *DirectoryReport) SetAnalysis(entry AnalysisEntry) {
	for i := range r.Analyses {
		if r.Analyses[i].FilePath == entry.FilePath {
			r.Analyses[i] = entry
			return
		}
	}
	r.Analyses = append(r.Analyses, entry)
}
