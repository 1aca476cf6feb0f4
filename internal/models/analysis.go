package models

import "time"

// AnalysisStatus is the outcome of analyzing one file.
type AnalysisStatus string

const (
	StatusOK      AnalysisStatus = "ok"
	StatusError   AnalysisStatus = "error"
	StatusSkipped AnalysisStatus = "skipped"
)

// AnalysisEntry is the model's answer (or the failure) for one file.
type AnalysisEntry struct {
	FilePath     string         `json:"file_path"`
	Status       AnalysisStatus `json:"status"`
	Text         string         `json:"text,omitempty"`
	Summary      *FileSummary   `json:"summary,omitempty"`
	Error        string         `json:"error,omitempty"`
	ModTime      time.Time      `json:"mod_time,omitzero"`
	InputTokens  int            `json:"input_tokens,omitempty"`
	OutputTokens int            `json:"output_tokens,omitempty"`
	AnalyzedAt   time.Time      `json:"analyzed_at,omitzero"`
}

// FileSummary is the structured part of a model answer.
type FileSummary struct {
	Type        string `json:"type"`
	FileType    string `json:"file_type"`
	Description string `json:"description"`
}
