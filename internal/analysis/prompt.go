package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"repodoc/internal/models"
)

const systemPromptTemplate = `Analyze the given file name and file content, and extract the following information:

- type
Classification of the file as either code, config, or document.

- file_type
What the file is, for example Java code, GitHub Actions YAML, Markdown documentation.

- description
A brief summary of the file contents, written in %[1]s.
For program code, describe what it does and each function.
For documents or configuration files, explain the purpose of the file and add details as bullet points if necessary.
Keep it as concise as possible and use line breaks to make it easy to read.

Respond ONLY with a JSON object of the form:
{"type": "...", "file_type": "...", "description": "..."}
The description must be written in %[1]s.

===== The overall file structure is as follows.
%[2]s
`

// SystemPrompt builds the instructions shared by every file of a run.
func SystemPrompt(structureText, language string) string {
	if language == "" {
		language = "English"
	}
	return fmt.Sprintf(systemPromptTemplate, language, structureText)
}

// UserPrompt carries one file's path and content.
func UserPrompt(rel, content string) string {
	return fmt.Sprintf("# Content of %s:\n%s\n", rel, content)
}

// parseSummary extracts the JSON object from a model answer. It reports
// false when the answer holds no usable summary.
func parseSummary(text string) (*models.FileSummary, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var summary models.FileSummary
	if err := json.Unmarshal([]byte(text[start:end+1]), &summary); err != nil {
		return nil, false
	}
	if summary.FileType == "" && summary.Description == "" {
		return nil, false
	}
	return &summary, true
}
