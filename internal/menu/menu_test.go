package menu

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repodoc/internal/analysis"
	"repodoc/internal/models"
	"repodoc/internal/store"
)

// MockMenuReader replays scripted answers.
type MockMenuReader struct {
	inputs []string
	index  int
}

func (m *MockMenuReader) ReadString(delim byte) (string, error) {
	if m.index >= len(m.inputs) {
		return "", io.EOF
	}
	result := m.inputs[m.index] + "\n"
	m.index++
	return result, nil
}

// blockingReader never returns a line until released.
type blockingReader struct {
	release chan struct{}
}

func (b *blockingReader) ReadString(delim byte) (string, error) {
	<-b.release
	return "", io.EOF
}

type fakeWalker struct {
	calls int
	roots []string
}

func (w *fakeWalker) Walk(root string) (*models.DirectoryReport, error) {
	w.calls++
	w.roots = append(w.roots, root)
	return sampleReport(), nil
}

type fakeAnalyzer struct {
	runs    int
	err     error
	confirm analysis.Confirmer
}

func (a *fakeAnalyzer) Run(ctx context.Context, report *models.DirectoryReport) (analysis.RunStats, error) {
	a.runs++
	report.SetAnalysis(models.AnalysisEntry{
		FilePath: "main.go",
		Status:   models.StatusOK,
		Summary:  &models.FileSummary{FileType: "Go source", Description: "Entry point."},
	})
	return analysis.RunStats{Analyzed: 1}, a.err
}

func sampleReport() *models.DirectoryReport {
	return &models.DirectoryReport{
		RunID:          "run-1",
		FolderName:     "project",
		Path:           "/tmp/project",
		FileCount:      1,
		DirectoryCount: 1,
		TotalSize:      2048,
		Files:          []string{"main.go"},
		Structure:      []models.DirectoryListing{{Dir: ".", Files: []string{"main.go"}}},
		CreatedAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

type harness struct {
	walker   *fakeWalker
	analyzer *fakeAnalyzer
	out      *bytes.Buffer
	opts     Options
}

func newHarness(t *testing.T, inputs ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{walker: &fakeWalker{}, analyzer: &fakeAnalyzer{}, out: &bytes.Buffer{}}
	h.opts = Options{
		In:     &MockMenuReader{inputs: inputs},
		Out:    h.out,
		Walker: h.walker,
		NewAnalyzer: func(confirm analysis.Confirmer) (Analyzer, error) {
			h.analyzer.confirm = confirm
			return h.analyzer, nil
		},
		IntermediatePath: filepath.Join(dir, "stats_intermediate.json"),
		FinalPath:        filepath.Join(dir, "stats_final.json"),
	}
	return h
}

func (h *harness) controller() *Controller { return NewController(h.opts) }

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
		ok    bool
	}{
		{"new", CommandNew, true},
		{"N", CommandNew, true},
		{" inter ", CommandInter, true},
		{"u", CommandUpdate, true},
		{"final", CommandFinal, true},
		{"q", CommandQuit, true},
		{"delete", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseCommand(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
	assert.Equal(t, "update", CommandUpdate.String())
}

func TestRun_NewFlowSavesBothFiles(t *testing.T) {
	h := newHarness(t, "n", "/tmp/project", "yes", "y")

	require.NoError(t, h.controller().Run(context.Background()))

	assert.Equal(t, []string{"/tmp/project"}, h.walker.roots)
	assert.Equal(t, 1, h.analyzer.runs)

	inter, err := store.Load(h.opts.IntermediatePath)
	require.NoError(t, err)
	assert.Empty(t, inter.Analyses)

	final, err := store.Load(h.opts.FinalPath)
	require.NoError(t, err)
	require.Len(t, final.Analyses, 1)
	assert.Equal(t, "run-1", final.RunID)

	assert.Contains(t, h.out.String(), "Is the structure OK?")
	assert.Contains(t, h.out.String(), "Go source")
	assert.Contains(t, h.out.String(), "2.0 kB")
}

func TestRun_NewDeclinedWritesNothing(t *testing.T) {
	h := newHarness(t, "new", "/tmp/project", "no")

	require.NoError(t, h.controller().Run(context.Background()))

	assert.Zero(t, h.analyzer.runs)
	_, err := store.Load(h.opts.IntermediatePath)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, h.out.String(), "Stats were not written to file.")
}

func TestRun_InvalidInputReprompts(t *testing.T) {
	h := newHarness(t, "delete", "", "q")

	require.NoError(t, h.controller().Run(context.Background()))

	assert.Equal(t, 2, bytes.Count(h.out.Bytes(), []byte(usage)))
	assert.Zero(t, h.walker.calls)
}

func TestRun_EndOfInput(t *testing.T) {
	h := newHarness(t)
	err := h.controller().Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestInter_ResumesWithoutWalking(t *testing.T) {
	h := newHarness(t, "n")
	require.NoError(t, store.Save(h.opts.IntermediatePath, sampleReport()))

	require.NoError(t, h.controller().Inter(context.Background()))

	assert.Zero(t, h.walker.calls)
	assert.Equal(t, 1, h.analyzer.runs)
	final, err := store.Load(h.opts.FinalPath)
	require.NoError(t, err)
	assert.Len(t, final.Analyses, 1)
}

func TestInter_MissingIntermediateFile(t *testing.T) {
	h := newHarness(t)
	err := h.controller().Inter(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, h.analyzer.runs)
}

func TestUpdate_LoadsFinalFile(t *testing.T) {
	h := newHarness(t, "no")
	report := sampleReport()
	report.FolderName = "from-final"
	require.NoError(t, store.Save(h.opts.FinalPath, report))
	require.NoError(t, store.Save(h.opts.IntermediatePath, sampleReport()))

	require.NoError(t, h.controller().Update(context.Background()))

	final, err := store.Load(h.opts.FinalPath)
	require.NoError(t, err)
	assert.Equal(t, "from-final", final.FolderName)
	assert.Len(t, final.Analyses, 1)
}

func TestAnalysisErrorStillSavesFinalFile(t *testing.T) {
	h := newHarness(t)
	h.analyzer.err = context.Canceled
	require.NoError(t, store.Save(h.opts.IntermediatePath, sampleReport()))

	err := h.controller().Inter(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	final, loadErr := store.Load(h.opts.FinalPath)
	require.NoError(t, loadErr)
	assert.Len(t, final.Analyses, 1)
}

func TestFinal_ShowsResult(t *testing.T) {
	h := newHarness(t)
	h.opts.AssumeYes = true
	report := sampleReport()
	report.SetAnalysis(models.AnalysisEntry{FilePath: "main.go", Status: models.StatusOK, Text: "raw notes"})
	require.NoError(t, store.Save(h.opts.FinalPath, report))

	require.NoError(t, h.controller().Final(context.Background()))
	assert.Contains(t, h.out.String(), "raw notes")
	assert.Zero(t, h.analyzer.runs)
}

func TestFinal_Missing(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.controller().Final(context.Background()), store.ErrNotFound)
}

func TestFileConfirmer(t *testing.T) {
	h := newHarness(t, "y", "no", "all", "A")
	confirm := h.controller().fileConfirmer(context.Background())

	for _, want := range []analysis.Decision{analysis.DecisionYes, analysis.DecisionNo, analysis.DecisionAll, analysis.DecisionAll} {
		got, err := confirm.Confirm("main.go")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := confirm.Confirm("main.go")
	assert.True(t, errors.Is(err, io.EOF))
}

func TestAssumeYesSkipsQuestions(t *testing.T) {
	h := newHarness(t)
	h.opts.AssumeYes = true

	require.NoError(t, h.controller().New(context.Background(), "/tmp/project"))
	decision, err := h.analyzer.confirm.Confirm("main.go")
	require.NoError(t, err)
	assert.Equal(t, analysis.DecisionAll, decision)
	_, err = store.Load(h.opts.FinalPath)
	assert.NoError(t, err)
}

func TestPromptsStopWhenContextIsCancelled(t *testing.T) {
	reader := &blockingReader{release: make(chan struct{})}
	t.Cleanup(func() { close(reader.release) })

	tests := []struct {
		name string
		run  func(ctx context.Context, c *Controller) error
	}{
		{"menu choice", func(ctx context.Context, c *Controller) error { return c.Run(ctx) }},
		{"folder path", func(ctx context.Context, c *Controller) error { return c.New(ctx, "") }},
		{"file confirmation", func(ctx context.Context, c *Controller) error {
			_, err := c.fileConfirmer(ctx).Confirm("main.go")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.opts.In = reader
			ctx, cancel := context.WithCancel(context.Background())
			time.AfterFunc(50*time.Millisecond, cancel)

			errCh := make(chan error, 1)
			go func() { errCh <- tt.run(ctx, h.controller()) }()

			select {
			case err := <-errCh:
				assert.ErrorIs(t, err, context.Canceled)
			case <-time.After(2 * time.Second):
				t.Fatal("prompt did not return after cancellation")
			}
			assert.Zero(t, h.walker.calls)
		})
	}
}
