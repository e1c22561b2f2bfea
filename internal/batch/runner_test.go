package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Alex-1367/TwoVoicesDubbing/internal/manifest"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/row"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/testutil"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/vocab"
)

// scriptedProcessor fails the rows whose source term appears in failSources
// and writes a fake artifact for every other row.
type scriptedProcessor struct {
	outputDir   string
	failSources map[string]string // source term -> error message
	processed   []int
}

func (p *scriptedProcessor) Process(ctx context.Context, r vocab.Row) row.Result {
	p.processed = append(p.processed, r.Index)

	if msg, ok := p.failSources[r.Source]; ok {
		return row.Result{Index: r.Index, Source: r.Source, Target: r.Target, ErrMsg: msg}
	}

	path := filepath.Join(p.outputDir, fmt.Sprintf("word_%03d.mp3", r.Index+1))
	os.WriteFile(path, []byte("clip"), 0644)
	return row.Result{Index: r.Index, Source: r.Source, Target: r.Target, Success: true, OutputPath: path}
}

// fakeHistory implements History in memory.
type fakeHistory struct {
	succeeded map[int]string
	recorded  [][]row.Result
}

func (h *fakeHistory) RecordRun(sourceFile string, results []row.Result) error {
	h.recorded = append(h.recorded, results)
	return nil
}

func (h *fakeHistory) SucceededRows(sourceFile string) (map[int]string, error) {
	return h.succeeded, nil
}

func testRows() []vocab.Row {
	return []vocab.Row{
		{Index: 0, Source: "Hallo", Target: "Hello"},
		{Index: 1, Source: "Tschüss", Target: "Goodbye"},
	}
}

func TestRun_AllSuccess(t *testing.T) {
	outputDir := t.TempDir()
	proc := &scriptedProcessor{outputDir: outputDir}
	runner := NewRunner(proc, nil, Options{
		SourceFile:   "words.csv",
		OutputDir:    outputDir,
		PauseSeconds: 1.5,
	})

	summary, err := runner.Run(context.Background(), testRows())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Total != 2 || summary.Successful != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 2/2/0", summary)
	}
	testutil.AssertFileExists(t, filepath.Join(outputDir, "word_001.mp3"))
	testutil.AssertFileExists(t, filepath.Join(outputDir, "word_002.mp3"))
	testutil.AssertFileExists(t, summary.ManifestPath)
	testutil.AssertFileNotExists(t, filepath.Join(outputDir, RetryName))

	m, err := manifest.Load(summary.ManifestPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Total != 2 || m.Successful != 2 || m.Failed != 0 {
		t.Errorf("manifest counts = %d/%d/%d, want 2/2/0", m.Total, m.Successful, m.Failed)
	}
	if len(m.Items) != m.Total {
		t.Errorf("len(items) = %d, want %d", len(m.Items), m.Total)
	}
	if m.Items[0].Index != 1 || m.Items[1].Index != 2 {
		t.Errorf("manifest indices = %d, %d, want 1-based 1, 2", m.Items[0].Index, m.Items[1].Index)
	}
}

func TestRun_PartialFailureWritesRetryList(t *testing.T) {
	outputDir := t.TempDir()
	proc := &scriptedProcessor{
		outputDir:   outputDir,
		failSources: map[string]string{"Tschüss": "fetching \"Goodbye\": endpoint returned status 503"},
	}
	runner := NewRunner(proc, nil, Options{
		SourceFile:   "words.csv",
		OutputDir:    outputDir,
		PauseSeconds: 1.5,
	})

	summary, err := runner.Run(context.Background(), testRows())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Total != 2 || summary.Successful != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 2/1/1", summary)
	}

	content, err := os.ReadFile(summary.RetryPath)
	if err != nil {
		t.Fatalf("Failed to read retry list: %v", err)
	}
	if string(content) != "Tschüss,Goodbye\n" {
		t.Errorf("retry list = %q, want %q", string(content), "Tschüss,Goodbye\n")
	}

	m, err := manifest.Load(summary.ManifestPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Successful+m.Failed != m.Total {
		t.Error("successful + failed != total")
	}
	if m.Items[1].Success || m.Items[1].Error == "" {
		t.Errorf("failed item not recorded: %+v", m.Items[1])
	}
}

func TestRun_ProcessesInOrderWithDelay(t *testing.T) {
	outputDir := t.TempDir()
	proc := &scriptedProcessor{outputDir: outputDir}
	runner := NewRunner(proc, nil, Options{
		SourceFile: "words.csv",
		OutputDir:  outputDir,
		RowDelay:   10 * time.Millisecond,
	})

	rows := []vocab.Row{
		{Index: 0, Source: "a", Target: "x"},
		{Index: 1, Source: "b", Target: "y"},
		{Index: 2, Source: "c", Target: "z"},
	}

	start := time.Now()
	if _, err := runner.Run(context.Background(), rows); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Two inter-row delays: between rows 1-2 and 2-3
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("elapsed = %v, want at least two 10ms pacing delays", elapsed)
	}
	for i, idx := range proc.processed {
		if idx != i {
			t.Errorf("processed[%d] = %d, rows must run in input order", i, idx)
		}
	}
}

func TestRun_CancelledBetweenRows(t *testing.T) {
	outputDir := t.TempDir()
	proc := &scriptedProcessor{outputDir: outputDir}
	runner := NewRunner(proc, nil, Options{
		SourceFile: "words.csv",
		OutputDir:  outputDir,
		RowDelay:   time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := runner.Run(ctx, testRows())
	if err == nil {
		t.Fatal("Run() error = nil, want context error")
	}

	// Completed artifacts stay, the manifest is never written
	testutil.AssertFileExists(t, filepath.Join(outputDir, "word_001.mp3"))
	testutil.AssertFileNotExists(t, filepath.Join(outputDir, ManifestName))
}

func TestRun_SkipDone(t *testing.T) {
	outputDir := t.TempDir()
	existing := filepath.Join(outputDir, "word_001.mp3")
	testutil.CreateTestFile(t, existing, []byte("old clip"))

	hist := &fakeHistory{succeeded: map[int]string{0: existing}}
	proc := &scriptedProcessor{outputDir: outputDir}
	runner := NewRunner(proc, hist, Options{
		SourceFile: "words.csv",
		OutputDir:  outputDir,
		SkipDone:   true,
	})

	summary, err := runner.Run(context.Background(), testRows())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Successful != 2 {
		t.Errorf("Successful = %d, want 2 (one reused)", summary.Successful)
	}
	if len(proc.processed) != 1 || proc.processed[0] != 1 {
		t.Errorf("processed = %v, want only row 1", proc.processed)
	}
	if len(hist.recorded) != 1 {
		t.Errorf("history runs recorded = %d, want 1", len(hist.recorded))
	}
}

func TestRun_SkipDoneIgnoresMissingArtifact(t *testing.T) {
	outputDir := t.TempDir()
	hist := &fakeHistory{succeeded: map[int]string{0: filepath.Join(outputDir, "gone.mp3")}}
	proc := &scriptedProcessor{outputDir: outputDir}
	runner := NewRunner(proc, hist, Options{
		SourceFile: "words.csv",
		OutputDir:  outputDir,
		SkipDone:   true,
	})

	if _, err := runner.Run(context.Background(), testRows()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(proc.processed) != 2 {
		t.Errorf("processed = %v, want both rows (recorded artifact is gone)", proc.processed)
	}
}
