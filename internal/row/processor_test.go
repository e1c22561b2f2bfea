package row

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Alex-1367/TwoVoicesDubbing/internal/testutil"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/vocab"
)

func newTestProcessor(t *testing.T, provider *testutil.MockProvider, tool *testutil.MockTool) (*Processor, string, string) {
	t.Helper()

	outputDir := t.TempDir()
	workDir := t.TempDir()
	proc := NewProcessor(provider, tool, Options{
		OutputDir:    outputDir,
		WorkDir:      workDir,
		SourceLang:   "de",
		TargetLang:   "en",
		PauseSeconds: 1.5,
	})
	return proc, outputDir, workDir
}

func intermediatePaths(workDir string, index int) []string {
	stem := filepath.Join(workDir, fmt.Sprintf("word_%03d", index+1))
	return []string{stem + "_source.mp3", stem + "_target.mp3", stem + "_silence.mp3"}
}

func TestProcess_Success(t *testing.T) {
	provider := &testutil.MockProvider{
		Responses: map[string][]byte{
			"Hallo|de": []byte("SOURCE"),
			"Hello|en": []byte("TARGET"),
		},
	}
	tool := &testutil.MockTool{}
	proc, outputDir, workDir := newTestProcessor(t, provider, tool)

	res := proc.Process(context.Background(), vocab.Row{Index: 0, Source: "Hallo", Target: "Hello"})

	if !res.Success {
		t.Fatalf("Process() failed: %s", res.ErrMsg)
	}
	if res.ErrMsg != "" {
		t.Errorf("ErrMsg = %q, want empty on success", res.ErrMsg)
	}
	wantPath := filepath.Join(outputDir, "word_001.mp3")
	if res.OutputPath != wantPath {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, wantPath)
	}

	// Source term first, pause, target term second
	content, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if string(content) != "SOURCESILENCETARGET" {
		t.Errorf("artifact content = %q, want SOURCESILENCETARGET", string(content))
	}

	for _, p := range intermediatePaths(workDir, 0) {
		testutil.AssertFileNotExists(t, p)
	}
}

func TestProcess_FetchFailure(t *testing.T) {
	provider := &testutil.MockProvider{
		Errors: map[string]error{
			"Goodbye|en": errors.New("synthesis endpoint returned status 503"),
		},
	}
	tool := &testutil.MockTool{}
	proc, outputDir, workDir := newTestProcessor(t, provider, tool)

	res := proc.Process(context.Background(), vocab.Row{Index: 1, Source: "Tschüss", Target: "Goodbye"})

	if res.Success {
		t.Fatal("Process() succeeded, want failure")
	}
	if res.OutputPath != "" {
		t.Errorf("OutputPath = %q, want empty on failure", res.OutputPath)
	}
	if res.ErrMsg == "" {
		t.Error("ErrMsg empty, want the fetch error")
	}

	// Both fetches were still issued concurrently
	if provider.CallCount() != 2 {
		t.Errorf("fetch calls = %d, want 2", provider.CallCount())
	}

	// The surviving source clip was cleaned up along with everything else
	for _, p := range intermediatePaths(workDir, 1) {
		testutil.AssertFileNotExists(t, p)
	}
	testutil.AssertFileNotExists(t, filepath.Join(outputDir, "word_002.mp3"))
}

func TestProcess_AssembleFailure(t *testing.T) {
	provider := &testutil.MockProvider{}
	tool := &testutil.MockTool{FailConcat: true}
	proc, _, workDir := newTestProcessor(t, provider, tool)

	res := proc.Process(context.Background(), vocab.Row{Index: 0, Source: "Hallo", Target: "Hello"})

	if res.Success {
		t.Fatal("Process() succeeded, want failure")
	}
	if res.ErrMsg == "" {
		t.Error("ErrMsg empty, want the concat error")
	}
	for _, p := range intermediatePaths(workDir, 0) {
		testutil.AssertFileNotExists(t, p)
	}
}

func TestProcess_SilenceWriteFailure(t *testing.T) {
	provider := &testutil.MockProvider{}
	tool := &testutil.MockTool{FailSilence: true}
	proc, _, _ := newTestProcessor(t, provider, tool)

	res := proc.Process(context.Background(), vocab.Row{Index: 0, Source: "Hallo", Target: "Hello"})
	if res.Success {
		t.Fatal("Process() succeeded, want failure when not even a placeholder can be written")
	}
}

func TestOutputName(t *testing.T) {
	proc := NewProcessor(&testutil.MockProvider{}, &testutil.MockTool{}, Options{})

	tests := []struct {
		index int
		want  string
	}{
		{0, "word_001.mp3"},
		{6, "word_007.mp3"},
		{9, "word_010.mp3"},
		{99, "word_100.mp3"},
		{999, "word_1000.mp3"}, // padding widens, never truncates
	}

	for _, tt := range tests {
		if got := proc.OutputName(tt.index); got != tt.want {
			t.Errorf("OutputName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
