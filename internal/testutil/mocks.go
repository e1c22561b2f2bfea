package testutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Alex-1367/TwoVoicesDubbing/internal/tts"
)

// MockProvider mocks a speech synthesis provider. Responses and Errors are
// keyed "text|lang". Safe for the two concurrent per-row fetches.
type MockProvider struct {
	mu        sync.Mutex
	Responses map[string][]byte
	Errors    map[string]error
	Calls     []string
}

var _ tts.Provider = (*MockProvider)(nil)

// Fetch returns the canned stream for text/lang, or default mock audio
func (m *MockProvider) Fetch(ctx context.Context, text, lang string) (io.ReadCloser, error) {
	key := fmt.Sprintf("%s|%s", text, lang)

	m.mu.Lock()
	m.Calls = append(m.Calls, key)
	m.mu.Unlock()

	if err, ok := m.Errors[key]; ok {
		return nil, err
	}
	if data, ok := m.Responses[key]; ok {
		return io.NopCloser(strings.NewReader(string(data))), nil
	}

	// Default response
	return io.NopCloser(strings.NewReader("mock audio data")), nil
}

// Name returns the provider name
func (m *MockProvider) Name() string { return "mock" }

// IsAvailable always succeeds
func (m *MockProvider) IsAvailable() error { return nil }

// CallCount returns how many fetches were issued
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockTool mocks the external media tool. It writes real files so cleanup
// and ordering behavior can be asserted without ffmpeg installed.
type MockTool struct {
	FailSilence  bool // Silence returns an error instead of writing
	FailConcat   bool // ConcatBytes/ConcatDemux fail
	Durations    map[string]float64
	ConcatInputs [][]string
	Calls        []string
}

// Silence writes a fake silence clip
func (m *MockTool) Silence(ctx context.Context, outputFile string, seconds float64) error {
	m.Calls = append(m.Calls, fmt.Sprintf("silence %.2fs %s", seconds, outputFile))
	if m.FailSilence {
		return fmt.Errorf("mock silence failure")
	}
	return os.WriteFile(outputFile, []byte("SILENCE"), 0644)
}

// ConcatBytes concatenates the input file contents into outputFile
func (m *MockTool) ConcatBytes(ctx context.Context, outputFile string, inputs ...string) error {
	m.Calls = append(m.Calls, fmt.Sprintf("concat %s", outputFile))
	m.ConcatInputs = append(m.ConcatInputs, append([]string(nil), inputs...))
	if m.FailConcat {
		return fmt.Errorf("mock concat failure")
	}

	var combined []byte
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		combined = append(combined, data...)
	}
	return os.WriteFile(outputFile, combined, 0644)
}

// ConcatDemux records the ordered input list and writes a marker output file
func (m *MockTool) ConcatDemux(ctx context.Context, outputFile string, inputs ...string) error {
	m.Calls = append(m.Calls, fmt.Sprintf("concat-demux %s", outputFile))
	m.ConcatInputs = append(m.ConcatInputs, append([]string(nil), inputs...))
	if m.FailConcat {
		return fmt.Errorf("mock concat failure")
	}
	return os.WriteFile(outputFile, []byte("COMBINED"), 0644)
}

// ProbeDuration returns the canned duration for file, defaulting to 1s
func (m *MockTool) ProbeDuration(ctx context.Context, file string) (float64, error) {
	if d, ok := m.Durations[file]; ok {
		return d, nil
	}
	return 1.0, nil
}
