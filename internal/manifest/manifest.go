// Package manifest defines the structured record of a batch run: every
// row's outcome, derived once after all rows finish and never mutated.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Alex-1367/TwoVoicesDubbing/internal/row"
)

// Manifest summarizes one batch run
type Manifest struct {
	GeneratedAt  time.Time `json:"generated_at"`
	SourceFile   string    `json:"source_file"`
	Total        int       `json:"total"`
	Successful   int       `json:"successful"`
	Failed       int       `json:"failed"`
	PauseSeconds float64   `json:"pause_duration_seconds"`
	Items        []Item    `json:"items"`
}

// Item is the per-row projection of a row result. Index is 1-based for
// display; File holds the artifact filename on success, Error the innermost
// failure message otherwise.
type Item struct {
	Index   int    `json:"index"`
	Source  string `json:"source"`
	Target  string `json:"target"`
	Success bool   `json:"success"`
	File    string `json:"file,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Build derives a manifest from the accumulated row results, preserving
// their order. successful + failed always equals total equals len(items).
func Build(sourceFile string, pauseSeconds float64, results []row.Result) *Manifest {
	m := &Manifest{
		GeneratedAt:  time.Now(),
		SourceFile:   sourceFile,
		Total:        len(results),
		PauseSeconds: pauseSeconds,
		Items:        make([]Item, 0, len(results)),
	}

	for _, res := range results {
		item := Item{
			Index:   res.Index + 1,
			Source:  res.Source,
			Target:  res.Target,
			Success: res.Success,
		}
		if res.Success {
			m.Successful++
			item.File = filepath.Base(res.OutputPath)
		} else {
			m.Failed++
			item.Error = res.ErrMsg
		}
		m.Items = append(m.Items, item)
	}

	return m
}

// Write persists the manifest as indented JSON
func (m *Manifest) Write(filename string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Load reads a manifest back from disk
func Load(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
