package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Alex-1367/TwoVoicesDubbing/internal/manifest"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/row"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/vocab"
)

// ManifestName is the filename of the per-run manifest inside the output
// directory; RetryName is the filename of the failed-row table.
const (
	ManifestName = "manifest.json"
	RetryName    = "retry.csv"
)

// RowProcessor turns one vocabulary row into a Result
type RowProcessor interface {
	Process(ctx context.Context, r vocab.Row) row.Result
}

// History records finished runs and reports rows that already succeeded.
// A nil History disables both.
type History interface {
	RecordRun(sourceFile string, results []row.Result) error
	SucceededRows(sourceFile string) (map[int]string, error)
}

// Options configures a batch run
type Options struct {
	SourceFile    string
	OutputDir     string
	PauseSeconds  float64       // recorded in the manifest
	RowDelay      time.Duration // pacing pause between rows, outcome-independent
	ProgressEvery int           // checkpoint line cadence, default 10
	SkipDone      bool          // reuse artifacts recorded successful in history
}

// Summary reports the outcome of a batch run
type Summary struct {
	Total        int
	Successful   int
	Failed       int
	OutputDir    string
	ManifestPath string
	RetryPath    string
}

// Runner iterates rows through a RowProcessor and derives the run artifacts
type Runner struct {
	proc    RowProcessor
	history History
	opts    Options
}

// NewRunner creates a batch runner. history may be nil.
func NewRunner(proc RowProcessor, history History, opts Options) *Runner {
	if opts.ProgressEvery == 0 {
		opts.ProgressEvery = 10
	}
	return &Runner{proc: proc, history: history, opts: opts}
}

// Run processes every row in order and writes the manifest and, when any row
// failed, the retry list. Row failures never abort the run; cancellation
// does, leaving completed artifacts on disk and the manifest unwritten.
func (b *Runner) Run(ctx context.Context, rows []vocab.Row) (Summary, error) {
	if err := os.MkdirAll(b.opts.OutputDir, 0755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	done := b.alreadyDone()

	results := make([]row.Result, 0, len(rows))
	for i, r := range rows {
		fmt.Printf("Processing %d/%d: %s\n", i+1, len(rows), r.Source)

		var res row.Result
		if path, ok := done[r.Index]; ok {
			fmt.Printf("  ✓ Skipping '%s' - artifact already exists: %s\n", r.Source, filepath.Base(path))
			res = row.Result{Index: r.Index, Source: r.Source, Target: r.Target, Success: true, OutputPath: path}
		} else {
			res = b.proc.Process(ctx, r)
			if !res.Success {
				fmt.Fprintf(os.Stderr, "  Error processing '%s': %s\n", r.Source, res.ErrMsg)
			}
		}
		results = append(results, res)

		if (i+1)%b.opts.ProgressEvery == 0 {
			failed := 0
			for _, prior := range results {
				if !prior.Success {
					failed++
				}
			}
			fmt.Printf("  -- %d/%d rows processed (%d failed)\n", i+1, len(rows), failed)
		}

		// Pacing pause between rows, regardless of the prior outcome
		if i < len(rows)-1 && b.opts.RowDelay > 0 {
			select {
			case <-ctx.Done():
				return Summary{}, ctx.Err()
			case <-time.After(b.opts.RowDelay):
			}
		}
	}

	summary, err := b.finish(results)
	if err != nil {
		return Summary{}, err
	}

	b.printSummary(summary)
	return summary, nil
}

// alreadyDone returns row indices whose prior artifact still exists on disk.
// History errors only disable skipping, never the run.
func (b *Runner) alreadyDone() map[int]string {
	if !b.opts.SkipDone || b.history == nil {
		return nil
	}

	recorded, err := b.history.SucceededRows(b.opts.SourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read run history: %v\n", err)
		return nil
	}

	done := make(map[int]string)
	for idx, path := range recorded {
		if _, err := os.Stat(path); err == nil {
			done[idx] = path
		}
	}
	return done
}

// finish derives and persists the manifest and retry list from the results
func (b *Runner) finish(results []row.Result) (Summary, error) {
	m := manifest.Build(b.opts.SourceFile, b.opts.PauseSeconds, results)

	summary := Summary{
		Total:        m.Total,
		Successful:   m.Successful,
		Failed:       m.Failed,
		OutputDir:    b.opts.OutputDir,
		ManifestPath: filepath.Join(b.opts.OutputDir, ManifestName),
	}

	if err := m.Write(summary.ManifestPath); err != nil {
		return Summary{}, err
	}

	var failedRows []vocab.Row
	for _, res := range results {
		if !res.Success {
			failedRows = append(failedRows, vocab.Row{Index: res.Index, Source: res.Source, Target: res.Target})
		}
	}
	if len(failedRows) > 0 {
		summary.RetryPath = filepath.Join(b.opts.OutputDir, RetryName)
		if err := vocab.WriteRetryList(summary.RetryPath, failedRows); err != nil {
			return Summary{}, err
		}
	}

	if b.history != nil {
		if err := b.history.RecordRun(b.opts.SourceFile, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record run history: %v\n", err)
		}
	}

	return summary, nil
}

func (b *Runner) printSummary(s Summary) {
	fmt.Printf("\n=== Batch Summary ===\n")
	fmt.Printf("Total rows: %d\n", s.Total)
	fmt.Printf("Successful: %d\n", s.Successful)
	if s.Failed > 0 {
		fmt.Printf("Failed: %d\n", s.Failed)
		fmt.Printf("Retry list: %s\n", s.RetryPath)
	}
	fmt.Printf("Manifest: %s\n", s.ManifestPath)
	fmt.Printf("=====================\n")
}
