// Package combine concatenates the numbered per-row artifacts of a batch
// into one final audio file, with a fixed pause between consecutive items.
package combine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// ErrNoArtifacts indicates the directory held no matching audio artifacts.
var ErrNoArtifacts = errors.New("no matching audio artifacts found")

// MediaTool is the subset of the external media tool the combiner needs.
type MediaTool interface {
	Silence(ctx context.Context, outputFile string, seconds float64) error
	ConcatDemux(ctx context.Context, outputFile string, inputs ...string) error
	ProbeDuration(ctx context.Context, file string) (float64, error)
}

// Report carries informational figures about a combine run. The duration is
// an estimate from probing; it never gates success.
type Report struct {
	Files            int
	EstimatedSeconds float64
}

// Combiner merges a directory of numbered artifacts into one file
type Combiner struct {
	tool         MediaTool
	filePrefix   string
	pauseSeconds float64
}

// NewCombiner creates a combiner for artifacts named <prefix>_<number>.mp3
func NewCombiner(tool MediaTool, filePrefix string, pauseSeconds float64) *Combiner {
	if filePrefix == "" {
		filePrefix = "word"
	}
	return &Combiner{tool: tool, filePrefix: filePrefix, pauseSeconds: pauseSeconds}
}

// Combine enumerates matching artifacts in dir, sorts them by their embedded
// numeric index (so item 10 follows item 9), interleaves a silence clip
// between consecutive items, and runs one concatenation over the whole list.
func (c *Combiner) Combine(ctx context.Context, dir, outputFile string) (Report, error) {
	artifacts, err := c.scan(dir)
	if err != nil {
		return Report{}, err
	}
	if len(artifacts) == 0 {
		return Report{}, fmt.Errorf("%w in %s", ErrNoArtifacts, dir)
	}

	inputs := make([]string, 0, 2*len(artifacts)-1)
	var silenceFile string
	if len(artifacts) > 1 {
		silenceFile = filepath.Join(os.TempDir(), fmt.Sprintf("%s_gap_%d.mp3", c.filePrefix, os.Getpid()))
		if err := c.tool.Silence(ctx, silenceFile, c.pauseSeconds); err != nil {
			return Report{}, err
		}
		defer os.Remove(silenceFile)
	}

	for i, a := range artifacts {
		if i > 0 {
			inputs = append(inputs, silenceFile)
		}
		inputs = append(inputs, a)
	}

	if err := c.tool.ConcatDemux(ctx, outputFile, inputs...); err != nil {
		return Report{}, fmt.Errorf("failed to combine artifacts: %w", err)
	}

	return Report{
		Files:            len(artifacts),
		EstimatedSeconds: c.estimateDuration(ctx, artifacts),
	}, nil
}

// scan returns matching artifact paths in numeric index order
func (c *Combiner) scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact directory: %w", err)
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(c.filePrefix) + `_(\d+)\.mp3$`)

	type numbered struct {
		index int
		path  string
	}
	var found []numbered
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{index: index, path: filepath.Join(dir, entry.Name())})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths, nil
}

// estimateDuration sums probed artifact durations plus the inter-item
// silences. Probe failures are warned about and skipped.
func (c *Combiner) estimateDuration(ctx context.Context, artifacts []string) float64 {
	total := float64(len(artifacts)-1) * c.pauseSeconds
	for _, a := range artifacts {
		seconds, err := c.tool.ProbeDuration(ctx, a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not probe %s: %v\n", filepath.Base(a), err)
			continue
		}
		total += seconds
	}
	return total
}
