package row

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Alex-1367/TwoVoicesDubbing/internal/tts"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/vocab"
)

// Result records the outcome of processing one vocabulary row. Exactly one
// of OutputPath and ErrMsg is set: Success implies OutputPath, failure
// implies ErrMsg.
type Result struct {
	Index      int
	Source     string
	Target     string
	Success    bool
	OutputPath string
	ErrMsg     string
}

// AudioTool is the subset of the external media tool the processor needs.
type AudioTool interface {
	Silence(ctx context.Context, outputFile string, seconds float64) error
	ConcatBytes(ctx context.Context, outputFile string, inputs ...string) error
}

// Options configures a row processor
type Options struct {
	OutputDir    string  // destination of finished per-row artifacts
	WorkDir      string  // intermediate clip scratch space
	SourceLang   string  // language tag for the source term
	TargetLang   string  // language tag for the target term
	PauseSeconds float64 // pause inserted between the two terms
	FilePrefix   string  // artifact name prefix, default "word"
	IndexWidth   int     // zero-padding width of the artifact index, default 3
}

// Processor builds one narrated clip per vocabulary row
type Processor struct {
	provider tts.Provider
	tool     AudioTool
	opts     Options
}

// NewProcessor creates a row processor
func NewProcessor(provider tts.Provider, tool AudioTool, opts Options) *Processor {
	if opts.FilePrefix == "" {
		opts.FilePrefix = "word"
	}
	if opts.IndexWidth == 0 {
		opts.IndexWidth = 3
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	return &Processor{provider: provider, tool: tool, opts: opts}
}

// OutputName returns the artifact filename for a 0-based row index. Names
// are 1-based and zero-padded so a later directory scan sorts them back into
// input order.
func (p *Processor) OutputName(index int) string {
	return fmt.Sprintf("%s_%0*d.mp3", p.opts.FilePrefix, p.opts.IndexWidth, index+1)
}

// Process turns one row into a finished artifact. The two speech fetches run
// concurrently; silence generation and assembly follow sequentially. The
// three intermediate files are removed on every exit path.
func (p *Processor) Process(ctx context.Context, r vocab.Row) Result {
	stem := fmt.Sprintf("%s_%0*d", p.opts.FilePrefix, p.opts.IndexWidth, r.Index+1)
	sourceClip := filepath.Join(p.opts.WorkDir, stem+"_source.mp3")
	targetClip := filepath.Join(p.opts.WorkDir, stem+"_target.mp3")
	silenceClip := filepath.Join(p.opts.WorkDir, stem+"_silence.mp3")

	// Cleanup is unconditional; removal failures never affect the result
	defer func() {
		os.Remove(sourceClip)
		os.Remove(targetClip)
		os.Remove(silenceClip)
	}()

	var wg sync.WaitGroup
	var sourceErr, targetErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		sourceErr = tts.SaveTo(ctx, p.provider, r.Source, p.opts.SourceLang, sourceClip)
	}()
	go func() {
		defer wg.Done()
		targetErr = tts.SaveTo(ctx, p.provider, r.Target, p.opts.TargetLang, targetClip)
	}()
	wg.Wait()

	if sourceErr != nil {
		return p.failed(r, fmt.Errorf("fetching %q: %w", r.Source, sourceErr))
	}
	if targetErr != nil {
		return p.failed(r, fmt.Errorf("fetching %q: %w", r.Target, targetErr))
	}

	// Silence falls back to a zero-byte placeholder internally; an error
	// here means even the placeholder could not be written.
	if err := p.tool.Silence(ctx, silenceClip, p.opts.PauseSeconds); err != nil {
		return p.failed(r, err)
	}

	outputFile := filepath.Join(p.opts.OutputDir, p.OutputName(r.Index))
	if err := p.tool.ConcatBytes(ctx, outputFile, sourceClip, silenceClip, targetClip); err != nil {
		return p.failed(r, err)
	}

	return Result{
		Index:      r.Index,
		Source:     r.Source,
		Target:     r.Target,
		Success:    true,
		OutputPath: outputFile,
	}
}

func (p *Processor) failed(r vocab.Row, err error) Result {
	return Result{
		Index:   r.Index,
		Source:  r.Source,
		Target:  r.Target,
		Success: false,
		ErrMsg:  err.Error(),
	}
}
