package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrToolMissing indicates that the external media tool is not installed.
var ErrToolMissing = errors.New("ffmpeg is not installed or not in PATH")

// Tool invokes ffmpeg and ffprobe as subprocesses. All generated silence
// uses the same fixed sample rate, channel layout, and bitrate so that
// byte-level concatenation with fetched speech clips stays valid.
type Tool struct {
	FFmpegPath  string
	FFprobePath string
	SampleRate  int    // Hz, mono
	Bitrate     string // e.g. "48k"
}

// NewTool returns a Tool with the default binary names and audio settings
func NewTool() *Tool {
	return &Tool{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		SampleRate:  24000,
		Bitrate:     "48k",
	}
}

// CheckInstalled verifies that ffmpeg and ffprobe are available on the
// system. It is called once at startup; a failure aborts the run with a
// remediation hint.
func (t *Tool) CheckInstalled() error {
	for _, bin := range []string{t.FFmpegPath, t.FFprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%w: %s (install it and ensure the binary is on PATH)", ErrToolMissing, bin)
		}
	}
	return nil
}

// Silence writes a silent MP3 of the given duration to outputFile. If the
// ffmpeg invocation fails, a zero-byte placeholder is written instead and no
// error is returned; downstream concatenation always still runs against the
// degenerate clip, which decodes the same as having no pause at all.
func (t *Tool) Silence(ctx context.Context, outputFile string, seconds float64) error {
	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", t.SampleRate),
		"-t", fmt.Sprintf("%.2f", seconds),
		"-b:a", t.Bitrate,
		outputFile,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: silence generation failed, using empty placeholder: %v\nOutput: %s\n",
			err, string(output))
		if werr := os.WriteFile(outputFile, nil, 0644); werr != nil {
			return fmt.Errorf("failed to write silence placeholder: %w", werr)
		}
	}

	return nil
}

// ConcatBytes concatenates the input clips into outputFile via ffmpeg's
// concat protocol. This is a byte-level copy, not a re-encode, so all inputs
// must share the same codec parameters. Unlike Silence there is no fallback:
// a failed combine has no meaningful placeholder.
func (t *Tool) ConcatBytes(ctx context.Context, outputFile string, inputs ...string) error {
	if len(inputs) < 2 {
		return fmt.Errorf("concat needs at least two inputs, got %d", len(inputs))
	}

	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-y",
		"-i", "concat:"+strings.Join(inputs, "|"),
		"-acodec", "copy",
		outputFile,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}

// ConcatDemux concatenates the input clips into outputFile using ffmpeg's
// concat demuxer, which takes a list file and scales to long input lists.
// Used by the final combine step over the full ordered artifact list.
func (t *Tool) ConcatDemux(ctx context.Context, outputFile string, inputs ...string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("concat needs at least one input")
	}

	listFile, err := t.writeConcatList(inputs)
	if err != nil {
		return err
	}
	defer os.Remove(listFile)

	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-acodec", "copy",
		outputFile,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}

// ProbeDuration returns the duration of an audio file in seconds
func (t *Tool) ProbeDuration(ctx context.Context, file string) (float64, error) {
	cmd := exec.CommandContext(ctx, t.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		file,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", file, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", strings.TrimSpace(string(output)), err)
	}

	return seconds, nil
}

// writeConcatList writes a concat-demuxer list file next to the temp dir and
// returns its path. Single quotes in paths are escaped per the demuxer rules.
func (t *Tool) writeConcatList(inputs []string) (string, error) {
	f, err := os.CreateTemp("", "twovoices-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create concat list: %w", err)
	}

	var sb strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			abs = in
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		sb.WriteString("file '" + escaped + "'\n")
	}

	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}

	return f.Name(), nil
}
