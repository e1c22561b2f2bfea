package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alex-1367/TwoVoicesDubbing/internal"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/batch"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/cli"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/combine"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/history"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/media"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/row"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/tts"
	"github.com/Alex-1367/TwoVoicesDubbing/internal/vocab"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), args[0], flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, input string, flags *cli.Flags) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input not found: %s (pass a vocabulary table or a directory of .csv tables)", input)
	}

	// Both preconditions are checked before any row processing begins
	tool := media.NewTool()
	if err := tool.CheckInstalled(); err != nil {
		return err
	}

	provider, err := buildProvider(flags)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return processTable(ctx, input, provider, tool, flags)
	}

	tables, err := filepath.Glob(filepath.Join(input, "*.csv"))
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", input, err)
	}
	sort.Strings(tables)
	if len(tables) == 0 {
		return fmt.Errorf("no .csv tables found in %s", input)
	}

	// A failed table never stops the remaining tables
	failures := 0
	for _, table := range tables {
		fmt.Printf("\n### Table %s ###\n", filepath.Base(table))
		if err := processTable(ctx, table, provider, tool, flags); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing table %s: %v\n", table, err)
			failures++
		}
	}
	if failures == len(tables) {
		return fmt.Errorf("all %d tables failed", failures)
	}
	return nil
}

func buildProvider(flags *cli.Flags) (tts.Provider, error) {
	config := &tts.Config{
		Provider:    flags.Provider,
		EndpointURL: flags.EndpointURL,
		OpenAIKey:   cli.GetOpenAIKey(),
		OpenAIModel: flags.OpenAIModel,
		OpenAIVoice: flags.OpenAIVoice,
		OpenAISpeed: flags.OpenAISpeed,
	}

	provider, err := tts.NewProvider(config)
	if err != nil {
		return nil, err
	}

	return tts.NewBreakerProvider(provider), nil
}

func processTable(ctx context.Context, table string, provider tts.Provider, tool *media.Tool, flags *cli.Flags) error {
	rows, err := vocab.ParseFile(table)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no vocabulary rows found in %s", table)
	}

	base := internal.SanitizeFilename(strings.TrimSuffix(filepath.Base(table), filepath.Ext(table)))
	outputDir := filepath.Join(flags.OutputDir, base)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	workDir, err := os.MkdirTemp("", "twovoices-")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	proc := row.NewProcessor(provider, tool, row.Options{
		OutputDir:    outputDir,
		WorkDir:      workDir,
		SourceLang:   flags.SourceLang,
		TargetLang:   flags.TargetLang,
		PauseSeconds: flags.PauseSeconds,
	})

	var hist batch.History
	store, err := history.Open(filepath.Join(outputDir, "runs.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run history unavailable: %v\n", err)
	} else {
		defer store.Close()
		hist = store
	}

	runner := batch.NewRunner(proc, hist, batch.Options{
		SourceFile:   table,
		OutputDir:    outputDir,
		PauseSeconds: flags.PauseSeconds,
		RowDelay:     time.Duration(flags.RowDelaySeconds * float64(time.Second)),
		SkipDone:     flags.SkipDone,
	})

	summary, err := runner.Run(ctx, rows)
	if err != nil {
		return err
	}

	if flags.Combine {
		combiner := combine.NewCombiner(tool, "word", flags.PauseSeconds)
		combinedFile := filepath.Join(outputDir, base+"_combined.mp3")
		report, err := combiner.Combine(ctx, outputDir, combinedFile)
		if err != nil {
			return fmt.Errorf("failed to produce combined artifact: %w", err)
		}
		fmt.Printf("Combined %d clips into %s (about %.0f seconds)\n",
			report.Files, combinedFile, report.EstimatedSeconds)
	}

	fmt.Printf("\nDone! Materials saved to: %s\n", summary.OutputDir)
	return nil
}
