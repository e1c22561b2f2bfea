package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Alex-1367/TwoVoicesDubbing/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "twovoices <input.csv|directory>",
		Short: "Two-voice vocabulary narration generator",
		Long: `twovoices turns a two-column vocabulary table into narrated audio.

For each row it fetches synthesized speech for the source and target terms,
inserts a fixed pause between them, and writes one numbered clip per row.
All clips are then concatenated into a single audio file, alongside a JSON
manifest of every row's outcome and a retry table of failed rows.

Examples:
  twovoices words.csv                 # Process one vocabulary table
  twovoices tables/                   # Process every .csv table in a directory
  twovoices words.csv --pause 2.0     # Longer pause between the two terms
  twovoices words.csv --provider openai --openai-voice nova`,
		Args:    cobra.ExactArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.twovoices.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")
	cmd.Flags().Float64Var(&flags.PauseSeconds, "pause", flags.PauseSeconds, "Pause between the two terms in seconds")
	cmd.Flags().Float64Var(&flags.RowDelaySeconds, "row-delay", flags.RowDelaySeconds, "Pacing delay between rows in seconds")
	cmd.Flags().BoolVar(&flags.SkipDone, "skip-done", false, "Skip rows whose artifact already exists from a previous run")
	cmd.Flags().BoolVar(&flags.Combine, "combine", flags.Combine, "Concatenate all row clips into one combined file")

	// Speech provider flags
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Speech provider: endpoint or openai")
	cmd.Flags().StringVar(&flags.EndpointURL, "endpoint-url", "", "Synthesis endpoint URL (endpoint provider)")
	cmd.Flags().StringVar(&flags.SourceLang, "source-lang", flags.SourceLang, "Language tag of the source terms")
	cmd.Flags().StringVar(&flags.TargetLang, "target-lang", flags.TargetLang, "Language tag of the target terms")

	// OpenAI flags
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, coral, echo, fable, onyx, nova, shimmer")
	cmd.Flags().Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	viper.BindPFlag("audio.pause", cmd.Flags().Lookup("pause"))
	viper.BindPFlag("batch.row_delay", cmd.Flags().Lookup("row-delay"))
	viper.BindPFlag("batch.skip_done", cmd.Flags().Lookup("skip-done"))
	viper.BindPFlag("tts.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("tts.endpoint_url", cmd.Flags().Lookup("endpoint-url"))
	viper.BindPFlag("tts.source_lang", cmd.Flags().Lookup("source-lang"))
	viper.BindPFlag("tts.target_lang", cmd.Flags().Lookup("target-lang"))
	viper.BindPFlag("tts.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("tts.openai_voice", cmd.Flags().Lookup("openai-voice"))
	viper.BindPFlag("tts.openai_speed", cmd.Flags().Lookup("openai-speed"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".twovoices" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".twovoices")
	}

	// Environment variables
	viper.SetEnvPrefix("TWOVOICES")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("tts.openai_key")
}
