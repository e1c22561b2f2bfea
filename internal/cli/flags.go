package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile         string
	OutputDir       string
	PauseSeconds    float64
	RowDelaySeconds float64
	SkipDone        bool
	Combine         bool

	// Speech provider flags
	Provider    string
	EndpointURL string
	SourceLang  string
	TargetLang  string

	// OpenAI flags
	OpenAIModel string
	OpenAIVoice string
	OpenAISpeed float64
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		OutputDir:       "output",
		PauseSeconds:    1.5,
		RowDelaySeconds: 2.0,
		Combine:         true,
		Provider:        "endpoint",
		SourceLang:      "de",
		TargetLang:      "en",
		OpenAIModel:     "gpt-4o-mini-tts",
		OpenAIVoice:     "alloy",
		OpenAISpeed:     1.0,
	}
}
