package tts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Provider defines the interface for speech synthesis backends
type Provider interface {
	// Fetch synthesizes text in the given language and returns the audio
	// byte stream. One outbound request per call, no retries: a single
	// failure propagates immediately to the caller.
	Fetch(ctx context.Context, text, lang string) (io.ReadCloser, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for speech providers
type Config struct {
	Provider string // Provider name: "endpoint" or "openai"

	// Endpoint settings
	EndpointURL string

	// OpenAI-specific settings
	OpenAIKey   string
	OpenAIModel string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice string  // "alloy", "ash", "coral", "echo", "fable", "onyx", "nova", "shimmer", ...
	OpenAISpeed float64 // 0.25 to 4.0
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:    "endpoint",
		EndpointURL: DefaultEndpointURL,
		OpenAIModel: "gpt-4o-mini-tts",
		OpenAIVoice: "alloy",
		OpenAISpeed: 1.0,
	}
}

// NewProvider creates the appropriate speech provider based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "endpoint":
		return NewEndpointProvider(config.EndpointURL)

	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	default:
		return nil, fmt.Errorf("unknown speech provider: %s", config.Provider)
	}
}

// SaveTo fetches speech for text and writes the stream to outputFile. No
// partial file is left behind on error.
func SaveTo(ctx context.Context, p Provider, text, lang, outputFile string) error {
	stream, err := p.Fetch(ctx, text, lang)
	if err != nil {
		return err
	}
	defer stream.Close()

	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := io.Copy(out, stream)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(outputFile)
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		os.Remove(outputFile)
		return fmt.Errorf("no audio data received from %s", p.Name())
	}

	return nil
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
	}
}

// Fetch tries the primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) Fetch(ctx context.Context, text, lang string) (io.ReadCloser, error) {
	stream, err := p.primary.Fetch(ctx, text, lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Primary provider (%s) failed: %v. Falling back to %s\n",
			p.primary.Name(), err, p.fallback.Name())

		return p.fallback.Fetch(ctx, text, lang)
	}
	return stream, nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
