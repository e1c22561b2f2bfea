package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using the OpenAI speech API. The
// language tag is advisory only: OpenAI voices detect the input language, so
// lang is folded into the voice instructions rather than the request itself.
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI speech provider
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
	}, nil
}

// Fetch synthesizes text via the OpenAI speech API and returns the MP3 stream
func (p *OpenAIProvider) Fetch(ctx context.Context, text, lang string) (io.ReadCloser, error) {
	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          text,
		Voice:          openai.SpeechVoice(p.config.OpenAIVoice),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	// The instruction-capable models take the language hint this way
	if p.config.OpenAIModel == "gpt-4o-mini-tts" && lang != "" {
		req.Instructions = fmt.Sprintf("Speak the text in the language with tag %q, slowly and clearly for language learners.", lang)
	}

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI speech API error: %w", err)
	}

	return response, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API is accessible
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	// A test API call would use credits; having a key is good enough here
	return nil
}
