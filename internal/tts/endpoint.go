package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultEndpointURL is the unauthenticated synthesis endpoint queried with
// a language tag and percent-encoded text.
const DefaultEndpointURL = "https://translate.google.com/translate_tts"

// EndpointProvider implements Provider against a plain HTTP synthesis
// endpoint. Rate limiting is deliberately not handled here; the batch runner
// paces its calls.
type EndpointProvider struct {
	baseURL string
	client  *http.Client
}

// NewEndpointProvider creates a provider for the given synthesis endpoint URL
func NewEndpointProvider(baseURL string) (*EndpointProvider, error) {
	if baseURL == "" {
		baseURL = DefaultEndpointURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}

	return &EndpointProvider{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}, nil
}

// Fetch performs one GET request for the given text and language tag and
// returns the response body stream. The caller owns closing the stream.
func (p *EndpointProvider) Fetch(ctx context.Context, text, lang string) (io.ReadCloser, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}

	q := u.Query()
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("synthesis endpoint returned status %d for %q", resp.StatusCode, text)
	}

	return resp.Body, nil
}

// Name returns the provider name
func (p *EndpointProvider) Name() string {
	return "endpoint"
}

// IsAvailable checks if the endpoint provider is configured
func (p *EndpointProvider) IsAvailable() error {
	if p.baseURL == "" {
		return fmt.Errorf("synthesis endpoint URL not configured")
	}
	return nil
}
