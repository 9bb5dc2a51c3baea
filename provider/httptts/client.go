// Package httptts implements the speech synthesizer client for an HTTP
// text-to-speech service that renders WAV audio.
package httptts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 10 * time.Second

	// maxPayloadBytes bounds a single synthesis response.
	maxPayloadBytes = 8 << 20
)

// Config defines a public type used by goCaptcha APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client defines a public type used by goCaptcha APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient describes the newclient operation and its observable behavior.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
// NewClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("tts base url required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		config: cfg,
		http:   httpClient,
	}, nil
}

type synthesizeRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

// Synthesize describes the synthesize operation and its observable behavior.
//
// Synthesize may return an error when input validation, dependency calls, or security checks fail.
// Synthesize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("empty synthesis text")
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, Locale: locale})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts synthesize status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
}
