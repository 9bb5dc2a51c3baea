// Package freesound implements the sound-library client backed by the
// Freesound HTTP API. Search results are narrowed to short preview renditions
// suitable for challenge clips.
package freesound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	goCaptcha "github.com/hearsum/goCaptcha"
)

const (
	defaultBaseURL = "https://freesound.org/apiv2"
	defaultTimeout = 10 * time.Second

	// maxPayloadBytes bounds a single preview download.
	maxPayloadBytes = 8 << 20
)

// Config defines a public type used by goCaptcha APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	APIKey     string
	BaseURL    string
	PageSize   int
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
	if cfg.APIKey == "" {
		return nil, errors.New("freesound api key required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 15
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

type searchResponse struct {
	Results []struct {
		ID       int               `json:"id"`
		Duration float64           `json:"duration"`
		Previews map[string]string `json:"previews"`
	} `json:"results"`
}

// Search describes the search operation and its observable behavior.
//
// Search may return an error when input validation, dependency calls, or security checks fail.
// Search does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Search(ctx context.Context, query string) ([]goCaptcha.ClipRef, error) {
	endpoint := fmt.Sprintf(
		"%s/search/text/?query=%s&fields=id,duration,previews&page_size=%d",
		c.config.BaseURL, url.QueryEscape(query), c.config.PageSize,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freesound search status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadBytes)).Decode(&decoded); err != nil {
		return nil, err
	}

	refs := make([]goCaptcha.ClipRef, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		preview := r.Previews["preview-hq-wav"]
		if preview == "" {
			preview = r.Previews["preview-lq-wav"]
		}
		if preview == "" {
			continue
		}
		refs = append(refs, goCaptcha.ClipRef{
			ID:         fmt.Sprintf("%d", r.ID),
			PreviewURL: preview,
			DurationMs: int(r.Duration * 1000),
		})
	}

	return refs, nil
}

// Fetch describes the fetch operation and its observable behavior.
//
// Fetch may return an error when input validation, dependency calls, or security checks fail.
// Fetch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Fetch(ctx context.Context, ref goCaptcha.ClipRef) ([]byte, error) {
	if ref.PreviewURL == "" {
		return nil, errors.New("clip ref has no preview url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.PreviewURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freesound fetch status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
}
