// Package docgen provides an HTTP client for the license-document
// rendering service.
package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/waveforge/waveforge/internal/config"
	"github.com/waveforge/waveforge/internal/port/docgen"
	"github.com/waveforge/waveforge/internal/resilience"
)

// Client renders license PDFs through the external document service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a document service client.
func NewClient(cfg config.Docgen) *Client {
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Generate submits one license request and returns the stored artifact.
func (c *Client) Generate(ctx context.Context, req docgen.Request) (*docgen.Artifact, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal document request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/licenses", body)
	if err != nil {
		return nil, fmt.Errorf("generate license document: %w", err)
	}

	var artifact docgen.Artifact
	if err := json.Unmarshal(resp, &artifact); err != nil {
		return nil, fmt.Errorf("unmarshal document artifact: %w", err)
	}
	if artifact.ItemID == "" {
		artifact.ItemID = req.ItemID
	}
	return &artifact, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("docgen API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
