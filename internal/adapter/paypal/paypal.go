// Package paypal provides an HTTP client for the PayPal Orders v2 REST API.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/waveforge/waveforge/internal/config"
	"github.com/waveforge/waveforge/internal/port/payment"
	"github.com/waveforge/waveforge/internal/resilience"
)

// Client talks to the PayPal REST API with cached OAuth2 client credentials.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
	breaker    *resilience.Breaker

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	now func() time.Time
}

// NewClient creates a PayPal client for the configured environment.
func NewClient(cfg config.PayPal) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// CreateOrder creates a provider order pending buyer approval. The local
// order id travels in the purchase unit's custom_id.
func (c *Client) CreateOrder(ctx context.Context, p payment.PayPalOrderParams) (*payment.PayPalOrder, error) {
	reqBody := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"custom_id": p.OrderID,
			"amount": map[string]string{
				"currency_code": strings.ToUpper(p.Currency),
				"value":         formatAmount(p.Total),
			},
		}},
		"application_context": map[string]string{
			"return_url": p.ReturnURL,
			"cancel_url": p.CancelURL,
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal create order: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v2/checkout/orders", body)
	if err != nil {
		return nil, fmt.Errorf("create paypal order: %w", err)
	}

	var result struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("unmarshal paypal order: %w", err)
	}

	out := &payment.PayPalOrder{ID: result.ID}
	for _, l := range result.Links {
		if l.Rel == "approve" {
			out.ApprovalURL = l.Href
			break
		}
	}
	return out, nil
}

// CaptureOrder captures an approved order and reports the capture status
// plus the echoed custom_id for cross-checking.
func (c *Client) CaptureOrder(ctx context.Context, paypalOrderID string) (*payment.PayPalCapture, error) {
	path := "/v2/checkout/orders/" + url.PathEscape(paypalOrderID) + "/capture"
	resp, err := c.doRequest(ctx, http.MethodPost, path, []byte("{}"))
	if err != nil {
		return nil, fmt.Errorf("capture paypal order %s: %w", paypalOrderID, err)
	}

	var result struct {
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID       string `json:"id"`
					Status   string `json:"status"`
					CustomID string `json:"custom_id"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("unmarshal paypal capture: %w", err)
	}

	out := &payment.PayPalCapture{Status: result.Status}
	if len(result.PurchaseUnits) > 0 {
		caps := result.PurchaseUnits[0].Payments.Captures
		if len(caps) > 0 {
			out.CaptureID = caps[0].ID
			out.CustomID = caps[0].CustomID
			// The per-capture status is the one that settles funds.
			if caps[0].Status != "" {
				out.Status = caps[0].Status
			}
		}
	}
	return out, nil
}

// token returns a valid OAuth2 access token, refreshing when within a
// minute of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode, string(data))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &tok); err != nil {
		return "", fmt.Errorf("unmarshal token: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		accessToken, err := c.token(ctx)
		if err != nil {
			return err
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+accessToken)

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
			return fmt.Errorf("paypal API error %d: %s", resp.StatusCode, string(data))
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

// formatAmount renders a major-unit amount the way the Orders API wants it.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
