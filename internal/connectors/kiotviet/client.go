package kiotviet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/logger"
)

// proactiveRate throttles outgoing requests to roughly 2 per second so
// bursts of pagination do not trip the source's rate limiter.
const proactiveRate = 2.0

// requestTimeout bounds a single API request.
const requestTimeout = 30 * time.Second

// Client is an owner-scoped KiotViet API client. Each retailer gets its
// own instance; there is no shared mutable credential state between
// concurrently syncing owners.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter

	mu     sync.Mutex
	tokens oauth2.TokenSource
}

// NewClient creates a client for one retailer. The token is exchanged
// lazily on the first request and cached until expiry.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(proactiveRate), 1),
	}
	c.tokens = c.newTokenSource()
	return c, nil
}

// newTokenSource builds a caching client-credentials token source.
func (c *Client) newTokenSource() oauth2.TokenSource {
	conf := &clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.tokenURL(),
		EndpointParams: url.Values{
			"scopes": {tokenScope},
		},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
	return oauth2.ReuseTokenSource(nil, conf.TokenSource(ctx))
}

// resetTokens discards the cached token so the next request performs a
// fresh exchange. Called on a token-expiry signal from the API.
func (c *Client) resetTokens() {
	c.mu.Lock()
	c.tokens = c.newTokenSource()
	c.mu.Unlock()
}

// token returns a valid access token, exchanging or refreshing as needed.
func (c *Client) token() (*oauth2.Token, error) {
	c.mu.Lock()
	src := c.tokens
	c.mu.Unlock()

	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", domain.ErrAuthInvalid, err)
	}
	return tok, nil
}

// GetJSON performs an authenticated GET and decodes the JSON response
// into out. A 401 triggers one transparent re-authentication before the
// request is retried; a second 401 surfaces as an APIError.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.do(ctx, path, query)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		logger.Debug("Token rejected for retailer %s, re-authenticating", c.cfg.Retailer)
		c.resetTokens()
		resp, err = c.do(ctx, path, query)
		if err != nil {
			return err
		}
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do issues one authenticated request without retry handling.
func (c *Client) do(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	tok, err := c.token()
	if err != nil {
		return nil, err
	}

	u := c.cfg.baseURL() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Retailer", c.cfg.Retailer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	return resp, nil
}

// newAPIError builds an APIError from a non-200 response.
func newAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
}

// drain consumes and closes a response body so the connection can be
// reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
