package rates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrNoRates      = errors.New("no valid rate data to update")
	ErrMissingToken = errors.New("auth token is required")
)

// Result describes a push attempt.
type Result struct {
	DryRun  bool   `json:"dry_run"`
	Updates int    `json:"updates"`
	Status  int    `json:"status,omitempty"`
	Body    string `json:"body,omitempty"`
}

// Client pushes rate payloads. Without an endpoint it only logs.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zerolog.Logger
}

// NewClient creates a client. An empty endpoint makes every push a dry run.
func NewClient(endpoint string, httpClient *http.Client, logger *zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{endpoint: endpoint, http: httpClient, logger: logger}
}

// DryRun reports whether pushes stay local.
func (c *Client) DryRun() bool {
	return c.endpoint == ""
}

// Push sends the payload with the extranet auth token.
func (c *Client) Push(ctx context.Context, token string, p *Payload) (*Result, error) {
	if p == nil || len(p.Data) == 0 {
		return nil, ErrNoRates
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	if c.DryRun() {
		c.logger.Info().
			Str("hotel_code", p.HotelCode).
			Int("updates", len(p.Data)).
			RawJSON("payload", body).
			Msg("rate push dry run")
		return &Result{DryRun: true, Updates: len(p.Data)}, nil
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Authorization", "Token "+token)
	req.Header.Set("country", "in")
	req.Header.Set("language", "en")
	req.Header.Set("source", "ingo_web")
	req.Header.Set("meta-data", `{"source":"extranet"}`)
	req.Header.Set("meta-data-brand", "INGO")
	req.Header.Set("meta-data-platform", "web")
	req.Header.Set("meta-data-source", "ingo_web")
	req.Header.Set("platform", "Desktop")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push rates: %w", err)
	}
	defer resp.Body.Close()
	text, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	res := &Result{Updates: len(p.Data), Status: resp.StatusCode, Body: string(text)}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return res, fmt.Errorf("rates endpoint returned %d: %s", resp.StatusCode, text)
	}
	c.logger.Info().Int("status", resp.StatusCode).Int("updates", len(p.Data)).Msg("rates pushed")
	return res, nil
}
