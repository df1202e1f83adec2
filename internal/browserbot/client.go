// Package browserbot is the HTTP client for the browser-automation
// collaborator. The service drives a live browser session and returns
// structured product candidates plus human-readable action traces.
package browserbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonesrussell/adscout/internal/config"
	"github.com/jonesrussell/adscout/internal/httpx"
	"github.com/jonesrussell/adscout/internal/logger"
)

// intentCollect is the only behavior preset the collaborator implements.
const intentCollect = "collect_amazon_products"

// Statuses reported by the collaborator.
const (
	StatusCompleted  = "completed"
	StatusNoProducts = "no_products"
)

// Product is a normalized candidate captured from a live browser session.
type Product struct {
	Title        string   `json:"title"`
	ProductURL   string   `json:"product_url"`
	AffiliateURL string   `json:"affiliate_url,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	PriceText    string   `json:"price_text,omitempty"`
	ASIN         string   `json:"asin,omitempty"`
	Highlights   []string `json:"highlights,omitempty"`
	Reasoning    string   `json:"reasoning,omitempty"`
}

// CaptureResult is the collaborator's response for one idea.
type CaptureResult struct {
	Status   string    `json:"status"`
	Summary  string    `json:"summary,omitempty"`
	Products []Product `json:"products"`
	Actions  []string  `json:"actions"`
	Error    string    `json:"error,omitempty"`
}

type runRequest struct {
	Intent string  `json:"intent"`
	Args   runArgs `json:"args"`
}

type runArgs struct {
	Idea        string `json:"idea"`
	Brief       string `json:"brief"`
	MaxProducts int    `json:"max_products"`
}

type Client struct {
	baseURL     string
	maxProducts int
	httpClient  *http.Client
	logger      logger.Logger
}

func NewClient(cfg config.BrowserbotConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:     cfg.URL,
		maxProducts: cfg.MaxProducts,
		httpClient: httpx.NewClient(&httpx.ClientConfig{
			Timeout: cfg.Timeout,
		}),
		logger: log,
	}
}

// Collect asks the collaborator to capture products for one idea. An
// unreachable service or malformed response returns an error; the caller
// treats that as "no browser data" and falls through to the API path.
func (c *Client) Collect(ctx context.Context, idea, brief string) (*CaptureResult, error) {
	payload, err := json.Marshal(runRequest{
		Intent: intentCollect,
		Args: runArgs{
			Idea:        idea,
			Brief:       brief,
			MaxProducts: c.maxProducts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal run request: %w", err)
	}

	url := c.baseURL + "/run"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Warn("Browserbot unreachable",
			logger.String("url", url),
			logger.String("idea", idea),
			logger.Duration("duration", duration),
			logger.Error(err),
		)
		return nil, fmt.Errorf("browserbot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Browserbot returned non-OK status",
			logger.String("url", url),
			logger.Int("status_code", resp.StatusCode),
			logger.Duration("duration", duration),
		)
		return nil, fmt.Errorf("browserbot returned status %d", resp.StatusCode)
	}

	var result CaptureResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode browserbot response: %w", err)
	}

	c.logger.Info("Browserbot capture finished",
		logger.String("idea", idea),
		logger.String("status", result.Status),
		logger.Int("product_count", len(result.Products)),
		logger.Int("action_count", len(result.Actions)),
		logger.Duration("duration", duration),
	)

	return &result, nil
}

// Healthy reports whether the collaborator's health endpoint responds.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("browserbot health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("browserbot health returned status %d", resp.StatusCode)
	}
	return nil
}
