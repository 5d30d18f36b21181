package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/httputil"
	"github.com/hadoku/trader/pkg/logger"
)

// WorkerClient talks to the brokerage worker process that holds the
// authenticated browser session. Every request carries the shared API
// key; the worker rejects anything else.
type WorkerClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.WorkerConfig
}

// NewWorkerClient creates a client for the trade-execution worker.
func NewWorkerClient(cfg config.WorkerConfig, httpClient *httputil.Client, log *logger.Logger) *WorkerClient {
	return &WorkerClient{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
	}
}

// TradeRequest is one order for the worker to place.
type TradeRequest struct {
	Ticker   string  `json:"ticker"`
	Action   string  `json:"action"` // "buy" or "sell"
	Quantity float64 `json:"quantity"`
	Account  string  `json:"account,omitempty"`
	// DryRun previews the order without placing it. The zero value is
	// a live order, so callers must set it explicitly.
	DryRun     bool     `json:"dry_run"`
	LimitPrice *float64 `json:"limit_price,omitempty"`
}

// TradeResponse is the worker's execution result.
type TradeResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	OrderID string                 `json:"order_id,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WorkerHealth is the worker's health report.
type WorkerHealth struct {
	Status        string   `json:"status"`
	Authenticated bool     `json:"authenticated"`
	Accounts      []string `json:"accounts,omitempty"`
}

// Account is one brokerage account as the worker reports it.
type Account struct {
	AccountNumber string                   `json:"account_number"`
	Nickname      string                   `json:"nickname,omitempty"`
	Balance       float64                  `json:"balance"`
	Positions     []map[string]interface{} `json:"positions"`
}

// ExecuteTrade sends one order to the worker. A false Success in the
// response is a brokerage-level rejection, not a transport error.
func (c *WorkerClient) ExecuteTrade(ctx context.Context, req TradeRequest) (*TradeResponse, error) {
	if req.Ticker == "" || req.Quantity <= 0 {
		return nil, fmt.Errorf("execute trade: invalid request %+v", req)
	}
	req.Ticker = strings.ToUpper(req.Ticker)
	req.Action = strings.ToLower(req.Action)
	if req.Account == "" {
		req.Account = c.cfg.DefaultAccount
	}
	if c.cfg.DryRun {
		req.DryRun = true
	}

	var resp TradeResponse
	if err := c.postJSON(ctx, "/execute-trade", req, &resp); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":   req.Ticker,
		"action":   req.Action,
		"quantity": req.Quantity,
		"dry_run":  req.DryRun,
		"success":  resp.Success,
	}).Info("trade sent to worker")

	return &resp, nil
}

// Health checks the worker without authentication.
func (c *WorkerClient) Health(ctx context.Context) (*WorkerHealth, error) {
	httpResp, err := c.httpClient.Get(ctx, c.cfg.BaseURL+"/health")
	if err != nil {
		return nil, fmt.Errorf("worker health: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("worker health: status %d", httpResp.StatusCode)
	}

	var health WorkerHealth
	if err := json.NewDecoder(httpResp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode worker health: %w", err)
	}
	return &health, nil
}

// Accounts lists the worker's brokerage accounts and balances.
func (c *WorkerClient) Accounts(ctx context.Context) ([]Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/accounts", nil)
	if err != nil {
		return nil, fmt.Errorf("create accounts request: %w", err)
	}
	req.Header.Set("X-API-Key", c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worker accounts: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("worker accounts: status %d: %s", httpResp.StatusCode, string(body))
	}

	var payload struct {
		Accounts []Account `json:"accounts"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return payload.Accounts, nil
}

// RefreshSession forces the worker to re-authenticate with the broker.
func (c *WorkerClient) RefreshSession(ctx context.Context) error {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, "/refresh-session", struct{}{}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("refresh session: %s", resp.Message)
	}
	return nil
}

func (c *WorkerClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(string(jsonData)))
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("worker %s: %w", path, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return fmt.Errorf("worker %s: status %d: %s", path, httpResp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
