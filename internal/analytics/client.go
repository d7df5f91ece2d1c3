package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vietddude/orchestrator/internal/core/domain"
)

// ItemError is a per-address failure the service itself reported inside an
// otherwise successful bulk reply.
type ItemError struct {
	Address string `json:"address"`
	Message string `json:"error"`
}

// BulkResult is a validated bulk analytics reply.
type BulkResult struct {
	Records []domain.WalletAnalytics
	Errors  []ItemError
	Count   int
}

// Client calls the backend analytics API. One logical call may span several
// attempts per the retry policy; attempts are never concurrent.
type Client struct {
	baseURL    string
	retry      RetryConfig
	httpClient *http.Client
}

// NewClient creates an analytics API client.
func NewClient(baseURL string, timeout time.Duration, retry RetryConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   retry,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WalletAnalytics fetches analytics for a single wallet address.
func (c *Client) WalletAnalytics(ctx context.Context, address string) (*domain.WalletAnalytics, error) {
	var rec domain.WalletAnalytics

	err := callWithRetry(ctx, "wallet", c.retry, func(ctx context.Context) error {
		body, err := c.do(ctx, http.MethodGet, c.baseURL+"/analytics/wallet/"+address, nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &rec); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
		if rec.Address == "" {
			rec.Address = address
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// BulkAnalytics fetches analytics for up to one batch of addresses in JSON
// format. A 200 reply missing the data or count fields is a contract break
// and fails immediately without retry.
func (c *Client) BulkAnalytics(ctx context.Context, addresses []string) (*BulkResult, error) {
	var result BulkResult

	payload := map[string]any{"addresses": addresses, "format": "json"}
	err := callWithRetry(ctx, "bulk", c.retry, func(ctx context.Context) error {
		body, err := c.do(ctx, http.MethodPost, c.baseURL+"/analytics/bulk", payload)
		if err != nil {
			return err
		}

		var env struct {
			Data   *[]domain.WalletAnalytics `json:"data"`
			Errors []ItemError               `json:"errors"`
			Count  *int                      `json:"count"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		var missing []string
		if env.Data == nil {
			missing = append(missing, "data")
		}
		if env.Count == nil {
			missing = append(missing, "count")
		}
		if len(missing) > 0 {
			return &ValidationError{Missing: missing}
		}

		result = BulkResult{Records: *env.Data, Errors: env.Errors, Count: *env.Count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BulkCSV fetches one batch of addresses as raw CSV text.
func (c *Client) BulkCSV(ctx context.Context, addresses []string) (string, error) {
	var csvText string

	payload := map[string]any{"addresses": addresses, "format": "csv"}
	err := callWithRetry(ctx, "bulk_csv", c.retry, func(ctx context.Context) error {
		body, err := c.do(ctx, http.MethodPost, c.baseURL+"/analytics/bulk", payload)
		if err != nil {
			return err
		}
		csvText = string(body)
		return nil
	})
	if err != nil {
		return "", err
	}
	return csvText, nil
}

// ExportDataset asks the service to render the full CSV dataset in one
// call and returns the file body.
func (c *Client) ExportDataset(ctx context.Context, addresses []string, filename string) ([]byte, error) {
	var data []byte

	payload := map[string]any{"addresses": addresses, "filename": filename}
	err := callWithRetry(ctx, "export", c.retry, func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/analytics/export", payload)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("api call: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return &StatusError{Code: resp.StatusCode, Body: truncate(body)}
		}
		if !strings.Contains(resp.Header.Get("Content-Disposition"), "attachment") {
			return &ValidationError{Missing: []string{"content-disposition"}}
		}
		data = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var reader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do performs one attempt and returns the body on 200, a StatusError on any
// other status, or the transport error as-is.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	req, err := c.newRequest(ctx, method, url, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(body)}
	}
	return body, nil
}

func truncate(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
