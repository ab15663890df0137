// Package backend is the HTTP adapter for the fraud-analysis service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/fraudscope/internal/domain/analysis"
	"github.com/bryanwahyu/fraudscope/internal/jsonx"
	"github.com/bryanwahyu/fraudscope/internal/middleware"
)

const (
	opCustomers = "customers"
	opRun       = "run"

	// error bodies are only shown in a banner
	maxErrorBody = 64 << 10
)

// Client talks to the analysis backend over plain HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. A zero timeout waits indefinitely.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

var _ analysis.Backend = (*Client)(nil)

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Customers fetches GET /customers. A body without a "customers" array
// yields an empty list.
func (c *Client) Customers(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/customers", nil)
	if err != nil {
		return nil, fmt.Errorf("build customers request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	raw, err := c.do(req, opCustomers)
	if err != nil {
		return nil, err
	}
	return customerNames(raw), nil
}

// Run posts the analysis request to POST /run and returns the decoded body
// with object key order preserved.
func (c *Client) Run(ctx context.Context, in analysis.RunRequest) (any, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode run request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, opRun)
}

// Check reports whether the backend answers HTTP at all. Any status counts.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &analysis.TransportError{Op: "HEAD /", Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) do(req *http.Request, op string) (any, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		middleware.ObserveBackendCall(op, middleware.OutcomeTransport, time.Since(start))
		return nil, &analysis.TransportError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		middleware.ObserveBackendCall(op, middleware.OutcomeProtocol, time.Since(start))
		return nil, &analysis.ProtocolError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(b),
		}
	}

	v, err := jsonx.Decode(resp.Body)
	if err != nil {
		middleware.ObserveBackendCall(op, middleware.OutcomeDecode, time.Since(start))
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}
	middleware.ObserveBackendCall(op, middleware.OutcomeOK, time.Since(start))
	return v, nil
}

// statusText is the reason phrase of the status line without the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}

func customerNames(raw any) []string {
	obj, ok := raw.(*jsonx.Object)
	if !ok {
		return []string{}
	}
	v, _ := obj.Get("customers")
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	names := make([]string, 0, len(arr))
	for _, item := range arr {
		if item == nil {
			continue
		}
		names = append(names, analysis.Stringify(item))
	}
	return names
}
