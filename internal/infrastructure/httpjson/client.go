// Package httpjson is the one place transport and protocol failures are
// normalized. Every call returns (status, body): status 0 with an "error"
// key for anything that never produced an HTTP response, the real status
// with the decoded body otherwise. Callers never see an error value.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"
)

type Client struct {
	hc *http.Client
}

func New() *Client {
	tr := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{hc: &http.Client{Transport: tr}}
}

// Post sends a JSON body and normalizes the response.
func (c *Client) Post(ctx context.Context, url string, body any, timeout time.Duration) (int, map[string]any) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, map[string]any{"error": err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, map[string]any{"error": err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// Get sends a GET with optional headers and normalizes the response.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (int, map[string]any) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, map[string]any{"error": err.Error()}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, map[string]any) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, map[string]any{"error": err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, map[string]any{"error": err.Error()}
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			// A 2xx we cannot decode is as useless as no response at all.
			return 0, map[string]any{"error": err.Error()}
		}
		return resp.StatusCode, map[string]any{"raw": http.StatusText(resp.StatusCode)}
	}

	return resp.StatusCode, body
}

// OK reports whether status is a 2xx. Status 0 (transport failure) is never OK.
func OK(status int) bool {
	return status >= 200 && status < 300
}
