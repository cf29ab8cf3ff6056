// Package backend is the HTTP client for the storefront backend. The
// auth token is injected explicitly at construction; nothing here keeps
// shared mutable header state.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"dawakart/internal/logger"

	"go.uber.org/zap"
)

type Client struct {
	name      string
	baseURL   *url.URL
	authToken string
	http      *http.Client
}

func NewClient(name, baseURL, authToken string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{name: name, baseURL: u, authToken: authToken, http: httpClient}
}

// GetJSON performs GET path?query and decodes a 2xx body into out.
func (c *Client) GetJSON(ctx context.Context, path, rawQuery string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, rawQuery, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", c.name, path, err)
	}
	return nil
}

// PostJSON marshals in, performs POST path, and decodes a 2xx body into
// out. A nil out discards the body; out may be *json.RawMessage when the
// caller wants to interpret the shape itself.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	var payload io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal %s: %w", c.name, path, err)
		}
		payload = bytes.NewReader(b)
	}

	body, err := c.do(ctx, http.MethodPost, path, "", payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", c.name, path, err)
	}
	return nil
}

// Post performs POST path and hands back the raw status and body, even
// for non-2xx responses. Callers that interpret loosely specified
// response shapes (order creation) use this instead of PostJSON.
func (c *Client) Post(ctx context.Context, path string, in any) (int, []byte, error) {
	var payload io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: marshal %s: %w", c.name, path, err)
		}
		payload = bytes.NewReader(b)
	}

	return c.doRaw(ctx, http.MethodPost, path, "", payload)
}

// Delete performs DELETE path and discards the body.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, "", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path, rawQuery string, body io.Reader) ([]byte, error) {
	status, respBody, err := c.doRaw(ctx, method, path, rawQuery, body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		logger.L().Warn("non-success status",
			zap.String("client", c.name),
			zap.String("path", path),
			zap.Int("status", status),
			zap.ByteString("response", respBody),
		)
		return nil, &APIError{Status: status, Body: respBody}
	}
	return respBody, nil
}

func (c *Client) doRaw(ctx context.Context, method, path, rawQuery string, body io.Reader) (int, []byte, error) {
	rel := &url.URL{Path: path, RawQuery: rawQuery}
	u := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	log := logger.FromCtx(ctx).With(
		zap.String("client", c.name),
		zap.String("method", method),
		zap.String("path", path),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return 0, nil, fmt.Errorf("%s: %s %s: %w", c.name, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("reading response failed", zap.Error(err))
		return 0, nil, fmt.Errorf("%s: read response: %w", c.name, err)
	}

	return resp.StatusCode, respBody, nil
}
