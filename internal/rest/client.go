// Package rest is the client for the messenger's request/response API.
// Every call goes through one doer that attaches the bearer token and
// treats a 401 on any endpoint as a fatal credential rejection.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a typed request failure carrying the server-provided message
// when the response body had one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Message)
}

// Client talks to the REST API. Token is consulted per request so a
// refreshed credential takes effect without rebuilding the client.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	token          func() (string, bool)
	onUnauthorized func()
}

// New builds a client. token reports the current access token, if any.
// onUnauthorized fires once per 401 response, on the calling goroutine.
func New(baseURL string, token func() (string, bool), onUnauthorized func()) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     &http.Client{},
		token:          token,
		onUnauthorized: onUnauthorized,
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, reqBody, respBody any) error {
	return c.doRequest(ctx, method, endpoint, reqBody, respBody, true)
}

// doUnauthenticated is for the login and refresh endpoints: no bearer
// token, and a 401 means "bad code / expired refresh token", not a dead
// session, so the interceptor stays out of it.
func (c *Client) doUnauthenticated(ctx context.Context, method, endpoint string, reqBody, respBody any) error {
	return c.doRequest(ctx, method, endpoint, reqBody, respBody, false)
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, authed bool) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token, ok := c.token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if authed && resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &Error{Status: resp.StatusCode, Message: "credential rejected"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if respBody == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func errorMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Message == "" {
		return "an error occurred"
	}
	return payload.Message
}

func (c *Client) get(ctx context.Context, endpoint string, respBody any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, respBody)
}

func (c *Client) post(ctx context.Context, endpoint string, reqBody, respBody any) error {
	return c.do(ctx, http.MethodPost, endpoint, reqBody, respBody)
}

func (c *Client) put(ctx context.Context, endpoint string, reqBody, respBody any) error {
	return c.do(ctx, http.MethodPut, endpoint, reqBody, respBody)
}

func (c *Client) delete(ctx context.Context, endpoint string) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}
