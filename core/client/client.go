package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agenthub-dev/agenthub/core/errors"
	"github.com/agenthub-dev/agenthub/core/manifest"
)

const maxResponseBytes = 5 * 1024 * 1024

// Client talks to a remote AgentHub server. The CLI switches from the local
// SQLite store to this client when an API URL is configured.
type Client struct {
	BaseURL          string
	HTTPClient       *http.Client
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:          strings.TrimRight(baseURL, "/"),
		HTTPClient:       &http.Client{Timeout: 20 * time.Second},
		RetryMaxAttempts: 3,
		RetryBaseDelay:   200 * time.Millisecond,
	}
}

func (c *Client) Register(ctx context.Context, m manifest.Manifest) (manifest.Manifest, error) {
	var out manifest.Manifest
	if err := c.do(ctx, http.MethodPost, "/api/agents", nil, m, &out); err != nil {
		return manifest.Manifest{}, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, name string) (manifest.Manifest, error) {
	var out manifest.Manifest
	if err := c.do(ctx, http.MethodGet, "/api/agents/"+url.PathEscape(name), nil, nil, &out); err != nil {
		return manifest.Manifest{}, err
	}
	return out, nil
}

func (c *Client) List(ctx context.Context, state manifest.LifecycleState, limit int) ([]manifest.Manifest, error) {
	query := url.Values{}
	if state != "" {
		query.Set("state", string(state))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Agents []manifest.Manifest `json:"agents"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/agents", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Agents, nil
}

func (c *Client) Search(ctx context.Context, capability, freeText string, limit int) ([]manifest.Manifest, error) {
	query := url.Values{}
	if capability != "" {
		query.Set("capability", capability)
	}
	if freeText != "" {
		query.Set("q", freeText)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Agents []manifest.Manifest `json:"agents"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/search", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Agents, nil
}

func (c *Client) UpdateLifecycle(ctx context.Context, name string, state manifest.LifecycleState) (manifest.Manifest, error) {
	body := map[string]string{"lifecycle_state": string(state)}
	var out manifest.Manifest
	if err := c.do(ctx, http.MethodPatch, "/api/agents/"+url.PathEscape(name), nil, body, &out); err != nil {
		return manifest.Manifest{}, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/agents/"+url.PathEscape(name), nil, nil, nil)
}

// do issues one API request, retrying transient failures on idempotent
// methods only.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	attempts := c.RetryMaxAttempts
	if attempts <= 0 || method != http.MethodGet {
		attempts = 1
	}
	delay := c.RetryBaseDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.doOnce(ctx, method, path, query, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTransient(err) || attempt == attempts {
			break
		}
		timer := time.NewTimer(retryDelay(delay, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Wrap(ctx.Err(), errors.CategoryNetworkFailure, "request_canceled", "")
		case <-timer.C:
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(fmt.Errorf("encode request body: %w", err), errors.CategoryInternalFailure, "request_encode_failed", "")
		}
		reader = bytes.NewReader(raw)
	}
	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(fmt.Errorf("build request: %w", err), errors.CategoryInvalidInput, "bad_request_url", "")
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	response, err := httpClient.Do(request)
	if err != nil {
		return errors.Wrap(fmt.Errorf("request %s %s: %w", method, path, err),
			errors.CategoryNetworkFailure, "request_failed",
			"check AGENTHUB_API_URL and that the server is reachable")
	}
	defer func() {
		_ = response.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrap(fmt.Errorf("read response: %w", err), errors.CategoryNetworkFailure, "response_read_failed", "")
	}
	if response.StatusCode >= 400 {
		return statusError(response.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(fmt.Errorf("decode response: %w", err), errors.CategoryNetworkFailure, "response_decode_failed", "")
	}
	return nil
}

// statusError maps server responses onto the local error taxonomy so remote
// and local modes surface identical categories to the CLI.
func statusError(status int, raw []byte) error {
	message := fmt.Sprintf("server returned status %d", status)
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		message = payload.Error
	}
	err := httpStatusError{status: status, message: message}
	switch status {
	case http.StatusBadRequest:
		return errors.Wrap(err, errors.CategoryInvalidInput, "server_rejected_input", "")
	case http.StatusNotFound:
		return errors.Wrap(err, errors.CategoryNotFound, "agent_not_found", "")
	case http.StatusConflict:
		return errors.Wrap(err, errors.CategoryConflict, "agent_exists", "")
	default:
		return errors.Wrap(err, errors.CategoryNetworkFailure, "server_error", "")
	}
}

type httpStatusError struct {
	status  int
	message string
}

func (e httpStatusError) Error() string {
	return e.message
}

func (e httpStatusError) StatusCode() int {
	return e.status
}

func isTransient(err error) bool {
	var statusErr httpStatusError
	if stderrors.As(err, &statusErr) {
		switch statusErr.StatusCode() {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	var netErr interface{ Timeout() bool }
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errText := strings.ToLower(err.Error())
	return strings.Contains(errText, "connection reset") ||
		strings.Contains(errText, "connection refused") ||
		strings.Contains(errText, "unexpected eof")
}

func retryDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return baseDelay
	}
	backoff := baseDelay << (attempt - 1)
	jitter := time.Duration(attempt) * 25 * time.Millisecond
	if jitter > 100*time.Millisecond {
		jitter = 100 * time.Millisecond
	}
	return backoff + jitter
}
