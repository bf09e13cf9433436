package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Client calls the sponsorship platform's REST backend. It owns no
// state of its own; the backend is the single source of truth.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	// Observe, when set, records each request's outcome ("ok" or
	// "error") and wall-clock seconds. main wires it to prometheus.
	Observe func(outcome string, seconds float64)

	token string
}

// New creates a client with a configurable base URL, e.g.
// "https://api.sponsor.example.org/api".
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken returns a shallow copy that sends the given bearer token.
// The web handlers call this per request with the current user's token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// APIError is a non-2xx response from the backend with its display
// message already normalized.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func (c *Client) observe(start time.Time, err *error) {
	if c.Observe == nil {
		return
	}
	outcome := "ok"
	if *err != nil {
		outcome = "error"
	}
	c.Observe(outcome, time.Since(start).Seconds())
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (err error) {
	defer c.observe(time.Now(), &err)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return normalizeError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// normalizeError folds the backend's error payload into one display
// string. The payload carries "message" and/or "errors", where
// "errors" may be a string, an array, or a field map.
func normalizeError(status int, raw []byte) *APIError {
	var payload struct {
		Message string          `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &payload); err == nil {
		msg = payload.Message
		if detail := flattenErrors(payload.Errors); detail != "" {
			if msg != "" {
				msg = msg + ": " + detail
			} else {
				msg = detail
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

func flattenErrors(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var single string
	if json.Unmarshal(raw, &single) == nil {
		return single
	}

	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, "; ")
	}

	var fieldLists map[string][]string
	if json.Unmarshal(raw, &fieldLists) == nil {
		keys := make([]string, 0, len(fieldLists))
		for k := range fieldLists {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+strings.Join(fieldLists[k], ", "))
		}
		return strings.Join(parts, "; ")
	}

	var fields map[string]string
	if json.Unmarshal(raw, &fields) == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+fields[k])
		}
		return strings.Join(parts, "; ")
	}

	return ""
}
