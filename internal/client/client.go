package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const requestTimeout = 15 * time.Second

// Client is the transport adapter: it builds authenticated requests against
// the ledger API and classifies every response into a typed outcome.
type Client struct {
	baseURL string
	creds   CredentialProvider
	http    *http.Client
	log     *logrus.Logger
}

// New initializes a client for the given API base URL (e.g.
// "https://host/api").
func New(baseURL string, creds CredentialProvider, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		log: log,
	}
}

// send performs one API call and returns the raw JSON result. Every failure
// is one of the typed errors in errors.go, with a message suitable for
// direct user display.
func (c *Client) send(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestError{Message: fmt.Sprintf("failed to encode request: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	// A missing credential is tolerated: the request goes out
	// unauthenticated and the server enforces 401.
	if token, err := c.creds.Token(); err == nil {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		c.log.Warnf("No credential found, sending unauthenticated request to %s", path)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Message: "Could not reach the server, please check your connection"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: "Failed to read the server response"}
	}

	return c.classify(resp.StatusCode, path, raw)
}

func (c *Client) classify(status int, path string, raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)

	if status >= 200 && status < 300 {
		if len(trimmed) == 0 {
			// Some endpoints acknowledge with an empty body.
			return json.RawMessage(`{"success":true}`), nil
		}
		if !json.Valid(trimmed) {
			return nil, &MalformedResponseError{StatusCode: status, Snippet: snippet(trimmed)}
		}
		return json.RawMessage(trimmed), nil
	}

	serverMsg := extractMessage(trimmed)

	switch status {
	case http.StatusUnauthorized:
		return nil, &AuthenticationError{Message: statusMessage(status, serverMsg)}
	case http.StatusNotFound:
		if isHTML(trimmed) {
			return nil, &RouteNotFoundError{Path: path}
		}
		if json.Valid(trimmed) {
			return nil, &ResourceNotFoundError{Message: statusMessage(status, serverMsg)}
		}
		return nil, &MalformedResponseError{StatusCode: status, Snippet: snippet(trimmed)}
	case http.StatusConflict:
		return nil, &ConflictError{Message: statusMessage(status, serverMsg)}
	default:
		return nil, &RequestError{StatusCode: status, Message: statusMessage(status, serverMsg)}
	}
}

func isHTML(body []byte) bool {
	lower := bytes.ToLower(bytes.TrimSpace(body))
	return bytes.HasPrefix(lower, []byte("<!doctype")) || bytes.HasPrefix(lower, []byte("<html"))
}

// extractMessage pulls the human-readable message out of a JSON error body,
// falling back to the raw text.
func extractMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	if len(body) > 0 && !isHTML(body) {
		return snippet(body)
	}
	return "request failed"
}

func snippet(body []byte) string {
	s := string(bytes.TrimSpace(body))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}

// normalizeCollection reduces the server's tolerated list shapes (a bare
// array, or an object wrapping the array under one of the given keys) to
// the array itself. This keeps the shape ambiguity out of the ledger logic.
func normalizeCollection(raw json.RawMessage, keys ...string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		return trimmed, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, &MalformedResponseError{Snippet: snippet(trimmed)}
	}
	for _, key := range keys {
		if inner, ok := envelope[key]; ok && bytes.HasPrefix(bytes.TrimSpace(inner), []byte("[")) {
			return inner, nil
		}
	}
	// An object without any known collection key means an empty result.
	return json.RawMessage(`[]`), nil
}
