// Package backend is the HTTP client for the subaccount management REST
// API. Every method is a single round trip: no caching, no retries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// path joins escaped segments under the base URL.
func path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, op, method, p string, in, out any) error {
	requestID := uuid.NewString()
	fail := func(status int, message string, internal error) error {
		e := &Error{
			Op:        op,
			Method:    method,
			Path:      p,
			Status:    status,
			Message:   message,
			RequestID: requestID,
			Internal:  internal,
		}
		c.log.Warn("backend request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", p),
			zap.Int("status", status),
			zap.String("request_id", requestID),
			zap.String("message", message),
			zap.Error(internal),
		)
		return e
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fail(0, "", fmt.Errorf("failed to encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return fail(0, "", fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", p),
		zap.String("request_id", requestID),
	)

	res, err := c.http.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return fail(res.StatusCode, errorMessage(data), nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fail(res.StatusCode, "", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// errorMessage extracts the backend's {"error": "..."} message, falling
// back to the raw body.
func errorMessage(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

func (c *Client) check(op string, req any) error {
	if err := validate.Struct(req); err != nil {
		return handleValidationError(op, err)
	}
	return nil
}

type param struct {
	name  string
	value string
}

// requireID reports the first blank identifier, in argument order.
func requireID(op string, ids ...param) error {
	for _, id := range ids {
		if strings.TrimSpace(id.value) == "" {
			return &InputError{Op: op, Message: id.name + " is required"}
		}
	}
	return nil
}
