// Package askclient is the HTTP client for the /ask answer service.
//
// The service takes a JSON body {"query", "mode"} and answers with
// {"answer", "sources"}. The client does not interpret mode.
package askclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"askchat/internal/logging"
)

// DefaultPath is the endpoint path the service is mounted at.
const DefaultPath = "/ask"

// maxErrorBody bounds how much of a non-2xx body is read for the error message.
const maxErrorBody = 4096

// ErrCancelled is returned when the caller cancelled an in-flight request.
var ErrCancelled = errors.New("request cancelled")

// ErrNullBody is returned when a 2xx reply carries a JSON null.
var ErrNullBody = errors.New("response body is null")

// Request is the body posted to the service.
type Request struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
}

// Source is a citation attached to an answer.
type Source struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Response is the decoded service answer. A body without "answer"
// decodes to an empty Answer rather than an error.
type Response struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
}

// StatusError reports a non-2xx reply.
type StatusError struct {
	Code   int
	Status string
	Detail string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("server returned %s", e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Client posts queries to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a Client for endpoint, the full URL of the ask route.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ask posts req and waits for the full response.
func (c *Client) Ask(ctx context.Context, req Request) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategoryAPI, "ask")
	defer timer.Stop()
	log := logging.Get(logging.CategoryAPI).With("endpoint", c.endpoint, "mode", req.Mode)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Debug("POST query_len=%d", len(req.Query))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrCancelled
		}
		logging.APIError("ask failed: %s: %v", c.endpoint, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := statusError(resp)
		logging.APIWarn("ask rejected: %v", serr)
		return nil, serr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrCancelled
		}
		log.Error("read failed: %v", err)
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out, err := decodeResponse(data)
	if err != nil {
		log.Error("decode failed: %v", err)
		return nil, err
	}

	logging.APIDebug("answer_len=%d sources=%d", len(out.Answer), len(out.Sources))
	return out, nil
}

// decodeResponse parses body as exactly one JSON object. Trailing data and
// a literal null are errors.
func decodeResponse(body []byte) (*Response, error) {
	var out *Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("decode response: %w", ErrNullBody)
	}
	return out, nil
}

// statusError reads a bounded slice of the body and pulls a message out of
// it when the service replied with JSON.
func statusError(resp *http.Response) *StatusError {
	serr := &StatusError{Code: resp.StatusCode, Status: resp.Status}
	if serr.Status == "" {
		serr.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return serr
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Answer  string `json:"answer"`
	}
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Error != "":
			serr.Detail = body.Error
		case body.Message != "":
			serr.Detail = body.Message
		case body.Answer != "":
			serr.Detail = body.Answer
		}
		return serr
	}

	if text := strings.TrimSpace(string(data)); text != "" && !strings.HasPrefix(text, "<") {
		serr.Detail = text
	}
	return serr
}
