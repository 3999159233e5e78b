package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultUserAgent = "tdx-client/1.0"

// Session supplies the bearer token for every call.
type Session interface {
	EnsureValid(ctx context.Context) bool
	Token() string
	LastError() error
	Username() string
	// Invalidate drops the token so the next call renews it.
	Invalidate()
}

// Client dispatches authenticated calls to the TeamDynamix web API. Calls on
// one Client are serialized.
type Client struct {
	mu           sync.Mutex
	baseURL      string
	session      Session
	httpClient   *http.Client
	retryClient  *retryablehttp.Client
	governor     *Governor
	logger       tdx.Logger
	debug        bool
	userAgent    string
	retries      int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	timeout      time.Duration
	http2        bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger tdx.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig sets the total attempts for a GET and the wait bounds
// between attempts.
func WithRetryConfig(attempts int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retries = attempts
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithRetries sets the total attempts for a GET.
func WithRetries(attempts int) Option {
	return func(c *Client) {
		c.retries = attempts
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTP2 negotiates HTTP/2 on the transport.
func WithHTTP2(enabled bool) Option {
	return func(c *Client) {
		c.http2 = enabled
	}
}

// NewClient creates a dispatcher for baseURL. A nil session sends no
// Authorization header.
func NewClient(baseURL string, session Session, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		session:      session,
		userAgent:    defaultUserAgent,
		retries:      constants.DefaultRetries,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
		timeout:      constants.DefaultHTTPTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.retries < 1 {
		client.retries = 1
	}

	if client.httpClient == nil {
		httpClient, err := NewHTTPClient(client.timeout, client.http2)
		if err != nil {
			client.logWarn("Falling back to HTTP/1.1", map[string]interface{}{"error": err})

			httpClient, _ = NewHTTPClient(client.timeout, false)
		}

		client.httpClient = httpClient
	}

	if client.governor == nil {
		client.governor = NewGovernor(WithGovernorLogger(client.logger))
	}

	client.retryClient = &retryablehttp.Client{
		HTTPClient:   client.httpClient,
		RetryWaitMin: client.retryWaitMin,
		RetryWaitMax: client.retryWaitMax,
		RetryMax:     client.retries - 1,
		CheckRetry:   retryOnAnyFailure,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	if client.logger != nil {
		client.retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request represents an HTTP request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
	File    *FileUpload
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	value      interface{}
}

// Value returns the decoded JSON body, or nil for an empty body.
func (r *Response) Value() interface{} {
	return r.value
}

// Decode unmarshals the body into v. An empty body leaves v untouched.
func (r *Response) Decode(v interface{}) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Object returns the body as a JSON object.
func (r *Response) Object() map[string]interface{} {
	obj, _ := r.value.(map[string]interface{})

	return obj
}

// Objects returns the body as a list of JSON objects. Non-object items are
// skipped.
func (r *Response) Objects() []map[string]interface{} {
	list, _ := r.value.([]interface{})
	out := make([]map[string]interface{}, 0, len(list))

	for _, item := range list {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}

	return out
}

// acceptedStatus lists the statuses treated as success per verb.
var acceptedStatus = map[string][]int{
	http.MethodGet:    {http.StatusOK},
	http.MethodPost:   {http.StatusOK, http.StatusCreated},
	http.MethodPut:    {http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent},
	http.MethodPatch:  {http.StatusOK, http.StatusCreated},
	http.MethodDelete: {http.StatusOK, http.StatusCreated},
}

// Accepted reports whether status is a success for method.
func Accepted(method string, status int) bool {
	for _, s := range acceptedStatus[method] {
		if s == status {
			return true
		}
	}

	return false
}

// Do executes an HTTP request.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, err := c.authorize(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.governor.BeforeCall(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait interrupted: %w", err)
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	body, contentType, err := c.encodeBody(req)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logDebug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.send(ctx, req, fullURL, body, contentType, token)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, req.Path, err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug {
		c.logDebug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
			"bytes":    len(respBody),
		})
	}

	if !Accepted(req.Method, httpResp.StatusCode) {
		if httpResp.StatusCode == http.StatusUnauthorized && c.session != nil {
			c.session.Invalidate()
		}

		return resp, &tdx.HTTPError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: httpResp.StatusCode,
			Reason:     http.StatusText(httpResp.StatusCode),
			Body:       string(respBody),
		}
	}

	c.governor.AfterCall(httpResp.Header)

	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &resp.value); err != nil {
			return resp, &tdx.MalformedResponseError{
				Method: req.Method,
				Path:   req.Path,
				Raw:    string(respBody),
				Err:    err,
			}
		}
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

func (c *Client) authorize(ctx context.Context) (string, error) {
	if c.session == nil {
		return "", nil
	}

	if !c.session.EnsureValid(ctx) {
		return "", &tdx.AuthError{Username: c.session.Username(), Err: c.session.LastError()}
	}

	return c.session.Token(), nil
}

func (c *Client) encodeBody(req *Request) ([]byte, string, error) {
	if req.File != nil {
		return req.File.encode()
	}

	if req.Body == nil {
		return nil, "", nil
	}

	if raw, ok := req.Body.([]byte); ok {
		return raw, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	return data, "", nil
}

// send dispatches once, or through the retry loop for GET.
func (c *Client) send(ctx context.Context, req *Request, fullURL string, body []byte, contentType, token string) (*http.Response, error) {
	if req.Method == http.MethodGet {
		retryReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		c.setHeaders(retryReq.Header, req, contentType, token)

		return c.retryClient.Do(retryReq)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq.Header, req, contentType, token)

	return c.httpClient.Do(httpReq)
}

func (c *Client) setHeaders(header http.Header, req *Request, contentType, token string) {
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}

	header.Set("Content-Type", contentType)
	header.Set("Accept", "application/json")
	header.Set("User-Agent", c.userAgent)

	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	for k, v := range req.Headers {
		header.Set(k, v)
	}
}

// retryOnAnyFailure retries transport errors and every non-200 status.
func retryOnAnyFailure(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil
	}

	return resp.StatusCode != http.StatusOK, nil
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) logWarn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

// leveledLogger adapts tdx.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger tdx.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsOf(keysAndValues))
}

// Debug drops the per-attempt message; Do logs each request itself.
func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	if msg == "performing request" {
		return
	}

	l.logger.Debug(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsOf(keysAndValues))
}

func fieldsOf(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
