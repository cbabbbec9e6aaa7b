package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/metrics"
	"github.com/dmitrijs2005/cookquest/internal/common"
	"github.com/dmitrijs2005/cookquest/internal/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
	DefaultRefreshPath = "/api/v1/auth/refresh"
	DefaultHealthPath  = "/api/v1/health"
	DefaultUserAgent   = "cookquest-cli"

	maxBodyBytes = 10 << 20
)

// Options configures an Executor. Zero fields take the Default* values.
type Options struct {
	BaseURL     string
	RefreshPath string
	HealthPath  string
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

func (o Options) withDefaults() Options {
	if o.RefreshPath == "" {
		o.RefreshPath = DefaultRefreshPath
	}
	if o.HealthPath == "" {
		o.HealthPath = DefaultHealthPath
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return o
}

// Executor performs API calls with timeout, retry and 401 refresh handling.
type Executor struct {
	opts      Options
	transport Transport
	tokens    TokenStore
	logger    logging.Logger
	metrics   metrics.Recorder

	refreshGroup singleflight.Group
	now          func() time.Time
}

// NewExecutor wires an Executor. logger and rec may be nil.
func NewExecutor(opts Options, transport Transport, tokens TokenStore, logger logging.Logger, rec metrics.Recorder) *Executor {
	if transport == nil {
		transport = NewHTTPTransport()
	}
	return &Executor{
		opts:      opts.withDefaults(),
		transport: transport,
		tokens:    tokens,
		logger:    logging.Safe(logger),
		metrics:   metrics.OrNop(rec),
		now:       time.Now,
	}
}

// Do executes req. On a 401 it refreshes the token pair once and replays req
// once; the replay's outcome is final.
func (e *Executor) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := e.execute(ctx, req)
	if err == nil {
		return resp, nil
	}

	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Code != CodeUnauthorized || req.SkipAuth || req.SkipRefresh {
		return nil, err
	}
	return e.refreshAndReplay(ctx, req, apiErr)
}

// Ping checks backend health with a single unauthenticated attempt.
func (e *Executor) Ping(ctx context.Context) error {
	_, err := e.execute(ctx, Request{
		Method:      MethodGet,
		Path:        e.opts.HealthPath,
		MaxAttempts: 1,
		SkipAuth:    true,
		SkipRefresh: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// execute runs the retry loop for one logical call, without refresh.
func (e *Executor) execute(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = MethodGet
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, &APIError{Code: CodeSerialization, Message: "cannot encode request body", Err: err}
	}

	maxAttempts := e.opts.MaxAttempts
	if req.MaxAttempts > 0 {
		maxAttempts = req.MaxAttempts
	}

	requestID := uuid.NewString()
	log := e.logger.With("method", string(req.Method), "path", req.Path, "request_id", requestID)

	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewConstant(e.opts.RetryDelay))

	var (
		attempt int
		last    *APIError
	)
	resp, err := retry.DoValue(ctx, backoff, func(ctx context.Context) (*Response, error) {
		attempt++
		if attempt > 1 {
			e.metrics.Retry(string(req.Method))
			log.Info(ctx, "retrying request", "attempt", attempt, "reason", string(last.Code))
		}

		resp, apiErr := e.attempt(ctx, log, req, requestID, body, contentType)
		if apiErr != nil {
			apiErr.Attempts = attempt
			last = apiErr
			if apiErr.Retryable() {
				return nil, retry.RetryableError(apiErr)
			}
			return nil, apiErr
		}
		return resp, nil
	})

	if err != nil {
		apiErr, ok := AsAPIError(err)
		if !ok {
			// ctx ended before an attempt or during the retry delay
			apiErr = &APIError{Code: CodeCanceled, Message: "request canceled", Attempts: attempt, Err: err}
			if last != nil {
				apiErr.Status = last.Status
			}
		}
		e.metrics.Request(string(req.Method), string(apiErr.Code))
		e.logFailure(ctx, log, apiErr)
		return nil, apiErr
	}

	e.metrics.Request(string(req.Method), "ok")
	return resp, nil
}

func (e *Executor) logFailure(ctx context.Context, log logging.Logger, apiErr *APIError) {
	args := []any{"code", string(apiErr.Code), "status", apiErr.Status, "attempts", apiErr.Attempts, "error", apiErr.Message}
	switch apiErr.Code {
	case CodeCanceled:
		log.Info(ctx, "request canceled", args...)
	case CodeClient, CodeUnauthorized:
		log.Warn(ctx, "request failed", args...)
	default:
		log.Error(ctx, "request failed", args...)
	}
}

// attempt performs exactly one HTTP exchange bounded by the per-call timeout.
func (e *Executor) attempt(ctx context.Context, log logging.Logger, req Request, requestID string, body []byte, contentType string) (*Response, *APIError) {
	timeout := e.opts.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	token := ""
	if !req.SkipAuth && e.tokens != nil {
		t, err := e.tokens.AccessToken(ctx)
		if err != nil {
			log.Warn(ctx, "cannot read access token, sending unauthenticated", "error", err)
		}
		token = t
	}

	httpReq, err := e.newHTTPRequest(attemptCtx, req, requestID, token, body, contentType)
	if err != nil {
		return nil, &APIError{Code: CodeClient, Message: "cannot build request", Err: err, token: token}
	}

	start := time.Now()
	log.Debug(ctx, "request", "url", httpReq.URL.String())

	httpResp, err := e.transport.Do(httpReq)
	if err != nil {
		apiErr := transportError(ctx, attemptCtx, timeout, err)
		apiErr.token = token
		return nil, apiErr
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		apiErr := transportError(ctx, attemptCtx, timeout, err)
		apiErr.Status = httpResp.StatusCode
		apiErr.token = token
		return nil, apiErr
	}

	log.Debug(ctx, "response", "status", httpResp.StatusCode, "duration", time.Since(start).String(), "bytes", len(raw))

	if isSuccess(httpResp.StatusCode) {
		resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: raw}
		if httpResp.StatusCode != http.StatusNoContent {
			resp.Data = jsonPayload(raw)
		}
		return resp, nil
	}

	apiErr := statusError(httpResp.StatusCode, raw)
	apiErr.token = token
	return nil, apiErr
}

func (e *Executor) newHTTPRequest(ctx context.Context, req Request, requestID, token string, body []byte, contentType string) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), e.url(req.Path), rd)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set(common.AcceptHeaderName, common.ContentTypeJSON)
	httpReq.Header.Set(common.UserAgentHeaderName, e.opts.UserAgent)
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)
	if contentType != "" {
		httpReq.Header.Set(common.ContentTypeHeaderName, contentType)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if token != "" {
		httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return httpReq, nil
}

func (e *Executor) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return e.opts.BaseURL + path
}

func isSuccess(status int) bool {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return true
	}
	return false
}

// jsonPayload returns raw when it holds a JSON document and nil otherwise.
func jsonPayload(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		return nil
	}
	return trimmed
}

// transportError classifies a failed exchange. Caller cancellation wins over
// the attempt timeout.
func transportError(ctx, attemptCtx context.Context, timeout time.Duration, err error) *APIError {
	if ctx.Err() != nil {
		return &APIError{Code: CodeCanceled, Message: "request canceled", Err: ctx.Err()}
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &APIError{Code: CodeTimeout, Message: fmt.Sprintf("request timed out after %s", timeout), Err: err}
	}
	return &APIError{Code: CodeNetwork, Message: "network error: " + err.Error(), Err: err}
}

func statusError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Message: serverMessage(status, raw), Raw: string(raw)}
	switch {
	case status == http.StatusUnauthorized:
		apiErr.Code = CodeUnauthorized
		apiErr.Err = ErrUnauthorized
	case status >= 500:
		apiErr.Code = CodeServer
		apiErr.Err = ErrUnavailable
	default:
		apiErr.Code = CodeClient
	}
	return apiErr
}

var messagePaths = []string{"message", "error.message", "error", "msg", "detail"}

// serverMessage extracts a human message from an error body.
func serverMessage(status int, raw []byte) string {
	if gjson.ValidBytes(raw) {
		for _, p := range messagePaths {
			r := gjson.GetBytes(raw, p)
			if r.Type == gjson.String && r.Str != "" {
				return r.Str
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
