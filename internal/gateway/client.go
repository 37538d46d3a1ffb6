// Package gateway is the single path every backend call takes. It attaches
// the session token, serializes the payload, dispatches the request and turns
// the reply into exactly one outcome, with the matching UI side effects.
package gateway

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

	"github.com/google/uuid"

	"bookkeeping/internal/core"
	"bookkeeping/internal/log"
	"bookkeeping/internal/ui"
)

const (
	HeaderToken       = "x-token"
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"

	// DefaultLoginPath is where an expired session is sent.
	DefaultLoginPath = "pages/login/login"

	MsgSessionExpired = "登录过期，请重新登录"
	MsgRejected       = "error"
	MsgTransport      = "request error"
)

// maxBodyBytes caps how much of a reply is read.
const maxBodyBytes = 8 << 20

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource is the part of the token store the gateway needs.
type TokenSource interface {
	Get(ctx context.Context) (string, error)
	ClearSession(ctx context.Context) error
}

// Request is one backend call. Data is a Go value; the gateway serializes it.
type Request struct {
	Method string
	Path   string
	Data   any
}

type Config struct {
	BaseURL       string
	HTTPClient    Doer
	Tokens        TokenSource
	UI            ui.Surface
	ErrorPolicy   ErrorPolicy
	ToastDuration time.Duration
	LoginPath     string
	Logger        *log.Logger
}

type Client struct {
	baseURL       string
	http          Doer
	tokens        TokenSource
	ui            ui.Surface
	policy        ErrorPolicy
	toastDuration time.Duration
	loginPath     string
	logger        *log.Logger
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("gateway: token source is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		http:          cfg.HTTPClient,
		tokens:        cfg.Tokens,
		ui:            cfg.UI,
		policy:        cfg.ErrorPolicy,
		toastDuration: cfg.ToastDuration,
		loginPath:     cfg.LoginPath,
		logger:        logger.WithComponent(log.ComponentGateway),
	}
	if c.http == nil {
		c.http = &http.Client{Transport: log.NewTransport(nil, logger)}
	}
	if c.ui == nil {
		c.ui = ui.NewLogSurface(logger)
	}
	if c.policy == nil {
		c.policy = SuccessFlagSet
	}
	if c.toastDuration <= 0 {
		c.toastDuration = ui.DefaultToastDuration
	}
	if c.loginPath == "" {
		c.loginPath = DefaultLoginPath
	}
	return c, nil
}

// Get issues a GET with data flattened into the query string.
func (c *Client) Get(ctx context.Context, path string, data any) (*core.Envelope, error) {
	return c.Execute(ctx, Request{Method: http.MethodGet, Path: path, Data: data})
}

// Post issues a POST with data as the JSON body.
func (c *Client) Post(ctx context.Context, path string, data any) (*core.Envelope, error) {
	return c.Execute(ctx, Request{Method: http.MethodPost, Path: path, Data: data})
}

// Execute performs one call. The loading indicator is hidden exactly once and
// at most one toast is shown, whatever the outcome.
//
// A non-nil envelope is returned whenever the backend answered, even when the
// error is a *RejectedError. A 407 envelope clears the session and redirects
// to the login page before the outcome is decided.
func (c *Client) Execute(ctx context.Context, req Request) (*core.Envelope, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	logger := c.logger.With(log.FieldRequestID, uuid.NewString())
	start := time.Now()

	tok := c.token(ctx, logger)
	httpReq, err := c.build(ctx, method, req, tok)
	if err != nil {
		return nil, c.fail(ctx, logger, method, req.Path, err)
	}

	logger.DebugContext(ctx, "Request dispatched",
		log.NewFields().WithOperation(log.OpExecute).WithRequest(method, req.Path, tok != "").ToSlice()...)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.fail(ctx, logger, method, req.Path, err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
	if err != nil {
		return nil, c.fail(ctx, logger, method, req.Path, fmt.Errorf("read response: %w", err))
	}
	env, err := DecodeEnvelope(body)
	if err != nil {
		return nil, c.fail(ctx, logger, method, req.Path, fmt.Errorf("HTTP %d: %w", resp.StatusCode, err))
	}

	// Settling runs even when ctx expired after the reply arrived.
	ctx = context.WithoutCancel(ctx)
	c.ui.HideLoading(ctx)

	fields := log.NewFields().
		WithRequest(method, req.Path, tok != "").
		WithResponse(resp.StatusCode, env.Code, time.Since(start).Milliseconds())
	fields[log.FieldSuccess] = env.Success

	notified := false
	if env.SessionExpired() {
		logger.WarnContext(ctx, "Session expired", fields.ToSlice()...)
		c.ui.Toast(ctx, ui.Toast{Title: MsgSessionExpired, Duration: c.toastDuration, Icon: ui.IconNone})
		notified = true
		if err := c.tokens.ClearSession(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to clear session", log.FieldError, err.Error())
		}
		c.ui.Redirect(ctx, c.loginPath)
	}

	if c.policy(env) {
		fields[log.FieldError] = env.Msg
		logger.WarnContext(ctx, "Request rejected", fields.ToSlice()...)
		if !notified {
			title := env.Msg
			if title == "" {
				title = MsgRejected
			}
			c.ui.Toast(ctx, ui.Toast{Title: title, Duration: c.toastDuration, Icon: ui.IconError})
		}
		return &env, &RejectedError{Envelope: env}
	}

	logger.InfoContext(ctx, "Request completed", fields.ToSlice()...)
	return &env, nil
}

// token reads the session token. A storage failure is logged and treated as
// no token: the backend decides what an anonymous call may do.
func (c *Client) token(ctx context.Context, logger *log.Logger) string {
	tok, err := c.tokens.Get(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Token unavailable, sending request without it", log.FieldError, err.Error())
		return ""
	}
	return tok
}

func (c *Client) build(ctx context.Context, method string, req Request, tok string) (*http.Request, error) {
	target := c.baseURL + req.Path
	var body io.Reader

	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		q, err := queryValues(req.Data)
		if err != nil {
			return nil, err
		}
		target = withQuery(target, q)
	default:
		payload := req.Data
		if payload == nil {
			payload = struct{}{}
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set(HeaderContentType, ContentTypeJSON)
	if tok != "" {
		httpReq.Header.Set(HeaderToken, tok)
	}
	return httpReq, nil
}

// fail settles a call that never produced an envelope. The surface is driven
// on a detached context since cause is often ctx's own cancellation.
func (c *Client) fail(ctx context.Context, logger *log.Logger, method, path string, cause error) error {
	ctx = context.WithoutCancel(ctx)
	c.ui.HideLoading(ctx)

	logger.ErrorContext(ctx, "Request failed",
		log.FieldOperation, log.OpExecute,
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldError, cause.Error())

	title := cause.Error()
	if title == "" {
		title = MsgTransport
	}
	c.ui.Toast(ctx, ui.Toast{Title: title, Duration: c.toastDuration, Icon: ui.IconError})
	return &TransportError{Method: method, Path: path, Err: cause}
}
