// Package upstream is the HTTP client for the upstream employee service.
//
// Every call is a single request with no retries. Non-2xx statuses and
// transport errors come back as *failure.Error; bodies come back as raw
// envelopes for the caller to decode.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devkichauhan/reliaquest/internal/employee/envelope"
	"github.com/devkichauhan/reliaquest/internal/employee/failure"
	"github.com/devkichauhan/reliaquest/internal/employee/metrics"
	"github.com/devkichauhan/reliaquest/internal/employee/models"
	"github.com/devkichauhan/reliaquest/internal/employee/tracer"
)

// Operation names used in failures, metrics and logs.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpDelete = "delete"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	http    HTTPDoer
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has no timeout of its own.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New creates a client for baseURL, e.g. http://localhost:8112/api/v1/employee.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListAll fetches the envelope wrapping every employee.
func (c *Client) ListAll(ctx context.Context) (*models.Envelope, error) {
	return c.do(ctx, OpList, tracer.SpanUpstreamList, http.MethodGet, "", nil)
}

// GetByID fetches the envelope wrapping one employee.
func (c *Client) GetByID(ctx context.Context, id string) (*models.Envelope, error) {
	return c.do(ctx, OpGet, tracer.SpanUpstreamGet, http.MethodGet, id, nil)
}

// Create posts req and returns the envelope wrapping the created employee.
func (c *Client) Create(ctx context.Context, req models.CreateRequest) (*models.Envelope, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, failure.Wrap(failure.KindRejected, OpCreate, err, "encode request")
	}
	return c.do(ctx, OpCreate, tracer.SpanUpstreamCreate, http.MethodPost, "", body)
}

// DeleteByID succeeds when upstream answers 2xx. The body is not read.
func (c *Client) DeleteByID(ctx context.Context, id string) error {
	_, err := c.do(ctx, OpDelete, tracer.SpanUpstreamDelete, http.MethodDelete, id, nil)
	return err
}

func (c *Client) do(ctx context.Context, op, spanName, method, id string, body []byte) (env *models.Envelope, err error) {
	attrs := []tracer.Attribute{tracer.String(tracer.AttrHTTPMethod, method)}
	if id != "" {
		attrs = append(attrs, tracer.String(tracer.AttrEmployeeID, id))
	}
	ctx, span := c.tracer.Start(ctx, spanName, attrs...)
	start := time.Now()
	defer func() {
		c.observe(op, err, time.Since(start))
		span.End(err)
	}()

	endpoint := c.baseURL
	if id != "" {
		endpoint += "/" + url.PathEscape(id)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, failure.Wrap(failure.KindUnavailable, op, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, failure.Wrap(failure.KindUnavailable, op, err, "request failed")
	}
	defer resp.Body.Close()
	span.SetAttributes(tracer.Int(tracer.AttrStatusCode, resp.StatusCode))

	if op == OpDelete && isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Wrap(failure.KindUnavailable, op, err, "read response")
	}

	if !isSuccess(resp.StatusCode) {
		return nil, failure.FromStatus(op, resp.StatusCode, upstreamMessage(raw))
	}

	env, err = envelope.Parse(raw)
	if err != nil {
		return nil, withOp(err, op)
	}
	span.AddEvent(tracer.EventEnvelopeDecoded)
	return env, nil
}

func (c *Client) observe(op string, err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	if kind := failure.KindOf(err); kind != "" {
		outcome = kind.String()
	}
	c.metrics.ObserveUpstream(op, outcome, elapsed.Seconds())
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// upstreamMessage pulls the error text out of a failure envelope, if any.
func upstreamMessage(raw []byte) string {
	env, err := envelope.Parse(raw)
	if err != nil || env == nil {
		return ""
	}
	return env.Error
}

// withOp stamps the operation onto a codec failure.
func withOp(err error, op string) error {
	var fe *failure.Error
	if errors.As(err, &fe) && fe.Op == "" {
		fe.Op = op
	}
	return err
}
