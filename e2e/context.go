package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/devkichauhan/reliaquest/internal/employee/upstream/fake"
	"github.com/devkichauhan/reliaquest/internal/platform/config"
	httptransport "github.com/devkichauhan/reliaquest/internal/transport/http"
)

const upstreamPrefix = "/api/v1/employee"

// TestContext holds state between test steps. Every scenario gets its own
// facade and in-memory upstream.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	CreatedID        string

	Upstream       *fake.Server
	upstreamServer *httptest.Server
	facadeServer   *httptest.Server
}

// NewTestContext starts the upstream fake and the facade.
func NewTestContext() (*TestContext, error) {
	upstream := fake.New()
	upstreamServer := httptest.NewServer(upstream.Handler(upstreamPrefix))

	cfg := config.Server{
		UpstreamBaseURL: upstreamServer.URL + upstreamPrefix,
		Environment:     "e2e",
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: time.Second,
	}
	router, err := httptransport.Build(cfg, slog.New(slog.DiscardHandler), nil)
	if err != nil {
		upstreamServer.Close()
		return nil, fmt.Errorf("build facade: %w", err)
	}
	facadeServer := httptest.NewServer(router)

	return &TestContext{
		BaseURL:        facadeServer.URL,
		HTTPClient:     &http.Client{Timeout: 10 * time.Second},
		Upstream:       upstream,
		upstreamServer: upstreamServer,
		facadeServer:   facadeServer,
	}, nil
}

// Close stops both servers.
func (tc *TestContext) Close() {
	tc.facadeServer.Close()
	tc.upstreamServer.Close()
}

// StopUpstream makes every further upstream call fail at the transport level.
func (tc *TestContext) StopUpstream() {
	tc.upstreamServer.Close()
}

// POST makes a POST request with a raw JSON body and stores the response.
func (tc *TestContext) POST(path, body string) error {
	return tc.do(http.MethodPost, path, strings.NewReader(body))
}

// GET makes a GET request and stores the response.
func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

// DELETE makes a DELETE request and stores the response.
func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

func (tc *TestContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a top-level field from a JSON object response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains the text.
func (tc *TestContext) ResponseContains(text string) bool {
	return bytes.Contains(tc.LastResponseBody, []byte(text))
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}
