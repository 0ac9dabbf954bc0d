// Package client talks to a running ergo-server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/teslashibe/go-moto-ergo/internal/httpc"
	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/calibration"
)

// ErrServer wraps every non-2xx response.
var ErrServer = errors.New("server error")

// Client is an HTTP API client. It uses the shared httpc client.
type Client struct {
	baseURL string
}

// New creates a client for baseURL, e.g. http://localhost:8080.
func New(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/")}
}

// Health is the body of GET /health.
type Health struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Comparisons int    `json:"comparisons"`
}

// Tire is the body of GET /api/tire.
type Tire struct {
	Spec            string               `json:"spec"`
	Tire            calibration.TireSpec `json:"tire"`
	SidewallMM      float64              `json:"sidewall_mm"`
	OuterDiameterMM float64              `json:"outer_diameter_mm"`
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	resp, err := httpc.Get(ctx, c.baseURL+"/health")
	if err != nil {
		return h, fmt.Errorf("health: %w", err)
	}
	return h, decode(resp, &h)
}

// Tire asks the server to parse a tire size.
func (c *Client) Tire(ctx context.Context, spec string) (Tire, error) {
	var t Tire
	resp, err := httpc.Get(ctx, c.baseURL+"/api/tire?spec="+url.QueryEscape(spec))
	if err != nil {
		return t, fmt.Errorf("tire: %w", err)
	}
	return t, decode(resp, &t)
}

// Analyze runs the engine remotely.
func (c *Client) Analyze(ctx context.Context, in analysis.Input) (analysis.Report, error) {
	var r analysis.Report
	body, err := json.Marshal(in)
	if err != nil {
		return r, fmt.Errorf("analyze: %w", err)
	}
	resp, err := httpc.Post(ctx, c.baseURL+"/api/analyze", "application/json", body)
	if err != nil {
		return r, fmt.Errorf("analyze: %w", err)
	}
	return r, decode(resp, &r)
}

// decode reads a JSON body into v, turning error responses into ErrServer.
func decode(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: %d %s", ErrServer, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%w: %d", ErrServer, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
