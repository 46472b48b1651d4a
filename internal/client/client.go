// Package client is a typed HTTP client for the optrisk API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/optrisk/internal/api/handlers"
	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/request"
	"github.com/wonny/optrisk/internal/risk"
	"github.com/wonny/optrisk/pkg/httputil"
	"github.com/wonny/optrisk/pkg/logger"
)

// RemoteError is a non-2xx API response
// Kind 이 엔진 에러면 errors.Is(err, contracts.ErrMissingMarketData) 등으로 매칭 가능
type RemoteError struct {
	Status  int
	Kind    string
	Message string
	Fields  []request.FieldError
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("optrisk api: %d %s: %s", e.Status, e.Kind, e.Message)
}

// Is matches the engine sentinel for Kind
func (e *RemoteError) Is(target error) bool {
	switch e.Kind {
	case contracts.KindInvalidInstrument:
		return target == contracts.ErrInvalidInstrument
	case contracts.KindInvalidMarketData:
		return target == contracts.ErrInvalidMarketData
	case contracts.KindMissingMarketData:
		return target == contracts.ErrMissingMarketData
	case contracts.KindNumericalInstability:
		return target == contracts.ErrNumericalInstability
	case handlers.KindInvalidRequest:
		return target == request.ErrInvalidRequest
	}
	return false
}

// Client calls the risk API
type Client struct {
	http    *httputil.Client
	baseURL string
}

// New creates a client for baseURL (e.g. http://localhost:8080)
func New(baseURL string, log *logger.Logger) *Client {
	return NewWithHTTP(baseURL, httputil.NewWithTimeout(log, 10*time.Second).WithRetry(2, 200*time.Millisecond))
}

// NewWithHTTP creates a client on a configured transport
func NewWithHTTP(baseURL string, h *httputil.Client) *Client {
	return &Client{
		http:    h,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CalculateRisk prices a portfolio with market data supplied inline
func (c *Client) CalculateRisk(ctx context.Context, req *request.RiskRequest) (contracts.RiskResult, error) {
	var result contracts.RiskResult
	_, err := c.post(ctx, "/api/risk/calculate", req, &result)
	return result, err
}

// CalculateSnapshot prices a portfolio against the server snapshot; returns the snapshot version used
func (c *Client) CalculateSnapshot(ctx context.Context, req *request.PortfolioRequest) (contracts.RiskResult, int64, error) {
	var result contracts.RiskResult
	header, err := c.post(ctx, "/api/risk/calculate/snapshot", req, &result)
	if err != nil {
		return contracts.RiskResult{}, 0, err
	}
	version, _ := strconv.ParseInt(header.Get(handlers.SnapshotVersionHeader), 10, 64)
	return result, version, nil
}

// Report fetches the detailed risk report
func (c *Client) Report(ctx context.Context, req *request.RiskRequest) (*risk.Report, error) {
	var report risk.Report
	if _, err := c.post(ctx, "/api/risk/report", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// PriceOption prices one option
func (c *Client) PriceOption(ctx context.Context, req *request.OptionRequest) (*handlers.OptionResponse, error) {
	var resp handlers.OptionResponse
	if _, err := c.post(ctx, "/api/pricing/option", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImpliedVol solves for the implied volatility
func (c *Client) ImpliedVol(ctx context.Context, req *request.ImpliedVolRequest) (*handlers.ImpliedVolResponse, error) {
	var resp handlers.ImpliedVolResponse
	if _, err := c.post(ctx, "/api/pricing/implied-vol", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health returns the server health; a degraded server returns the body and a RemoteError
func (c *Client) Health(ctx context.Context) (*handlers.HealthResponse, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/health")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var health handlers.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &health, &RemoteError{Status: resp.StatusCode, Kind: health.Status, Message: "service degraded"}
	}
	return &health, nil
}

func (c *Client) post(ctx context.Context, path string, body, dest interface{}) (http.Header, error) {
	resp, err := c.http.PostJSON(ctx, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return resp.Header, nil
}

func decodeError(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read error response: %w", err)
	}

	var body handlers.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return &RemoteError{
			Status:  resp.StatusCode,
			Kind:    contracts.KindInternal,
			Message: strings.TrimSpace(string(data)),
		}
	}

	return &RemoteError{
		Status:  resp.StatusCode,
		Kind:    body.Error,
		Message: body.Message,
		Fields:  body.Fields,
	}
}

// AsRemote unwraps a RemoteError
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	ok := errors.As(err, &re)
	return re, ok
}
