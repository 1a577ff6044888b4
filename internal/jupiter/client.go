package jupiter

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

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Doer sends HTTP requests. *http.Client satisfies it. Implementations must be
// safe for concurrent use; the Client shares one Doer across all calls.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultMaxResponseBytes caps a response body. The unfiltered route map is
// the largest payload, at a few megabytes.
const DefaultMaxResponseBytes = 32 << 20

// ClientConfig holds configuration for the Jupiter client
type ClientConfig struct {
	Version APIVersion
	BaseURL string // overrides DefaultBaseURL when set
	APIKey  string // sent as x-api-key when set

	HTTP    Doer          // defaults to NewHTTPClient(12s)
	Limiter *rate.Limiter // optional outbound pacing
	Logger  *logrus.Logger

	MaxResponseBytes int64 // defaults to DefaultMaxResponseBytes
}

// Client talks to the quote API. It is immutable after NewClient and safe for
// concurrent use.
type Client struct {
	endpoints Endpoints
	apiKey    string
	http      Doer
	limiter   *rate.Limiter
	logger    *logrus.Logger
	maxBody   int64
}

// NewHTTPClient returns a pooled HTTP client meant to be built once per
// process and shared.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewClient creates a new Jupiter client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Version == 0 {
		cfg.Version = V1
	}
	if cfg.HTTP == nil {
		cfg.HTTP = NewHTTPClient(12 * time.Second)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}
	return &Client{
		endpoints: NewEndpoints(cfg.Version, cfg.BaseURL),
		apiKey:    strings.TrimSpace(cfg.APIKey),
		http:      cfg.HTTP,
		limiter:   cfg.Limiter,
		logger:    cfg.Logger,
		maxBody:   cfg.MaxResponseBytes,
	}
}

// Endpoints returns the URL resolver used by the client.
func (c *Client) Endpoints() Endpoints { return c.endpoints }

// QuoteRequest describes a quote for Amount raw units of InputMint.
type QuoteRequest struct {
	InputMint        solana.PublicKey
	OutputMint       solana.PublicKey
	Amount           uint64
	OnlyDirectRoutes bool
	Slippage         Slippage // nil selects DefaultSlippage
	Fee              FeeBps   // nil selects NoFee
}

// PriceRequest asks for the price of InputMint in OutputMint. UIAmount is an
// optional amount in UI units.
type PriceRequest struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	UIAmount   *float64
}

// Quote fetches the available routes for req.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*Response[[]Quote], error) {
	u := c.endpoints.QuoteURL(req.InputMint, req.OutputMint, req.Amount, req.OnlyDirectRoutes, req.Slippage, req.Fee)
	raw, err := c.roundTrip(ctx, OpQuote, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return DiscriminateEnvelope[[]Quote](OpQuote, raw)
}

// Swap requests the transactions executing route for user and decodes them.
func (c *Client) Swap(ctx context.Context, route Quote, user solana.PublicKey, cfg SwapConfig) (*Swap, error) {
	body, err := json.Marshal(NewSwapRequest(route, user, cfg))
	if err != nil {
		return nil, fmt.Errorf("jupiter swap: failed to marshal request: %w", err)
	}
	raw, err := c.roundTrip(ctx, OpSwap, http.MethodPost, c.endpoints.SwapURL(), body)
	if err != nil {
		return nil, err
	}
	resp, err := Discriminate[SwapResponse](OpSwap, raw)
	if err != nil {
		return nil, err
	}
	return DecodeSwap(*resp)
}

// RouteMap fetches and decompresses the route map.
func (c *Client) RouteMap(ctx context.Context, direct bool) (RouteMap, error) {
	raw, err := c.roundTrip(ctx, OpRouteMap, http.MethodGet, c.endpoints.RouteMapURL(direct), nil)
	if err != nil {
		return nil, err
	}
	irm, err := Discriminate[IndexedRouteMap](OpRouteMap, raw)
	if err != nil {
		return nil, err
	}
	if irm.MintKeys == nil && irm.IndexedRouteMap == nil {
		return nil, &DecodeError{Op: OpRouteMap, Stage: "mintKeys", Err: errors.New("route map has neither mintKeys nor indexedRouteMap")}
	}
	rm, err := Decompress(*irm)
	if err != nil {
		stage := "indexedRouteMap"
		var addrErr *AddressParseError
		if errors.As(err, &addrErr) {
			stage = "mintKeys"
		}
		return nil, &DecodeError{Op: OpRouteMap, Stage: stage, Err: err}
	}
	return rm, nil
}

// Price fetches the price described by req.
func (c *Client) Price(ctx context.Context, req PriceRequest) (*Response[Price], error) {
	u := c.endpoints.PriceURL(req.InputMint, req.OutputMint, req.UIAmount)
	raw, err := c.roundTrip(ctx, OpPrice, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := DiscriminateEnvelope[Price](OpPrice, raw)
	if err != nil {
		return nil, err
	}
	if err := resp.Data.Validate(); err != nil {
		return nil, &DecodeError{Op: OpPrice, Stage: "data", Err: err}
	}
	return resp, nil
}

// roundTrip performs one request and returns the body of a 2xx response.
// A non-2xx response carrying an error envelope becomes a *ServiceError;
// otherwise an *HTTPError.
func (c *Client) roundTrip(ctx context.Context, op Operation, method, u string, body []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"op": op, "url": u}).WithError(err).Debug("jupiter request failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, c.maxBody+1))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if int64(len(raw)) > c.maxBody {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("response exceeds %d bytes", c.maxBody)}
	}

	c.logger.WithFields(logrus.Fields{
		"op":     op,
		"method": method,
		"url":    u,
		"status": res.StatusCode,
		"bytes":  len(raw),
		"took":   time.Since(start),
	}).Debug("jupiter request")

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if svc, _ := probeServiceError(op, raw); svc != nil {
			svc.StatusCode = res.StatusCode
			return nil, svc
		}
		return nil, &HTTPError{Op: op, StatusCode: res.StatusCode, Body: raw}
	}
	return raw, nil
}
