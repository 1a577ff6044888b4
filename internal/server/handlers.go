package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/jupiter-swap-api/internal/audit"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/flags"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/jupiter"
)

// Jupiter is the part of *jupiter.Client the gateway serves.
type Jupiter interface {
	Endpoints() jupiter.Endpoints
	Quote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.Response[[]jupiter.Quote], error)
	Swap(ctx context.Context, route jupiter.Quote, user solana.PublicKey, cfg jupiter.SwapConfig) (*jupiter.Swap, error)
	RouteMap(ctx context.Context, direct bool) (jupiter.RouteMap, error)
	Price(ctx context.Context, req jupiter.PriceRequest) (*jupiter.Response[jupiter.Price], error)
}

// FlagStore is implemented by *flags.Store.
type FlagStore interface {
	Upsert(ctx context.Context, key string, value bool) (*flags.Flag, error)
	Get(ctx context.Context, key string) (*flags.Flag, error)
	List(ctx context.Context) ([]*flags.Flag, error)
	Delete(ctx context.Context, key string) error
	Enabled(ctx context.Context, op string) (bool, error)
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Jupiter Jupiter        // Jupiter API client
	Flags   FlagStore      // Redis-backed operation flags (optional)
	Audit   audit.Sink     // Call audit sink (optional)
	DevMode bool           // Enable detailed error responses in development
	Logger  *logrus.Logger // Structured logger
	Timeout time.Duration  // Per-call upstream timeout, 10s when zero
}

// context keys carrying the audit outcome of an operation
const (
	ctxErrKind = "audit.kind"
	ctxErrMsg  = "audit.err"
)

func (h *Handlers) logger() *logrus.Logger {
	if h.Logger == nil {
		return logrus.StandardLogger()
	}
	return h.Logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// badRequest rejects caller input before any upstream call is made.
func (h *Handlers) badRequest(c echo.Context, msg string, details any) error {
	c.Set(ctxErrKind, audit.KindInput)
	c.Set(ctxErrMsg, msg)
	return h.err(c, http.StatusBadRequest, msg, details)
}

// upstream reports a failed client call.
func (h *Handlers) upstream(c echo.Context, op jupiter.Operation, err error) error {
	code, msg := upstreamStatus(err)
	c.Set(ctxErrKind, audit.Classify(err))
	c.Set(ctxErrMsg, err.Error())
	h.logger().WithFields(logrus.Fields{
		"op":     op,
		"status": code,
		"error":  err,
	}).Warn("jupiter call failed")
	return h.err(c, code, msg, upstreamDetails(err))
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	d := h.Timeout
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Operation gates a route behind flag op.<op>.enabled and records the call
// in the audit sink.
func (h *Handlers) Operation(op jupiter.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			var err error
			if h.enabled(c, op) {
				err = next(c)
			} else {
				c.Set(ctxErrKind, audit.KindDisabled)
				c.Set(ctxErrMsg, "operation disabled")
				err = h.err(c, http.StatusServiceUnavailable, "operation disabled", map[string]any{"flag": flags.OperationKey(string(op))})
			}
			if err != nil {
				c.Error(err)
			}

			h.record(c, op, start)
			return nil
		}
	}
}

func (h *Handlers) enabled(c echo.Context, op jupiter.Operation) bool {
	if h.Flags == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
	defer cancel()

	on, err := h.Flags.Enabled(ctx, string(op))
	if err != nil {
		h.logger().WithFields(logrus.Fields{"op": op, "error": err}).Warn("flag lookup failed, operation left enabled")
	}
	return on
}

func (h *Handlers) record(c echo.Context, op jupiter.Operation, start time.Time) {
	if h.Audit == nil {
		return
	}
	status := c.Response().Status
	kind, _ := c.Get(ctxErrKind).(string)
	msg, _ := c.Get(ctxErrMsg).(string)
	if kind == "" && status >= http.StatusBadRequest {
		kind = audit.KindInternal
	}

	entry := audit.Entry{
		At:        start.UTC(),
		Operation: string(op),
		OK:        status < http.StatusBadRequest,
		ErrorKind: kind,
		Error:     msg,
		Status:    status,
		Took:      time.Since(start),
		RemoteIP:  c.RealIP(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
	defer cancel()
	if err := h.Audit.Record(ctx, entry); err != nil {
		h.logger().WithFields(logrus.Fields{"op": op, "error": err}).Warn("audit record failed")
	}
}

// Health reports the configured service endpoint
func (h *Handlers) Health(c echo.Context) error {
	ep := h.Jupiter.Endpoints()
	base := ep.BaseURL
	if base == "" {
		base = jupiter.DefaultBaseURL
	}
	return c.JSON(http.StatusOK, HealthResponse{OK: true, APIVersion: ep.Version.String(), BaseURL: base})
}

func (h *Handlers) noFlags(c echo.Context) error {
	return h.err(c, http.StatusServiceUnavailable, "flags are not configured", nil)
}

// FlagsUpsert creates or updates a flag with the given key and value
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing flag with the given key
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a flag by its key
// Returns 404 if flag doesn't exist
func (h *Handlers) FlagsGet(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns all flags
func (h *Handlers) FlagsList(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a flag by its key
// Returns 204 No Content on successful deletion
func (h *Handlers) FlagsDelete(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}
