package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/jupiter-swap-api/internal/audit"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/jupiter"
)

// NotFoundJSON returns a custom HTTP error handler that returns JSON responses
// This ensures all errors (including 404s) have consistent JSON format
func NotFoundJSON() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}

// upstreamStatus maps a client error onto the gateway's response status and
// public message.
func upstreamStatus(err error) (int, string) {
	var svc *jupiter.ServiceError
	switch {
	case errors.As(err, &svc):
		if svc.Message != "" {
			return http.StatusUnprocessableEntity, svc.Message
		}
		return http.StatusUnprocessableEntity, "jupiter rejected the request"
	case errors.Is(err, jupiter.ErrDecode):
		return http.StatusBadGateway, "jupiter response could not be decoded"
	case errors.Is(err, jupiter.ErrTransport):
		return http.StatusBadGateway, "jupiter is unreachable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// upstreamDetails is the dev mode payload for a client error.
func upstreamDetails(err error) map[string]any {
	details := map[string]any{"kind": audit.Classify(err), "err": err.Error()}

	var decErr *jupiter.DecodeError
	if errors.As(err, &decErr) {
		details["stage"] = decErr.Stage
	}
	var svc *jupiter.ServiceError
	if errors.As(err, &svc) && svc.Code != "" {
		details["code"] = svc.Code
	}
	var httpErr *jupiter.HTTPError
	if errors.As(err, &httpErr) {
		details["status"] = httpErr.StatusCode
	}
	return details
}
