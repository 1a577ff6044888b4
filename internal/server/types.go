package server

import (
	"encoding/json"

	"github.com/aman-zulfiqar/jupiter-swap-api/internal/jupiter"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK         bool   `json:"ok"`
	APIVersion string `json:"apiVersion"`
	BaseURL    string `json:"baseUrl"`
}

// RouteMapResponse is the decompressed route map keyed by base58 mint.
type RouteMapResponse struct {
	MintCount int                 `json:"mintCount"`
	EdgeCount int                 `json:"edgeCount"`
	Routes    map[string][]string `json:"routes"`
}

// SwapRequest mirrors the service's swap body; route is a quote as returned by /v1/quote.
type SwapRequest struct {
	Route         json.RawMessage `json:"route"`
	UserPublicKey string          `json:"userPublicKey"`
	WrapUnwrapSOL *bool           `json:"wrapUnwrapSOL,omitempty"` // defaults to true
	FeeAccount    string          `json:"feeAccount,omitempty"`
	TokenLedger   string          `json:"tokenLedger,omitempty"`
}

// TransactionSummary describes one decoded swap transaction.
type TransactionSummary struct {
	Signatures      []string `json:"signatures"`
	NumInstructions int      `json:"numInstructions"`
	RecentBlockhash string   `json:"recentBlockhash"`
	Transaction     string   `json:"transaction"` // base64 wire encoding
}

type SwapResponse struct {
	Setup   *TransactionSummary `json:"setupTransaction,omitempty"`
	Swap    *TransactionSummary `json:"swapTransaction"`
	Cleanup *TransactionSummary `json:"cleanupTransaction,omitempty"`
}

// QuoteResponse and PriceResponse keep the service envelope.
type (
	QuoteResponse = jupiter.Response[[]jupiter.Quote]
	PriceResponse = jupiter.Response[jupiter.Price]
)

// FlagUpsertRequest represents a request to create or update a flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}
