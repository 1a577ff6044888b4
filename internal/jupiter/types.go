package jupiter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

// Response is the success envelope of the quote and price endpoints.
type Response[T any] struct {
	Data        T       `json:"data"`
	TimeTaken   float64 `json:"timeTaken,omitempty"`
	ContextSlot uint64  `json:"contextSlot,omitempty"`
}

// Quote is a route returned by the quote endpoint. It is passed back to the
// swap endpoint exactly as received; the exported fields are a read-only view
// of the common members and are not used when re-encoding.
type Quote struct {
	InAmount             json.Number  `json:"inAmount"`
	OutAmount            json.Number  `json:"outAmount"`
	OtherAmountThreshold json.Number  `json:"otherAmountThreshold,omitempty"`
	PriceImpactPct       json.Number  `json:"priceImpactPct,omitempty"`
	SwapMode             string       `json:"swapMode,omitempty"`
	SlippageBps          uint64       `json:"slippageBps,omitempty"`
	MarketInfos          []MarketInfo `json:"marketInfos,omitempty"`

	raw json.RawMessage
}

type quoteFields Quote

// UnmarshalJSON keeps any JSON object. The typed view is filled on a best
// effort basis; members it cannot represent are left zero.
func (q *Quote) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("quote must be a JSON object")
	}
	var f quoteFields
	_ = json.Unmarshal(trimmed, &f)
	*q = Quote(f)
	q.raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

func (q Quote) MarshalJSON() ([]byte, error) {
	if len(q.raw) > 0 {
		return q.raw, nil
	}
	return json.Marshal(quoteFields(q))
}

// Raw returns the bytes the quote was decoded from, or nil for a quote built
// in code.
func (q Quote) Raw() json.RawMessage { return q.raw }

// MarketInfo is one hop of a quoted route.
type MarketInfo struct {
	ID                 string      `json:"id"`
	Label              string      `json:"label"`
	InputMint          string      `json:"inputMint"`
	OutputMint         string      `json:"outputMint"`
	NotEnoughLiquidity bool        `json:"notEnoughLiquidity"`
	InAmount           json.Number `json:"inAmount"`
	OutAmount          json.Number `json:"outAmount"`
	PriceImpactPct     json.Number `json:"priceImpactPct,omitempty"`
	LPFee              *Fee        `json:"lpFee,omitempty"`
	PlatformFee        *Fee        `json:"platformFee,omitempty"`
}

type Fee struct {
	Amount json.Number `json:"amount"`
	Mint   string      `json:"mint"`
	Pct    json.Number `json:"pct,omitempty"`
}

// SwapConfig holds the caller's swap options.
type SwapConfig struct {
	FeeAccount    *solana.PublicKey
	TokenLedger   *solana.PublicKey
	WrapUnwrapSOL bool
}

// DefaultSwapConfig wraps and unwraps SOL and charges no platform fee.
func DefaultSwapConfig() SwapConfig {
	return SwapConfig{WrapUnwrapSOL: true}
}

// SwapRequest is the body POSTed to the swap endpoint.
type SwapRequest struct {
	Route         Quote             `json:"route"`
	UserPublicKey solana.PublicKey  `json:"userPublicKey"`
	WrapUnwrapSOL bool              `json:"wrapUnwrapSOL"`
	FeeAccount    *solana.PublicKey `json:"feeAccount,omitempty"`
	TokenLedger   *solana.PublicKey `json:"tokenLedger,omitempty"`
}

// NewSwapRequest flattens cfg into the wire body.
func NewSwapRequest(route Quote, user solana.PublicKey, cfg SwapConfig) SwapRequest {
	return SwapRequest{
		Route:         route,
		UserPublicKey: user,
		WrapUnwrapSOL: cfg.WrapUnwrapSOL,
		FeeAccount:    cfg.FeeAccount,
		TokenLedger:   cfg.TokenLedger,
	}
}

// Price is the price of ID denominated in VSToken.
type Price struct {
	ID            string  `json:"id"`
	MintSymbol    string  `json:"mintSymbol"`
	VSToken       string  `json:"vsToken"`
	VSTokenSymbol string  `json:"vsTokenSymbol"`
	Price         float64 `json:"price"`
}

// Validate checks that both mints parse and the price is a usable number.
func (p Price) Validate() error {
	var errs []error
	if _, err := ParseAddress(p.ID); err != nil {
		errs = append(errs, fmt.Errorf("id: %w", err))
	}
	if _, err := ParseAddress(p.VSToken); err != nil {
		errs = append(errs, fmt.Errorf("vsToken: %w", err))
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		errs = append(errs, fmt.Errorf("price: invalid value %v", p.Price))
	}
	return errors.Join(errs...)
}

// MarketCacheAccount is an account snapshot as published in the market cache.
type MarketCacheAccount struct {
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
	Lamports   int64    `json:"lamports"`
	Owner      string   `json:"owner"`
	RentEpoch  int64    `json:"rentEpoch"`
	Pubkey     string   `json:"pubkey"`
}

type MarketCaches []MarketCacheAccount
