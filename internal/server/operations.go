package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/jupiter-swap-api/internal/audit"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/jupiter"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/tokens"
)

func queryBool(c echo.Context, name string) (bool, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func parseUIAmount(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, strconv.ErrRange
	}
	return f, nil
}

// Quote proxies GET /quote. Mints may be given as known symbols.
func (h *Handlers) Quote(c echo.Context) error {
	inputMint, err := tokens.ResolveMint(c.QueryParam("inputMint"))
	if err != nil {
		return h.badRequest(c, "invalid inputMint", map[string]any{"inputMint": err.Error()})
	}
	outputMint, err := tokens.ResolveMint(c.QueryParam("outputMint"))
	if err != nil {
		return h.badRequest(c, "invalid outputMint", map[string]any{"outputMint": err.Error()})
	}
	amount, err := strconv.ParseUint(strings.TrimSpace(c.QueryParam("amount")), 10, 64)
	if err != nil {
		return h.badRequest(c, "invalid amount", map[string]any{"amount": "must be uint64"})
	}
	onlyDirect, err := queryBool(c, "onlyDirectRoutes")
	if err != nil {
		return h.badRequest(c, "invalid onlyDirectRoutes", map[string]any{"onlyDirectRoutes": "must be boolean"})
	}

	req := jupiter.QuoteRequest{
		InputMint:        inputMint,
		OutputMint:       outputMint,
		Amount:           amount,
		OnlyDirectRoutes: onlyDirect,
	}

	bps := strings.TrimSpace(c.QueryParam("slippageBps"))
	pct := strings.TrimSpace(c.QueryParam("slippage"))
	switch {
	case bps != "" && pct != "":
		return h.badRequest(c, "invalid slippage", map[string]any{"slippage": "set slippageBps or slippage, not both"})
	case bps != "":
		n, err := strconv.ParseUint(bps, 10, 64)
		if err != nil {
			return h.badRequest(c, "invalid slippageBps", map[string]any{"slippageBps": "must be uint64"})
		}
		req.Slippage = jupiter.SlippageBps(n)
	case pct != "":
		f, err := parseUIAmount(pct)
		if err != nil {
			return h.badRequest(c, "invalid slippage", map[string]any{"slippage": "must be a non-negative number"})
		}
		req.Slippage = jupiter.SlippagePercent(f)
	}

	if v := strings.TrimSpace(c.QueryParam("feeBps")); v != "" {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return h.badRequest(c, "invalid feeBps", map[string]any{"feeBps": "must be uint16"})
		}
		req.Fee = jupiter.FeeBasisPoints(n)
	}

	ctx, cancel := h.withTimeout(c.Request().Context())
	defer cancel()

	out, err := h.Jupiter.Quote(ctx, req)
	if err != nil {
		return h.upstream(c, jupiter.OpQuote, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Price proxies GET /price.
func (h *Handlers) Price(c echo.Context) error {
	id, err := tokens.ResolveMint(c.QueryParam("id"))
	if err != nil {
		return h.badRequest(c, "invalid id", map[string]any{"id": err.Error()})
	}
	vsToken, err := tokens.ResolveMint(c.QueryParam("vsToken"))
	if err != nil {
		return h.badRequest(c, "invalid vsToken", map[string]any{"vsToken": err.Error()})
	}

	req := jupiter.PriceRequest{InputMint: id, OutputMint: vsToken}
	if v := strings.TrimSpace(c.QueryParam("amount")); v != "" {
		f, err := parseUIAmount(v)
		if err != nil {
			return h.badRequest(c, "invalid amount", map[string]any{"amount": "must be a non-negative number"})
		}
		req.UIAmount = &f
	}

	ctx, cancel := h.withTimeout(c.Request().Context())
	defer cancel()

	out, err := h.Jupiter.Price(ctx, req)
	if err != nil {
		return h.upstream(c, jupiter.OpPrice, err)
	}
	return c.JSON(http.StatusOK, out)
}

// RouteMap returns the decompressed route map.
func (h *Handlers) RouteMap(c echo.Context) error {
	direct, err := queryBool(c, "onlyDirectRoutes")
	if err != nil {
		return h.badRequest(c, "invalid onlyDirectRoutes", map[string]any{"onlyDirectRoutes": "must be boolean"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context())
	defer cancel()

	rm, err := h.Jupiter.RouteMap(ctx, direct)
	if err != nil {
		return h.upstream(c, jupiter.OpRouteMap, err)
	}

	routes := make(map[string][]string, len(rm))
	for src, dsts := range rm {
		out := make([]string, len(dsts))
		for i, d := range dsts {
			out[i] = d.String()
		}
		routes[src.String()] = out
	}
	return c.JSON(http.StatusOK, RouteMapResponse{MintCount: len(rm), EdgeCount: rm.Edges(), Routes: routes})
}

// Swap requests and decodes the transactions for a quoted route.
func (h *Handlers) Swap(c echo.Context) error {
	var req SwapRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid json", nil)
	}

	trimmed := strings.TrimSpace(string(req.Route))
	if trimmed == "" || trimmed == "null" {
		return h.badRequest(c, "invalid route", map[string]any{"route": "required"})
	}
	var route jupiter.Quote
	if err := json.Unmarshal(req.Route, &route); err != nil {
		return h.badRequest(c, "invalid route", map[string]any{"route": err.Error()})
	}

	user, err := jupiter.ParseAddress(req.UserPublicKey)
	if err != nil {
		return h.badRequest(c, "invalid userPublicKey", map[string]any{"userPublicKey": err.Error()})
	}

	cfg := jupiter.DefaultSwapConfig()
	if req.WrapUnwrapSOL != nil {
		cfg.WrapUnwrapSOL = *req.WrapUnwrapSOL
	}
	if req.FeeAccount != "" {
		k, err := jupiter.ParseAddress(req.FeeAccount)
		if err != nil {
			return h.badRequest(c, "invalid feeAccount", map[string]any{"feeAccount": err.Error()})
		}
		cfg.FeeAccount = &k
	}
	if req.TokenLedger != "" {
		k, err := jupiter.ParseAddress(req.TokenLedger)
		if err != nil {
			return h.badRequest(c, "invalid tokenLedger", map[string]any{"tokenLedger": err.Error()})
		}
		cfg.TokenLedger = &k
	}

	ctx, cancel := h.withTimeout(c.Request().Context())
	defer cancel()

	swap, err := h.Jupiter.Swap(ctx, route, user, cfg)
	if err != nil {
		return h.upstream(c, jupiter.OpSwap, err)
	}

	var resp SwapResponse
	for _, part := range []struct {
		tx  *solana.Transaction
		out **TransactionSummary
	}{
		{swap.Setup, &resp.Setup},
		{swap.Swap, &resp.Swap},
		{swap.Cleanup, &resp.Cleanup},
	} {
		if part.tx == nil {
			continue
		}
		sum, err := summarize(part.tx)
		if err != nil {
			c.Set(ctxErrKind, audit.KindInternal)
			c.Set(ctxErrMsg, err.Error())
			return h.err(c, http.StatusInternalServerError, "failed to encode transaction", map[string]any{"err": err.Error()})
		}
		*part.out = sum
	}
	return c.JSON(http.StatusOK, resp)
}

func summarize(tx *solana.Transaction) (*TransactionSummary, error) {
	encoded, err := jupiter.EncodeTransaction(tx)
	if err != nil {
		return nil, err
	}
	sigs := make([]string, len(tx.Signatures))
	for i, s := range tx.Signatures {
		sigs[i] = s.String()
	}
	return &TransactionSummary{
		Signatures:      sigs,
		NumInstructions: len(tx.Message.Instructions),
		RecentBlockhash: tx.Message.RecentBlockhash.String(),
		Transaction:     encoded,
	}, nil
}
