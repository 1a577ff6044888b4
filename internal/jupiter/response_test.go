package jupiter

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteEnvelope = `{
	"data": [{
		"inAmount": 1000000,
		"outAmount": "24150",
		"priceImpactPct": 0.0001,
		"marketInfos": [{"id": "abc", "label": "Orca", "inputMint": "So11111111111111111111111111111111111111112",
			"outputMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "notEnoughLiquidity": false,
			"inAmount": 1000000, "outAmount": 24150, "lpFee": {"amount": 30, "mint": "So11111111111111111111111111111111111111112", "pct": 0.003}}],
		"slippageBps": 50,
		"otherAmountThreshold": 24029,
		"swapMode": "ExactIn",
		"vendorExtension": {"x": 1}
	}],
	"timeTaken": 0.0123,
	"contextSlot": 171337
}`

func TestDiscriminate_ServiceErrorString(t *testing.T) {
	raw := []byte(`{"error": "slippage tolerance exceeded"}`)

	out, err := DiscriminateEnvelope[[]Quote](OpQuote, raw)
	require.Error(t, err)
	assert.Nil(t, out)

	var svc *ServiceError
	require.True(t, errors.As(err, &svc))
	assert.Equal(t, OpQuote, svc.Op)
	assert.Equal(t, "slippage tolerance exceeded", svc.Message)
	assert.True(t, errors.Is(err, ErrService))
	assert.False(t, errors.Is(err, ErrDecode))
}

func TestDiscriminate_ServiceErrorShapes(t *testing.T) {
	cases := map[string]struct {
		raw  string
		code string
		msg  string
	}{
		"object":                        {`{"error": {"code": "ROUTE_NOT_FOUND", "message": "no route"}}`, "ROUTE_NOT_FOUND", "no route"},
		"numeric code":                  {`{"error": {"code": 400, "message": "bad amount"}}`, "400", "bad amount"},
		"errorCode":                     {`{"errorCode": "TOKEN_NOT_TRADABLE", "message": "not tradable"}`, "TOKEN_NOT_TRADABLE", "not tradable"},
		"sibling message":               {`{"error": "", "message": "fallback"}`, "", "fallback"},
		"numeric message":               {`{"error": "slippage tolerance exceeded", "message": 5}`, "", "slippage tolerance exceeded"},
		"object message":                {`{"error": "rate limited", "message": {"detail": "x"}}`, "", "rate limited"},
		"errorCode with object message": {`{"errorCode": 429, "message": {"detail": "x"}}`, "429", `{"detail": "x"}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Discriminate[SwapResponse](OpSwap, []byte(tc.raw))
			var svc *ServiceError
			require.True(t, errors.As(err, &svc), "got %v", err)
			assert.Equal(t, tc.code, svc.Code)
			assert.Equal(t, tc.msg, svc.Message)
		})
	}
}

func TestDiscriminate_SuccessEnvelope(t *testing.T) {
	out, err := DiscriminateEnvelope[[]Quote](OpQuote, []byte(quoteEnvelope))
	require.NoError(t, err)

	require.Len(t, out.Data, 1)
	q := out.Data[0]
	assert.Equal(t, "1000000", q.InAmount.String())
	assert.Equal(t, "24150", q.OutAmount.String())
	assert.Equal(t, uint64(50), q.SlippageBps)
	assert.Equal(t, "ExactIn", q.SwapMode)
	require.Len(t, q.MarketInfos, 1)
	assert.Equal(t, "Orca", q.MarketInfos[0].Label)
	assert.Equal(t, uint64(171337), out.ContextSlot)
	assert.InDelta(t, 0.0123, out.TimeTaken, 1e-9)
}

func TestDiscriminate_NullErrorIsSuccess(t *testing.T) {
	raw := []byte(`{"error": null, "swapTransaction": "AQ=="}`)
	out, err := Discriminate[SwapResponse](OpSwap, raw)
	require.NoError(t, err)
	require.NotNil(t, out.SwapTransaction)
	assert.Equal(t, "AQ==", *out.SwapTransaction)
}

func TestDiscriminate_DecodeErrors(t *testing.T) {
	cases := map[string]struct {
		raw   string
		stage string
	}{
		"malformed":     {`{"data": [`, "response"},
		"empty":         {``, "response"},
		"missing data":  {`{"timeTaken": 1}`, "data"},
		"null data":     {`{"data": null}`, "data"},
		"shape":         {`{"data": "oops"}`, "data"},
		"array payload": {`[1, 2]`, "response"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DiscriminateEnvelope[[]Quote](OpQuote, []byte(tc.raw))
			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr), "got %v", err)
			assert.Equal(t, tc.stage, decErr.Stage)
			assert.False(t, errors.Is(err, ErrService))
		})
	}
}

func TestQuote_RoundTripsVerbatim(t *testing.T) {
	out, err := DiscriminateEnvelope[[]Quote](OpQuote, []byte(quoteEnvelope))
	require.NoError(t, err)

	var env struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(quoteEnvelope), &env))

	b, err := json.Marshal(out.Data[0])
	require.NoError(t, err)
	assert.JSONEq(t, string(env.Data[0]), string(b))
	assert.Contains(t, string(b), "vendorExtension")
}

func TestQuote_ViewIsBestEffort(t *testing.T) {
	raw := `{"data": [{"inAmount": "n/a", "outAmount": "24150", "slippageBps": "50", "swapMode": "ExactIn"}]}`

	out, err := DiscriminateEnvelope[[]Quote](OpQuote, []byte(raw))
	require.NoError(t, err)
	require.Len(t, out.Data, 1)

	q := out.Data[0]
	assert.Equal(t, "24150", q.OutAmount.String())
	assert.Equal(t, "ExactIn", q.SwapMode)

	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"inAmount": "n/a", "outAmount": "24150", "slippageBps": "50", "swapMode": "ExactIn"}`, string(b))
}

func TestQuote_RejectsNonObject(t *testing.T) {
	var q Quote
	assert.Error(t, json.Unmarshal([]byte(`"route"`), &q))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &q))
}

func TestQuote_MarshalWithoutRaw(t *testing.T) {
	q := Quote{InAmount: "10", OutAmount: "20", SwapMode: "ExactIn"}
	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"inAmount": 10, "outAmount": 20, "swapMode": "ExactIn"}`, string(b))
	assert.Nil(t, q.Raw())
}

func TestPrice_Validate(t *testing.T) {
	ok := Price{ID: solMint.String(), MintSymbol: "SOL", VSToken: usdcMint.String(), VSTokenSymbol: "USDC", Price: 142.5}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.ID = "SOL"
	bad.Price = math.NaN()
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id:")
	assert.Contains(t, err.Error(), "price:")

	neg := ok
	neg.Price = -1
	assert.Error(t, neg.Validate())
}

func TestParseMarketCaches(t *testing.T) {
	raw := []byte(`[{"data": ["AAEC", "base64"], "executable": false, "lamports": 2039280,
		"owner": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", "rentEpoch": 361, "pubkey": "9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP"}]`)

	caches, err := ParseMarketCaches(raw)
	require.NoError(t, err)
	require.Len(t, caches, 1)
	assert.Equal(t, int64(2039280), caches[0].Lamports)
	assert.Equal(t, "9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP", caches[0].Pubkey)

	_, err = ParseMarketCaches([]byte(`{"error": "unavailable"}`))
	assert.True(t, errors.Is(err, ErrService))
}
