package jupiter

import (
	"strconv"
)

var (
	_ Slippage = SlippageBps(0)
	_ Slippage = SlippagePercent(0)
	_ FeeBps   = NoFee{}
	_ FeeBps   = FeeBasisPoints(0)
)

// DefaultSlippage is used when a nil Slippage is passed to QuoteURL.
var DefaultSlippage Slippage = SlippageBps(50)

// Slippage is one of the slippage encodings accepted by the quote endpoint.
// Only the types in this package implement it, so a quote can never carry two
// slippage parameters.
type Slippage interface {
	slippageFragment() string
}

// SlippageBps is a slippage tolerance in basis points (100 = 1%).
type SlippageBps uint64

func (s SlippageBps) slippageFragment() string {
	return "slippageBps=" + strconv.FormatUint(uint64(s), 10)
}

// SlippagePercent is a slippage tolerance in percent (0.5 = 0.5%).
type SlippagePercent float64

func (s SlippagePercent) slippageFragment() string {
	return "slippage=" + strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// FeeBps is the platform fee setting of a quote: NoFee or FeeBasisPoints.
// Its marker differs from Slippage so neither can stand in for the other.
type FeeBps interface {
	feeFragment() string
}

// NoFee leaves the fee parameter out of the query.
type NoFee struct{}

func (NoFee) feeFragment() string { return "" }

// FeeBasisPoints charges a platform fee in basis points.
type FeeBasisPoints uint16

func (f FeeBasisPoints) feeFragment() string {
	return "&feeBps=" + strconv.FormatUint(uint64(f), 10)
}
