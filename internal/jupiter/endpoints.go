package jupiter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// DefaultBaseURL is the quote API host shared by every API version.
const DefaultBaseURL = "https://quote-api.jup.ag/v1"

// APIVersion selects the quote API generation.
type APIVersion int

const (
	V1 APIVersion = iota + 1
	V2
	V3
)

func (v APIVersion) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	case V3:
		return "v3"
	default:
		return fmt.Sprintf("APIVersion(%d)", int(v))
	}
}

// ParseAPIVersion accepts "v1", "v2" or "v3" (case-insensitive).
func ParseAPIVersion(s string) (APIVersion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v1", "1":
		return V1, nil
	case "v2", "2":
		return V2, nil
	case "v3", "3":
		return V3, nil
	default:
		return 0, fmt.Errorf("unknown jupiter api version %q", s)
	}
}

// Operation names a service call; it tags errors and log lines.
type Operation string

const (
	OpQuote    Operation = "quote"
	OpSwap     Operation = "swap"
	OpPrice    Operation = "price"
	OpRouteMap Operation = "route-map"

	OpMarketCache Operation = "market-cache"
)

// Endpoints builds request URLs. The zero value targets DefaultBaseURL.
type Endpoints struct {
	Version APIVersion
	BaseURL string
}

// NewEndpoints returns the resolver for version. An empty baseURL selects
// DefaultBaseURL.
func NewEndpoints(version APIVersion, baseURL string) Endpoints {
	return Endpoints{Version: version, BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// base ignores Version: v1, v2 and v3 currently share the same host and paths.
func (e Endpoints) base() string {
	if e.BaseURL != "" {
		return e.BaseURL
	}
	return DefaultBaseURL
}

// RouteMapURL returns the indexed route map URL.
func (e Endpoints) RouteMapURL(direct bool) string {
	if direct {
		return e.base() + "/indexed-route-map?onlyDirectRoutes=true"
	}
	return e.base() + "/indexed-route-map?onlyDirectRoutes=false"
}

// SwapURL returns the URL swap requests are POSTed to.
func (e Endpoints) SwapURL() string {
	return e.base() + "/swap"
}

// QuoteURL returns the quote URL. The required parameters keep their
// positional order, followed by the slippage and fee fragments.
func (e Endpoints) QuoteURL(
	inputMint, outputMint solana.PublicKey,
	amount uint64,
	onlyDirectRoutes bool,
	slippage Slippage,
	fee FeeBps,
) string {
	if slippage == nil {
		slippage = DefaultSlippage
	}
	if fee == nil {
		fee = NoFee{}
	}

	var b strings.Builder
	b.WriteString(e.base())
	b.WriteString("/quote?inputMint=")
	b.WriteString(inputMint.String())
	b.WriteString("&outputMint=")
	b.WriteString(outputMint.String())
	b.WriteString("&amount=")
	b.WriteString(strconv.FormatUint(amount, 10))
	b.WriteString("&onlyDirectRoutes=")
	b.WriteString(strconv.FormatBool(onlyDirectRoutes))
	b.WriteString("&")
	b.WriteString(slippage.slippageFragment())
	b.WriteString(fee.feeFragment())
	return b.String()
}

// PriceURL returns the price URL; amount is only added when uiAmount is set.
func (e Endpoints) PriceURL(inputMint, outputMint solana.PublicKey, uiAmount *float64) string {
	u := e.base() + "/price?id=" + inputMint.String() + "&vsToken=" + outputMint.String()
	if uiAmount != nil {
		u += "&amount=" + strconv.FormatFloat(*uiAmount, 'f', -1, 64)
	}
	return u
}
