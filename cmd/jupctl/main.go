package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/aman-zulfiqar/jupiter-swap-api/internal/config"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/jupiter"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/tokens"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail(1, "encode output: %v", err)
	}
}

func main() {
	loadEnv()

	op := flag.String("op", "quote", "quote | price | route-map | swap | market-cache")
	in := flag.String("in", "SOL", "input token symbol or mint")
	out := flag.String("out", "USDC", "output token symbol or mint")
	amount := flag.Uint64("amount", 0, "amount in raw units")
	uiAmount := flag.Float64("amt", 0, "amount in human units (e.g. 0.1), needs a known input token")
	slippageBps := flag.Uint64("slippage-bps", 0, "slippage in bps (default 50)")
	slippagePct := flag.Float64("slippage", 0, "slippage in percent, overrides -slippage-bps")
	feeBps := flag.Uint("fee-bps", 0, "platform fee in bps")
	direct := flag.Bool("direct", false, "only direct routes")
	pick := flag.Int("pick", -1, "quote: print only the quote at this index, ready for -route")
	routeFile := flag.String("route", "", "swap: file holding one quote, e.g. the output of -op quote -pick 0")
	user := flag.String("user", "", "swap: user public key")
	wrap := flag.Bool("wrap", true, "swap: wrap and unwrap SOL")
	cacheFile := flag.String("file", "", "market-cache: market cache document to summarize")
	verbose := flag.Bool("v", false, "log requests")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fail(2, "%v", err)
	}
	version, _ := jupiter.ParseAPIVersion(cfg.APIVersion)

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	client := jupiter.NewClient(jupiter.ClientConfig{
		Version: version,
		BaseURL: cfg.JupiterBaseURL,
		APIKey:  cfg.JupiterAPIKey,
		HTTP:    jupiter.NewHTTPClient(cfg.HTTPTimeout),
		Limiter: limiter,
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *op {
	case "quote":
		inMint, outMint := mustMint(*in), mustMint(*out)
		raw := rawAmount(*in, *amount, *uiAmount)

		req := jupiter.QuoteRequest{InputMint: inMint, OutputMint: outMint, Amount: raw, OnlyDirectRoutes: *direct}
		switch {
		case *slippagePct > 0:
			req.Slippage = jupiter.SlippagePercent(*slippagePct)
		case *slippageBps > 0:
			req.Slippage = jupiter.SlippageBps(*slippageBps)
		}
		if *feeBps > 0 {
			if *feeBps > 65535 {
				fail(2, "-fee-bps must fit in uint16")
			}
			req.Fee = jupiter.FeeBasisPoints(*feeBps)
		}

		// quote and reference price in flight together
		quoteCh := client.QuoteAsync(ctx, req)
		priceCh := client.PriceAsync(ctx, jupiter.PriceRequest{InputMint: inMint, OutputMint: outMint})

		quotes, err := (<-quoteCh).Unpack()
		if err != nil {
			fail(1, "quote failed: %v", err)
		}
		if *pick >= 0 {
			if *pick >= len(quotes.Data) {
				fail(1, "-pick %d out of range, got %d quotes", *pick, len(quotes.Data))
			}
			printJSON(quotes.Data[*pick])
			return
		}
		price, err := (<-priceCh).Unpack()
		if err != nil {
			logger.WithError(err).Warn("price lookup failed")
		}

		result := map[string]any{"quotes": quotes.Data, "contextSlot": quotes.ContextSlot}
		if price != nil {
			result["price"] = price.Data
		}
		printJSON(result)

	case "price":
		req := jupiter.PriceRequest{InputMint: mustMint(*in), OutputMint: mustMint(*out)}
		if *uiAmount > 0 {
			req.UIAmount = uiAmount
		}
		price, err := client.Price(ctx, req)
		if err != nil {
			fail(1, "price failed: %v", err)
		}
		printJSON(price.Data)

	case "route-map":
		rm, err := client.RouteMap(ctx, *direct)
		if err != nil {
			fail(1, "route map failed: %v", err)
		}
		summary := map[string]any{"mintCount": len(rm), "edgeCount": rm.Edges()}
		if isSet("in") {
			dsts := rm.Destinations(mustMint(*in))
			names := make([]string, len(dsts))
			for i, d := range dsts {
				names[i] = tokens.Symbol(d)
			}
			sort.Strings(names)
			summary["from"] = tokens.Symbol(mustMint(*in))
			summary["destinations"] = names
		}
		printJSON(summary)

	case "swap":
		if *routeFile == "" || *user == "" {
			fail(2, "swap needs -route and -user")
		}
		b, err := os.ReadFile(*routeFile)
		if err != nil {
			fail(1, "read route: %v", err)
		}
		var route jupiter.Quote
		if err := json.Unmarshal(b, &route); err != nil {
			fail(2, "parse route: %v", err)
		}
		owner, err := jupiter.ParseAddress(*user)
		if err != nil {
			fail(2, "invalid -user: %v", err)
		}

		swapCfg := jupiter.DefaultSwapConfig()
		swapCfg.WrapUnwrapSOL = *wrap
		swap, err := client.Swap(ctx, route, owner, swapCfg)
		if err != nil {
			fail(1, "swap failed: %v", err)
		}

		var txs []txSummary
		for _, part := range []struct {
			stage string
			tx    *solana.Transaction
		}{
			{jupiter.StageSetup, swap.Setup},
			{jupiter.StageSwap, swap.Swap},
			{jupiter.StageCleanup, swap.Cleanup},
		} {
			if part.tx != nil {
				txs = append(txs, summarize(part.stage, part.tx))
			}
		}
		printJSON(txs)

	case "market-cache":
		if *cacheFile == "" {
			fail(2, "market-cache needs -file")
		}
		b, err := os.ReadFile(*cacheFile)
		if err != nil {
			fail(1, "read market cache: %v", err)
		}
		caches, err := jupiter.ParseMarketCaches(b)
		if err != nil {
			fail(1, "parse market cache: %v", err)
		}
		byOwner := make(map[string]int)
		var lamports int64
		for _, acc := range caches {
			byOwner[acc.Owner]++
			lamports += acc.Lamports
		}
		printJSON(map[string]any{"accounts": len(caches), "lamports": lamports, "byOwner": byOwner})

	default:
		fail(2, "invalid -op (use quote|price|route-map|swap|market-cache)")
	}
}

type txSummary struct {
	Stage           string   `json:"stage"`
	Signatures      []string `json:"signatures"`
	Instructions    int      `json:"instructions"`
	RecentBlockhash string   `json:"recentBlockhash"`
	Transaction     string   `json:"transaction"`
}

func summarize(stage string, tx *solana.Transaction) txSummary {
	encoded, err := jupiter.EncodeTransaction(tx)
	if err != nil {
		fail(1, "encode %s transaction: %v", stage, err)
	}
	sigs := make([]string, len(tx.Signatures))
	for i, sig := range tx.Signatures {
		sigs[i] = sig.String()
	}
	return txSummary{
		Stage:           stage,
		Signatures:      sigs,
		Instructions:    len(tx.Message.Instructions),
		RecentBlockhash: tx.Message.RecentBlockhash.String(),
		Transaction:     encoded,
	}
}

func mustMint(s string) solana.PublicKey {
	k, err := tokens.ResolveMint(s)
	if err != nil {
		fail(2, "unknown token %q: %v", s, err)
	}
	return k
}

// rawAmount prefers -amount; -amt is scaled by the decimals of a known token.
func rawAmount(token string, raw uint64, ui float64) uint64 {
	if raw > 0 {
		return raw
	}
	if ui <= 0 {
		fail(2, "missing -amount or -amt (must be > 0)")
	}
	t, ok := tokens.Lookup(token)
	if !ok {
		fail(2, "-amt needs a known input token, use -amount for %s", token)
	}
	n, err := t.ToRaw(ui)
	if err != nil {
		fail(2, "%v", err)
	}
	return n
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
