// Package tokens maps well-known token symbols to their mints.
package tokens

import (
	"fmt"
	"math"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/jupiter-swap-api/internal/jupiter"
)

type Token struct {
	Symbol   string
	Mint     solana.PublicKey
	Decimals uint8
}

var known = []Token{
	{"SOL", solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"), 9},
	{"USDC", solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"), 6},
	{"USDT", solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"), 6},
	{"mSOL", solana.MustPublicKeyFromBase58("mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"), 9},
	{"BONK", solana.MustPublicKeyFromBase58("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"), 5},
	{"JUP", solana.MustPublicKeyFromBase58("JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"), 6},
	{"RAY", solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"), 6},
}

var (
	bySymbol = make(map[string]Token, len(known))
	byMint   = make(map[solana.PublicKey]Token, len(known))
)

func init() {
	for _, t := range known {
		bySymbol[strings.ToUpper(t.Symbol)] = t
		byMint[t.Mint] = t
	}
}

// Lookup finds a known token by symbol (case-insensitive) or mint.
func Lookup(s string) (Token, bool) {
	s = strings.TrimSpace(s)
	if t, ok := bySymbol[strings.ToUpper(s)]; ok {
		return t, true
	}
	if k, err := solana.PublicKeyFromBase58(s); err == nil {
		t, ok := byMint[k]
		return t, ok
	}
	return Token{}, false
}

// ResolveMint accepts a known symbol or any base58 mint address.
func ResolveMint(s string) (solana.PublicKey, error) {
	if t, ok := bySymbol[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return t.Mint, nil
	}
	return jupiter.ParseAddress(s)
}

// Symbol returns the symbol of a known mint, or its base58 form.
func Symbol(mint solana.PublicKey) string {
	if t, ok := byMint[mint]; ok {
		return t.Symbol
	}
	return mint.String()
}

// ToRaw converts a UI amount to raw units of t.
func (t Token) ToRaw(ui float64) (uint64, error) {
	if math.IsNaN(ui) || math.IsInf(ui, 0) || ui < 0 {
		return 0, fmt.Errorf("invalid amount %v", ui)
	}
	raw := math.Round(ui * math.Pow10(int(t.Decimals)))
	if raw >= math.MaxUint64 {
		return 0, fmt.Errorf("amount %v %s overflows uint64", ui, t.Symbol)
	}
	return uint64(raw), nil
}
