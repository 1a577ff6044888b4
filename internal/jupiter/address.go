package jupiter

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ParseAddress decodes a base58 account address.
func ParseAddress(s string) (solana.PublicKey, error) {
	return parseAddressAt(s, -1)
}

func parseAddressAt(s string, index int) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, &AddressParseError{Input: s, Index: index, Err: fmt.Errorf("empty")}
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return solana.PublicKey{}, &AddressParseError{Input: s, Index: index, Err: err}
	}
	if len(raw) != solana.PublicKeyLength {
		return solana.PublicKey{}, &AddressParseError{
			Input: s,
			Index: index,
			Err:   fmt.Errorf("decoded %d bytes, expected %d", len(raw), solana.PublicKeyLength),
		}
	}
	return solana.PublicKeyFromBytes(raw), nil
}
