package jupiter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompress_Scenario(t *testing.T) {
	a, b, c := solMint, usdcMint, usdtMint
	irm := IndexedRouteMap{
		MintKeys:        []string{a.String(), b.String(), c.String()},
		IndexedRouteMap: map[int][]int{0: {1, 2}, 1: {2}},
	}

	rm, err := Decompress(irm)
	require.NoError(t, err)

	assert.Equal(t, RouteMap{
		a: {b, c},
		b: {c},
	}, rm)
	assert.Equal(t, 3, rm.Edges())
	assert.Equal(t, []solana.PublicKey{c}, rm.Destinations(b))
	assert.Nil(t, rm.Destinations(c))
}

func TestDecompress_FromWireJSON(t *testing.T) {
	body := `{
		"mintKeys": ["So11111111111111111111111111111111111111112", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"],
		"indexedRouteMap": {"0": [1], "1": [0]}
	}`

	var irm IndexedRouteMap
	require.NoError(t, json.Unmarshal([]byte(body), &irm))

	rm, err := Decompress(irm)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{usdcMint}, rm[solMint])
	assert.Equal(t, []solana.PublicKey{solMint}, rm[usdcMint])
}

func TestDecompress_DestinationOutOfRange(t *testing.T) {
	irm := IndexedRouteMap{
		MintKeys:        []string{solMint.String(), usdcMint.String(), usdtMint.String()},
		IndexedRouteMap: map[int][]int{0: {1, 3}},
	}

	rm, err := Decompress(irm)
	require.Error(t, err)
	assert.Nil(t, rm)

	var idxErr *IndexOutOfRangeError
	require.True(t, errors.As(err, &idxErr))
	assert.Equal(t, "destination", idxErr.Field)
	assert.Equal(t, 3, idxErr.Index)
	assert.Equal(t, 3, idxErr.Len)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDecompress_SourceOutOfRange(t *testing.T) {
	for _, src := range []int{-1, 2, 100} {
		irm := IndexedRouteMap{
			MintKeys:        []string{solMint.String(), usdcMint.String()},
			IndexedRouteMap: map[int][]int{src: {0}},
		}
		_, err := Decompress(irm)

		var idxErr *IndexOutOfRangeError
		require.True(t, errors.As(err, &idxErr), "source %d", src)
		assert.Equal(t, "source", idxErr.Field)
		assert.Equal(t, src, idxErr.Index)
	}
}

func TestDecompress_NegativeDestination(t *testing.T) {
	irm := IndexedRouteMap{
		MintKeys:        []string{solMint.String()},
		IndexedRouteMap: map[int][]int{0: {-1}},
	}
	_, err := Decompress(irm)

	var idxErr *IndexOutOfRangeError
	require.True(t, errors.As(err, &idxErr))
	assert.Equal(t, -1, idxErr.Index)
}

func TestDecompress_InvalidMintKey(t *testing.T) {
	irm := IndexedRouteMap{
		MintKeys:        []string{solMint.String(), "not-a-mint", usdcMint.String()},
		IndexedRouteMap: map[int][]int{0: {2}},
	}

	rm, err := Decompress(irm)
	require.Error(t, err)
	assert.Nil(t, rm)

	var addrErr *AddressParseError
	require.True(t, errors.As(err, &addrErr))
	assert.Equal(t, 1, addrErr.Index)
	assert.Equal(t, "not-a-mint", addrErr.Input)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDecompress_Empty(t *testing.T) {
	rm, err := Decompress(IndexedRouteMap{})
	require.NoError(t, err)
	assert.Empty(t, rm)
}

func TestCompress_RoundTrip(t *testing.T) {
	original := RouteMap{
		solMint:  {usdcMint, usdtMint, jupMint},
		usdcMint: {solMint},
		jupMint:  {usdtMint, solMint},
		usdtMint: {},
	}

	irm := Compress(original)
	assert.Len(t, irm.MintKeys, 4)
	assert.Equal(t, irm, Compress(original))

	got, err := Decompress(irm)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestParseAddress(t *testing.T) {
	pk, err := ParseAddress("  " + jupMint.String() + " ")
	require.NoError(t, err)
	assert.True(t, pk.Equals(jupMint))

	for _, bad := range []string{"", "0OIl", "3yZe7d"} {
		_, err := ParseAddress(bad)
		var addrErr *AddressParseError
		assert.True(t, errors.As(err, &addrErr), "input %q", bad)
	}
}
