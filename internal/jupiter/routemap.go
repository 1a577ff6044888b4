package jupiter

import (
	"maps"
	"slices"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// IndexedRouteMap is the compressed route map sent by the service: every mint
// appears once in MintKeys and routes refer to mints by position.
type IndexedRouteMap struct {
	MintKeys        []string      `json:"mintKeys"`
	IndexedRouteMap map[int][]int `json:"indexedRouteMap"`
}

// RouteMap maps an input mint to the mints it can be swapped into.
type RouteMap map[solana.PublicKey][]solana.PublicKey

// Destinations returns the mints reachable from src in one swap.
func (rm RouteMap) Destinations(src solana.PublicKey) []solana.PublicKey {
	return rm[src]
}

// Edges counts the routes in the map.
func (rm RouteMap) Edges() int {
	n := 0
	for _, dst := range rm {
		n += len(dst)
	}
	return n
}

// Decompress expands irm into a RouteMap. Any unparseable mint or index
// outside MintKeys fails the whole map.
func Decompress(irm IndexedRouteMap) (RouteMap, error) {
	keys := make([]solana.PublicKey, len(irm.MintKeys))
	for i, s := range irm.MintKeys {
		pk, err := parseAddressAt(s, i)
		if err != nil {
			return nil, err
		}
		keys[i] = pk
	}

	resolve := func(field string, i int) (solana.PublicKey, error) {
		if i < 0 || i >= len(keys) {
			return solana.PublicKey{}, &IndexOutOfRangeError{Field: field, Index: i, Len: len(keys)}
		}
		return keys[i], nil
	}

	// Sources are visited in index order so the reported error is stable.
	out := make(RouteMap, len(irm.IndexedRouteMap))
	for _, from := range slices.Sorted(maps.Keys(irm.IndexedRouteMap)) {
		src, err := resolve("source", from)
		if err != nil {
			return nil, err
		}
		toIdx := irm.IndexedRouteMap[from]
		dst := make([]solana.PublicKey, 0, len(toIdx))
		for _, to := range toIdx {
			pk, err := resolve("destination", to)
			if err != nil {
				return nil, err
			}
			dst = append(dst, pk)
		}
		out[src] = dst
	}
	return out, nil
}

// Compress is the inverse of Decompress. Mints are indexed in ascending
// base58 order, which makes the output deterministic.
func Compress(rm RouteMap) IndexedRouteMap {
	seen := make(map[solana.PublicKey]struct{}, len(rm))
	for src, dst := range rm {
		seen[src] = struct{}{}
		for _, d := range dst {
			seen[d] = struct{}{}
		}
	}

	mints := slices.SortedFunc(maps.Keys(seen), func(a, b solana.PublicKey) int {
		return strings.Compare(a.String(), b.String())
	})
	index := make(map[solana.PublicKey]int, len(mints))
	keys := make([]string, len(mints))
	for i, m := range mints {
		index[m] = i
		keys[i] = m.String()
	}

	indexed := make(map[int][]int, len(rm))
	for src, dst := range rm {
		to := make([]int, len(dst))
		for i, d := range dst {
			to[i] = index[d]
		}
		indexed[index[src]] = to
	}
	return IndexedRouteMap{MintKeys: keys, IndexedRouteMap: indexed}
}
