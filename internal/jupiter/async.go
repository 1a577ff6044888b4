package jupiter

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Result carries the outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// Unpack returns the value and error of r.
func (r Result[T]) Unpack() (T, error) { return r.Value, r.Err }

// goAsync runs fn in its own goroutine. The returned channel receives exactly
// one Result and is then closed. Cancelling ctx aborts the transport; the
// error arrives on the channel like any other.
func goAsync[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := fn(ctx)
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// QuoteAsync is the non-blocking form of Quote.
func (c *Client) QuoteAsync(ctx context.Context, req QuoteRequest) <-chan Result[*Response[[]Quote]] {
	return goAsync(ctx, func(ctx context.Context) (*Response[[]Quote], error) {
		return c.Quote(ctx, req)
	})
}

// SwapAsync is the non-blocking form of Swap.
func (c *Client) SwapAsync(ctx context.Context, route Quote, user solana.PublicKey, cfg SwapConfig) <-chan Result[*Swap] {
	return goAsync(ctx, func(ctx context.Context) (*Swap, error) {
		return c.Swap(ctx, route, user, cfg)
	})
}

// RouteMapAsync is the non-blocking form of RouteMap.
func (c *Client) RouteMapAsync(ctx context.Context, direct bool) <-chan Result[RouteMap] {
	return goAsync(ctx, func(ctx context.Context) (RouteMap, error) {
		return c.RouteMap(ctx, direct)
	})
}

// PriceAsync is the non-blocking form of Price.
func (c *Client) PriceAsync(ctx context.Context, req PriceRequest) <-chan Result[*Response[Price]] {
	return goAsync(ctx, func(ctx context.Context) (*Response[Price], error) {
		return c.Price(ctx, req)
	})
}
