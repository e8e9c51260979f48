// Package pricing provides USD spot prices for the traded symbols.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable means no usable price could be obtained.
	ErrUnavailable = errors.New("pricing: price unavailable")
	// ErrUnknownSymbol means the source has no mapping for the symbol.
	ErrUnknownSymbol = errors.New("pricing: unknown symbol")
	// ErrExhausted is returned by Replay once a symbol has no prices left.
	ErrExhausted = errors.New("pricing: replay exhausted")
)

// Source returns the current USD price of a symbol such as "BTC".
type Source interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, symbol string) (decimal.Decimal, error)

func (f SourceFunc) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return f(ctx, symbol)
}

type validated struct {
	src Source
}

// Validate wraps src so that zero or negative prices are reported as
// ErrUnavailable instead of being returned.
func Validate(src Source) Source {
	return validated{src: src}
}

func (v validated) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	p, err := v.src.Price(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !p.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s quoted at %s", ErrUnavailable, symbol, p)
	}
	return p, nil
}
