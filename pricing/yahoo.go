package pricing

import (
	"context"
	"fmt"
	"strings"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// quoteGet is swapped out in tests.
var quoteGet = quote.Get

// Yahoo reads the regular market price from Yahoo Finance. Crypto symbols
// are quoted against USD, so BTC becomes BTC-USD unless Tickers says otherwise.
type Yahoo struct {
	tickers map[string]string
}

func NewYahoo(tickers map[string]string) *Yahoo {
	y := &Yahoo{tickers: make(map[string]string, len(tickers))}
	for sym, tk := range tickers {
		y.tickers[strings.ToUpper(sym)] = tk
	}
	return y
}

// Ticker returns the Yahoo ticker used for symbol.
func (y *Yahoo) Ticker(symbol string) string {
	symbol = strings.ToUpper(symbol)
	if tk, ok := y.tickers[symbol]; ok {
		return tk
	}
	if strings.Contains(symbol, "-") {
		return symbol
	}
	return symbol + "-USD"
}

func (y *Yahoo) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	ticker := y.Ticker(symbol)

	type result struct {
		q   *finance.Quote
		err error
	}
	ch := make(chan result, 1)
	// The quote client takes no context, so the call is raced against ctx.
	go func() {
		q, err := quoteGet(ticker)
		ch <- result{q, err}
	}()

	select {
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return decimal.Zero, fmt.Errorf("yahoo %s: %w", ticker, r.err)
		}
		if r.q == nil {
			return decimal.Zero, fmt.Errorf("%w: yahoo has no quote for %s", ErrUnavailable, ticker)
		}
		return decimal.NewFromFloat(r.q.RegularMarketPrice), nil
	}
}
