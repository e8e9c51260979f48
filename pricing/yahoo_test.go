package pricing

import (
	"context"
	"errors"
	"testing"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: swaps the package level quote function.
func TestYahooPrice(t *testing.T) {
	orig := quoteGet
	t.Cleanup(func() { quoteGet = orig })

	var asked []string
	quoteGet = func(symbol string) (*finance.Quote, error) {
		asked = append(asked, symbol)
		switch symbol {
		case "BTC-USD":
			return &finance.Quote{RegularMarketPrice: 64000.5}, nil
		case "ETH-USD":
			return nil, nil
		default:
			return nil, errors.New("boom")
		}
	}

	y := NewYahoo(map[string]string{"sol": "SOL1-USD"})

	got, err := y.Price(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "64000.5", got.String())

	_, err = y.Price(context.Background(), "ETH")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = y.Price(context.Background(), "SOL")
	assert.ErrorContains(t, err, "boom")

	assert.Equal(t, []string{"BTC-USD", "ETH-USD", "SOL1-USD"}, asked)
}

func TestYahooTicker(t *testing.T) {
	t.Parallel()

	y := NewYahoo(nil)
	assert.Equal(t, "BTC-USD", y.Ticker("btc"))
	assert.Equal(t, "ETH-EUR", y.Ticker("eth-eur"))
}
