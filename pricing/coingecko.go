package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	coinGeckoKeyHdr  = "x-cg-demo-api-key"
)

// DefaultCoinGeckoIDs maps ticker symbols to CoinGecko coin ids.
func DefaultCoinGeckoIDs() map[string]string {
	return map[string]string{
		"BTC": "bitcoin",
		"ETH": "ethereum",
		"SOL": "solana",
	}
}

type CoinGeckoOptions struct {
	BaseURL string
	APIKey  string // optional demo key
	Timeout time.Duration
	IDs     map[string]string // symbol -> coin id, merged over the defaults
}

// CoinGecko queries the CoinGecko simple price endpoint.
type CoinGecko struct {
	client *resty.Client
	ids    map[string]string
}

func NewCoinGecko(opts CoinGeckoOptions) *CoinGecko {
	if opts.BaseURL == "" {
		opts.BaseURL = CoinGeckoBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("Accept", "application/json")
	if opts.APIKey != "" {
		client.SetHeader(coinGeckoKeyHdr, opts.APIKey)
	}

	ids := DefaultCoinGeckoIDs()
	for sym, id := range opts.IDs {
		ids[strings.ToUpper(sym)] = id
	}

	return &CoinGecko{client: client, ids: ids}
}

// CoinID returns the coin id used for symbol.
func (c *CoinGecko) CoinID(symbol string) (string, bool) {
	id, ok := c.ids[strings.ToUpper(symbol)]
	return id, ok
}

func (c *CoinGecko) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id, ok := c.CoinID(symbol)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           id,
			"vs_currencies": "usd",
		}).
		Get("/simple/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko %s: %w", symbol, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coingecko %s: API error %d: %s", symbol, resp.StatusCode(), resp.String())
	}

	var body map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return decimal.Zero, fmt.Errorf("coingecko %s: parse response: %w", symbol, err)
	}
	usd, ok := body[id]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: coingecko returned no usd price for %s", ErrUnavailable, id)
	}
	return usd, nil
}
