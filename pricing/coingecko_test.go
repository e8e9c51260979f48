package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinGeckoPrice(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":67187.33}}`))
	}))
	t.Cleanup(srv.Close)

	cg := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, APIKey: "demo-key"})
	got, err := cg.Price(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "67187.33", got.String())
}

func TestCoinGeckoIDOverride(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("x-cg-demo-api-key"))
		_, _ = w.Write([]byte(`{"dogecoin":{"usd":0.1}}`))
	}))
	t.Cleanup(srv.Close)

	cg := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, IDs: map[string]string{"doge": "dogecoin"}})

	id, ok := cg.CoinID("DOGE")
	require.True(t, ok)
	assert.Equal(t, "dogecoin", id)

	id, ok = cg.CoinID("ETH")
	require.True(t, ok)
	assert.Equal(t, "ethereum", id)

	got, err := cg.Price(context.Background(), "DOGE")
	require.NoError(t, err)
	assert.Equal(t, "0.1", got.String())

	_, err = cg.Price(context.Background(), "XRP")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestCoinGeckoErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, nil},
		{"bad json", http.StatusOK, `not json`, nil},
		{"missing coin", http.StatusOK, `{}`, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cg := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL})
			got, err := cg.Price(context.Background(), "ETH")
			require.Error(t, err)
			assert.True(t, got.IsZero())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCoinGeckoTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	cg := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, Timeout: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cg.Price(ctx, "BTC")
	assert.Error(t, err)
}
