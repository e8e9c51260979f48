package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStaticSetGet(t *testing.T) {
	t.Parallel()

	s := NewStatic(map[string]decimal.Decimal{"btc": d("100")})

	got, err := s.Price(context.Background(), "BTC")
	require.NoError(t, err)
	assert.True(t, got.Equal(d("100")))

	s.Set("BTC", d("105"))
	got, err = s.Price(context.Background(), "btc")
	require.NoError(t, err)
	assert.True(t, got.Equal(d("105")))

	_, err = s.Price(context.Background(), "DOGE")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestStaticCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatic(nil).Price(ctx, "BTC")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		price   decimal.Decimal
		err     error
		wantErr error
	}{
		{"positive", d("1.5"), nil, nil},
		{"zero", d("0"), nil, ErrUnavailable},
		{"negative", d("-3"), nil, ErrUnavailable},
		{"source error passes through", decimal.Zero, ErrExhausted, ErrExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Validate(SourceFunc(func(context.Context, string) (decimal.Decimal, error) {
				return tt.price, tt.err
			}))
			got, err := src.Price(context.Background(), "BTC")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.price))
		})
	}
}
