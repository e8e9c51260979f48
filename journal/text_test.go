package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	t.Parallel()

	recs := sampleRecords()
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "buy",
			rec:  recs[0],
			want: "[2024-01-02 03:04:05] BUY | BTC | price $100 | invested $100.00 | qty 1.000000 | cash $900.00 | 01HNA000000000000000000001",
		},
		{
			name: "take profit",
			rec:  recs[1],
			want: "[2024-01-02 03:05:05] SELL_PROFIT | BTC | price $105 | pnl +$5.00 | qty 1.000000 | cash $1005.00 | 01HNA000000000000000000002",
		},
		{
			name: "stop loss",
			rec:  recs[3],
			want: "[2024-01-02 03:07:05] SELL_LOSS | ETH | price $45 | pnl -$5.00 | qty 1.000000 | cash $1000.00 | 01HNA000000000000000000004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLine(tt.rec))
		})
	}
}

func TestTextAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "trades.txt")

	j, err := NewText(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(sampleRecords()[0]))
	require.NoError(t, j.Close())

	// Reopening must extend the file, not truncate it.
	j, err = NewText(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(sampleRecords()[1]))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "BUY | BTC")
	assert.Contains(t, lines[1], "SELL_PROFIT | BTC")
}
