package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleRecords() []Record {
	t0 := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []Record{
		{ID: "01HNA000000000000000000001", Time: t0, Kind: Buy, Asset: "BTC", Price: d("100"), Amount: d("100"), Quantity: d("1"), Cash: d("900")},
		{ID: "01HNA000000000000000000002", Time: t0.Add(time.Minute), Kind: SellProfit, Asset: "BTC", Price: d("105"), Amount: d("5"), Quantity: d("1"), Cash: d("1005")},
		{ID: "01HNA000000000000000000003", Time: t0.Add(2 * time.Minute), Kind: Buy, Asset: "ETH", Price: d("50"), Amount: d("50"), Quantity: d("1"), Cash: d("955")},
		{ID: "01HNA000000000000000000004", Time: t0.Add(3 * time.Minute), Kind: SellLoss, Asset: "ETH", Price: d("45"), Amount: d("-5"), Quantity: d("1"), Cash: d("1000")},
	}
}

func TestKindValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Buy.Valid())
	assert.True(t, SellProfit.Valid())
	assert.True(t, SellLoss.Valid())
	assert.False(t, Kind("HOLD").Valid())
}

func TestMemoryKeepsOrder(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	for _, r := range sampleRecords() {
		require.NoError(t, m.Append(r))
	}
	got := m.Records()
	require.Len(t, got, 4)
	assert.Equal(t, SellLoss, got[3].Kind)

	// Returned slice is a copy.
	got[0].Asset = "XXX"
	assert.Equal(t, "BTC", m.Records()[0].Asset)

	require.NoError(t, m.RecordEquity(EquitySnapshot{Cash: d("1")}))
	assert.Len(t, m.Equity(), 1)
}

type failingJournal struct {
	appended int
	closed   bool
}

func (f *failingJournal) Append(Record) error {
	f.appended++
	return errors.New("disk full")
}

func (f *failingJournal) Close() error {
	f.closed = true
	return errors.New("close failed")
}

func TestMultiMirrorFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	primary := NewMemory()
	bad := &failingJournal{}
	last := NewMemory()
	m := NewMulti(primary, bad, last)

	require.NoError(t, m.Append(sampleRecords()[0]))
	assert.Len(t, primary.Records(), 1)
	assert.Equal(t, 1, bad.appended)
	assert.Len(t, last.Records(), 1)

	require.NoError(t, m.RecordEquity(EquitySnapshot{Cash: d("10")}))
	assert.Len(t, primary.Equity(), 1)
	assert.Len(t, last.Equity(), 1)

	err := m.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")
	assert.True(t, bad.closed)
}

func TestMultiPrimaryFailureSkipsMirrors(t *testing.T) {
	t.Parallel()

	bad := &failingJournal{}
	mirror := NewMemory()
	m := NewMulti(bad, mirror)

	err := m.Append(sampleRecords()[0])
	require.Error(t, err)
	assert.Equal(t, 1, bad.appended)
	assert.Empty(t, mirror.Records())
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(sampleRecords())
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 2, s.Buys)
	assert.Equal(t, 1, s.TakeProfits)
	assert.Equal(t, 1, s.StopLosses)
	assert.True(t, s.Invested.Equal(d("150")))
	assert.True(t, s.GrossProfit.Equal(d("5")))
	assert.True(t, s.GrossLoss.Equal(d("5")))
	assert.True(t, s.RealizedPL.IsZero())
	assert.True(t, s.ProfitFactor.Equal(d("1")))
}

func TestSummarizeNoLosses(t *testing.T) {
	t.Parallel()

	s := Summarize(sampleRecords()[:2])
	assert.True(t, s.ProfitFactor.IsZero())
	assert.True(t, s.RealizedPL.Equal(d("5")))
}
