package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRecordOrg(t *testing.T) {
	t.Parallel()

	result := FormatRecordOrg(sampleRecords()[1])

	assert.Contains(t, result, "** SELL_PROFIT: BTC (00000002)")
	assert.Contains(t, result, ":PROPERTIES:\n")
	assert.Contains(t, result, ":ID: 01HNA000000000000000000002\n")
	assert.Contains(t, result, ":TIME: 2024-01-02T03:05:05Z\n")
	assert.Contains(t, result, ":PRICE: 105\n")
	assert.Contains(t, result, ":REALIZED_PL: 5.00\n")
	assert.Contains(t, result, ":QUANTITY: 1.00000000\n")
	assert.Contains(t, result, ":CASH: 1005.00\n")
	assert.Contains(t, result, ":END:\n")
	assert.Contains(t, result, "*** Notes")
	assert.NotContains(t, result, ":INVESTED:")
}

func TestFormatRecordOrgBuy(t *testing.T) {
	t.Parallel()

	result := FormatRecordOrg(sampleRecords()[0])
	assert.Contains(t, result, ":INVESTED: 100.00\n")
	assert.NotContains(t, result, ":REALIZED_PL:")
}

func TestFormatRecordsOrg(t *testing.T) {
	t.Parallel()

	recs := sampleRecords()
	result := FormatRecordsOrg(recs)

	assert.Equal(t, len(recs), strings.Count(result, ":PROPERTIES:"))
	assert.Equal(t, len(recs)-1, strings.Count(result, "\n\n\n** "))
	assert.Empty(t, FormatRecordsOrg(nil))
}

func TestShortID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "12345678", shortID("abcdefgh12345678"))
}
