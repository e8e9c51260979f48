package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	ids := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		ids = append(ids, New())
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestNewAtRoundTripsTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 6, 7, 8, 9, int(123*time.Millisecond), time.UTC)
	s := NewAt(ts)
	assert.Len(t, s, 26)

	got, err := Time(s)
	require.NoError(t, err)
	assert.True(t, got.Equal(ts), "got %s want %s", got, ts)
}

func TestTimeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Time("not-a-ulid")
	assert.Error(t, err)
}

func TestNewAtClampsPreEpoch(t *testing.T) {
	t.Parallel()

	for _, ts := range []time.Time{{}, time.Date(1969, 12, 31, 23, 59, 59, 0, time.UTC)} {
		var s string
		require.NotPanics(t, func() { s = NewAt(ts) })

		got, err := Time(s)
		require.NoError(t, err)
		assert.True(t, got.Equal(time.Unix(0, 0)), "got %s", got)
	}
}
