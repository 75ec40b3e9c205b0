package daykey

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"2026-02-28": true,
		"2024-02-29": true,
		"2026-02-29": false,
		"2026-02-30": false,
		"2026-13-01": false,
		"2026-1-01":  false,
		"":           false,
		"abcd-ef-gh": false,
	}
	for key, want := range cases {
		assert.Equalf(t, want, Valid(key), "Valid(%q)", key)
	}
	assert.False(t, Valid("2026-01-01T00:00:00Z"))
}

func TestParseWrapsSentinel(t *testing.T) {
	t.Parallel()

	_, err := Parse("2026-02-30")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestNextPrevAcrossMonthAndYear(t *testing.T) {
	t.Parallel()

	next, err := Next("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", next)

	next, err = Next("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", next)

	prev, err := Prev("2027-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-12-31", prev)
}

func TestEachInclusiveNoPhantomLeapDay(t *testing.T) {
	t.Parallel()

	keys, err := EachInclusive("2026-02-28", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-28", "2026-03-01"}, keys)
}

func TestEachInclusiveSingleAndReversed(t *testing.T) {
	t.Parallel()

	keys, err := EachInclusive("2026-05-05", "2026-05-05")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-05-05"}, keys)

	keys, err = EachInclusive("2026-05-06", "2026-05-05")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestEachInclusiveRejectsHugeRange(t *testing.T) {
	t.Parallel()

	_, err := EachInclusive("2000-01-01", "2030-01-01")
	require.ErrorIs(t, err, ErrRangeTooLarge)
}

func TestNightsExcludesCheckout(t *testing.T) {
	t.Parallel()

	nights, err := Nights("2026-12-30", "2027-01-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-12-30", "2026-12-31", "2027-01-01"}, nights)

	count, err := NightCount("2026-12-30", "2027-01-02")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	nights, err = Nights("2026-12-30", "2026-12-30")
	require.NoError(t, err)
	assert.Empty(t, nights)
}

func TestCompareIsCalendarOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, Compare("2026-09-30", "2026-10-01"))
	assert.Equal(t, 1, Compare("2027-01-01", "2026-12-31"))
	assert.Equal(t, 0, Compare("2026-10-17", "2026-10-17"))
	assert.True(t, Contains("2026-10-01", "2026-10-31", "2026-10-31"))
	assert.False(t, Contains("2026-10-01", "2026-10-31", "2026-11-01"))
}

func TestMiddayRoundTripUnderOffsets(t *testing.T) {
	t.Parallel()

	instant, err := MiddayUTC("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 12, instant.Hour())
	assert.Equal(t, "2026-03-01", FromInstant(instant))

	for _, offset := range []int{-11, -5, 0, 5, 11} {
		loc := time.FixedZone("test", offset*3600)
		assert.Equalf(t, "2026-03-01", FromTime(instant, loc), "offset %d", offset)
	}
}
