package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonotonic_StrictlyIncreasingWithFrozenBase(t *testing.T) {
	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := Monotonic(func() time.Time { return frozen })

	a := clock()
	b := clock()
	c := clock()

	assert.Equal(t, frozen, a)
	assert.True(t, b.After(a))
	assert.True(t, c.After(b))
	assert.Equal(t, time.Millisecond, c.Sub(b))
}

func TestMonotonic_FollowsBaseWhenItMovesForward(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := Monotonic(func() time.Time { return now })

	first := clock()
	now = now.Add(time.Hour)
	second := clock()

	require.Equal(t, time.Hour, second.Sub(first))
}

func TestMonotonic_NilBaseUsesSystemClock(t *testing.T) {
	clock := Monotonic(nil)
	got := clock()
	assert.WithinDuration(t, time.Now(), got, time.Second)
}

func TestMillisRoundTrip(t *testing.T) {
	ts := time.Date(2023, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	assert.Equal(t, ts, FromMillis(Millis(ts)))
}
