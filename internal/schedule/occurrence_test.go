package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
)

// TestNextTrigger_Today returns today's instant when it is still ahead.
func TestNextTrigger_Today(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 7, 15, 30, 0, time.UTC)
	got := NextTrigger(domain.TimeSpec{Hour: 8}, now, false)

	require.Equal(t, time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC), got)
}

// TestNextTrigger_Tomorrow moves past instants to the following day.
func TestNextTrigger_Tomorrow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 21, 0, 0, 0, time.UTC)
	got := NextTrigger(domain.TimeSpec{Hour: 20, Minute: 30}, now, false)

	require.Equal(t, time.Date(2026, time.March, 11, 20, 30, 0, 0, time.UTC), got)

	// The end of the month rolls over correctly.
	now = time.Date(2026, time.January, 31, 23, 0, 0, 0, time.UTC)
	got = NextTrigger(domain.TimeSpec{Hour: 8}, now, false)

	require.Equal(t, time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC), got)
}

// TestNextTrigger_ExactlyNow is never returned: the result is strictly in the future.
func TestNextTrigger_ExactlyNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	got := NextTrigger(domain.TimeSpec{Hour: 8}, now, false)

	require.Equal(t, now.AddDate(0, 0, 1), got)
	require.True(t, got.After(now))
}

// TestNextTrigger_TestMode bypasses the hour/minute math.
func TestNextTrigger_TestMode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)

	spec := domain.TimeSpec{Hour: 3, TestMode: true}
	require.Equal(t, now.Add(domain.DefaultTestDelay), NextTrigger(spec, now, true))

	spec.Delay = 3 * time.Second
	require.Equal(t, now.Add(3*time.Second), NextTrigger(spec, now, true))

	// Without the test-mode flag the spec is treated as a regular time of day.
	require.Equal(t, time.Date(2026, time.March, 11, 3, 0, 0, 0, time.UTC), NextTrigger(spec, now, false))
}

// TestDelay matches the distance to NextTrigger.
func TestDelay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 7, 30, 0, 0, time.UTC)
	require.Equal(t, 30*time.Minute, Delay(domain.TimeSpec{Hour: 8}, now, false))
}
