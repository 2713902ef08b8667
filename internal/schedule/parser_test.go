package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
)

// TestParse_NamedSlots verifies slot times and that output order follows token order.
func TestParse_NamedSlots(t *testing.T) {
	t.Parallel()

	got := Parse("Night, morning , EVENING,Afternoon")
	require.Equal(t, []domain.TimeSpec{
		{Hour: 22},
		{Hour: 8},
		{Hour: 20},
		{Hour: 14},
	}, got)
}

// TestParse_ExplicitTimes covers 12-hour and 24-hour conversions.
func TestParse_ExplicitTimes(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.TimeSpec{
		"9:30 PM":  {Hour: 21, Minute: 30},
		"12:00 AM": {Hour: 0, Minute: 0},
		"12:15 PM": {Hour: 12, Minute: 15},
		"8:00 am":  {Hour: 8, Minute: 0},
		"7:45pm":   {Hour: 19, Minute: 45},
		"21:05":    {Hour: 21, Minute: 5},
		"0:00":     {Hour: 0, Minute: 0},
	}

	for descriptor, want := range cases {
		got := Parse(descriptor)
		require.Equal(t, []domain.TimeSpec{want}, got, descriptor)
	}
}

// TestParse_TimeWithinWords resolves a time surrounded by other words.
func TestParse_TimeWithinWords(t *testing.T) {
	t.Parallel()

	got := Parse("8:00 AM daily, after lunch 1:30 PM, 8:5, take at 21:15 with water, 9:00 amoxicillin")
	require.Equal(t, []domain.TimeSpec{
		{Hour: 8},
		{Hour: 13, Minute: 30},
		{Hour: 8, Minute: 5},
		{Hour: 21, Minute: 15},
		{Hour: 9},
	}, got)
}

// TestParse_Degradation checks that unknown or invalid tokens are dropped silently.
func TestParse_Degradation(t *testing.T) {
	t.Parallel()

	require.Empty(t, Parse("Blah"))
	require.Empty(t, Parse(""))
	require.Empty(t, Parse("   "))
	require.Empty(t, Parse("25:00, 10:75, noon, 123:45"))

	got := Parse("Morning, Blah, 2:00 PM")
	require.Equal(t, []domain.TimeSpec{{Hour: 8}, {Hour: 14}}, got)
}

// TestParse_KeepsDuplicates ensures the parser does not deduplicate.
func TestParse_KeepsDuplicates(t *testing.T) {
	t.Parallel()

	got := Parse("Morning, 8:00 AM")
	require.Equal(t, []domain.TimeSpec{{Hour: 8}, {Hour: 8}}, got)
}

// TestFormat renders specs in 12-hour form.
func TestFormat(t *testing.T) {
	t.Parallel()

	require.Equal(t, "12:00 AM", Format(domain.TimeSpec{}))
	require.Equal(t, "8:05 AM", Format(domain.TimeSpec{Hour: 8, Minute: 5}))
	require.Equal(t, "12:30 PM", Format(domain.TimeSpec{Hour: 12, Minute: 30}))
	require.Equal(t, "9:30 PM", Format(domain.TimeSpec{Hour: 21, Minute: 30}))
}
