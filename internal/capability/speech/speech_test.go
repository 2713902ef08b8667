package speech

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/med-reminder/internal/capability"
)

// TestSpeakingRate clamps into the provider range.
func TestSpeakingRate(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 1.0, SpeakingRate(0), 1e-9)
	require.InDelta(t, 0.9, SpeakingRate(0.9), 1e-9)
	require.InDelta(t, 0.25, SpeakingRate(0.1), 1e-9)
	require.InDelta(t, 4.0, SpeakingRate(10), 1e-9)
}

// TestPitchSemitones maps 0-2 onto semitones around the natural pitch.
func TestPitchSemitones(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0.0, PitchSemitones(0), 1e-9)
	require.InDelta(t, 0.0, PitchSemitones(1), 1e-9)
	require.InDelta(t, 20.0, PitchSemitones(2), 1e-9)
	require.InDelta(t, -10.0, PitchSemitones(0.5), 1e-9)
}

// TestVolumeGainDB converts linear volume to decibels.
func TestVolumeGainDB(t *testing.T) {
	t.Parallel()

	require.InDelta(t, -96.0, VolumeGainDB(0), 1e-9)
	require.InDelta(t, 0.0, VolumeGainDB(1), 1e-9)
	require.InDelta(t, -6.0206, VolumeGainDB(0.5), 1e-3)
}

// TestPreferredVoice prefers the default English voice.
func TestPreferredVoice(t *testing.T) {
	t.Parallel()

	_, ok := PreferredVoice(nil)
	require.False(t, ok)

	voices := []capability.Voice{
		{Name: "de-DE-Standard-A", Lang: "de-DE", Default: true},
		{Name: "en-US-Standard-C", Lang: "en-US"},
		{Name: "en-GB-Standard-A", Lang: "en-GB", Default: true},
	}

	v, ok := PreferredVoice(voices)
	require.True(t, ok)
	require.Equal(t, "en-GB-Standard-A", v.Name)

	v, ok = PreferredVoice(voices[:2])
	require.True(t, ok)
	require.Equal(t, "de-DE-Standard-A", v.Name)
}

// TestGoogle_SpeakRejectsEmptyText fails before any network call.
func TestGoogle_SpeakRejectsEmptyText(t *testing.T) {
	t.Parallel()

	g := NewGoogle(Config{}, nil)
	require.ErrorIs(t, g.Speak(context.Background(), capability.Utterance{Text: "  "}), errEmptyText)
	require.NoError(t, g.Close())
}
