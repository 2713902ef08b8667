package audio

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFormatOf derives decoder names from file extensions.
func TestFormatOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, "mp3", FormatOf("sounds/medication-alarm.mp3"))
	require.Equal(t, "wav", FormatOf("/tmp/ALARM.WAV"))
	require.Equal(t, "mp3", FormatOf("alarm"))
	require.Equal(t, "ogg", FormatOf("alarm.ogg"))
}

// TestGain maps linear volume to a base-2 exponent.
func TestGain(t *testing.T) {
	t.Parallel()

	silent, exponent := Gain(0)
	require.True(t, silent)
	require.Zero(t, exponent)

	silent, exponent = Gain(1)
	require.False(t, silent)
	require.Zero(t, exponent)

	_, exponent = Gain(0.5)
	require.InDelta(t, -1.0, exponent, 1e-9)

	_, exponent = Gain(4)
	require.Zero(t, exponent)
}

// TestPlayStream_UnsupportedFormat fails before touching the speaker.
func TestPlayStream_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	err := New().PlayStream(context.Background(), "ogg", io.NopCloser(strings.NewReader("x")), 1)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

// TestPlay_MissingFile reports the open error.
func TestPlay_MissingFile(t *testing.T) {
	t.Parallel()

	err := New().Play(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"), 1)
	require.Error(t, err)
}
