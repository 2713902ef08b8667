// Package audio plays alarm sounds through the system speaker using beep.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// SampleRate is the rate the speaker is initialized with; sounds are resampled to it.
const SampleRate beep.SampleRate = 44100

// resampleQuality is the beep resampling quality, 1 (fast) to 64 (best).
const resampleQuality = 4

// ErrUnsupportedFormat is returned for sound files that are neither mp3 nor wav.
var ErrUnsupportedFormat = errors.New("unsupported sound format, use mp3 or wav")

// Player plays mp3 and wav sounds. Several sounds may play at once; the speaker mixes them.
type Player struct {
	initOnce sync.Once
	initErr  error
}

// New creates a player. The speaker is initialized on the first sound.
func New() *Player {
	return new(Player)
}

// Play opens soundRef and plays it, blocking until it ends or ctx is done.
func (p *Player) Play(ctx context.Context, soundRef string, volume float64) error {
	f, err := os.Open(filepath.Clean(soundRef))
	if err != nil {
		return fmt.Errorf("open sound: %w", err)
	}

	return p.PlayStream(ctx, FormatOf(soundRef), f, volume)
}

// PlayStream decodes r as format and plays it. r is closed when playback ends.
func (p *Player) PlayStream(ctx context.Context, format string, r io.ReadCloser, volume float64) error {
	streamer, streamFormat, err := decode(format, r)
	if err != nil {
		_ = r.Close()

		return err
	}
	defer streamer.Close()

	if err = p.init(); err != nil {
		return err
	}

	var source beep.Streamer = streamer
	if streamFormat.SampleRate != SampleRate {
		source = beep.Resample(resampleQuality, streamFormat.SampleRate, SampleRate, streamer)
	}

	ctrl := &beep.Ctrl{Streamer: withVolume(source, volume)}
	done := make(chan struct{})

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() { close(done) })))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// A nil streamer drains the sequence, so the mixer drops it.
		speaker.Lock()
		ctrl.Streamer = nil
		speaker.Unlock()

		return ctx.Err()
	}
}

// init starts the speaker once per process.
func (p *Player) init() error {
	p.initOnce.Do(func() {
		if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
			p.initErr = fmt.Errorf("init speaker: %w", err)
		}
	})

	return p.initErr
}

// FormatOf derives the decoder name from a file extension, defaulting to mp3.
func FormatOf(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "mp3"
	}

	return ext
}

// decode picks the beep decoder for format.
func decode(format string, r io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		streamer beep.StreamSeekCloser
		decoded  beep.Format
		err      error
	)

	switch strings.ToLower(format) {
	case "mp3":
		streamer, decoded, err = mp3.Decode(r)
	case "wav":
		streamer, decoded, err = wav.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}

	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", format, err)
	}

	return streamer, decoded, nil
}

// withVolume scales a streamer by a linear volume in 0-1.
func withVolume(s beep.Streamer, volume float64) beep.Streamer {
	silent, gain := Gain(volume)

	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   gain,
		Silent:   silent,
	}
}

// Gain converts a linear 0-1 volume into a base-2 exponent for effects.Volume.
func Gain(volume float64) (silent bool, exponent float64) {
	if volume <= 0 {
		return true, 0
	}

	return false, math.Log2(min(volume, 1))
}
