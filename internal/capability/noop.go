package capability

import (
	"context"

	"github.com/oshokin/med-reminder/internal/logger"
)

// NoopAudio logs the sound it would play and returns at once.
type NoopAudio struct{}

// Play logs the request.
func (NoopAudio) Play(ctx context.Context, soundRef string, volume float64) error {
	logger.DebugKV(ctx, "Audio disabled, skipping alarm sound", "sound", soundRef, "volume", volume)

	return nil
}

// NoopSpeech logs the text it would speak and returns at once.
type NoopSpeech struct{}

// Speak logs the utterance.
func (NoopSpeech) Speak(ctx context.Context, u Utterance) error {
	logger.InfoKV(ctx, "Speech disabled, reminder text", "text", u.Text)

	return nil
}

// Voices returns no voices.
func (NoopSpeech) Voices(context.Context) ([]Voice, error) {
	return nil, nil
}

// CancelAll does nothing.
func (NoopSpeech) CancelAll() {}

// NoopNotifier never has permission to raise notifications.
type NoopNotifier struct{}

// Permission is always denied.
func (NoopNotifier) Permission(context.Context) Permission {
	return PermissionDenied
}

// Request is always denied.
func (NoopNotifier) Request(context.Context) (Permission, error) {
	return PermissionDenied, nil
}

// Raise reports the notifier as unavailable.
func (NoopNotifier) Raise(context.Context, string, string) error {
	return ErrUnavailable
}
