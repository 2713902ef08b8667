package capability

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by adapters whose backing service is missing.
var ErrUnavailable = errors.New("capability unavailable")

// Permission is the state of the notification permission.
type Permission int

const (
	// PermissionUndetermined means the user or host was never asked.
	PermissionUndetermined Permission = iota
	// PermissionGranted allows raising notifications.
	PermissionGranted
	// PermissionDenied forbids raising notifications.
	PermissionDenied
)

// String returns the lowercase name of the permission.
func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}

// Audio plays alarm sounds.
type Audio interface {
	// Play blocks until the sound finished or ctx is done. Cancelling ctx stops playback.
	Play(ctx context.Context, soundRef string, volume float64) error
}

// Utterance is one piece of text to speak and how to speak it.
type Utterance struct {
	// Text is what to say.
	Text string
	// Volume is 0-1.
	Volume float64
	// Rate is 0.1-10, 1 being the natural speed.
	Rate float64
	// Pitch is 0-2, 1 being the natural pitch.
	Pitch float64
	// Voice is a voice name from Voices; empty selects the provider default.
	Voice string
}

// Voice describes a speech voice.
type Voice struct {
	Name    string
	Lang    string
	Default bool
}

// Speech synthesizes and plays spoken text.
type Speech interface {
	// Speak blocks until the utterance was spoken or ctx is done.
	Speak(ctx context.Context, u Utterance) error
	// Voices lists the voices the provider offers.
	Voices(ctx context.Context) ([]Voice, error)
	// CancelAll stops every utterance in progress.
	CancelAll()
}

// Notifier raises system notifications.
type Notifier interface {
	// Permission reports the current permission without prompting.
	Permission(ctx context.Context) Permission
	// Request asks for permission and returns the resolved state.
	Request(ctx context.Context) (Permission, error)
	// Raise shows a notification.
	Raise(ctx context.Context, title, body string) error
}

// Set groups the capabilities available to an alarm. A nil member is missing.
type Set struct {
	Audio    Audio
	Speech   Speech
	Notifier Notifier
}
