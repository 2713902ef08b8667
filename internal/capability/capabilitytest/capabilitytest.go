// Package capabilitytest provides recording fakes of the host capabilities.
package capabilitytest

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/med-reminder/internal/capability"
)

// AudioCall records one Play call.
type AudioCall struct {
	SoundRef string
	Volume   float64
	// Stopped is set when ctx was cancelled before the sound finished.
	Stopped bool
}

// Audio is a fake audio player.
type Audio struct {
	// Duration is how long Play blocks unless its context ends first.
	Duration time.Duration
	// Err makes Play fail immediately.
	Err error

	mu    sync.Mutex
	calls []AudioCall
}

// Play records the call and simulates playback.
func (a *Audio) Play(ctx context.Context, soundRef string, volume float64) error {
	a.mu.Lock()
	index := len(a.calls)
	a.calls = append(a.calls, AudioCall{SoundRef: soundRef, Volume: volume})
	a.mu.Unlock()

	if a.Err != nil {
		return a.Err
	}

	if err := wait(ctx, a.Duration); err != nil {
		a.mu.Lock()
		a.calls[index].Stopped = true
		a.mu.Unlock()

		return err
	}

	return nil
}

// Calls returns a copy of the recorded calls.
func (a *Audio) Calls() []AudioCall {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]AudioCall(nil), a.calls...)
}

// Speech is a fake speech synthesizer.
type Speech struct {
	// Duration is how long Speak blocks unless its context ends first.
	Duration time.Duration
	// Err makes Speak fail immediately.
	Err error
	// VoiceList is returned by Voices.
	VoiceList []capability.Voice

	mu         sync.Mutex
	utterances []capability.Utterance
	cancels    int
}

// Speak records the utterance and simulates speaking it.
func (s *Speech) Speak(ctx context.Context, u capability.Utterance) error {
	s.mu.Lock()
	s.utterances = append(s.utterances, u)
	s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	return wait(ctx, s.Duration)
}

// Voices returns VoiceList.
func (s *Speech) Voices(context.Context) ([]capability.Voice, error) {
	return s.VoiceList, nil
}

// CancelAll counts the call.
func (s *Speech) CancelAll() {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
}

// Utterances returns a copy of the recorded utterances.
func (s *Speech) Utterances() []capability.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]capability.Utterance(nil), s.utterances...)
}

// Cancels returns how many times CancelAll was called.
func (s *Speech) Cancels() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancels
}

// Notification records one raised notification.
type Notification struct {
	Title string
	Body  string
}

// Notifier is a fake notifier.
type Notifier struct {
	mu            sync.Mutex
	state         capability.Permission
	requestResult capability.Permission
	requests      int
	raised        []Notification
}

// NewNotifier creates a notifier in the given state that resolves requests to requestResult.
func NewNotifier(state, requestResult capability.Permission) *Notifier {
	return &Notifier{
		state:         state,
		requestResult: requestResult,
	}
}

// Permission returns the current state.
func (n *Notifier) Permission(context.Context) capability.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.state
}

// Request resolves the permission to the configured result.
func (n *Notifier) Request(context.Context) (capability.Permission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.requests++
	n.state = n.requestResult

	return n.state, nil
}

// Raise records the notification.
func (n *Notifier) Raise(_ context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.raised = append(n.raised, Notification{Title: title, Body: body})

	return nil
}

// Requests returns how many times Request was called.
func (n *Notifier) Requests() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.requests
}

// Raised returns a copy of the raised notifications.
func (n *Notifier) Raised() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]Notification(nil), n.raised...)
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
