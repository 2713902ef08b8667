package alarm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/med-reminder/internal/capability"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
	"github.com/oshokin/med-reminder/internal/logger"
)

const (
	// NotificationTitle is the title of every reminder notification.
	NotificationTitle = "Medication Reminder"
	// DefaultTestMessage is spoken by TestVoice when no message is given.
	DefaultTestMessage = "This is a test of the medication reminder voice."
)

// Options tunes one alarm.
type Options struct {
	domain.VoiceOptions

	// CustomMessage replaces the default spoken template.
	CustomMessage string
}

// Player fires alarms using the available capabilities.
type Player struct {
	// caps are the host capabilities; nil members are missing.
	caps capability.Set
	// defaultSound is played when Options name no sound.
	defaultSound string
}

// NewPlayer creates a player. defaultSound is the alarm sound used when an
// alarm does not name its own.
func NewPlayer(caps capability.Set, defaultSound string) *Player {
	return &Player{
		caps:         caps,
		defaultSound: defaultSound,
	}
}

// Playback is a handle to an alarm in progress.
type Playback struct {
	// cancel stops the sound and the speech.
	cancel context.CancelFunc
	// done is closed when the sequence ended.
	done chan struct{}
	// startedAt is when the alarm was fired.
	startedAt time.Time

	// mu protects err.
	mu sync.Mutex
	// err collects non-cancellation failures of the sequence.
	err error
}

// Stop halts the sound and cancels the speech. It is safe to call many times.
func (p *Playback) Stop() {
	p.cancel()
}

// Done is closed once the sound and speech finished or were stopped.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// StartedAt returns when the alarm was fired.
func (p *Playback) StartedAt() time.Time {
	return p.startedAt
}

// Err returns the playback failures collected so far.
func (p *Playback) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// addErr records a failure unless it is the result of Stop.
func (p *Playback) addErr(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	p.mu.Lock()
	p.err = errors.Join(p.err, err)
	p.mu.Unlock()
}

// Fire starts the alarm for label. The sound plays first, then the reminder
// is spoken; the speech is attempted even if the sound failed. The
// notification is raised independently. Fire returns nil when neither sound
// nor speech can be played.
func (p *Player) Fire(ctx context.Context, label, instructions string, opts Options) *Playback {
	go p.notify(ctx, label, instructions)

	if p.caps.Audio == nil && p.caps.Speech == nil {
		logger.WarnKV(ctx, "No audio or speech capability, alarm is silent", "label", label)

		return nil
	}

	voice := opts.Normalize()

	sound := voice.AlarmSound
	if sound == "" {
		sound = p.defaultSound
	}

	playCtx, cancel := context.WithCancel(ctx)
	playback := &Playback{
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}

	utterance := capability.Utterance{
		Text:   Message(label, instructions, opts.CustomMessage),
		Volume: voice.Volume,
		Rate:   voice.Rate,
		Pitch:  voice.Pitch,
		Voice:  voice.Voice,
	}

	go func() {
		defer close(playback.done)
		defer cancel()

		if p.caps.Audio != nil && sound != "" {
			if err := p.caps.Audio.Play(playCtx, sound, voice.Volume); err != nil && playCtx.Err() == nil {
				logger.WarnKV(ctx, "Alarm sound failed, falling back to speech", "sound", sound, "error", err)
				playback.addErr(fmt.Errorf("play sound: %w", err))
			}
		}

		// Stop was called while the sound played.
		if playCtx.Err() != nil {
			return
		}

		if p.caps.Speech == nil {
			return
		}

		if err := p.caps.Speech.Speak(playCtx, utterance); err != nil && playCtx.Err() == nil {
			logger.WarnKV(ctx, "Speaking reminder failed", "label", label, "error", err)
			playback.addErr(fmt.Errorf("speak: %w", err))
		}
	}()

	return playback
}

// notify raises the reminder notification, requesting permission first when
// it was never asked for.
func (p *Player) notify(ctx context.Context, label, instructions string) {
	notifier := p.caps.Notifier
	if notifier == nil {
		return
	}

	state := notifier.Permission(ctx)
	if state == capability.PermissionUndetermined {
		var err error

		state, err = notifier.Request(ctx)
		if err != nil {
			logger.WarnKV(ctx, "Notification permission request failed", "error", err)
		}
	}

	if state != capability.PermissionGranted {
		logger.DebugKV(ctx, "Notifications not permitted", "permission", state.String())

		return
	}

	body := "Time to take: " + label
	if instructions != "" {
		body += "\n" + instructions
	}

	if err := notifier.Raise(ctx, NotificationTitle, body); err != nil {
		logger.WarnKV(ctx, "Raising notification failed", "error", err)
	}
}

// TestVoice speaks opts.CustomMessage, or DefaultTestMessage, and reports success.
func (p *Player) TestVoice(ctx context.Context, opts Options) bool {
	if p.caps.Speech == nil {
		return false
	}

	message := opts.CustomMessage
	if strings.TrimSpace(message) == "" {
		message = DefaultTestMessage
	}

	voice := opts.Normalize()

	err := p.caps.Speech.Speak(ctx, capability.Utterance{
		Text:   message,
		Volume: voice.Volume,
		Rate:   voice.Rate,
		Pitch:  voice.Pitch,
		Voice:  voice.Voice,
	})
	if err != nil {
		logger.WarnKV(ctx, "Voice test failed", "error", err)

		return false
	}

	return true
}

// Voices lists the speech voices, or capability.ErrUnavailable without speech.
func (p *Player) Voices(ctx context.Context) ([]capability.Voice, error) {
	if p.caps.Speech == nil {
		return nil, capability.ErrUnavailable
	}

	return p.caps.Speech.Voices(ctx)
}

// Message returns the spoken reminder text.
func Message(label, instructions, custom string) string {
	if strings.TrimSpace(custom) != "" {
		return custom
	}

	return strings.TrimSpace(fmt.Sprintf("Time to take your medication: %s. %s", label, instructions))
}
