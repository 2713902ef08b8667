package server

import (
	"context"

	"github.com/oshokin/med-reminder/internal/capability"
	"github.com/oshokin/med-reminder/internal/capability/audio"
	"github.com/oshokin/med-reminder/internal/capability/notify"
	"github.com/oshokin/med-reminder/internal/capability/speech"
	"github.com/oshokin/med-reminder/internal/config"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
	"github.com/oshokin/med-reminder/internal/logger"
)

// appName is the application name shown by desktop notifications.
const appName = "Medication Reminder"

// buildCapabilities creates the audio, speech and notification adapters the
// settings ask for. Unavailable ones are replaced by no-op adapters.
// The returned function releases them.
func buildCapabilities(ctx context.Context, settings *config.Config) (capability.Set, func()) {
	var (
		caps    capability.Set
		closers []func() error
	)

	var player *audio.Player
	if settings.Audio.Provider == config.ProviderBeep || settings.Speech.Provider == config.ProviderGoogle {
		player = audio.New()
	}

	if settings.Audio.Provider == config.ProviderBeep {
		caps.Audio = player
	} else {
		caps.Audio = capability.NoopAudio{}
	}

	if settings.Speech.Provider == config.ProviderGoogle {
		google := speech.NewGoogle(speech.Config{
			Language:         settings.Speech.Language,
			DefaultVoice:     settings.Speech.Voice,
			EffectsProfileID: settings.Speech.EffectsProfile,
		}, player)

		caps.Speech = google
		closers = append(closers, google.Close)
	} else {
		caps.Speech = capability.NoopSpeech{}
	}

	var notifiers notify.Multi

	if settings.Notify.Desktop {
		desktop := notify.NewDesktop(appName, settings.Notify.Icon)

		notifiers = append(notifiers, desktop)
		closers = append(closers, desktop.Close)
	}

	if settings.Notify.TelegramToken != "" {
		telegram, err := notify.NewTelegram(settings.Notify.TelegramToken, settings.Notify.TelegramChatID)
		if err != nil {
			logger.WarnKV(ctx, "Telegram notifications disabled", "error", err)
		} else {
			notifiers = append(notifiers, telegram)
		}
	}

	if len(notifiers) == 0 {
		caps.Notifier = capability.NoopNotifier{}
	} else {
		caps.Notifier = notifiers
	}

	logger.InfoKV(ctx, "Capabilities ready",
		"audio", settings.Audio.Provider,
		"speech", settings.Speech.Provider,
		"notifiers", len(notifiers))

	return caps, func() {
		for _, closeFn := range closers {
			closeLogged(ctx, "capability", closeFn)
		}
	}
}

// voiceDefaults converts the speech settings to the voice options every item
// is merged over.
func voiceDefaults(settings config.SpeechConfig) domain.VoiceOptions {
	return domain.VoiceOptions{
		Voice:  settings.Voice,
		Volume: settings.Volume,
		Rate:   settings.Rate,
		Pitch:  settings.Pitch,
	}
}
