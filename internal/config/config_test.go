package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil settings.
	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	// Bad socket.
	settings := &Config{
		ServerAddress: "bad:address",
	}

	require.Error(t, Validate(settings))

	// Unknown providers.
	require.ErrorIs(t, Validate(&Config{Audio: AudioConfig{Provider: "pulse"}}), errUnknownProvider)
	require.ErrorIs(t, Validate(&Config{Speech: SpeechConfig{Provider: "espeak"}}), errUnknownProvider)

	// Half-configured Telegram.
	require.ErrorIs(t, Validate(&Config{Notify: NotifyConfig{TelegramToken: "123:abc"}}), errTelegramIncomplete)

	// Bad cron spec.
	require.Error(t, Validate(&Config{Scheduler: SchedulerConfig{Revalidate: "every minute"}}))

	// Disabled drift check is not parsed.
	settings = &Config{Scheduler: SchedulerConfig{Revalidate: "OFF"}}
	require.NoError(t, Validate(settings))
	require.False(t, settings.Scheduler.RevalidateEnabled())
}

// TestValidate_Defaults verifies an empty config is filled with defaults.
func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	settings := Default()

	require.Equal(t, DefaultServerAddress, settings.ServerAddress)
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultItemsFilename, settings.ItemsFile)
	require.Equal(t, DefaultHistoryFilename, settings.HistoryDB)
	require.Equal(t, "info", settings.LogLevel)
	require.Equal(t, DefaultAlarmGrace, settings.Scheduler.AlarmGrace)
	require.Equal(t, DefaultDriftTolerance, settings.Scheduler.DriftTolerance)
	require.Equal(t, DefaultRevalidate, settings.Scheduler.Revalidate)
	require.True(t, settings.Scheduler.RevalidateEnabled())
	require.Equal(t, ProviderBeep, settings.Audio.Provider)
	require.Equal(t, ProviderNone, settings.Speech.Provider)
	require.Equal(t, DefaultLanguage, settings.Speech.Language)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ServerAddress: "127.0.0.1:50061",
		ItemsFile:     filepath.Join(dir, "items.yaml"),
		Scheduler: SchedulerConfig{
			AlarmGrace: 90 * time.Second,
			Revalidate: "*/5 * * * *",
		},
		Speech: SpeechConfig{
			Provider: "Google",
			Voice:    "en-US-Standard-C",
			Rate:     1.1,
		},
		Notify: NotifyConfig{
			TelegramToken:  "123:abc",
			TelegramChatID: 42,
		},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ServerAddress, loaded.ServerAddress)
	require.Equal(t, settings.ItemsFile, loaded.ItemsFile)
	require.Equal(t, 90*time.Second, loaded.Scheduler.AlarmGrace)
	require.Equal(t, "*/5 * * * *", loaded.Scheduler.Revalidate)
	require.Equal(t, ProviderGoogle, loaded.Speech.Provider)
	require.InDelta(t, 1.1, loaded.Speech.Rate, 1e-9)
	require.Equal(t, int64(42), loaded.Notify.TelegramChatID)

	// File exists with restricted permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoad_MissingExplicitFile fails when a named settings file is absent.
func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestLoad_EnvironmentOverridesFile checks REMINDER_* variables win over YAML.
func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`server_addr: 127.0.0.1:50061
log_level: info
scheduler:
  alarm_grace: 2m
speech:
  provider: none
`), DefaultFilePermissions))

	t.Setenv("REMINDER_LOG_LEVEL", "debug")
	t.Setenv("REMINDER_ALARM_GRACE", "45s")
	t.Setenv("REMINDER_SPEECH_PROVIDER", "google")
	t.Setenv("REMINDER_MQTT_BROKER", "tcp://localhost:1883")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", loaded.LogLevel)
	require.Equal(t, 45*time.Second, loaded.Scheduler.AlarmGrace)
	require.Equal(t, ProviderGoogle, loaded.Speech.Provider)
	require.Equal(t, "tcp://localhost:1883", loaded.MQTT.Broker)
	require.Equal(t, "127.0.0.1:50061", loaded.ServerAddress)
}
