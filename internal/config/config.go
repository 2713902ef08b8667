package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the reminder binaries.
type Config struct {
	// ServerAddress is the gRPC address of the reminder daemon.
	ServerAddress string `yaml:"server_addr" env:"REMINDER_SERVER_ADDR"`
	// ItemsFile is the path to the YAML file with the tracked items.
	ItemsFile string `yaml:"items_file" env:"REMINDER_ITEMS_FILE"`
	// HistoryDB is the path to the SQLite database of fired alarms.
	HistoryDB string `yaml:"history_db" env:"REMINDER_HISTORY_DB"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout" env:"REMINDER_TIMEOUT"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" env:"REMINDER_LOG_LEVEL"`
	// MetricsAddress serves Prometheus metrics when set.
	MetricsAddress string `yaml:"metrics_addr,omitempty" env:"REMINDER_METRICS_ADDR"`

	Scheduler SchedulerConfig `yaml:"scheduler"`
	Audio     AudioConfig     `yaml:"audio"`
	Speech    SpeechConfig    `yaml:"speech"`
	Notify    NotifyConfig    `yaml:"notify"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// SchedulerConfig tunes the reminder registry.
type SchedulerConfig struct {
	// AlarmGrace is how long a fired alarm stays in the registry.
	AlarmGrace time.Duration `yaml:"alarm_grace" env:"REMINDER_ALARM_GRACE"`
	// Revalidate is the cron spec of the clock drift check; "off" disables it.
	Revalidate string `yaml:"revalidate" env:"REMINDER_REVALIDATE"`
	// DriftTolerance is the clock drift the check ignores.
	DriftTolerance time.Duration `yaml:"drift_tolerance" env:"REMINDER_DRIFT_TOLERANCE"`
}

// AudioConfig selects the alarm sound player.
type AudioConfig struct {
	// Provider is "beep" or "none".
	Provider string `yaml:"provider" env:"REMINDER_AUDIO_PROVIDER"`
	// DefaultSound is the mp3 or wav file played when an item names none.
	DefaultSound string `yaml:"default_sound" env:"REMINDER_AUDIO_SOUND"`
}

// SpeechConfig selects the speech synthesizer and the voice defaults.
type SpeechConfig struct {
	// Provider is "google" or "none".
	Provider string `yaml:"provider" env:"REMINDER_SPEECH_PROVIDER"`
	// Language is the BCP-47 language of the voices.
	Language string `yaml:"language" env:"REMINDER_SPEECH_LANGUAGE"`
	// Voice is the default voice name.
	Voice string `yaml:"voice,omitempty" env:"REMINDER_SPEECH_VOICE"`
	// EffectsProfile is the Google audio profile applied to synthesized speech.
	EffectsProfile string `yaml:"effects_profile,omitempty" env:"REMINDER_SPEECH_EFFECTS_PROFILE"`
	// Volume, Rate and Pitch are the defaults items override.
	Volume float64 `yaml:"volume" env:"REMINDER_SPEECH_VOLUME"`
	Rate   float64 `yaml:"rate" env:"REMINDER_SPEECH_RATE"`
	Pitch  float64 `yaml:"pitch" env:"REMINDER_SPEECH_PITCH"`
}

// NotifyConfig selects the notification channels.
type NotifyConfig struct {
	// Desktop raises freedesktop notifications over the session D-Bus.
	Desktop bool `yaml:"desktop" env:"REMINDER_NOTIFY_DESKTOP"`
	// Icon is the desktop notification icon name or path.
	Icon string `yaml:"icon,omitempty" env:"REMINDER_NOTIFY_ICON"`
	// TelegramToken enables Telegram messages when set together with TelegramChatID.
	TelegramToken string `yaml:"telegram_token,omitempty" env:"REMINDER_TELEGRAM_TOKEN"`
	// TelegramChatID is the chat that receives the reminders.
	TelegramChatID int64 `yaml:"telegram_chat_id,omitempty" env:"REMINDER_TELEGRAM_CHAT_ID"`
}

// MQTTConfig enables event publishing when Broker is set.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.
	Broker string `yaml:"broker,omitempty" env:"REMINDER_MQTT_BROKER"`
	// ClientID identifies the daemon at the broker.
	ClientID string `yaml:"client_id,omitempty" env:"REMINDER_MQTT_CLIENT_ID"`
	// TopicPrefix is prepended to the event kind.
	TopicPrefix string `yaml:"topic_prefix,omitempty" env:"REMINDER_MQTT_TOPIC_PREFIX"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "reminder-settings.yaml"

	// DefaultItemsFilename is the default filename of the items file.
	DefaultItemsFilename = "reminder-items.yaml"

	// DefaultHistoryFilename is the default filename of the history database.
	DefaultHistoryFilename = "reminder-history.db"

	// DefaultServerAddress is where the daemon listens by default.
	DefaultServerAddress = "127.0.0.1:50061"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultAlarmGrace is how long a fired alarm stays in the registry.
	DefaultAlarmGrace = 2 * time.Minute

	// DefaultRevalidate runs the clock drift check every minute.
	DefaultRevalidate = "@every 1m"

	// RevalidateOff disables the clock drift check.
	RevalidateOff = "off"

	// DefaultDriftTolerance is the clock drift the check ignores.
	DefaultDriftTolerance = time.Minute

	// DefaultLanguage is the speech language.
	DefaultLanguage = "en-US"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// ProviderNone disables an audio or speech provider.
	ProviderNone = "none"
	// ProviderBeep plays alarm sounds through the local sound card.
	ProviderBeep = "beep"
	// ProviderGoogle synthesizes speech with Google Cloud Text-to-Speech.
	ProviderGoogle = "google"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownProvider is returned for an unsupported audio or speech provider.
	errUnknownProvider = errors.New("unknown provider")
	// errTelegramIncomplete is returned when only one of token and chat id is set.
	errTelegramIncomplete = errors.New("telegram token and chat id must be set together")
)

// Default returns settings with every default applied.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path, overlays the environment
// and validates it. A missing file at the default path yields defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = ApplyEnv(&cfg); err != nil {
		return nil, err
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyEnv overlays REMINDER_* environment variables, loading a .env file
// from the working directory first when one exists.
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	return nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may hold a bot token.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		settings.ServerAddress = DefaultServerAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics socket: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.ItemsFile == "" {
		settings.ItemsFile = DefaultItemsFilename
	}

	if settings.HistoryDB == "" {
		settings.HistoryDB = DefaultHistoryFilename
	}

	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}

	if err := validateScheduler(&settings.Scheduler); err != nil {
		return err
	}

	if err := validateProviders(settings); err != nil {
		return err
	}

	if (settings.Notify.TelegramToken == "") != (settings.Notify.TelegramChatID == 0) {
		return errTelegramIncomplete
	}

	return nil
}

func validateScheduler(s *SchedulerConfig) error {
	if s.AlarmGrace <= 0 {
		s.AlarmGrace = DefaultAlarmGrace
	}

	if s.DriftTolerance <= 0 {
		s.DriftTolerance = DefaultDriftTolerance
	}

	if s.Revalidate == "" {
		s.Revalidate = DefaultRevalidate
	}

	if s.RevalidateEnabled() {
		if _, err := cron.ParseStandard(s.Revalidate); err != nil {
			return fmt.Errorf("invalid revalidate schedule: %w", err)
		}
	}

	return nil
}

func validateProviders(settings *Config) error {
	settings.Audio.Provider = strings.ToLower(settings.Audio.Provider)
	if settings.Audio.Provider == "" {
		settings.Audio.Provider = ProviderBeep
	}

	if settings.Audio.Provider != ProviderBeep && settings.Audio.Provider != ProviderNone {
		return fmt.Errorf("%w: audio %q", errUnknownProvider, settings.Audio.Provider)
	}

	settings.Speech.Provider = strings.ToLower(settings.Speech.Provider)
	if settings.Speech.Provider == "" {
		settings.Speech.Provider = ProviderNone
	}

	if settings.Speech.Provider != ProviderGoogle && settings.Speech.Provider != ProviderNone {
		return fmt.Errorf("%w: speech %q", errUnknownProvider, settings.Speech.Provider)
	}

	if settings.Speech.Language == "" {
		settings.Speech.Language = DefaultLanguage
	}

	return nil
}

// RevalidateEnabled reports whether the clock drift check runs.
func (s SchedulerConfig) RevalidateEnabled() bool {
	return !strings.EqualFold(s.Revalidate, RevalidateOff)
}
