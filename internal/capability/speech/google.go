package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/oshokin/med-reminder/internal/capability"
	"github.com/oshokin/med-reminder/internal/logger"
)

// Google Text-to-Speech audio config limits.
const (
	minSpeakingRate = 0.25
	maxSpeakingRate = 4.0
	maxSemitones    = 20.0
	minGainDB       = -96.0
	maxGainDB       = 16.0
)

// errEmptyText is returned when there is nothing to say.
var errEmptyText = errors.New("empty utterance text")

// StreamPlayer plays encoded audio; *audio.Player implements it.
type StreamPlayer interface {
	PlayStream(ctx context.Context, format string, r io.ReadCloser, volume float64) error
}

// Config selects the language and default voice.
type Config struct {
	// Language is the BCP-47 language code, e.g. "en-US".
	Language string
	// DefaultVoice is used when an utterance names no voice.
	DefaultVoice string
	// EffectsProfileID optionally tunes audio for a device class.
	EffectsProfileID string
}

// Google speaks utterances through Google Cloud Text-to-Speech.
type Google struct {
	// cfg holds language and voice defaults.
	cfg Config
	// player plays the synthesized MP3.
	player StreamPlayer

	// mu protects client and inFlight.
	mu sync.Mutex
	// client is created on first use and reused.
	client *gctts.Client
	// inFlight holds cancel functions of utterances being spoken.
	inFlight map[uint64]context.CancelFunc
	// nextID numbers utterances for inFlight.
	nextID uint64
}

// NewGoogle creates the adapter. No connection is made until the first call.
func NewGoogle(cfg Config, player StreamPlayer) *Google {
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = "en-US"
	}

	return &Google{
		cfg:      cfg,
		player:   player,
		inFlight: make(map[uint64]context.CancelFunc),
	}
}

// Speak synthesizes u and plays it, blocking until done or cancelled.
func (g *Google) Speak(ctx context.Context, u capability.Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return errEmptyText
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	id := g.track(cancel)
	defer g.untrack(id)

	client, err := g.dial(ctx)
	if err != nil {
		return err
	}

	voice := u.Voice
	if voice == "" {
		voice = g.cfg.DefaultVoice
	}

	audioConfig := &ttspb.AudioConfig{
		AudioEncoding: ttspb.AudioEncoding_MP3,
		SpeakingRate:  SpeakingRate(u.Rate),
		Pitch:         PitchSemitones(u.Pitch),
		VolumeGainDb:  VolumeGainDB(u.Volume),
	}
	if profile := strings.TrimSpace(g.cfg.EffectsProfileID); profile != "" {
		audioConfig.EffectsProfileId = []string{profile}
	}

	request := &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: u.Text}},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: g.cfg.Language,
			Name:         voice,
		},
		AudioConfig: audioConfig,
	}

	started := time.Now()

	response, err := client.SynthesizeSpeech(ctx, request)
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}

	logger.DebugKV(ctx, "Speech synthesized", "voice", voice, "took", time.Since(started).String())

	// Loudness is already applied through VolumeGainDb.
	return g.player.PlayStream(ctx, "mp3", io.NopCloser(bytes.NewReader(response.GetAudioContent())), 1)
}

// Voices lists the provider voices for the configured language.
func (g *Google) Voices(ctx context.Context) ([]capability.Voice, error) {
	client, err := g.dial(ctx)
	if err != nil {
		return nil, err
	}

	response, err := client.ListVoices(ctx, &ttspb.ListVoicesRequest{LanguageCode: g.cfg.Language})
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}

	voices := make([]capability.Voice, 0, len(response.GetVoices()))
	for _, v := range response.GetVoices() {
		lang := g.cfg.Language
		if codes := v.GetLanguageCodes(); len(codes) > 0 {
			lang = codes[0]
		}

		voices = append(voices, capability.Voice{
			Name:    v.GetName(),
			Lang:    lang,
			Default: v.GetName() == g.cfg.DefaultVoice,
		})
	}

	return voices, nil
}

// CancelAll stops every utterance in progress.
func (g *Google) CancelAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, cancel := range g.inFlight {
		cancel()
		delete(g.inFlight, id)
	}
}

// Close releases the API client.
func (g *Google) Close() error {
	g.CancelAll()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		return nil
	}

	err := g.client.Close()
	g.client = nil

	return err
}

// dial returns the shared client, creating it on first use.
func (g *Google) dial(ctx context.Context) (*gctts.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	// The client outlives this call, so it must not inherit its cancellation.
	client, err := gctts.NewClient(context.WithoutCancel(ctx))
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}

	g.client = client

	return client, nil
}

// track registers cancel so CancelAll can reach it.
func (g *Google) track(cancel context.CancelFunc) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	g.inFlight[g.nextID] = cancel

	return g.nextID
}

// untrack forgets a finished utterance.
func (g *Google) untrack(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inFlight, id)
}

// SpeakingRate maps a 0.1-10 rate onto the provider range; zero means natural speed.
func SpeakingRate(rate float64) float64 {
	if rate <= 0 {
		return 1
	}

	return min(max(rate, minSpeakingRate), maxSpeakingRate)
}

// PitchSemitones maps a 0-2 pitch (1 natural) onto -20..20 semitones.
func PitchSemitones(pitch float64) float64 {
	if pitch <= 0 {
		return 0
	}

	return min(max((pitch-1)*maxSemitones, -maxSemitones), maxSemitones)
}

// VolumeGainDB maps a linear 0-1 volume onto decibels of gain.
func VolumeGainDB(volume float64) float64 {
	if volume <= 0 {
		return minGainDB
	}

	return min(max(20*math.Log10(volume), minGainDB), maxGainDB)
}
