package server

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/oshokin/med-reminder/internal/alarm"
	"github.com/oshokin/med-reminder/internal/capability"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
	"github.com/oshokin/med-reminder/internal/logger"
	"github.com/oshokin/med-reminder/internal/repository/items"
)

// Scheduler is the part of the reminder registry the service drives.
type Scheduler interface {
	Setup(ctx context.Context, item *domain.Item) int
	Clear(ctx context.Context, ownerID string) int
	ListActive(ownerID string) []domain.TimerInfo
	ListAll() []domain.TimerInfo
	Owners() []string
}

// VoiceTester speaks test messages and lists voices.
type VoiceTester interface {
	TestVoice(ctx context.Context, opts alarm.Options) bool
	Voices(ctx context.Context) ([]capability.Voice, error)
}

// HistoryReader lists fired alarms.
type HistoryReader interface {
	Recent(ctx context.Context, ownerID string, limit int) ([]domain.FiredAlarm, error)
}

// service keeps the reminder registry in sync with the items file.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// scheduler owns the timers and alarms.
	scheduler Scheduler
	// items is the source of tracked items.
	items items.Repository
	// voice speaks test messages.
	voice VoiceTester
	// history lists fired alarms.
	history HistoryReader
	// defaults are merged under test message voice options.
	defaults domain.VoiceOptions

	// mu serializes reloads and guards applied.
	mu sync.Mutex
	// applied holds the items armed by the last reload, by id.
	applied map[string]*domain.Item
}

// newService creates a service driving scheduler from repository.
func newService(
	scheduler Scheduler,
	repository items.Repository,
	voice VoiceTester,
	history HistoryReader,
	defaults domain.VoiceOptions,
) *service {
	return &service{
		scheduler: scheduler,
		items:     repository,
		voice:     voice,
		history:   history,
		defaults:  defaults,
		applied:   make(map[string]*domain.Item),
	}
}

// ListActive returns the armed timers of ownerID, or all of them.
func (s *service) ListActive(_ context.Context, ownerID string) []domain.TimerInfo {
	if ownerID == "" {
		return s.scheduler.ListAll()
	}

	return s.scheduler.ListActive(ownerID)
}

// Clear stops the timers and alarms of ownerID.
func (s *service) Clear(ctx context.Context, actor *domain.Actor, ownerID string) int {
	s.mu.Lock()
	delete(s.applied, ownerID)
	s.mu.Unlock()

	removed := s.scheduler.Clear(ctx, ownerID)

	logger.InfoKV(ctx, "Reminders cleared on request", "owner", ownerID, "removed", removed, "actor", actor.String())

	return removed
}

// Setup re-arms ownerID from the items file.
func (s *service) Setup(ctx context.Context, actor *domain.Actor, ownerID string) (int, error) {
	item, err := s.items.Get(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("get item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	armed := s.scheduler.Setup(ctx, item)
	s.applied[item.ID] = item

	logger.InfoKV(ctx, "Reminders set up on request", "owner", ownerID, "armed", armed, "actor", actor.String())

	return armed, nil
}

// Reload re-reads the items file. Changed enabled items are re-armed,
// disabled and removed items are cleared, unchanged items keep their
// timers and sounding alarms. A missing file clears every item.
func (s *service) Reload(ctx context.Context, actor *domain.Actor) (domain.ReloadSummary, error) {
	list, err := s.items.Load(ctx)

	switch {
	case err == nil:
	case errors.Is(err, items.ErrNotFound):
		logger.Warn(ctx, "Items file not found, no reminders armed")
	default:
		return domain.ReloadSummary{}, fmt.Errorf("load items: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := domain.ReloadSummary{Items: len(list)}
	seen := make(map[string]struct{}, len(list))

	for _, item := range list {
		seen[item.ID] = struct{}{}

		if !item.ReminderEnabled {
			summary.Cleared += s.scheduler.Clear(ctx, item.ID)
			delete(s.applied, item.ID)

			continue
		}

		previous, ok := s.applied[item.ID]
		if ok && reflect.DeepEqual(previous, item) && len(s.scheduler.ListActive(item.ID)) > 0 {
			continue
		}

		summary.Armed += s.scheduler.Setup(ctx, item)
		s.applied[item.ID] = item
	}

	for _, owner := range s.scheduler.Owners() {
		if _, ok := seen[owner]; ok || owner == domain.TestOwnerID {
			continue
		}

		summary.Cleared += s.scheduler.Clear(ctx, owner)
		delete(s.applied, owner)
	}

	for id := range s.applied {
		if _, ok := seen[id]; !ok {
			delete(s.applied, id)
		}
	}

	logger.InfoKV(ctx, "Items reloaded",
		"items", summary.Items,
		"armed", summary.Armed,
		"cleared", summary.Cleared,
		"actor", actor.String())

	return summary, nil
}

// Test arms a one-shot test reminder and returns its timers.
func (s *service) Test(ctx context.Context, actor *domain.Actor, item *domain.Item) []domain.TimerInfo {
	armed := s.scheduler.Setup(ctx, item)

	logger.InfoKV(ctx, "Test reminder armed", "armed", armed, "actor", actor.String())

	return s.scheduler.ListActive(item.ID)
}

// Voices lists the speech voices.
func (s *service) Voices(ctx context.Context) ([]capability.Voice, error) {
	voices, err := s.voice.Voices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}

	slices.SortStableFunc(voices, func(a, b capability.Voice) int {
		return cmp.Or(cmp.Compare(a.Lang, b.Lang), cmp.Compare(a.Name, b.Name))
	})

	return voices, nil
}

// Say speaks text with voice merged over the defaults.
func (s *service) Say(ctx context.Context, text string, voice domain.VoiceOptions) bool {
	return s.voice.TestVoice(ctx, alarm.Options{
		VoiceOptions:  s.defaults.Merge(&voice),
		CustomMessage: text,
	})
}

// History lists recently fired alarms.
func (s *service) History(ctx context.Context, ownerID string, limit int) ([]domain.FiredAlarm, error) {
	fired, err := s.history.Recent(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	return fired, nil
}
