package reminder

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/med-reminder/internal/alarm"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
	"github.com/oshokin/med-reminder/internal/events"
	"github.com/oshokin/med-reminder/internal/logger"
	"github.com/oshokin/med-reminder/internal/schedule"
)

// timerKey identifies a timer. At most one timer exists per key.
type timerKey struct {
	owner  string
	hour   int
	minute int
}

// activeTimer is one armed one-shot timer.
type activeTimer struct {
	key  timerKey
	item *domain.Item
	spec domain.TimeSpec
	// testMode timers never re-arm.
	testMode bool
	// generation ties the timer to the Setup that armed it.
	generation uint64
	// nextTrigger is the wall-clock firing instant.
	nextTrigger time.Time
	// armedAt carries the monotonic reading delay is measured from.
	armedAt time.Time
	delay   time.Duration
	handle  *time.Timer
}

// alarmInstance is a fired alarm kept until its grace window ends.
type alarmInstance struct {
	id        string
	owner     string
	playback  *alarm.Playback
	createdAt time.Time
	expiry    *time.Timer
}

// Scheduler is the registry of armed timers and in-flight alarms.
// All methods are safe for concurrent use. Firings are handled by Run.
type Scheduler struct {
	player         Firer
	defaults       domain.VoiceOptions
	alarmGrace     time.Duration
	driftTolerance time.Duration
	now            func() time.Time
	history        HistoryRecorder
	events         events.Publisher
	metrics        *Metrics

	// fired carries timers whose delay elapsed to the Run loop.
	fired chan *activeTimer
	// done is closed by Close.
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	timers map[timerKey]*activeTimer
	alarms map[string]*alarmInstance
	// generations holds the generation of each owner's latest Setup.
	// Clear deletes the entry, so pending re-arms of that owner are dropped.
	generations map[string]uint64
	sequence    uint64
	closed      bool
}

// New creates a scheduler that fires alarms through player.
func New(player Firer, options ...Option) *Scheduler {
	s := &Scheduler{
		player:         player,
		alarmGrace:     DefaultAlarmGrace,
		driftTolerance: DefaultDriftTolerance,
		now:            time.Now,
		events:         events.Noop{},
		fired:          make(chan *activeTimer, firingQueueSize),
		done:           make(chan struct{}),
		timers:         make(map[timerKey]*activeTimer),
		alarms:         make(map[string]*alarmInstance),
		generations:    make(map[string]uint64),
	}

	for _, option := range options {
		option(s)
	}

	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}

	return s
}

// wallNow returns the current wall-clock time without a monotonic reading,
// so differences computed from it follow clock changes.
func (s *Scheduler) wallNow() time.Time {
	return s.now().Round(0)
}

// Setup replaces the item's timers and alarms with one timer per time of day
// in its schedule and returns how many were armed. Disabled items, items
// without an id and schedules that parse to nothing arm nothing.
func (s *Scheduler) Setup(ctx context.Context, item *domain.Item) int {
	if item == nil || item.ID == "" || !item.ReminderEnabled {
		return 0
	}

	item = item.Clone()
	ctx = logger.WithKV(ctx, "owner", item.ID)

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return 0
	}

	s.sequence++
	generation := s.sequence
	s.generations[item.ID] = generation

	s.clearLocked(item.ID, true)
	armed := s.armLocked(ctx, item, generation)
	s.updateGaugesLocked()
	s.mu.Unlock()

	s.publishArmed(ctx, armed)

	return len(armed)
}

// armLocked arms one timer per resolved spec of item and returns them.
func (s *Scheduler) armLocked(ctx context.Context, item *domain.Item, generation uint64) []*activeTimer {
	testMode := item.IsTest()

	specs := item.TestSchedule
	if !testMode {
		specs = schedule.Parse(item.Schedule)
	}

	if len(specs) == 0 {
		logger.WarnKV(ctx, "Schedule has no valid times, nothing armed", "schedule", item.Schedule)

		return nil
	}

	now := s.wallNow()
	armed := make([]*activeTimer, 0, len(specs))

	for _, spec := range specs {
		armed = append(armed, s.armSpecLocked(ctx, item, spec, testMode, generation, now))
	}

	return armed
}

// armSpecLocked arms the timer of one spec, replacing the timer of its key.
func (s *Scheduler) armSpecLocked(
	ctx context.Context,
	item *domain.Item,
	spec domain.TimeSpec,
	testMode bool,
	generation uint64,
	now time.Time,
) *activeTimer {
	next := schedule.NextTrigger(spec, now, testMode)
	key := timerKey{owner: item.ID, hour: spec.Hour, minute: spec.Minute}

	if previous, ok := s.timers[key]; ok {
		previous.handle.Stop()
	}

	t := &activeTimer{
		key:         key,
		item:        item,
		spec:        spec,
		testMode:    testMode,
		generation:  generation,
		nextTrigger: next,
		armedAt:     time.Now(),
		delay:       next.Sub(now),
	}
	t.handle = time.AfterFunc(t.delay, func() { s.enqueue(t) })
	s.timers[key] = t

	logger.InfoKV(ctx, "Reminder armed",
		"label", item.Label(),
		"time", schedule.Format(spec),
		"test_mode", testMode,
		"in", t.delay.Round(time.Second).String())

	return t
}

// enqueue hands a timer whose delay elapsed to the Run loop.
func (s *Scheduler) enqueue(t *activeTimer) {
	select {
	case s.fired <- t:
	case <-s.done:
	}
}

// Clear stops and removes every timer and in-flight alarm of ownerID and
// returns how many entries were removed.
func (s *Scheduler) Clear(ctx context.Context, ownerID string) int {
	if ownerID == "" {
		return 0
	}

	s.mu.Lock()
	removed := s.clearLocked(ownerID, true)
	delete(s.generations, ownerID)
	s.updateGaugesLocked()
	s.mu.Unlock()

	if removed == 0 {
		return 0
	}

	s.metrics.cleared.Add(float64(removed))
	logger.InfoKV(ctx, "Reminders cleared", "owner", ownerID, "removed", removed)
	s.publish(ctx, events.Event{
		Kind:    events.KindCleared,
		OwnerID: ownerID,
		At:      s.wallNow(),
		Count:   removed,
	})

	return removed
}

// clearLocked removes the owner's timers and, when withAlarms is set,
// stops and removes its alarms too.
func (s *Scheduler) clearLocked(ownerID string, withAlarms bool) int {
	removed := 0

	for key, t := range s.timers {
		if key.owner != ownerID {
			continue
		}

		t.handle.Stop()
		delete(s.timers, key)

		removed++
	}

	if !withAlarms {
		return removed
	}

	for id, a := range s.alarms {
		if a.owner != ownerID {
			continue
		}

		a.playback.Stop()
		a.expiry.Stop()
		delete(s.alarms, id)

		removed++
	}

	return removed
}

// ListActive returns the owner's armed timers ordered by next trigger.
func (s *Scheduler) ListActive(ownerID string) []domain.TimerInfo {
	if ownerID == "" {
		return nil
	}

	return s.list(func(key timerKey) bool { return key.owner == ownerID })
}

// ListAll returns every armed timer ordered by next trigger.
func (s *Scheduler) ListAll() []domain.TimerInfo {
	return s.list(func(timerKey) bool { return true })
}

func (s *Scheduler) list(match func(timerKey) bool) []domain.TimerInfo {
	now := s.wallNow()

	s.mu.Lock()
	defer s.mu.Unlock()

	var infos []domain.TimerInfo

	for key, t := range s.timers {
		if !match(key) {
			continue
		}

		infos = append(infos, domain.TimerInfo{
			OwnerID:     key.owner,
			Label:       t.item.Label(),
			Spec:        t.spec,
			NextTrigger: t.nextTrigger,
			Remaining:   t.nextTrigger.Sub(now),
		})
	}

	slices.SortFunc(infos, func(a, b domain.TimerInfo) int {
		if c := a.NextTrigger.Compare(b.NextTrigger); c != 0 {
			return c
		}

		return cmp.Compare(a.OwnerID, b.OwnerID)
	})

	return infos
}

// Owners returns the ids of items with armed timers or in-flight alarms.
func (s *Scheduler) Owners() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.timers))

	for key := range s.timers {
		seen[key.owner] = struct{}{}
	}

	for _, a := range s.alarms {
		seen[a.owner] = struct{}{}
	}

	owners := make([]string, 0, len(seen))
	for owner := range seen {
		owners = append(owners, owner)
	}

	slices.Sort(owners)

	return owners
}

// InFlight returns the number of fired alarms still inside their grace window.
func (s *Scheduler) InFlight(ownerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0

	for _, a := range s.alarms {
		if ownerID == "" || a.owner == ownerID {
			n++
		}
	}

	return n
}

// Revalidate re-arms timers whose wall-clock remaining time drifted from
// their monotonic remaining time by more than the drift tolerance, which
// happens after the host clock was changed or the host slept. Overdue
// timers fire immediately. It returns the number of re-armed timers.
func (s *Scheduler) Revalidate(ctx context.Context) int {
	now := s.wallNow()

	s.mu.Lock()

	var rearmed []*activeTimer

	for _, t := range s.timers {
		monotonicRemaining := t.delay - time.Since(t.armedAt)
		wallRemaining := t.nextTrigger.Sub(now)

		drift := wallRemaining - monotonicRemaining
		if drift < 0 {
			drift = -drift
		}

		if drift <= s.driftTolerance {
			continue
		}

		// Already fired and waiting for the Run loop.
		if !t.handle.Stop() {
			continue
		}

		t.delay = max(wallRemaining, 0)
		t.armedAt = time.Now()
		t.handle = time.AfterFunc(t.delay, func() { s.enqueue(t) })

		logger.WarnKV(ctx, "Clock drift detected, reminder re-armed",
			"owner", t.key.owner,
			"time", schedule.Format(t.spec),
			"drift", drift.Round(time.Second).String())

		rearmed = append(rearmed, t)
	}

	s.mu.Unlock()

	for _, t := range rearmed {
		s.metrics.revalidated.Inc()
		s.publish(ctx, events.Event{
			Kind:        events.KindRevalidated,
			OwnerID:     t.key.owner,
			Label:       t.item.Label(),
			Spec:        t.spec,
			TestMode:    t.testMode,
			At:          now,
			NextTrigger: t.nextTrigger,
		})
	}

	return len(rearmed)
}

// Run handles firings until ctx is done or the scheduler is closed.
// Alarms are played with ctx, so cancelling it silences them.
// The scheduler is closed when Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "scheduler")

	defer s.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case t := <-s.fired:
			s.handleFiring(ctx, t)
		}
	}
}

// handleFiring fires the alarm of t and re-arms its item for the next day.
// Firings of timers that were cleared or replaced are dropped.
func (s *Scheduler) handleFiring(ctx context.Context, t *activeTimer) {
	ctx = logger.WithKV(ctx, "owner", t.key.owner)

	s.mu.Lock()

	if current, ok := s.timers[t.key]; !ok || current != t {
		s.mu.Unlock()
		logger.DebugKV(ctx, "Dropping firing of a removed timer", "time", t.spec.String())

		return
	}

	delete(s.timers, t.key)
	s.updateGaugesLocked()
	s.mu.Unlock()

	item := t.item
	firedAt := s.wallNow()

	logger.InfoKV(ctx, "Reminder fired", "label", item.Label(), "time", schedule.Format(t.spec))

	playback := s.player.Fire(ctx, item.Label(), item.Instructions, alarm.Options{
		VoiceOptions:  s.defaults.Merge(item.VoiceOptions),
		CustomMessage: item.ReminderMessage,
	})

	s.keepAlarm(ctx, t, playback)
	s.metrics.observeFired(t.testMode, playback != nil)

	fired := domain.FiredAlarm{
		OwnerID:   item.ID,
		Label:     item.Label(),
		Spec:      t.spec,
		FiredAt:   firedAt,
		Delivered: playback != nil,
	}

	if s.history != nil {
		if err := s.history.Record(ctx, fired); err != nil {
			logger.WarnKV(ctx, "Recording fired alarm failed", "error", err)
		}
	}

	s.publish(ctx, events.Event{
		Kind:     events.KindFired,
		OwnerID:  item.ID,
		Label:    item.Label(),
		Spec:     t.spec,
		TestMode: t.testMode,
		At:       firedAt,
	})

	if !t.testMode {
		s.rearm(ctx, t)
	}
}

// keepAlarm registers playback until the grace window ends. The playback is
// stopped instead when the owner was cleared or set up again meanwhile.
func (s *Scheduler) keepAlarm(ctx context.Context, t *activeTimer, playback *alarm.Playback) {
	if playback == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.generations[t.key.owner] != t.generation {
		playback.Stop()

		return
	}

	instance := &alarmInstance{
		id:        uuid.NewString(),
		owner:     t.key.owner,
		playback:  playback,
		createdAt: playback.StartedAt(),
	}
	instance.expiry = time.AfterFunc(s.alarmGrace, func() { s.expireAlarm(instance.id) })
	s.alarms[instance.id] = instance
	s.updateGaugesLocked()

	logger.DebugKV(ctx, "Alarm registered", "alarm_id", instance.id)
}

// expireAlarm drops an alarm whose grace window ended.
func (s *Scheduler) expireAlarm(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.alarms, id)
	s.updateGaugesLocked()
}

// rearm arms the next occurrence of the fired time of day. The item's other
// timers are left alone, their firings may already be queued. Alarms keep sounding.
func (s *Scheduler) rearm(ctx context.Context, fired *activeTimer) {
	s.mu.Lock()

	if s.closed || s.generations[fired.key.owner] != fired.generation {
		s.mu.Unlock()

		return
	}

	t := s.armSpecLocked(ctx, fired.item, fired.spec, false, fired.generation, s.wallNow())
	s.updateGaugesLocked()
	s.mu.Unlock()

	s.publishArmed(ctx, []*activeTimer{t})
}

// Close stops every timer and alarm. Later Setup calls arm nothing.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()

		s.closed = true

		for key, t := range s.timers {
			t.handle.Stop()
			delete(s.timers, key)
		}

		for id, a := range s.alarms {
			a.playback.Stop()
			a.expiry.Stop()
			delete(s.alarms, id)
		}

		clear(s.generations)
		s.updateGaugesLocked()
	})
}

func (s *Scheduler) updateGaugesLocked() {
	s.metrics.armedTimers.Set(float64(len(s.timers)))
	s.metrics.inFlightAlarms.Set(float64(len(s.alarms)))
}

func (s *Scheduler) publishArmed(ctx context.Context, armed []*activeTimer) {
	for _, t := range armed {
		s.publish(ctx, events.Event{
			Kind:        events.KindArmed,
			OwnerID:     t.key.owner,
			Label:       t.item.Label(),
			Spec:        t.spec,
			TestMode:    t.testMode,
			At:          t.nextTrigger.Add(-t.delay),
			NextTrigger: t.nextTrigger,
		})
	}
}

func (s *Scheduler) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		logger.WarnKV(ctx, "Publishing event failed", "kind", string(e.Kind), "error", err)
	}
}
