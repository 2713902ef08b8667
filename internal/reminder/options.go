package reminder

import (
	"context"
	"time"

	"github.com/oshokin/med-reminder/internal/alarm"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
	"github.com/oshokin/med-reminder/internal/events"
)

const (
	// DefaultAlarmGrace is how long a fired alarm stays in the registry.
	DefaultAlarmGrace = 2 * time.Minute
	// DefaultDriftTolerance is the wall-clock drift Revalidate ignores.
	DefaultDriftTolerance = time.Minute
	// firingQueueSize buffers timer callbacks while Run handles a firing.
	firingQueueSize = 16
)

// Firer starts an alarm. *alarm.Player implements it.
type Firer interface {
	Fire(ctx context.Context, label, instructions string, opts alarm.Options) *alarm.Playback
}

// HistoryRecorder stores fired alarms.
type HistoryRecorder interface {
	Record(ctx context.Context, fired domain.FiredAlarm) error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDefaults sets the voice options every item's options are merged over.
func WithDefaults(defaults domain.VoiceOptions) Option {
	return func(s *Scheduler) {
		s.defaults = defaults
	}
}

// WithAlarmGrace sets how long a fired alarm stays in the registry.
func WithAlarmGrace(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.alarmGrace = d
		}
	}
}

// WithDriftTolerance sets the drift Revalidate ignores.
func WithDriftTolerance(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.driftTolerance = d
		}
	}
}

// WithClock replaces the wall clock used to compute trigger instants.
// Timer delays still elapse on the monotonic clock, and Revalidate compares
// now against the real clock, so any offset from time.Now reads as drift.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHistory records every fired alarm in r.
func WithHistory(r HistoryRecorder) Option {
	return func(s *Scheduler) {
		s.history = r
	}
}

// WithEvents publishes scheduler events to p.
func WithEvents(p events.Publisher) Option {
	return func(s *Scheduler) {
		if p != nil {
			s.events = p
		}
	}
}

// WithMetrics reports registry gauges and counters to m.
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}
