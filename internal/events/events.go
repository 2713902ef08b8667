// Package events describes what the scheduler reports to the outside world
// and defines the Publisher that carries those reports.
package events

import (
	"context"
	"encoding/json"
	"time"

	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
)

// Kind names an event type.
type Kind string

const (
	// KindArmed is sent for every timer armed by Setup or a re-arm.
	KindArmed Kind = "armed"
	// KindFired is sent when a timer fired an alarm.
	KindFired Kind = "fired"
	// KindCleared is sent when an owner's timers and alarms were cleared.
	KindCleared Kind = "cleared"
	// KindRevalidated is sent when a drifted timer was re-armed.
	KindRevalidated Kind = "revalidated"
)

// Event is one scheduler report.
type Event struct {
	Kind        Kind
	OwnerID     string
	Label       string
	Spec        domain.TimeSpec
	TestMode    bool
	At          time.Time
	NextTrigger time.Time
	// Count is the number of entries removed, for KindCleared.
	Count int
}

// Publisher sends events to an external sink.
// Publish errors are reported but never stop scheduling.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Payload is the JSON document published for an event.
type Payload struct {
	Kind        Kind   `json:"kind"`
	OwnerID     string `json:"owner_id"`
	Label       string `json:"label,omitempty"`
	Time        string `json:"time,omitempty"`
	TestMode    bool   `json:"test_mode,omitempty"`
	At          string `json:"at"`
	NextTrigger string `json:"next_trigger,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// FormatPayload renders e as JSON with RFC 3339 timestamps.
func FormatPayload(e Event) ([]byte, error) {
	payload := Payload{
		Kind:     e.Kind,
		OwnerID:  e.OwnerID,
		Label:    e.Label,
		TestMode: e.TestMode,
		At:       e.At.Format(time.RFC3339),
		Count:    e.Count,
	}

	if e.Kind != KindCleared {
		payload.Time = e.Spec.String()
	}

	if !e.NextTrigger.IsZero() {
		payload.NextTrigger = e.NextTrigger.Format(time.RFC3339)
	}

	return json.Marshal(payload)
}

// Noop discards events.
type Noop struct{}

// Publish discards e.
func (Noop) Publish(context.Context, Event) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
