package reminder

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTestDelay is the delay used by test-mode specs without an explicit one.
	DefaultTestDelay = 10 * time.Second
	// TestOwnerID owns the one-shot reminders armed by the test command.
	TestOwnerID = "test-reminder"
	// TestLabel is the medication name of a test reminder without a label.
	TestLabel = "Test Medication"
	// TestInstructions are the instructions of a test reminder without any.
	TestInstructions = "This is a test reminder"
)

// TimeSpec is a daily time of day, or a one-shot test trigger.
type TimeSpec struct {
	// Hour is the hour of the day in 24h form, 0-23.
	Hour int `yaml:"hour"`
	// Minute is the minute of the hour, 0-59.
	Minute int `yaml:"minute"`
	// TestMode marks a one-shot spec that fires after Delay instead of at Hour:Minute.
	TestMode bool `yaml:"test_mode,omitempty"`
	// Delay overrides the test-mode delay; zero means DefaultTestDelay.
	Delay time.Duration `yaml:"delay,omitempty"`
}

// String renders the spec as HH:MM.
func (s TimeSpec) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// Item is a tracked, schedule-bearing entity such as a prescription.
type Item struct {
	// ID identifies the owner of every timer and alarm armed for the item.
	ID string `yaml:"id"`
	// ReminderEnabled turns reminders for the item on or off.
	ReminderEnabled bool `yaml:"reminder_enabled"`
	// Schedule is the raw schedule descriptor, e.g. "Morning, 9:30 PM".
	Schedule string `yaml:"schedule"`
	// TabletNames lists the medication names spoken in the reminder.
	TabletNames []string `yaml:"tablet_names"`
	// Instructions are appended to the spoken and notified reminder text.
	Instructions string `yaml:"instructions,omitempty"`
	// Dosage is informational and only shown by the CLI.
	Dosage string `yaml:"dosage,omitempty"`
	// VoiceOptions override the daemon-wide voice defaults for this item.
	VoiceOptions *VoiceOptions `yaml:"voice_options,omitempty"`
	// ReminderMessage replaces the default spoken template when set.
	ReminderMessage string `yaml:"reminder_message,omitempty"`
	// TestSchedule bypasses Schedule parsing and makes every timer one-shot.
	TestSchedule []TimeSpec `yaml:"-"`
}

// Label joins the tablet names into the text used in reminders.
func (i *Item) Label() string {
	return strings.Join(i.TabletNames, ", ")
}

// IsTest reports whether the item carries a test-mode schedule override.
func (i *Item) IsTest() bool {
	return len(i.TestSchedule) > 0
}

// Clone returns a deep copy so timers never observe later caller edits.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}

	cloned := *i
	cloned.TabletNames = append([]string(nil), i.TabletNames...)
	cloned.TestSchedule = append([]TimeSpec(nil), i.TestSchedule...)

	if i.VoiceOptions != nil {
		options := *i.VoiceOptions
		cloned.VoiceOptions = &options
	}

	return &cloned
}

// TimerInfo is a read-only view of an armed timer.
type TimerInfo struct {
	// OwnerID is the item the timer belongs to.
	OwnerID string
	// Label is the item label captured when the timer was armed.
	Label string
	// Spec is the time of day the timer fires at.
	Spec TimeSpec
	// NextTrigger is the wall-clock instant of the next firing.
	NextTrigger time.Time
	// Remaining is the time left until NextTrigger when the view was taken.
	Remaining time.Duration
}

// FiredAlarm is one row of the fired-alarm history.
type FiredAlarm struct {
	// OwnerID is the item the alarm was fired for.
	OwnerID string
	// Label is the medication label spoken in the alarm.
	Label string
	// Spec is the time of day that triggered the alarm.
	Spec TimeSpec
	// FiredAt is when the alarm started.
	FiredAt time.Time
	// Delivered is false when no audio or speech capability could play it.
	Delivered bool
}

// ReloadSummary reports what re-reading the items file changed.
type ReloadSummary struct {
	// Items is the number of items read.
	Items int
	// Armed is the number of timers armed for enabled items.
	Armed int
	// Cleared is the number of timers and alarms removed.
	Cleared int
}
