package schedule

import (
	"time"

	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
)

// NextTrigger returns the next instant spec fires at, strictly after now.
//
// In test mode a spec flagged TestMode fires after its Delay (DefaultTestDelay
// when unset). Otherwise the spec fires today at Hour:Minute:00 in now's
// location, or tomorrow when that instant is not after now. No DST correction
// is applied beyond what time.Date does for the local zone.
func NextTrigger(spec domain.TimeSpec, now time.Time, testMode bool) time.Time {
	if testMode && spec.TestMode {
		delay := spec.Delay
		if delay <= 0 {
			delay = domain.DefaultTestDelay
		}

		return now.Add(delay)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), spec.Hour, spec.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// Delay returns how long to wait from now until NextTrigger.
func Delay(spec domain.TimeSpec, now time.Time, testMode bool) time.Duration {
	return NextTrigger(spec, now, testMode).Sub(now)
}
