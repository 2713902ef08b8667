package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
)

// explicitTime finds "H:MM" with an optional AM/PM suffix anywhere in a token,
// so "8:00 AM daily" and "after lunch 1:30 PM" resolve too.
var explicitTime = regexp.MustCompile(`\b(\d+):(\d+)\s*([AaPp][Mm]\b)?`)

// namedSlots maps the fixed slot vocabulary to times of day.
//
//nolint:gochecknoglobals // Read-only lookup table.
var namedSlots = map[string]domain.TimeSpec{
	"morning":   {Hour: 8},
	"afternoon": {Hour: 14},
	"evening":   {Hour: 20},
	"night":     {Hour: 22},
}

// Parse resolves every comma-separated token of descriptor in input order.
// Unrecognized tokens are skipped, duplicates are kept.
func Parse(descriptor string) []domain.TimeSpec {
	if strings.TrimSpace(descriptor) == "" {
		return nil
	}

	tokens := strings.Split(descriptor, ",")
	specs := make([]domain.TimeSpec, 0, len(tokens))

	for _, token := range tokens {
		spec, ok := ParseToken(token)
		if !ok {
			continue
		}

		specs = append(specs, spec)
	}

	return specs
}

// ParseToken resolves a single token, first as an explicit time, then as a named slot.
func ParseToken(token string) (domain.TimeSpec, bool) {
	token = strings.TrimSpace(token)

	if spec, ok := parseExplicit(token); ok {
		return spec, true
	}

	spec, ok := namedSlots[strings.ToLower(token)]

	return spec, ok
}

// parseExplicit converts "H:MM [AM|PM]" to a 24-hour spec.
func parseExplicit(token string) (domain.TimeSpec, bool) {
	match := explicitTime.FindStringSubmatch(token)
	if match == nil {
		return domain.TimeSpec{}, false
	}

	hour, err := strconv.Atoi(match[1])
	if err != nil {
		return domain.TimeSpec{}, false
	}

	minute, err := strconv.Atoi(match[2])
	if err != nil {
		return domain.TimeSpec{}, false
	}

	switch strings.ToUpper(match[3]) {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 {
		return domain.TimeSpec{}, false
	}

	return domain.TimeSpec{Hour: hour, Minute: minute}, true
}

// Format renders a spec in 12-hour form, e.g. "9:30 PM".
func Format(spec domain.TimeSpec) string {
	period := "AM"
	hour := spec.Hour

	if hour >= 12 {
		period = "PM"
	}

	switch {
	case hour == 0:
		hour = 12
	case hour > 12:
		hour -= 12
	}

	return fmt.Sprintf("%d:%02d %s", hour, spec.Minute, period)
}
