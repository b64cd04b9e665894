package flight

import (
	"strconv"
	"strings"
)

// Night-rate window: trips picking up from 23:00 up to but not
// including 07:00 cost extra with every vehicle contractor.
const (
	surchargeFromHour  = 23
	surchargeUntilHour = 7
)

// IsMidnightSurchargeTime reports whether an HH:MM pickup time
// falls in the night-rate window.  Malformed input is not
// surcharged; the caller has bigger problems than the rate.
func IsMidnightSurchargeTime(hhmm string) bool {
	hour, ok := parseHour(hhmm)
	if !ok {
		return false
	}
	return hour >= surchargeFromHour || hour < surchargeUntilHour
}

func parseHour(hhmm string) (int, bool) {
	h, _, ok := parseClock(hhmm)
	return h, ok
}

// parseClock splits "HH:MM" into components, rejecting anything
// that is not a valid wall-clock time.
func parseClock(hhmm string) (hour, minute int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// ClockMinutes converts "HH:MM" to minutes since midnight.
func ClockMinutes(hhmm string) (int, bool) {
	h, m, ok := parseClock(hhmm)
	if !ok {
		return 0, false
	}
	return h*60 + m, true
}
