// Package timeslot validates teacher time-range strings and detects
// double-booked slots. All functions are pure; persistence decisions
// stay with the caller.
package timeslot

import (
	"fmt"
	"regexp"
	"strconv"
)

// Operating window boundaries, inclusive. Classes run 07:00 to 17:00
// on a 30-minute grid.
const (
	OpenHour  = 7
	CloseHour = 17

	slotMinutes = 30
)

var rangePattern = regexp.MustCompile(`^(\d{2}):(\d{2})-(\d{2}):(\d{2})$`)

// InvalidTimeError reports a time-range string that violates the grammar.
type InvalidTimeError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time range %q: %s", e.Input, e.Reason)
}

func invalid(input, reason string) error {
	return &InvalidTimeError{Input: input, Reason: reason}
}

// Expand validates a "HH:MM-HH:MM" range and returns the 30-minute slot
// labels it covers, from the start label through the end label inclusive.
// "08:00-09:00" therefore yields "08:00", "08:30", "09:00". The inclusive
// end label is load-bearing: conflict detection treats two ranges that
// merely touch (one ends where the next begins) as overlapping.
func Expand(timeRange string) ([]string, error) {
	m := rangePattern.FindStringSubmatch(timeRange)
	if m == nil {
		return nil, invalid(timeRange, "expected HH:MM-HH:MM")
	}

	startHour, _ := strconv.Atoi(m[1])
	startMinute, _ := strconv.Atoi(m[2])
	endHour, _ := strconv.Atoi(m[3])
	endMinute, _ := strconv.Atoi(m[4])

	for _, p := range []struct {
		label        string
		hour, minute int
	}{
		{"start", startHour, startMinute},
		{"end", endHour, endMinute},
	} {
		if p.hour > 23 || p.minute > 59 {
			return nil, invalid(timeRange, fmt.Sprintf("%s is not a valid clock time", p.label))
		}
		if p.hour < OpenHour || p.hour > CloseHour {
			return nil, invalid(timeRange, fmt.Sprintf("%s is outside operating hours (07:00-17:00)", p.label))
		}
		if p.hour == CloseHour && p.minute != 0 {
			return nil, invalid(timeRange, fmt.Sprintf("%s is past closing time 17:00", p.label))
		}
		if p.minute != 0 && p.minute != slotMinutes {
			return nil, invalid(timeRange, fmt.Sprintf("%s must fall on a 30-minute boundary", p.label))
		}
	}

	start := startHour*60 + startMinute
	end := endHour*60 + endMinute
	if start >= end {
		return nil, invalid(timeRange, "start must be before end")
	}

	slots := make([]string, 0, (end-start)/slotMinutes+1)
	for at := start; at <= end; at += slotMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", at/60, at%60))
	}
	return slots, nil
}
