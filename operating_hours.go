package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// This file computes whether a facility is currently open from the raw
// operating-hour strings carried on upstream records. The registry emits
// both "HHMM" and "HH:MM" (and occasionally "900" for 9:00), so both
// boundaries are normalized before parsing.
//
// Known gap: overnight ranges where the end time is earlier than the start
// time (e.g. 2200-0600) are not handled and always evaluate to closed. The
// upstream data does not distinguish an overnight clinic from a data-entry
// error, so the behavior is kept as-is until that is settled.

// OperatingStatus is the result of evaluating a facility's hours against a
// point in time. ClosingTime is set only while the facility is open,
// formatted as zero-padded "HH:MM".
type OperatingStatus struct {
	IsOpen      bool
	ClosingTime string
}

// evaluateOperatingStatus reports whether now falls inside [start, end) of
// the given operating hours. Unparseable boundaries evaluate to closed.
func evaluateOperatingStatus(hours OperatingHours, now time.Time) OperatingStatus {
	startMinutes, err := parseClockMinutes(hours.StartTime)
	if err != nil {
		return OperatingStatus{}
	}
	endMinutes, err := parseClockMinutes(hours.EndTime)
	if err != nil {
		return OperatingStatus{}
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	if nowMinutes < startMinutes || nowMinutes >= endMinutes {
		return OperatingStatus{}
	}

	return OperatingStatus{
		IsOpen:      true,
		ClosingTime: fmt.Sprintf("%02d:%02d", endMinutes/60, endMinutes%60),
	}
}

// parseClockMinutes converts "HHMM" or "HH:MM" to minutes since midnight.
// Short forms are left-padded to four digits, so "900" parses as 09:00.
func parseClockMinutes(s string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty time string")
	}
	if len(cleaned) > 4 {
		return 0, fmt.Errorf("time string %q is too long", s)
	}
	cleaned = strings.Repeat("0", 4-len(cleaned)) + cleaned

	hour, err := strconv.Atoi(cleaned[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(cleaned[2:4])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour > 24 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}

	return hour*60 + minute, nil
}
