// Package timeofday parses and formats wall-clock times that carry no date.
// A time-of-day only becomes an instant when combined with a reference "now",
// which callers always pass in explicitly.
package timeofday

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrInvalidTime = errors.New("invalid time of day")

// Parse combines a "HH:MM" (24-hour) or "H:MM am/pm" (12-hour) string with the
// date of now, in now's location.
func Parse(text string, now time.Time) (time.Time, error) {
	hour, minute, err := split(text)
	if err != nil {
		return time.Time{}, err
	}
	return on(now, hour, minute), nil
}

// ParseOrNow is Parse that never fails: malformed text is logged and replaced
// by now, so a single bad field degrades instead of breaking the caller.
func ParseOrNow(text string, now time.Time) time.Time {
	t, err := Parse(text, now)
	if err != nil {
		log.Warn().Err(err).Str("text", text).Msg("Falling back to current time")
		return now
	}
	return t
}

// Normalize rewrites any accepted time-of-day text as canonical "HH:MM".
func Normalize(text string) (string, error) {
	hour, minute, err := split(text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func split(text string) (hour, minute int, err error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
	}

	clock := strings.SplitN(fields[0], ":", 2)
	if len(clock) != 2 || len(clock[1]) != 2 || !digits(clock[0]) || !digits(clock[1]) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
	}
	hour, herr := strconv.Atoi(clock[0])
	minute, merr := strconv.Atoi(clock[1])
	if herr != nil || merr != nil || hour < 0 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
	}

	if len(fields) == 1 {
		// Without a meridiem only zero-padded 24-hour text is accepted.
		if len(clock[0]) != 2 || hour > 23 {
			return 0, 0, fmt.Errorf("%w: %q: missing am/pm", ErrInvalidTime, text)
		}
		return hour, minute, nil
	}

	if hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
	}
	switch strings.ToLower(fields[1]) {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, 0, fmt.Errorf("%w: %q: bad meridiem", ErrInvalidTime, text)
	}
	return hour, minute, nil
}

// digits reports whether s is non-empty and only ASCII digits. Atoi alone
// would accept a sign.
func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func on(day time.Time, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}

// Midnight returns the start of t's day in t's location.
func Midnight(t time.Time) time.Time {
	return on(t, 0, 0)
}

// FormatTo12Hour converts "HH:MM" to "h:mm am/pm". Text that does not parse is
// returned unchanged.
func FormatTo12Hour(time24 string) string {
	hour, minute, err := split(time24)
	if err != nil {
		log.Warn().Err(err).Str("text", time24).Msg("Cannot convert to 12-hour time")
		return time24
	}
	return Format12(time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC))
}

// Format12 renders the clock part of t as "h:mm am/pm".
func Format12(t time.Time) string {
	return t.Format("3:04 pm")
}

// Format24 renders the clock part of t as "HH:MM".
func Format24(t time.Time) string {
	return t.Format("15:04")
}

// Difference is the signed gap between a target and now, decomposed into
// absolute hours and minutes.
type Difference struct {
	Hours        int  `json:"hours"`
	Minutes      int  `json:"minutes"`
	TotalMinutes int  `json:"totalMinutes"`
	IsPast       bool `json:"isPast"`
}

func ComputeDifference(target, now time.Time) Difference {
	return DifferenceOf(target.Sub(now))
}

// DifferenceOf decomposes a signed duration. Whole minutes are truncated
// toward zero so swapping target and now keeps the magnitude.
func DifferenceOf(d time.Duration) Difference {
	total := int(d / time.Minute)
	if total < 0 {
		total = -total
	}
	return Difference{
		Hours:        total / 60,
		Minutes:      total % 60,
		TotalMinutes: total,
		IsPast:       d < 0,
	}
}

// FormatRelative renders "in 5m", "in 1h 5m" or "0h 5m ago". Past times always
// carry both components.
func FormatRelative(diff Difference) string {
	if diff.IsPast {
		return fmt.Sprintf("%dh %dm ago", diff.Hours, diff.Minutes)
	}
	if diff.Hours > 0 {
		return fmt.Sprintf("in %dh %dm", diff.Hours, diff.Minutes)
	}
	return fmt.Sprintf("in %dm", diff.Minutes)
}

// Countdown is the short label shown next to an upcoming arrival. Minutes are
// rounded; past durations use the FormatRelative form.
func Countdown(d time.Duration) string {
	if d < 0 {
		return FormatRelative(DifferenceOf(d))
	}
	mins := int(math.Round(d.Minutes()))
	switch {
	case mins < 1:
		return "Arriving now"
	case mins < 60:
		return fmt.Sprintf("%d min left", mins)
	default:
		return fmt.Sprintf("%dh %dm left", mins/60, mins%60)
	}
}

// NextVisit picks between the two daily visits a stop gets in the shared-stop
// schedules: the first if it is still ahead, else the second, else none.
func NextVisit(times [2]string, now time.Time) (string, bool) {
	first := ParseOrNow(times[0], now)
	second := ParseOrNow(times[1], now)

	if now.Before(first) {
		return times[0], true
	}
	if now.Before(second) {
		return times[1], true
	}
	return "", false
}
