package schedule

import (
	"fmt"
	"strings"
	"time"
)

type AvailabilityKind string

const (
	AvailabilityNormal      AvailabilityKind = "normal"
	AvailabilityUnavailable AvailabilityKind = "unavailable"
	AvailabilityLimited     AvailabilityKind = "limited"
)

// Availability is a route's service status for one day: the normal timeline,
// no service with a message, or a limited set of alternate runs shown in place
// of the timeline.
type Availability struct {
	Kind    AvailabilityKind `json:"kind"`
	Message string           `json:"message,omitempty"`
	Runs    []Run            `json:"runs,omitempty"`
}

// Run is one alternate departure on a limited-service day.
type Run struct {
	Time            string   `json:"time" yaml:"time"`
	Route           string   `json:"route" yaml:"route"`
	AdditionalStops []string `json:"additionalStops" yaml:"additionalStops"`
}

func NormalService() Availability {
	return Availability{Kind: AvailabilityNormal}
}

func UnavailableService(message string) Availability {
	return Availability{Kind: AvailabilityUnavailable, Message: message}
}

func LimitedService(runs []Run) Availability {
	return Availability{Kind: AvailabilityLimited, Runs: runs}
}

// AvailabilityLookup supplies per-route, per-weekday exceptions. The selector
// never decides availability itself.
type AvailabilityLookup interface {
	Availability(day time.Weekday, route string) Availability
}

// LookupFunc adapts a plain function to AvailabilityLookup.
type LookupFunc func(day time.Weekday, route string) Availability

func (f LookupFunc) Availability(day time.Weekday, route string) Availability {
	return f(day, route)
}

// NoOverrides reports normal service for every route on every day.
var NoOverrides AvailabilityLookup = LookupFunc(func(time.Weekday, string) Availability {
	return NormalService()
})

// Today resolves route's availability for now's weekday. A nil lookup means
// normal service.
func Today(lookup AvailabilityLookup, route string, now time.Time) Availability {
	if lookup == nil {
		return NormalService()
	}
	return lookup.Availability(now.Weekday(), route)
}

// DayCondition is the exception data for a single weekday.
type DayCondition struct {
	Unavailable bool   `json:"unavailable" yaml:"unavailable"`
	Message     string `json:"message" yaml:"message"`
	Limited     []Run  `json:"limited" yaml:"limited"`
}

// SpecialConditions maps weekday names ("Monday", case-insensitive) to the
// exceptions for that day.
type SpecialConditions map[string]DayCondition

func (c SpecialConditions) day(dayName string) (DayCondition, bool) {
	for name, cond := range c {
		if strings.EqualFold(strings.TrimSpace(name), dayName) {
			return cond, true
		}
	}
	return DayCondition{}, false
}

// IsAvailableToday reports whether a route runs on dayName, with the message to
// show when it does not.
func IsAvailableToday(dayName string, conds SpecialConditions) (bool, string) {
	cond, ok := conds.day(dayName)
	if !ok || !cond.Unavailable {
		return true, ""
	}
	if cond.Message == "" {
		return false, fmt.Sprintf("No service on %s", dayName)
	}
	return false, cond.Message
}

// LimitedScheduleFor returns the alternate runs for dayName, or nil.
func LimitedScheduleFor(dayName string, conds SpecialConditions) []Run {
	cond, ok := conds.day(dayName)
	if !ok {
		return nil
	}
	return cond.Limited
}

// Availability folds the conditions for dayName into a single variant. An
// unavailable day wins over any limited runs listed for it.
func (c SpecialConditions) Availability(dayName string) Availability {
	if ok, msg := IsAvailableToday(dayName, c); !ok {
		return UnavailableService(msg)
	}
	if runs := LimitedScheduleFor(dayName, c); len(runs) > 0 {
		return LimitedService(runs)
	}
	return NormalService()
}
