package session

import (
	"time"

	"bus-schedule/internal/schedule"
	"bus-schedule/internal/timeofday"
)

// View is everything the front-end renders for one selection at one instant.
// Sections that do not apply are nil.
type View struct {
	Now        time.Time `json:"now"`
	NowDisplay string    `json:"nowDisplay"`
	Day        string    `json:"day"`
	State      string    `json:"state"`

	RouteNames []string          `json:"routeNames"`
	Route      string            `json:"route,omitempty"`
	Departures []DepartureOption `json:"departures"`

	Departure *DepartureOption `json:"departure,omitempty"`
	Stop      *StopView        `json:"stop,omitempty"`
	Upcoming  *UpcomingView    `json:"upcoming,omitempty"`
	Today     *TodayView       `json:"today,omitempty"`
}

type DepartureOption struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	StartTime        string `json:"startTime"`
	StartTimeDisplay string `json:"startTimeDisplay"`
}

type StopView struct {
	Index      int                  `json:"index"`
	Name       string               `json:"name"`
	Time       string               `json:"time"`
	Display    string               `json:"display"`
	Relative   string               `json:"relative"`
	Countdown  string               `json:"countdown"`
	Difference timeofday.Difference `json:"difference"`
}

type UpcomingView struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Time        string `json:"time"`
	Display     string `json:"display"`
	RemainingMs int64  `json:"remainingMs"`
	Relative    string `json:"relative"`
	Countdown   string `json:"countdown"`
}

// TodayView replaces the timeline when the route is unavailable or running a
// limited schedule today.
type TodayView struct {
	schedule.Availability
	Timeline []TimelineRow `json:"timeline,omitempty"`
}

type TimelineRow struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Time     string `json:"time"`
	Display  string `json:"display"`
	Selected bool   `json:"selected"`
}

// Build assembles a View from one selection and one instant. It is pure:
// the same inputs always give the same View.
func Build(cat *schedule.Catalog, lookup schedule.AvailabilityLookup, sel schedule.Selection, now time.Time) View {
	v := View{
		Now:        now,
		NowDisplay: timeofday.Format12(now),
		Day:        now.Weekday().String(),
		State:      sel.State().String(),
		RouteNames: schedule.RouteNames(cat),
		Route:      sel.Route,
		Departures: make([]DepartureOption, 0),
	}
	for _, d := range schedule.DeparturesForRoute(cat, sel.Route) {
		v.Departures = append(v.Departures, OptionOf(d))
	}

	dep := schedule.DepartureByID(cat, sel.DepartureID)
	if dep == nil {
		return v
	}
	opt := OptionOf(*dep)
	v.Departure = &opt

	if stop, ok := schedule.ResolveStop(dep, sel.StopIndex); ok {
		at := timeofday.ParseOrNow(stop.Time, now)
		diff := timeofday.ComputeDifference(at, now)
		v.Stop = &StopView{
			Index:      sel.StopIndex,
			Name:       stop.Name,
			Time:       stop.Time,
			Display:    timeofday.FormatTo12Hour(stop.Time),
			Relative:   timeofday.FormatRelative(diff),
			Countdown:  timeofday.Countdown(at.Sub(now)),
			Difference: diff,
		}
	}

	v.Upcoming = UpcomingFor(dep, now)
	v.Today = TodayFor(lookup, dep, sel.StopIndex, now)
	return v
}

// OptionOf is the list entry shown for d in a departure picker.
func OptionOf(d schedule.Departure) DepartureOption {
	return DepartureOption{
		ID:               d.ID,
		Name:             d.Name,
		StartTime:        d.StartTime,
		StartTimeDisplay: timeofday.FormatTo12Hour(d.StartTime),
	}
}

// UpcomingFor returns the next stop panel for dep, or nil when there is no
// more service today.
func UpcomingFor(dep *schedule.Departure, now time.Time) *UpcomingView {
	next, ok := schedule.NextUpcomingStop(dep, now)
	if !ok {
		return nil
	}
	return &UpcomingView{
		Index:       next.Index,
		Name:        next.Stop.Name,
		Time:        next.Stop.Time,
		Display:     timeofday.FormatTo12Hour(next.Stop.Time),
		RemainingMs: next.RemainingMs(),
		Relative:    timeofday.FormatRelative(timeofday.DifferenceOf(next.Remaining)),
		Countdown:   timeofday.Countdown(next.Remaining),
	}
}

// TodayFor resolves dep's route availability for now. The stop timeline is
// only filled in for normal service.
func TodayFor(lookup schedule.AvailabilityLookup, dep *schedule.Departure, selected int, now time.Time) *TodayView {
	t := &TodayView{Availability: schedule.Today(lookup, dep.Name, now)}
	if t.Kind != schedule.AvailabilityNormal {
		return t
	}
	t.Timeline = make([]TimelineRow, 0, len(dep.Stops))
	for i, stop := range dep.Stops {
		t.Timeline = append(t.Timeline, TimelineRow{
			Index:    i,
			Name:     stop.Name,
			Time:     stop.Time,
			Display:  timeofday.FormatTo12Hour(stop.Time),
			Selected: i == selected,
		})
	}
	return t
}
