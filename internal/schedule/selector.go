package schedule

import (
	"time"

	"bus-schedule/internal/timeofday"
)

// RouteNames returns the distinct departure names in first-occurrence order.
func RouteNames(cat *Catalog) []string {
	seen := make(map[string]struct{}, len(cat.Departures))
	names := make([]string, 0)
	for _, d := range cat.Departures {
		if _, ok := seen[d.Name]; ok {
			continue
		}
		seen[d.Name] = struct{}{}
		names = append(names, d.Name)
	}
	return names
}

// DeparturesForRoute returns every departure named routeName, in catalog order.
func DeparturesForRoute(cat *Catalog, routeName string) []Departure {
	out := make([]Departure, 0)
	if routeName == "" {
		return out
	}
	for _, d := range cat.Departures {
		if d.Name == routeName {
			out = append(out, d)
		}
	}
	return out
}

// DepartureByID returns the departure with the given id, or nil.
func DepartureByID(cat *Catalog, id string) *Departure {
	if id == "" {
		return nil
	}
	for i := range cat.Departures {
		if cat.Departures[i].ID == id {
			return &cat.Departures[i]
		}
	}
	return nil
}

// ResolveStop returns the stop at index, or false when the index is out of
// range (a selection left over from a different departure).
func ResolveStop(dep *Departure, index int) (Stop, bool) {
	if dep == nil || index < 0 || index >= len(dep.Stops) {
		return Stop{}, false
	}
	return dep.Stops[index], true
}

// NextUpcomingStop scans the stops in travel order and returns the first one
// whose time today is at or after now. It returns false once every stop has
// passed; there is no rollover to the next day.
func NextUpcomingStop(dep *Departure, now time.Time) (Upcoming, bool) {
	if dep == nil {
		return Upcoming{}, false
	}
	for i, stop := range dep.Stops {
		at := timeofday.ParseOrNow(stop.Time, now)
		if !at.Before(now) {
			return Upcoming{
				Stop:      stop,
				Index:     i,
				At:        at,
				Remaining: at.Sub(now),
			}, true
		}
	}
	return Upcoming{}, false
}
