package schedule

// SelectionState is the depth reached in the route -> departure -> stop choice.
type SelectionState int

const (
	NoRoute SelectionState = iota
	RouteChosen
	DepartureChosen
	StopChosen
)

func (s SelectionState) String() string {
	switch s {
	case RouteChosen:
		return "route_chosen"
	case DepartureChosen:
		return "departure_chosen"
	case StopChosen:
		return "stop_chosen"
	default:
		return "no_route"
	}
}

// NoStop marks an unchosen stop index.
const NoStop = -1

// Selection is the three-level choice. Its methods return a new value and
// always clear every level below the one being set.
type Selection struct {
	Route       string
	DepartureID string
	StopIndex   int
}

func EmptySelection() Selection {
	return Selection{StopIndex: NoStop}
}

// WithRoute starts a new selection at route. A route with no departures in the
// catalog leaves nothing chosen.
func (s Selection) WithRoute(cat *Catalog, route string) Selection {
	if len(DeparturesForRoute(cat, route)) == 0 {
		return EmptySelection()
	}
	return Selection{Route: route, StopIndex: NoStop}
}

// WithDeparture keeps the route and clears the stop. Ids that are not in the
// catalog under the chosen route leave the departure unchosen.
func (s Selection) WithDeparture(cat *Catalog, id string) Selection {
	next := Selection{Route: s.Route, StopIndex: NoStop}
	if dep := DepartureByID(cat, id); dep != nil && dep.Name == s.Route {
		next.DepartureID = dep.ID
	}
	return next
}

// WithStop sets the stop index, or clears it when the index does not resolve
// against the chosen departure.
func (s Selection) WithStop(cat *Catalog, index int) Selection {
	next := s
	next.StopIndex = NoStop
	if _, ok := ResolveStop(DepartureByID(cat, s.DepartureID), index); ok {
		next.StopIndex = index
	}
	return next
}

func (s Selection) State() SelectionState {
	switch {
	case s.Route == "":
		return NoRoute
	case s.DepartureID == "":
		return RouteChosen
	case s.StopIndex == NoStop:
		return DepartureChosen
	default:
		return StopChosen
	}
}
