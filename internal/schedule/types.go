package schedule

import "time"

// Catalog is the read-only list of departures, in the order they were loaded.
type Catalog struct {
	Departures []Departure
}

// Departure is one scheduled run of a route.
type Departure struct {
	ID        string `json:"id" yaml:"id" groups:"basic,detailed"`
	Name      string `json:"name" yaml:"name" groups:"basic,detailed"` // route display name
	StartTime string `json:"startTime" yaml:"startTime" groups:"basic,detailed"`
	Stops     []Stop `json:"stops" yaml:"stops" groups:"detailed"`
}

// Stop is a visit within a departure. Time is 24-hour "HH:MM" text.
type Stop struct {
	Name string `json:"stopName" yaml:"stopName" groups:"detailed"`
	Time string `json:"time" yaml:"time" groups:"detailed"`
}

// Upcoming is the first stop of a departure that has not been reached yet.
type Upcoming struct {
	Stop      Stop
	Index     int
	At        time.Time     // today's instant for Stop.Time
	Remaining time.Duration // At - now, never negative
}

// RemainingMs is Remaining in whole milliseconds.
func (u Upcoming) RemainingMs() int64 {
	return u.Remaining.Milliseconds()
}
