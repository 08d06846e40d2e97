// Package overrides holds the day-of-week service exceptions for each route
// and answers availability lookups from them.
package overrides

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"bus-schedule/internal/schedule"
)

type File struct {
	Routes map[string]schedule.SpecialConditions `yaml:"routes" json:"routes"`
}

// Store is a schedule.AvailabilityLookup backed by per-route conditions.
// Routes can be replaced while lookups are running.
type Store struct {
	mu     sync.RWMutex
	routes map[string]schedule.SpecialConditions
}

func NewStore() *Store {
	return &Store{routes: make(map[string]schedule.SpecialConditions)}
}

// LoadFile reads a YAML overrides file into a new Store.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("overrides %s: %w", path, err)
	}
	s := NewStore()
	for route, conds := range f.Routes {
		s.Set(route, conds)
	}
	return s, nil
}

// Set replaces every condition for route. Empty conditions remove the route.
func (s *Store) Set(route string, conds schedule.SpecialConditions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(conds) == 0 {
		delete(s.routes, route)
		return
	}
	s.routes[route] = conds
}

func (s *Store) Conditions(route string) schedule.SpecialConditions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes[route]
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.routes)
}

func (s *Store) Availability(day time.Weekday, route string) schedule.Availability {
	return s.Conditions(route).Availability(day.String())
}
