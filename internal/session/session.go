// Package session owns one user's route/departure/stop selection together with
// the current-time snapshot every displayed value is computed from.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"bus-schedule/internal/schedule"
)

// DefaultInterval is how often the current-time snapshot is refreshed.
const DefaultInterval = time.Minute

type Metrics interface {
	TickObserve(d time.Duration)
	SelectionInc(level string)
	UpcomingInc(found bool)
}

// TickHandler receives the view recomputed after each refresh.
type TickHandler func(View)

type Session struct {
	catalog  *schedule.Catalog
	lookup   schedule.AvailabilityLookup
	interval time.Duration
	tz       *time.Location
	metrics  Metrics
	clock    func() time.Time

	mu     sync.Mutex
	sel    schedule.Selection
	now    time.Time
	onTick []TickHandler

	tickCancel context.CancelFunc
	tickWG     sync.WaitGroup
}

// New creates a session with nothing selected and takes the first time
// snapshot immediately. A nil lookup means no availability overrides.
func New(cat *schedule.Catalog, lookup schedule.AvailabilityLookup, interval time.Duration, tz *time.Location, metrics Metrics) *Session {
	if lookup == nil {
		lookup = schedule.NoOverrides
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if tz == nil {
		tz = time.Local
	}
	s := &Session{
		catalog:  cat,
		lookup:   lookup,
		interval: interval,
		tz:       tz,
		metrics:  metrics,
		clock:    time.Now,
		sel:      schedule.EmptySelection(),
	}
	s.now = s.clock().In(tz)
	return s
}

// SetClock replaces the wall clock and takes a fresh snapshot from it.
func (s *Session) SetClock(clock func() time.Time) {
	s.mu.Lock()
	s.clock = clock
	s.now = clock().In(s.tz)
	s.mu.Unlock()
}

func (s *Session) OnTick(h TickHandler) {
	s.mu.Lock()
	s.onTick = append(s.onTick, h)
	s.mu.Unlock()
}

func (s *Session) Catalog() *schedule.Catalog { return s.catalog }

func (s *Session) Lookup() schedule.AvailabilityLookup { return s.lookup }

// Now returns the current snapshot, not the wall clock.
func (s *Session) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Session) Selection() schedule.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Start refreshes the snapshot now and then every interval until ctx is done
// or Stop is called. Calling Start on a running session does nothing.
func (s *Session) Start(parent context.Context) {
	s.mu.Lock()
	if s.tickCancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.tickCancel = cancel
	s.tickWG.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.tickWG.Done()
		s.Refresh()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Refresh()
			}
		}
	}()
	log.Debug().Dur("interval", s.interval).Msg("session ticker started")
}

// Stop releases the ticker and waits for it to exit. Safe without Start.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.tickCancel
	s.tickCancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.tickWG.Wait()
	log.Debug().Msg("session ticker stopped")
}

// Refresh takes a new snapshot, recomputes the view and hands it to the tick
// handlers.
func (s *Session) Refresh() View {
	start := time.Now()

	s.mu.Lock()
	s.now = s.clock().In(s.tz)
	v := s.viewLocked()
	handlers := append([]TickHandler(nil), s.onTick...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(v)
	}
	if s.metrics != nil {
		s.metrics.TickObserve(time.Since(start))
	}
	return v
}

func (s *Session) ChooseRoute(route string) View {
	return s.update("route", func(sel schedule.Selection) schedule.Selection {
		return sel.WithRoute(s.catalog, route)
	})
}

func (s *Session) ChooseDeparture(id string) View {
	return s.update("departure", func(sel schedule.Selection) schedule.Selection {
		return sel.WithDeparture(s.catalog, id)
	})
}

func (s *Session) ChooseStop(index int) View {
	return s.update("stop", func(sel schedule.Selection) schedule.Selection {
		return sel.WithStop(s.catalog, index)
	})
}

func (s *Session) Reset() View {
	return s.update("reset", func(schedule.Selection) schedule.Selection {
		return schedule.EmptySelection()
	})
}

func (s *Session) update(level string, fn func(schedule.Selection) schedule.Selection) View {
	s.mu.Lock()
	s.sel = fn(s.sel)
	v := s.viewLocked()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SelectionInc(level)
	}
	log.Debug().Str("selection", level).Str("state", v.State).Msg("selection changed")
	return v
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := Build(s.catalog, s.lookup, s.sel, s.now)
	if s.metrics != nil && v.Departure != nil {
		s.metrics.UpcomingInc(v.Upcoming != nil)
	}
	return v
}
