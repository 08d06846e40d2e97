package catalog

import (
	"errors"
	"fmt"
	"regexp"

	"bus-schedule/internal/schedule"
)

var hhmm = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validate checks ids, names and times. Every problem found is reported.
func Validate(cat *schedule.Catalog) error {
	if cat == nil || len(cat.Departures) == 0 {
		return fmt.Errorf("%w: no departures", ErrInvalidCatalog)
	}

	var errs []error
	ids := make(map[string]struct{}, len(cat.Departures))
	for i, d := range cat.Departures {
		where := fmt.Sprintf("departure %d (%s)", i, d.ID)
		if d.ID == "" {
			errs = append(errs, fmt.Errorf("%s: empty id", where))
		} else if _, dup := ids[d.ID]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate id", where))
		}
		ids[d.ID] = struct{}{}

		if d.Name == "" {
			errs = append(errs, fmt.Errorf("%s: empty name", where))
		}
		if !hhmm.MatchString(d.StartTime) {
			errs = append(errs, fmt.Errorf("%s: start time %q is not HH:MM", where, d.StartTime))
		}
		if len(d.Stops) == 0 {
			errs = append(errs, fmt.Errorf("%s: no stops", where))
		}

		prev := ""
		for j, s := range d.Stops {
			if s.Name == "" {
				errs = append(errs, fmt.Errorf("%s stop %d: empty name", where, j))
			}
			if !hhmm.MatchString(s.Time) {
				errs = append(errs, fmt.Errorf("%s stop %d: time %q is not HH:MM", where, j, s.Time))
				continue
			}
			// Zero-padded HH:MM compares correctly as text.
			if prev != "" && s.Time < prev {
				errs = append(errs, fmt.Errorf("%s stop %d: time %s is before %s", where, j, s.Time, prev))
			}
			prev = s.Time
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return nil
}
