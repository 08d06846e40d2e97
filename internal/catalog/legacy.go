package catalog

import (
	"sort"

	"bus-schedule/internal/schedule"
	"bus-schedule/internal/timeofday"
)

// legacyBus covers both pre-canonical shapes. flat-v1 fills StartTime and
// Schedule; shared-stop-v0 fills Route, StartTimes and Stops.
type legacyBus struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	StartTime string     `json:"Start Time" yaml:"Start Time"`
	Schedule  []flatStop `json:"schedule" yaml:"schedule"`

	Route      string       `json:"route" yaml:"route"`
	StartTimes []string     `json:"startTimes" yaml:"startTimes"`
	Stops      []sharedStop `json:"stops" yaml:"stops"`
}

type flatStop struct {
	Time    string `json:"Time" yaml:"Time"`
	Stopage string `json:"Stopage" yaml:"Stopage"`
}

type sharedStop struct {
	ID    string              `json:"id" yaml:"id"`
	Name  string              `json:"name" yaml:"name"`
	Times map[string][]string `json:"times" yaml:"times"` // start time -> up to two visits
}

// normalize returns canonical "HH:MM" text, or the input unchanged so that
// Validate can report it.
func normalize(text string) string {
	if n, err := timeofday.Normalize(text); err == nil {
		return n
	}
	return text
}

func convertFlat(buses []legacyBus) *schedule.Catalog {
	cat := &schedule.Catalog{Departures: make([]schedule.Departure, 0, len(buses))}
	for _, b := range buses {
		dep := schedule.Departure{
			ID:        b.ID,
			Name:      b.Name,
			StartTime: normalize(b.StartTime),
			Stops:     make([]schedule.Stop, 0, len(b.Schedule)),
		}
		for _, s := range b.Schedule {
			dep.Stops = append(dep.Stops, schedule.Stop{Name: s.Stopage, Time: normalize(s.Time)})
		}
		if dep.StartTime == "" && len(dep.Stops) > 0 {
			dep.StartTime = dep.Stops[0].Time
		}
		cat.Departures = append(cat.Departures, dep)
	}
	return cat
}

type visit struct {
	stop    schedule.Stop
	minutes int
	valid   bool
}

// convertSharedStops expands every bus x start time into its own departure.
// A stop visited twice in one run appears twice, and the stop list is ordered
// by visit time, keeping the shared stop order for ties.
func convertSharedStops(buses []legacyBus) *schedule.Catalog {
	cat := &schedule.Catalog{}
	for _, b := range buses {
		name := b.Name
		if name == "" {
			name = b.Route
		}
		for _, start := range b.StartTimes {
			startNorm := normalize(start)

			var visits []visit
			for _, s := range b.Stops {
				for _, t := range s.Times[start] {
					v := visit{stop: schedule.Stop{Name: s.Name, Time: normalize(t)}}
					if n, err := timeofday.Normalize(t); err == nil {
						v.minutes = minutesOf(n)
						v.valid = true
					}
					visits = append(visits, v)
				}
			}
			sort.SliceStable(visits, func(i, j int) bool {
				// Unparseable times sort last and are reported by Validate.
				if visits[i].valid != visits[j].valid {
					return visits[i].valid
				}
				return visits[i].minutes < visits[j].minutes
			})

			dep := schedule.Departure{
				ID:        b.ID + "@" + startNorm,
				Name:      name,
				StartTime: startNorm,
				Stops:     make([]schedule.Stop, 0, len(visits)),
			}
			for _, v := range visits {
				dep.Stops = append(dep.Stops, v.stop)
			}
			cat.Departures = append(cat.Departures, dep)
		}
	}
	return cat
}

// minutesOf reads canonical "HH:MM" text.
func minutesOf(hhmm string) int {
	return int(hhmm[0]-'0')*600 + int(hhmm[1]-'0')*60 + int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
}
