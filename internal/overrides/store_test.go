package overrides

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-schedule/internal/schedule"
)

func TestLoadFile(t *testing.T) {
	s, err := LoadFile("testdata/overrides.yaml")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	fri := s.Availability(time.Friday, "Modern More - Campus")
	assert.Equal(t, schedule.AvailabilityUnavailable, fri.Kind)
	assert.Equal(t, "Weekly holiday, no service", fri.Message)

	sat := s.Availability(time.Saturday, "Modern More - Campus")
	require.Equal(t, schedule.AvailabilityLimited, sat.Kind)
	require.Len(t, sat.Runs, 1)
	assert.Equal(t, "10:00", sat.Runs[0].Time)
	assert.Equal(t, []string{"Medical More", "Central Library"}, sat.Runs[0].AdditionalStops)

	sun := s.Availability(time.Sunday, "Library Trip")
	assert.Equal(t, "No service on Sunday", sun.Message)

	assert.Equal(t, schedule.NormalService(), s.Availability(time.Monday, "Modern More - Campus"))
	assert.Equal(t, schedule.NormalService(), s.Availability(time.Friday, "Unknown Route"))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestStoreSetReplacesAndClears(t *testing.T) {
	s := NewStore()
	s.Set("R", schedule.SpecialConditions{"Monday": {Unavailable: true}})
	assert.Equal(t, schedule.AvailabilityUnavailable, s.Availability(time.Monday, "R").Kind)

	s.Set("R", schedule.SpecialConditions{"Tuesday": {Unavailable: true}})
	assert.Equal(t, schedule.AvailabilityNormal, s.Availability(time.Monday, "R").Kind)

	s.Set("R", nil)
	assert.Equal(t, 0, s.Len())
}

var _ schedule.AvailabilityLookup = (*Store)(nil)
