package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-schedule/internal/schedule"
)

func TestBundledCatalogIsValid(t *testing.T) {
	cat, err := Bundled()
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Departures)
	assert.NotEmpty(t, schedule.RouteNames(cat))
}

func TestLoadCanonicalYAML(t *testing.T) {
	cat, err := LoadFile("testdata/canonical.yaml")
	require.NoError(t, err)
	require.Len(t, cat.Departures, 1)

	d := cat.Departures[0]
	assert.Equal(t, "d1", d.ID)
	assert.Equal(t, "Route 1", d.Name)
	assert.Equal(t, "08:00", d.StartTime)
	assert.Equal(t, []schedule.Stop{
		{Name: "Campus Gate", Time: "08:00"},
		{Name: "Library", Time: "08:15"},
		{Name: "Market", Time: "08:40"},
	}, d.Stops)
}

func TestLoadFlatLegacy(t *testing.T) {
	cat, err := LoadFile("testdata/flat.json")
	require.NoError(t, err)
	require.Len(t, cat.Departures, 2)

	assert.Equal(t, "1", cat.Departures[0].ID)
	assert.Len(t, cat.Departures[0].Stops, 3)
	assert.Equal(t, "Library", cat.Departures[0].Stops[1].Name)

	second := cat.Departures[1]
	assert.Equal(t, "17:10", second.StartTime)
	assert.Equal(t, "17:10", second.Stops[0].Time)
}

func TestLoadSharedStopLegacy(t *testing.T) {
	cat, err := LoadFile("testdata/shared.json")
	require.NoError(t, err)
	require.Len(t, cat.Departures, 2)

	morning := cat.Departures[0]
	assert.Equal(t, "b1@07:30", morning.ID)
	assert.Equal(t, "Town Shuttle", morning.Name)
	assert.Equal(t, "07:30", morning.StartTime)
	assert.Equal(t, []schedule.Stop{
		{Name: "Campus Gate", Time: "07:30"},
		{Name: "Town Hall", Time: "08:15"},
		{Name: "Campus Gate", Time: "09:10"},
	}, morning.Stops)

	afternoon := cat.Departures[1]
	assert.Equal(t, "b1@13:30", afternoon.ID)
	assert.Len(t, afternoon.Stops, 2)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Schema
	}{
		{"canonical", `{"version":2,"departures":[{"id":"x"}]}`, SchemaCanonical},
		{"canonical without version", `{"departures":[{"id":"x"}]}`, SchemaCanonical},
		{"flat", `{"buses":[{"id":"1","schedule":[]}]}`, SchemaFlat},
		{"shared", `{"buses":[{"id":"1","startTimes":["7:30 AM"]}]}`, SchemaSharedStops},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect([]byte(tt.doc), FormatJSON)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	_, err := Detect([]byte(`{"version":7,"departures":[]}`), FormatJSON)
	assert.ErrorIs(t, err, ErrUnknownSchema)

	_, err = Detect([]byte(`{}`), FormatJSON)
	assert.ErrorIs(t, err, ErrUnknownSchema)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	_, err := LoadFile("testdata/broken.json")
	require.ErrorIs(t, err, ErrInvalidCatalog)

	msg := err.Error()
	for _, want := range []string{
		"time 08:10 is before 08:30",
		"duplicate id",
		"empty name",
		`start time "8am" is not HH:MM`,
		`time "25:00" is not HH:MM`,
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateEmpty(t *testing.T) {
	assert.ErrorIs(t, Validate(&schedule.Catalog{}), ErrInvalidCatalog)
	assert.ErrorIs(t, Validate(nil), ErrInvalidCatalog)
}

func TestLoadFileRejectsExtension(t *testing.T) {
	_, err := LoadFile("testdata/catalog.txt")
	assert.Error(t, err)
}

func TestDecodeBadJSON(t *testing.T) {
	_, err := Decode(strings.NewReader("{"), FormatJSON)
	assert.Error(t, err)
}
