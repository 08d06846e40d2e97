package timeofday

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 15, 8, 10, 0, 0, time.Local)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHour int
		wantMin  int
	}{
		{"24h morning", "08:15", 8, 15},
		{"24h midnight", "00:05", 0, 5},
		{"24h evening", "17:10", 17, 10},
		{"12h morning", "7:30 AM", 7, 30},
		{"12h lowercase", "7:30 am", 7, 30},
		{"12h noon", "12:00 PM", 12, 0},
		{"12h midnight", "12:45 AM", 0, 45},
		{"12h afternoon", "1:05 pm", 13, 5},
		{"surrounding space", "  09:00 ", 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, base)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, got.Hour())
			assert.Equal(t, tt.wantMin, got.Minute())
			assert.Equal(t, 0, got.Second())
			assert.Equal(t, base.Year(), got.Year())
			assert.Equal(t, base.YearDay(), got.YearDay())
			assert.Equal(t, base.Location(), got.Location())
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "abc", "7:30", "25:00", "08:60", "08:5", "13:00 pm", "0:30 am", "7:30 xm", "7:30 am extra", "-1:30", "-0:05", "08:+5", "+8:05", "+8:05 am", "08:-5", " :30", "08: 5"} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			_, err := Parse(input, base)
			assert.ErrorIs(t, err, ErrInvalidTime)
		})
	}
}

func TestParseOrNowFallsBack(t *testing.T) {
	assert.Equal(t, base, ParseOrNow("nonsense", base))
	assert.Equal(t, 9, ParseOrNow("09:00", base).Hour())
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("1:05 PM")
	require.NoError(t, err)
	assert.Equal(t, "13:05", got)

	got, err = Normalize("08:00")
	require.NoError(t, err)
	assert.Equal(t, "08:00", got)

	_, err = Normalize("8")
	assert.ErrorIs(t, err, ErrInvalidTime)

	for _, signed := range []string{"-0:05", "08:+5", "+8:05"} {
		_, err = Normalize(signed)
		assert.ErrorIs(t, err, ErrInvalidTime, signed)
	}
}

func TestFormatTo12Hour(t *testing.T) {
	assert.Equal(t, "12:05 am", FormatTo12Hour("00:05"))
	assert.Equal(t, "1:00 pm", FormatTo12Hour("13:00"))
	assert.Equal(t, "12:30 pm", FormatTo12Hour("12:30"))
	assert.Equal(t, "11:59 pm", FormatTo12Hour("23:59"))
	assert.Equal(t, "9:07 am", FormatTo12Hour("09:07"))
	assert.Equal(t, "garbage", FormatTo12Hour("garbage"))
}

func TestFormatTo12HourShape(t *testing.T) {
	shape := regexp.MustCompile(`^(1[0-2]|[1-9]):[0-5][0-9] (am|pm)$`)
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m += 7 {
			in := fmt.Sprintf("%02d:%02d", h, m)
			assert.Regexp(t, shape, FormatTo12Hour(in), in)
		}
	}
}

func TestComputeDifference(t *testing.T) {
	now := base
	target := base.Add(2*time.Hour + 10*time.Minute)

	diff := ComputeDifference(target, now)
	assert.Equal(t, Difference{Hours: 2, Minutes: 10, TotalMinutes: 130, IsPast: false}, diff)

	swapped := ComputeDifference(now, target)
	assert.Equal(t, Difference{Hours: 2, Minutes: 10, TotalMinutes: 130, IsPast: true}, swapped)
}

func TestComputeDifferenceSymmetry(t *testing.T) {
	for _, d := range []time.Duration{time.Second, 59 * time.Second, 5 * time.Minute, 61*time.Minute + 30*time.Second, 23 * time.Hour} {
		a := ComputeDifference(base.Add(d), base)
		b := ComputeDifference(base, base.Add(d))
		assert.Equal(t, a.Hours, b.Hours, d)
		assert.Equal(t, a.Minutes, b.Minutes, d)
		assert.Equal(t, a.TotalMinutes, b.TotalMinutes, d)
		assert.NotEqual(t, a.IsPast, b.IsPast, d)
	}
}

func TestComputeDifferenceEqualIsNotPast(t *testing.T) {
	assert.False(t, ComputeDifference(base, base).IsPast)
}

func TestFormatRelative(t *testing.T) {
	assert.Equal(t, "in 5m", FormatRelative(DifferenceOf(5*time.Minute)))
	assert.Equal(t, "in 0m", FormatRelative(DifferenceOf(0)))
	assert.Equal(t, "in 2h 10m", FormatRelative(DifferenceOf(130*time.Minute)))
	assert.Equal(t, "in 1h 0m", FormatRelative(DifferenceOf(time.Hour)))
	assert.Equal(t, "0h 5m ago", FormatRelative(DifferenceOf(-5*time.Minute)))
	assert.Equal(t, "2h 10m ago", FormatRelative(DifferenceOf(-130*time.Minute)))
}

func TestCountdown(t *testing.T) {
	assert.Equal(t, "Arriving now", Countdown(20*time.Second))
	assert.Equal(t, "1 min left", Countdown(40*time.Second))
	assert.Equal(t, "5 min left", Countdown(5*time.Minute))
	assert.Equal(t, "1h 0m left", Countdown(60*time.Minute))
	assert.Equal(t, "2h 5m left", Countdown(125*time.Minute))
	assert.Equal(t, "0h 3m ago", Countdown(-3*time.Minute))
}

func TestNextVisit(t *testing.T) {
	times := [2]string{"8:30 AM", "4:30 PM"}

	got, ok := NextVisit(times, time.Date(2025, 6, 15, 7, 0, 0, 0, time.Local))
	assert.True(t, ok)
	assert.Equal(t, "8:30 AM", got)

	got, ok = NextVisit(times, time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local))
	assert.True(t, ok)
	assert.Equal(t, "4:30 PM", got)

	_, ok = NextVisit(times, time.Date(2025, 6, 15, 18, 0, 0, 0, time.Local))
	assert.False(t, ok)
}

func TestMidnight(t *testing.T) {
	m := Midnight(base)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local), m)
}
