package worktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2026-03-06 is a Friday.
func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}

func TestWindow_Contains(t *testing.T) {
	w := BusinessWindow(time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"FridayMorning", at(6, 6, 0), true},
		{"FridayBeforeOpen", at(6, 5, 59), false},
		{"FridayLastHour", at(6, 18, 59), true},
		{"FridayClosed", at(6, 19, 0), false},
		{"Saturday", at(7, 10, 0), false},
		{"Sunday", at(8, 10, 0), false},
		{"Monday", at(9, 6, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Contains(tt.t))
		})
	}
}

func TestWindow_ContainsUsesSiteTimezone(t *testing.T) {
	sydney := time.FixedZone("AEDT", 11*60*60)
	w := BusinessWindow(sydney)

	// 20:00 UTC Thursday is 07:00 Friday in Sydney.
	assert.True(t, w.Contains(time.Date(2026, 3, 5, 20, 0, 0, 0, time.UTC)))
	// 09:00 UTC Friday is 20:00 Friday in Sydney.
	assert.False(t, w.Contains(time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)))
}

func TestWindow_ElapsedHours_SkipsWeekend(t *testing.T) {
	w := BusinessWindow(time.UTC)
	start := at(6, 18, 0)

	assert.Equal(t, 0, w.ElapsedHours(start, at(6, 18, 59)))
	assert.Equal(t, 1, w.ElapsedHours(start, at(6, 19, 0)))
	assert.Equal(t, 1, w.ElapsedHours(start, at(8, 23, 0)), "weekend adds nothing")
	assert.Equal(t, 1, w.ElapsedHours(start, at(9, 6, 0)))
	assert.Equal(t, 2, w.ElapsedHours(start, at(9, 7, 0)))
	assert.Equal(t, 14, w.ElapsedHours(start, at(9, 19, 0)))
}

func TestWindow_ElapsedHours_FortyEightLandsThursday(t *testing.T) {
	w := BusinessWindow(time.UTC)
	start := at(6, 18, 0)

	// Friday 1h, Monday to Wednesday 13h each, Thursday 06:00-14:00 8h.
	assert.Equal(t, 47, w.ElapsedHours(start, at(12, 13, 59)))
	assert.Equal(t, 48, w.ElapsedHours(start, at(12, 14, 0)))
}

func TestWindow_ElapsedHours_InvalidSpan(t *testing.T) {
	w := BusinessWindow(time.UTC)
	assert.Equal(t, 0, w.ElapsedHours(time.Time{}, at(6, 10, 0)))
	assert.Equal(t, 0, w.ElapsedHours(at(6, 10, 0), at(6, 9, 0)))
}

func TestClockTime_Matches(t *testing.T) {
	c := ClockTime{Hour: 11, Minute: 25}
	assert.Equal(t, "11:25", c.String())
	assert.True(t, c.Matches(at(6, 11, 25), time.UTC))
	assert.True(t, c.Matches(at(6, 11, 25).Add(59*time.Second), time.UTC))
	assert.False(t, c.Matches(at(6, 11, 26), time.UTC))
	assert.False(t, c.Matches(at(6, 11, 25), time.FixedZone("X", 3600)))
}
