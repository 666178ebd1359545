package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want Week
	}{
		{name: "mid-march wednesday", in: date(2025, time.March, 12), want: Week{2025, 11}},
		{name: "dec 31 belongs to next year", in: date(2024, time.December, 31), want: Week{2025, 1}},
		{name: "sunday closes its week", in: date(2025, time.January, 5), want: Week{2025, 1}},
		{name: "monday after opens the next", in: date(2025, time.January, 6), want: Week{2025, 2}},
		{name: "jan 1 in week 53", in: date(2021, time.January, 1), want: Week{2020, 53}},
		{name: "week 53 thursday", in: date(2020, time.December, 31), want: Week{2020, 53}},
		{name: "late dec in week 52", in: date(2022, time.December, 28), want: Week{2022, 52}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekOf(tt.in))
		})
	}
}

func TestWeekOf_UsesUTCDate(t *testing.T) {
	// 05:00 Monday in UTC+10 is still Sunday in UTC.
	tz := time.FixedZone("AEST", 10*60*60)
	local := time.Date(2025, time.January, 6, 5, 0, 0, 0, tz)

	assert.Equal(t, Week{2025, 1}, WeekOf(local))
}

func TestWeekOf_MatchesStdlibISOWeek(t *testing.T) {
	start := date(2019, time.January, 1)
	end := date(2031, time.January, 1)

	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		year, week := d.ISOWeek()
		got := WeekOf(d)
		if !assert.Equal(t, Week{year, week}, got, "date %s", d.Format(time.DateOnly)) {
			return
		}
	}
}

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, "W1", WeekLabel(date(2024, time.December, 31)))
	assert.Equal(t, "W11", WeekLabel(date(2025, time.March, 12)))
	assert.Equal(t, "2025-W03", Week{2025, 3}.String())
}
