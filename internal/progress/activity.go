package progress

import (
	"sort"
	"time"
)

// DayCount is the number of successful attempts on one calendar day.
type DayCount struct {
	Day   time.Time // midnight, local time
	Count int
}

// DailyActivity groups success timestamps by local calendar day, oldest
// day first. Days without successes are omitted.
func DailyActivity(times []time.Time) []DayCount {
	counts := make(map[time.Time]int)
	for _, t := range times {
		t = t.Local()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
		counts[day]++
	}

	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}
