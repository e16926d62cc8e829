package businessflow

import "time"

// DatePair is one weekend-shaped round trip to query against providers.
type DatePair struct {
	Depart time.Time
	Return time.Time
}

// GenerateWeekendDatePairs enumerates every Thursday→Sunday, Thursday→Monday,
// Friday→Sunday and Friday→Monday combination whose return date falls within
// the inclusive [start, end] range, walking the range day by day.
//
// Overlapping weekend shapes are emitted by design: a Friday may pair with
// both the following Sunday and Monday. Each pair is a genuinely distinct
// trip, so no deduplication happens here.
func GenerateWeekendDatePairs(start, end time.Time) []DatePair {
	start = truncateDay(start)
	end = truncateDay(end)

	var pairs []DatePair
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		switch current.Weekday() {
		case time.Thursday:
			sun := current.AddDate(0, 0, 3)
			mon := current.AddDate(0, 0, 4)
			if !sun.After(end) {
				pairs = append(pairs, DatePair{Depart: current, Return: sun})
			}
			if !mon.After(end) {
				pairs = append(pairs, DatePair{Depart: current, Return: mon})
			}
		case time.Friday:
			sun := current.AddDate(0, 0, 2)
			mon := current.AddDate(0, 0, 3)
			if !sun.After(end) {
				pairs = append(pairs, DatePair{Depart: current, Return: sun})
			}
			if !mon.After(end) {
				pairs = append(pairs, DatePair{Depart: current, Return: mon})
			}
		}
	}
	return pairs
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
