package history

import "time"

// GroupByDate partitions events into calendar-day sections titled "Today",
// "Yesterday", or a long-form date. Input is assumed newest-first, so
// sections appear in the order their day is first encountered and events keep
// their input order inside each section. Events without a time bucket under
// today.
func GroupByDate(events []Event) []Section {
	return groupByDate(events, time.Now())
}

func groupByDate(events []Event, now time.Time) []Section {
	yesterday := now.AddDate(0, 0, -1)

	var sections []Section
	index := make(map[string]int)

	for _, ev := range events {
		t := now
		if ev.Time != nil {
			t = *ev.Time
		}

		var title string
		switch {
		case sameDay(t, now):
			title = "Today"
		case sameDay(t, yesterday):
			title = "Yesterday"
		default:
			title = t.Format("January 2, 2006")
		}

		i, ok := index[title]
		if !ok {
			i = len(sections)
			index[title] = i
			sections = append(sections, Section{Title: title})
		}
		sections[i].Events = append(sections[i].Events, ev)
	}

	return sections
}

// sameDay compares calendar components, not elapsed duration, so month and
// year boundaries bucket correctly.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
