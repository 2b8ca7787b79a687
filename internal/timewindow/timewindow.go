// Package timewindow aligns reporting ranges to whole calendar months in UTC.
package timewindow

import "time"

const Layout = "2006-01-02 15:04:05"

type Window struct {
	Start time.Time
	End   time.Time
}

// Normalize widens [start, end] so it begins at 00:00:00 UTC on the first day
// of start's month and ends at 23:59:59 UTC on the last day of end's month.
func Normalize(start, end time.Time) Window {
	return Window{
		Start: StartOfMonth(start),
		End:   StartOfMonth(end).AddDate(0, 1, 0).Add(-time.Second),
	}
}

// Trailing returns the window covering the month of now and the months-1
// months before it.
func Trailing(now time.Time, months int) Window {
	if months < 1 {
		months = 1
	}
	return Normalize(StartOfMonth(now).AddDate(0, -(months-1), 0), now)
}

func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Until is the exclusive upper bound for range queries. Using it instead of
// End keeps sub-second timestamps in the last second of the month inside the window.
func (w Window) Until() time.Time {
	return w.End.Add(time.Second)
}

func (w Window) StartString() string {
	return w.Start.Format(Layout)
}

func (w Window) EndString() string {
	return w.End.Format(Layout)
}

// Months lists every YYYY-MM key in the window in ascending order.
func (w Window) Months() []string {
	var out []string
	for m := StartOfMonth(w.Start); !m.After(w.End); m = m.AddDate(0, 1, 0) {
		out = append(out, m.Format("2006-01"))
	}
	return out
}
