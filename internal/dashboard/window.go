package dashboard

import "time"

// Window is a half-open [Start, End) calendar month.
type Window struct {
	Start time.Time
	End   time.Time
}

// Label formats the window's month for trend charts.
func (w Window) Label() string {
	return w.Start.Format("Jan 2006")
}

// MonthWindows returns the n calendar months ending with the month of end,
// oldest first.
func MonthWindows(end time.Time, n int) []Window {
	windows := make([]Window, 0, n)
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	start = start.AddDate(0, -(n - 1), 0)
	for i := 0; i < n; i++ {
		windows = append(windows, Window{
			Start: start,
			End:   start.AddDate(0, 1, 0),
		})
		start = start.AddDate(0, 1, 0)
	}
	return windows
}
