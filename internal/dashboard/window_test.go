package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthWindows(t *testing.T) {
	end := time.Date(2025, time.March, 17, 12, 0, 0, 0, time.UTC)
	windows := MonthWindows(end, 6)
	require.Len(t, windows, 6)

	assert.Equal(t, "Oct 2024", windows[0].Label())
	assert.Equal(t, "Mar 2025", windows[5].Label())

	// Windows are contiguous and half-open.
	for i := 1; i < len(windows); i++ {
		assert.True(t, windows[i].Start.Equal(windows[i-1].End))
	}
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), windows[5].End)
}

func TestMonthWindowsYearBoundary(t *testing.T) {
	end := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	windows := MonthWindows(end, 2)
	require.Len(t, windows, 2)
	assert.Equal(t, "Dec 2024", windows[0].Label())
	assert.Equal(t, "Jan 2025", windows[1].Label())
}
