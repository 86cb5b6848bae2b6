package expense

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expenseOn(month time.Month, amount float64, typeID *uint) Expense {
	return Expense{
		Amount:        amount,
		Date:          time.Date(2025, month, 10, 0, 0, 0, 0, time.UTC),
		ExpenseTypeID: typeID,
	}
}

func TestBuildOverview(t *testing.T) {
	feedType := uint(1)
	expenses := []Expense{
		expenseOn(time.January, 100, &feedType),
		expenseOn(time.January, 50, nil),
		expenseOn(time.March, 200, &feedType),
		{Amount: 999, Date: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)}, // other year
	}
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	overview := BuildOverview(expenses, map[uint]string{feedType: "Feed"}, 2025, now)

	assert.Equal(t, 350.0, overview.TotalSpentYear)
	// June of the current year: divide by 6 elapsed months.
	assert.InDelta(t, 350.0/6, overview.AvgMonthlySpend, 1e-9)
	assert.Equal(t, 200.0, overview.MaxMonthlySpend)

	require.Len(t, overview.PieChartData, 2)
	assert.Equal(t, CategoryAmount{Name: "Feed", Value: 300}, overview.PieChartData[0])
	assert.Equal(t, CategoryAmount{Name: "Uncategorized", Value: 50}, overview.PieChartData[1])

	require.Len(t, overview.BarChartData, 12)
	assert.Equal(t, MonthAmount{Name: "Jan", Amount: 150}, overview.BarChartData[0])
	assert.Equal(t, MonthAmount{Name: "Mar", Amount: 200}, overview.BarChartData[2])
}

func TestBuildOverviewPastYearDividesByTwelve(t *testing.T) {
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	overview := BuildOverview([]Expense{
		{Amount: 120, Date: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)},
	}, nil, 2025, now)

	assert.Equal(t, 120.0, overview.TotalSpentYear)
	assert.InDelta(t, 10.0, overview.AvgMonthlySpend, 1e-9)
}

func TestBuildOverviewEmpty(t *testing.T) {
	overview := BuildOverview(nil, nil, 2025, time.Now())
	assert.Zero(t, overview.TotalSpentYear)
	assert.Zero(t, overview.MaxMonthlySpend)
	assert.Empty(t, overview.PieChartData)
}
