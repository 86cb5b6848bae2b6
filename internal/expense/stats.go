package expense

import (
	"sort"
	"time"
)

// CategoryAmount is one slice of the category breakdown.
type CategoryAmount struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthAmount is one bar of the monthly trend.
type MonthAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Overview is the yearly spending report backing the expenses dashboard.
type Overview struct {
	TotalSpentYear  float64          `json:"total_spent_year"`
	AvgMonthlySpend float64          `json:"avg_monthly_spend"`
	MaxMonthlySpend float64          `json:"max_monthly_spend"`
	PieChartData    []CategoryAmount `json:"pie_chart_data"`
	BarChartData    []MonthAmount    `json:"bar_chart_data"`
}

// BuildOverview aggregates one year of expenses. typeNames maps expense
// type IDs to display names; uncategorized entries are grouped under
// "Uncategorized". The monthly average divides by elapsed months when the
// target year is the current one.
func BuildOverview(expenses []Expense, typeNames map[uint]string, year int, now time.Time) Overview {
	var total float64
	categories := map[string]float64{}
	months := [13]float64{} // 1-based

	for _, e := range expenses {
		if e.Date.Year() != year {
			continue
		}
		total += e.Amount
		name := "Uncategorized"
		if e.ExpenseTypeID != nil {
			if n, ok := typeNames[*e.ExpenseTypeID]; ok {
				name = n
			}
		}
		categories[name] += e.Amount
		months[int(e.Date.Month())] += e.Amount
	}

	monthsCount := 12
	switch {
	case year == now.Year():
		monthsCount = int(now.Month())
	case year > now.Year():
		monthsCount = 1
	}

	pie := make([]CategoryAmount, 0, len(categories))
	for name, value := range categories {
		pie = append(pie, CategoryAmount{Name: name, Value: value})
	}
	sort.Slice(pie, func(i, j int) bool { return pie[i].Value > pie[j].Value })

	var maxMonthly float64
	bars := make([]MonthAmount, 0, 12)
	for m := time.January; m <= time.December; m++ {
		amount := months[int(m)]
		if amount > maxMonthly {
			maxMonthly = amount
		}
		bars = append(bars, MonthAmount{Name: m.String()[:3], Amount: amount})
	}

	return Overview{
		TotalSpentYear:  total,
		AvgMonthlySpend: total / float64(monthsCount),
		MaxMonthlySpend: maxMonthly,
		PieChartData:    pie,
		BarChartData:    bars,
	}
}
