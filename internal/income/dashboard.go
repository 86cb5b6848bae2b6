package income

import (
	"sort"
	"time"
)

// NamedValue is one slice of a breakdown chart.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthAmount is one point of the monthly trend.
type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// DashboardSummary holds headline totals for the income dashboard.
type DashboardSummary struct {
	TotalIncome     float64 `json:"total_income"`
	MonthIncome     float64 `json:"month_income"`
	LastMonthIncome float64 `json:"last_month_income"`
}

// DashboardCharts groups the breakdown charts.
type DashboardCharts struct {
	ByType         []NamedValue `json:"by_type"`
	ByOrganization []NamedValue `json:"by_organization"`
	ByPerson       []NamedValue `json:"by_person"`
}

// Dashboard is the income dashboard response.
type Dashboard struct {
	Summary DashboardSummary `json:"summary"`
	Trends  []MonthAmount    `json:"trends"`
	Charts  DashboardCharts  `json:"charts"`
}

const monthLabel = "Jan 2006"

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// BuildDashboard aggregates income rows into the dashboard view. The rows
// are expected to be pre-filtered to the requested range; allRows carries
// the user's complete history for the this-month / last-month context
// figures. Breakdowns are capped at the top five organizations and persons.
func BuildDashboard(rows, allRows []Income, personNames, orgNames map[uint]string, now time.Time) Dashboard {
	var d Dashboard

	thisMonth := monthStart(now)
	lastMonth := monthStart(thisMonth.AddDate(0, 0, -1))
	for _, in := range allRows {
		if !in.Date.Before(thisMonth) {
			d.Summary.MonthIncome += in.Amount
		} else if !in.Date.Before(lastMonth) {
			d.Summary.LastMonthIncome += in.Amount
		}
	}

	byType := map[string]float64{}
	byOrg := map[uint]float64{}
	byPerson := map[uint]float64{}
	byMonth := map[time.Time]float64{}
	for _, in := range rows {
		d.Summary.TotalIncome += in.Amount
		byType[in.IncomeType] += in.Amount
		byOrg[in.OrganizationID] += in.Amount
		byPerson[in.PersonID] += in.Amount
		byMonth[monthStart(in.Date)] += in.Amount
	}

	months := make([]time.Time, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	for _, m := range months {
		d.Trends = append(d.Trends, MonthAmount{Month: m.Format(monthLabel), Amount: byMonth[m]})
	}

	d.Charts.ByType = sortedValues(byType)
	d.Charts.ByOrganization = topValues(byOrg, orgNames, 5)
	d.Charts.ByPerson = topValues(byPerson, personNames, 5)
	return d
}

func sortedValues(m map[string]float64) []NamedValue {
	values := make([]NamedValue, 0, len(m))
	for name, value := range m {
		values = append(values, NamedValue{Name: name, Value: value})
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Value > values[j].Value })
	return values
}

func topValues(m map[uint]float64, names map[uint]string, limit int) []NamedValue {
	values := make([]NamedValue, 0, len(m))
	for id, value := range m {
		name, ok := names[id]
		if !ok {
			name = "Unknown"
		}
		values = append(values, NamedValue{Name: name, Value: value})
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Value > values[j].Value })
	if len(values) > limit {
		values = values[:limit]
	}
	return values
}
