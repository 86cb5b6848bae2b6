package income

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incomeOn(year int, month time.Month, amount float64, personID, orgID uint, incomeType string) Income {
	return Income{
		PersonID:       personID,
		OrganizationID: orgID,
		Amount:         amount,
		Date:           time.Date(year, month, 15, 0, 0, 0, 0, time.UTC),
		IncomeType:     incomeType,
	}
}

func TestBuildDashboard(t *testing.T) {
	rows := []Income{
		incomeOn(2025, time.June, 1000, 1, 1, TypeSalary),
		incomeOn(2025, time.June, 200, 1, 2, TypeBonus),
		incomeOn(2025, time.July, 1000, 2, 1, TypeSalary),
	}
	now := time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)

	d := BuildDashboard(rows, rows,
		map[uint]string{1: "Rahim", 2: "Karim"},
		map[uint]string{1: "Acme", 2: "Globex"},
		now,
	)

	assert.Equal(t, 2200.0, d.Summary.TotalIncome)
	assert.Equal(t, 1000.0, d.Summary.MonthIncome)
	assert.Equal(t, 1200.0, d.Summary.LastMonthIncome)

	require.Len(t, d.Trends, 2)
	assert.Equal(t, MonthAmount{Month: "Jun 2025", Amount: 1200}, d.Trends[0])
	assert.Equal(t, MonthAmount{Month: "Jul 2025", Amount: 1000}, d.Trends[1])

	require.Len(t, d.Charts.ByType, 2)
	assert.Equal(t, NamedValue{Name: TypeSalary, Value: 2000}, d.Charts.ByType[0])
	assert.Equal(t, NamedValue{Name: "Acme", Value: 2000}, d.Charts.ByOrganization[0])
	assert.Equal(t, NamedValue{Name: "Rahim", Value: 1200}, d.Charts.ByPerson[0])
}

func TestBuildDashboardTopFiveCap(t *testing.T) {
	var rows []Income
	names := map[uint]string{}
	for i := uint(1); i <= 7; i++ {
		rows = append(rows, incomeOn(2025, time.May, float64(i*10), i, i, TypeOther))
		names[i] = "P"
	}
	d := BuildDashboard(rows, rows, names, names, time.Now())
	assert.Len(t, d.Charts.ByPerson, 5)
	assert.Len(t, d.Charts.ByOrganization, 5)
	// Largest contributors first.
	assert.Equal(t, 70.0, d.Charts.ByPerson[0].Value)
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil, nil, nil, nil, time.Now())
	assert.Zero(t, d.Summary.TotalIncome)
	assert.Empty(t, d.Trends)
}
