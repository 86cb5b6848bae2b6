package sales

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, time.March, n, 0, 0, 0, 0, time.UTC)
}

func unpaidSale(id uint, date time.Time, total, paid float64) *Sale {
	s := &Sale{
		ID:          id,
		Date:        date,
		TotalAmount: decimal.NewFromFloat(total),
		PaidAmount:  decimal.NewFromFloat(paid),
	}
	s.Normalize()
	return s
}

func TestAllocatePaysOldestSaleFirst(t *testing.T) {
	d1 := unpaidSale(1, day(1), 100, 0)
	d2 := unpaidSale(2, day(2), 200, 0)
	d3 := unpaidSale(3, day(3), 300, 0)

	result := Allocate([]*Sale{d3, d1, d2}, decimal.NewFromInt(100))

	require.Len(t, result.Applications, 1)
	assert.Equal(t, uint(1), result.Applications[0].SaleID)
	assert.True(t, result.Applications[0].Applied.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.Remaining.IsZero())

	assert.Equal(t, StatusPaid, d1.PaymentStatus)
	assert.True(t, d1.DueAmount.IsZero())
	assert.Equal(t, StatusDue, d2.PaymentStatus)
	assert.True(t, d2.DueAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, StatusDue, d3.PaymentStatus)
	assert.True(t, d3.DueAmount.Equal(decimal.NewFromInt(300)))
}

func TestAllocatePartialPayment(t *testing.T) {
	d1 := unpaidSale(1, day(1), 100, 0)
	d2 := unpaidSale(2, day(2), 200, 0)

	result := Allocate([]*Sale{d1, d2}, decimal.NewFromFloat(40.5))

	require.Len(t, result.Applications, 1)
	assert.True(t, result.Applications[0].Applied.Equal(decimal.NewFromFloat(40.5)))
	assert.Equal(t, StatusPartial, d1.PaymentStatus)
	assert.True(t, d1.DueAmount.Equal(decimal.NewFromFloat(59.5)))
	assert.Equal(t, StatusDue, d2.PaymentStatus)
}

func TestAllocateExactAmountAcrossTwoSales(t *testing.T) {
	d1 := unpaidSale(1, day(1), 100, 30)
	d2 := unpaidSale(2, day(2), 200, 0)
	d3 := unpaidSale(3, day(3), 300, 0)

	// d1 due 70 + d2 due 200
	result := Allocate([]*Sale{d1, d2, d3}, decimal.NewFromInt(270))

	require.Len(t, result.Applications, 2)
	assert.True(t, result.Remaining.IsZero())
	assert.Equal(t, StatusPaid, d1.PaymentStatus)
	assert.Equal(t, StatusPaid, d2.PaymentStatus)
	assert.Equal(t, StatusDue, d3.PaymentStatus)
	assert.True(t, d3.DueAmount.Equal(decimal.NewFromInt(300)))
}

func TestAllocateZeroOrNegativeIsNoOp(t *testing.T) {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		d1 := unpaidSale(1, day(1), 100, 0)

		result := Allocate([]*Sale{d1}, amount)

		assert.Empty(t, result.Applications)
		assert.True(t, result.Remaining.IsZero())
		assert.Equal(t, StatusDue, d1.PaymentStatus)
		assert.True(t, d1.PaidAmount.IsZero())
	}
}

func TestAllocateNothingOutstanding(t *testing.T) {
	d1 := unpaidSale(1, day(1), 100, 100)
	d2 := unpaidSale(2, day(2), 50, 50)

	result := Allocate([]*Sale{d1, d2}, decimal.NewFromInt(50))

	assert.Empty(t, result.Applications)
	assert.True(t, result.Remaining.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, StatusPaid, d1.PaymentStatus)
	assert.Equal(t, StatusPaid, d2.PaymentStatus)
}

func TestAllocateSameDateOrderedByID(t *testing.T) {
	a := unpaidSale(7, day(1), 100, 0)
	b := unpaidSale(3, day(1), 100, 0)

	result := Allocate([]*Sale{a, b}, decimal.NewFromInt(100))

	require.Len(t, result.Applications, 1)
	assert.Equal(t, uint(3), result.Applications[0].SaleID)
	assert.Equal(t, StatusPaid, b.PaymentStatus)
	assert.Equal(t, StatusDue, a.PaymentStatus)
}

func TestAllocateSkipsSaleWithNoDue(t *testing.T) {
	// Status says partial but the sale carries no due balance; the
	// allocator must skip it rather than apply a zero amount.
	stale := &Sale{
		ID:            1,
		Date:          day(1),
		TotalAmount:   decimal.NewFromInt(100),
		PaidAmount:    decimal.NewFromInt(100),
		DueAmount:     decimal.Zero,
		PaymentStatus: StatusPartial,
	}
	d2 := unpaidSale(2, day(2), 80, 0)

	result := Allocate([]*Sale{stale, d2}, decimal.NewFromInt(80))

	require.Len(t, result.Applications, 1)
	assert.Equal(t, uint(2), result.Applications[0].SaleID)
	assert.Equal(t, StatusPaid, d2.PaymentStatus)
}

func TestAllocatePaidNeverExceedsBilled(t *testing.T) {
	sales := []*Sale{
		unpaidSale(1, day(1), 120, 0),
		unpaidSale(2, day(2), 80, 20),
		unpaidSale(3, day(3), 45.25, 0),
	}
	billed := decimal.Zero
	for _, s := range sales {
		billed = billed.Add(s.TotalAmount)
	}

	for _, payment := range []float64{30, 70.50, 19.75, 500} {
		Allocate(sales, decimal.NewFromFloat(payment))
	}

	paid := decimal.Zero
	for _, s := range sales {
		paid = paid.Add(s.PaidAmount)
		assert.GreaterOrEqual(t, s.DueAmount.Sign(), 0, "due must never go negative")
	}
	assert.True(t, paid.LessThanOrEqual(billed), "paid %s exceeds billed %s", paid, billed)
	assert.True(t, paid.Equal(billed), "a 500 overpayment should have cleared every due")
}

func TestDeriveStatusIdempotent(t *testing.T) {
	cases := []struct {
		total, paid float64
		want        string
	}{
		{100, 0, StatusDue},
		{100, 40, StatusPartial},
		{100, 100, StatusPaid},
		{100, 120, StatusPaid},
	}
	for _, tc := range cases {
		total := decimal.NewFromFloat(tc.total)
		paid := decimal.NewFromFloat(tc.paid)
		first := DeriveStatus(total, paid)
		assert.Equal(t, tc.want, first)
		assert.Equal(t, first, DeriveStatus(total, paid))
	}
}
