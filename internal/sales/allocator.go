package sales

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Application records how much of a payment was applied to one sale.
type Application struct {
	SaleID  uint            `json:"sale_id"`
	Applied decimal.Decimal `json:"applied"`
}

// AllocationResult is the outcome of distributing a payment across a
// buyer's outstanding sales.
type AllocationResult struct {
	Applications []Application   `json:"applications"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// Allocate distributes a payment across the given unpaid sales, oldest
// first (ties broken by sale ID so same-date sales allocate
// deterministically). Each sale's paid amount, due amount and payment
// status are updated in place until the payment is exhausted or no due
// balance remains. A non-positive amount is a no-op.
//
// Any remainder left after all dues are cleared is returned but not carried
// anywhere else; the ledger does not track overpayment credit.
func Allocate(unpaid []*Sale, amount decimal.Decimal) AllocationResult {
	result := AllocationResult{
		Applications: []Application{},
		Remaining:    amount,
	}
	if amount.Sign() <= 0 {
		result.Remaining = decimal.Zero
		return result
	}

	sort.SliceStable(unpaid, func(i, j int) bool {
		if unpaid[i].Date.Equal(unpaid[j].Date) {
			return unpaid[i].ID < unpaid[j].ID
		}
		return unpaid[i].Date.Before(unpaid[j].Date)
	})

	for _, sale := range unpaid {
		if result.Remaining.Sign() <= 0 {
			break
		}
		due := sale.TotalAmount.Sub(sale.PaidAmount)
		if due.Sign() <= 0 {
			continue
		}
		applied := decimal.Min(due, result.Remaining)
		sale.PaidAmount = sale.PaidAmount.Add(applied)
		result.Remaining = result.Remaining.Sub(applied)
		sale.Normalize()
		result.Applications = append(result.Applications, Application{
			SaleID:  sale.ID,
			Applied: applied,
		})
	}
	return result
}
