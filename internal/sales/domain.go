package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Payment status of a sale, derived from its due amount.
const (
	StatusPaid    = "paid"
	StatusPartial = "partial"
	StatusDue     = "due"
)

// Transaction types for buyer transactions. Only positive payment
// transactions trigger allocation against outstanding sales.
const (
	TransactionPayment = "payment"
	TransactionDue     = "due"
)

// ErrNotFound is returned when a buyer or sale does not exist or belongs to
// another user.
var ErrNotFound = errors.New("record not found")

// ErrInvalidAmount is returned when an amount is not a finite number.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInvalidTransactionType is returned for transaction types other than
// "payment" or "due".
var ErrInvalidTransactionType = errors.New("invalid transaction type")

// ErrConflict is returned when the underlying store reports a serialization
// conflict. The caller may retry the operation.
var ErrConflict = errors.New("transaction conflict")

// Buyer purchases fish on account and may owe money across multiple sales.
type Buyer struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Name    string  `json:"name" gorm:"not null"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	UserID  uint    `json:"user_id" gorm:"not null;index"`
}

// Sale represents a fish sale to a buyer. DueAmount is always
// TotalAmount - PaidAmount clamped to zero, and PaymentStatus is derived
// from the due amount.
type Sale struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	BuyerID       *uint           `json:"buyer_id" gorm:"index"`
	BuyerName     *string         `json:"buyer_name"`
	Date          time.Time       `json:"date" gorm:"not null;index"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	PaidAmount    decimal.Decimal `json:"paid_amount" gorm:"type:numeric(14,2);not null"`
	DueAmount     decimal.Decimal `json:"due_amount" gorm:"type:numeric(14,2);not null"`
	PaymentStatus string          `json:"payment_status" gorm:"not null;default:due"`
	TotalWeight   *float64        `json:"total_weight"`
	UserID        uint            `json:"user_id" gorm:"not null;index"`
	Items         []SaleItem      `json:"items" gorm:"foreignKey:SaleID"`
}

// SaleItem is one pond's portion of a sale, measured in a unit.
type SaleItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	SaleID      uint            `json:"sale_id" gorm:"not null;index"`
	PondID      uint            `json:"pond_id" gorm:"not null"`
	Quantity    float64         `json:"quantity" gorm:"not null"`
	UnitID      uint            `json:"unit_id" gorm:"not null"`
	RatePerUnit float64         `json:"rate_per_unit" gorm:"not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
}

// BuyerTransaction is a ledger entry against a buyer: money received
// ("payment") or an extra amount owed ("due"). Immutable once recorded.
type BuyerTransaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	BuyerID         uint            `json:"buyer_id" gorm:"not null;index"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	Date            time.Time       `json:"date" gorm:"not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	TransactionType string          `json:"transaction_type" gorm:"not null"`
	Description     *string         `json:"description"`
}

// DeriveStatus classifies a sale's settlement state from its total and paid
// amounts. Recomputing it is idempotent: the same inputs always yield the
// same status.
func DeriveStatus(total, paid decimal.Decimal) string {
	due := total.Sub(paid)
	switch {
	case due.Sign() <= 0:
		return StatusPaid
	case paid.Sign() > 0:
		return StatusPartial
	default:
		return StatusDue
	}
}

// Normalize recomputes the sale's due amount and payment status from its
// total and paid amounts, clamping the due amount to zero.
func (s *Sale) Normalize() {
	s.DueAmount = s.TotalAmount.Sub(s.PaidAmount)
	if s.DueAmount.Sign() < 0 {
		s.DueAmount = decimal.Zero
	}
	s.PaymentStatus = DeriveStatus(s.TotalAmount, s.PaidAmount)
}
