// Package farm holds the pond-side ("gher") bookkeeping entities: ponds,
// feed suppliers, feed types, feed purchases and usage, labor costs and
// measurement units.
package farm

import (
	"errors"
	"time"
)

// Supplier transaction types.
const (
	PurchaseCash   = "purchase_cash"
	PurchaseCredit = "purchase_credit"
	Payment        = "payment"
)

// ErrNotFound is returned when a farm record does not exist or belongs to
// another user.
var ErrNotFound = errors.New("record not found")

// ErrDefaultUnit is returned when deleting one of the seeded units.
var ErrDefaultUnit = errors.New("cannot delete default units")

// Pond is a single fish pond.
type Pond struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Name     string  `json:"name" gorm:"not null"`
	Location string  `json:"location"`
	Size     *string `json:"size"`
	UserID   uint    `json:"user_id" gorm:"not null;index"`
}

// Supplier sells feed and other inputs, possibly on credit.
type Supplier struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Name    string  `json:"name" gorm:"not null"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	UserID  uint    `json:"user_id" gorm:"not null;index"`
}

// SupplierTransaction is one purchase or payment against a supplier.
type SupplierTransaction struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	SupplierID      uint      `json:"supplier_id" gorm:"not null;index"`
	Date            time.Time `json:"date" gorm:"not null"`
	TransactionType string    `json:"transaction_type" gorm:"not null"`
	Amount          float64   `json:"amount" gorm:"not null"`
	Description     *string   `json:"description"`
}

// Unit is a measurement unit for feed and fish quantities. Default units
// are seeded once and shared by everyone; users may add their own.
type Unit struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	Name      string  `json:"name" gorm:"not null"`
	NameBn    *string `json:"name_bn"`
	IsDefault bool    `json:"is_default" gorm:"default:false"`
	UserID    *uint   `json:"user_id" gorm:"index"`
}

// FishFeed is a feed type (name and brand) used across ponds.
type FishFeed struct {
	ID     uint    `json:"id" gorm:"primaryKey"`
	Name   string  `json:"name" gorm:"not null"`
	Brand  *string `json:"brand"`
	UserID uint    `json:"user_id" gorm:"not null;index"`
}

// FeedPurchase records buying feed from a supplier, optionally for a
// specific pond.
type FeedPurchase struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PondID       *uint     `json:"pond_id" gorm:"index"`
	SupplierID   uint      `json:"supplier_id" gorm:"not null;index"`
	FeedName     string    `json:"feed_name"`
	Quantity     float64   `json:"quantity" gorm:"not null"`
	PricePerUnit float64   `json:"price_per_unit" gorm:"not null"`
	TotalAmount  float64   `json:"total_amount" gorm:"not null"`
	Date         time.Time `json:"date" gorm:"not null;index"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
}

// FeedUsage records feeding a pond. TotalCost is quantity times price.
type FeedUsage struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PondID       uint      `json:"pond_id" gorm:"not null;index"`
	FeedID       uint      `json:"feed_id" gorm:"not null;index"`
	UnitID       uint      `json:"unit_id" gorm:"not null"`
	Quantity     float64   `json:"quantity" gorm:"not null"`
	PricePerUnit float64   `json:"price_per_unit" gorm:"not null"`
	TotalCost    float64   `json:"total_cost" gorm:"not null"`
	Date         time.Time `json:"date" gorm:"not null;index"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
}

// LaborCost is a day-labor expense, optionally tied to a pond.
type LaborCost struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Date        time.Time `json:"date" gorm:"not null"`
	Amount      float64   `json:"amount" gorm:"not null"`
	WorkerCount int       `json:"worker_count" gorm:"not null"`
	Description *string   `json:"description"`
	PondID      *uint     `json:"pond_id"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
}

// DefaultUnits are seeded at startup when no default units exist yet.
func DefaultUnits() []Unit {
	bn := func(s string) *string { return &s }
	return []Unit{
		{Name: "kg", NameBn: bn("কেজি"), IsDefault: true},
		{Name: "mon", NameBn: bn("মণ"), IsDefault: true},
		{Name: "pcs", NameBn: bn("পিস"), IsDefault: true},
		{Name: "ton", NameBn: bn("টন"), IsDefault: true},
	}
}
