// Package ledger holds the three mirrored personal sub-ledgers: creditors
// (money the user borrowed), debtors (money the user lent out) and
// contributors (capital put into the business).
package ledger

import (
	"errors"
	"time"
)

// Transaction types per sub-ledger.
const (
	TypeBorrow     = "BORROW"
	TypeRepay      = "REPAY"
	TypeLend       = "LEND"
	TypeReceive    = "RECEIVE"
	TypeContribute = "CONTRIBUTE"
	TypeReturn     = "RETURN"
)

// ErrNotFound is returned when a party or transaction does not exist or
// belongs to another user.
var ErrNotFound = errors.New("record not found")

// Creditor is someone the user owes money to.
type Creditor struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"not null"`
	Phone        *string `json:"phone"`
	CreditorType *string `json:"creditor_type"`
	IsActive     bool    `json:"is_active" gorm:"default:true"`
	UserID       uint    `json:"user_id" gorm:"not null;index"`
}

// CreditorTransaction is a BORROW or REPAY entry against a creditor.
type CreditorTransaction struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CreditorID uint      `json:"creditor_id" gorm:"not null;index"`
	Amount     float64   `json:"amount" gorm:"not null"`
	Type       string    `json:"type" gorm:"not null"`
	Date       time.Time `json:"date" gorm:"not null"`
	Note       *string   `json:"note"`
}

// Debtor is someone who owes the user money.
type Debtor struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	Name       string  `json:"name" gorm:"not null"`
	Phone      *string `json:"phone"`
	DebtorType *string `json:"debtor_type"`
	IsActive   bool    `json:"is_active" gorm:"default:true"`
	UserID     uint    `json:"user_id" gorm:"not null;index"`
}

// DebtorTransaction is a LEND or RECEIVE entry against a debtor.
type DebtorTransaction struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	DebtorID uint      `json:"debtor_id" gorm:"not null;index"`
	Amount   float64   `json:"amount" gorm:"not null"`
	Type     string    `json:"type" gorm:"not null"`
	Date     time.Time `json:"date" gorm:"not null"`
	Note     *string   `json:"note"`
}

// Contributor puts capital into the operation and may take it back.
type Contributor struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	Name            string  `json:"name" gorm:"not null"`
	Phone           *string `json:"phone"`
	ContributorType *string `json:"contributor_type"`
	IsActive        bool    `json:"is_active" gorm:"default:true"`
	UserID          uint    `json:"user_id" gorm:"not null;index"`
}

// ContributorTransaction is a CONTRIBUTE or RETURN entry against a
// contributor.
type ContributorTransaction struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ContributorID uint      `json:"contributor_id" gorm:"not null;index"`
	Amount        float64   `json:"amount" gorm:"not null"`
	Type          string    `json:"type" gorm:"not null"`
	Date          time.Time `json:"date" gorm:"not null"`
	Note          *string   `json:"note"`
}
