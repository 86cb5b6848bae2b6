package expense

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an expense or expense type does not exist or
// belongs to another user.
var ErrNotFound = errors.New("record not found")

// ExpenseType is a user-defined spending category.
type ExpenseType struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
	UserID   uint   `json:"user_id" gorm:"not null;index"`
}

// Expense is one spending entry, optionally categorized.
type Expense struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Amount        float64   `json:"amount" gorm:"not null"`
	Description   *string   `json:"description"`
	Date          time.Time `json:"date" gorm:"not null;index"`
	ExpenseTypeID *uint     `json:"expense_type_id"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
}
