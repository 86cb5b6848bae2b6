package income

import (
	"errors"
	"time"
)

// Income types.
const (
	TypeSalary     = "SALARY"
	TypeBonus      = "BONUS"
	TypeCommission = "COMMISSION"
	TypeAllowance  = "ALLOWANCE"
	TypeOther      = "OTHER"
)

// ErrNotFound is returned when an income record, person or organization
// does not exist or belongs to another user.
var ErrNotFound = errors.New("record not found")

// Person is an earner whose income is tracked.
type Person struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null"`
	Phone       *string `json:"phone"`
	Designation *string `json:"designation"`
	IsActive    bool    `json:"is_active" gorm:"default:true"`
	UserID      uint    `json:"user_id" gorm:"not null;index"`
}

// Organization is a source of income payments.
type Organization struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	Name          string  `json:"name" gorm:"not null"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	IsActive      bool    `json:"is_active" gorm:"default:true"`
	UserID        uint    `json:"user_id" gorm:"not null;index"`
}

// Income is one payment received by a person from an organization.
type Income struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	PersonID       uint      `json:"person_id" gorm:"not null;index"`
	OrganizationID uint      `json:"organization_id" gorm:"not null;index"`
	Amount         float64   `json:"amount" gorm:"not null"`
	Date           time.Time `json:"date" gorm:"not null;index"`
	IncomeType     string    `json:"income_type" gorm:"default:SALARY"`
	Note           *string   `json:"note"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
}
