// Package storage opens the relational database and prepares its schema.
package storage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gherbooks/internal/auth"
	"gherbooks/internal/config"
	"gherbooks/internal/expense"
	"gherbooks/internal/farm"
	"gherbooks/internal/income"
	"gherbooks/internal/ledger"
	"gherbooks/internal/sales"
)

// Open connects to postgres and migrates the schema.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&auth.User{},
		&ledger.Creditor{},
		&ledger.CreditorTransaction{},
		&ledger.Debtor{},
		&ledger.DebtorTransaction{},
		&ledger.Contributor{},
		&ledger.ContributorTransaction{},
		&expense.ExpenseType{},
		&expense.Expense{},
		&farm.Pond{},
		&farm.Supplier{},
		&farm.SupplierTransaction{},
		&farm.Unit{},
		&farm.FishFeed{},
		&farm.FeedPurchase{},
		&farm.FeedUsage{},
		&farm.LaborCost{},
		&sales.Buyer{},
		&sales.Sale{},
		&sales.SaleItem{},
		&sales.BuyerTransaction{},
		&income.Person{},
		&income.Organization{},
		&income.Income{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SeedDefaultUnits inserts the shared measurement units once.
func SeedDefaultUnits(db *gorm.DB) error {
	var count int64
	if err := db.Model(&farm.Unit{}).Where("is_default = ?", true).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check default units: %w", err)
	}
	if count > 0 {
		return nil
	}
	units := farm.DefaultUnits()
	if err := db.Create(&units).Error; err != nil {
		return fmt.Errorf("failed to seed default units: %w", err)
	}
	return nil
}
