package sales

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorage implements Storage on a relational database.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a Storage backed by the given gorm handle.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure and deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return ErrConflict
		}
	}
	return err
}

func (g *GormStorage) CreateBuyer(b *Buyer) error {
	return translateError(g.db.Create(b).Error)
}

func (g *GormStorage) BuyerByID(userID, id uint) (*Buyer, error) {
	var b Buyer
	err := g.db.Where("id = ? AND user_id = ?", id, userID).First(&b).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &b, nil
}

func (g *GormStorage) Buyers(userID uint) ([]*Buyer, error) {
	var buyers []*Buyer
	err := g.db.Where("user_id = ?", userID).Order("id").Find(&buyers).Error
	return buyers, translateError(err)
}

func (g *GormStorage) SaveBuyer(b *Buyer) error {
	return translateError(g.db.Save(b).Error)
}

func (g *GormStorage) DeleteBuyer(b *Buyer) error {
	return translateError(g.db.Delete(b).Error)
}

func (g *GormStorage) CreateSale(s *Sale) error {
	return translateError(g.db.Create(s).Error)
}

func (g *GormStorage) SaleByID(userID, id uint) (*Sale, error) {
	var s Sale
	err := g.db.Preload("Items").Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

func (g *GormStorage) Sales(userID uint) ([]*Sale, error) {
	var sales []*Sale
	err := g.db.Preload("Items").Where("user_id = ?", userID).Order("date DESC").Find(&sales).Error
	return sales, translateError(err)
}

func ranged(query *gorm.DB, column string, r DateRange) *gorm.DB {
	if r.From != nil {
		query = query.Where(column+" >= ?", *r.From)
	}
	if r.To != nil {
		query = query.Where(column+" <= ?", *r.To)
	}
	return query
}

func (g *GormStorage) SalesByBuyer(buyerID uint, r DateRange) ([]*Sale, error) {
	var sales []*Sale
	query := ranged(g.db.Where("buyer_id = ?", buyerID), "date", r)
	err := query.Order("date DESC").Find(&sales).Error
	return sales, translateError(err)
}

func (g *GormStorage) DeleteSale(s *Sale) error {
	return translateError(g.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", s.ID).Delete(&SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(s).Error
	}))
}

func (g *GormStorage) TransactionsByBuyer(buyerID uint, r DateRange) ([]*BuyerTransaction, error) {
	var transactions []*BuyerTransaction
	query := ranged(g.db.Where("buyer_id = ?", buyerID), "date", r)
	err := query.Order("date DESC").Find(&transactions).Error
	return transactions, translateError(err)
}

func (g *GormStorage) InTransaction(fn func(tx TxScope) error) error {
	return translateError(g.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	}))
}

type gormTx struct {
	db *gorm.DB
}

func (tx *gormTx) CreateTransaction(t *BuyerTransaction) error {
	return tx.db.Create(t).Error
}

// UnpaidSalesForUpdate locks the buyer's outstanding sale rows so two
// concurrent payments cannot both read the same stale paid amount.
func (tx *gormTx) UnpaidSalesForUpdate(buyerID uint) ([]*Sale, error) {
	var sales []*Sale
	err := tx.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("buyer_id = ? AND payment_status <> ?", buyerID, StatusPaid).
		Order("date, id").
		Find(&sales).Error
	return sales, err
}

func (tx *gormTx) SaveSale(s *Sale) error {
	return tx.db.Omit("Items").Save(s).Error
}
