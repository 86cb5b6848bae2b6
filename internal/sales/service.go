package sales

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service provides high-level buyer, sale and payment operations on a
// Storage backend.
type Service struct {
	storage Storage
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// BuyerInput carries the editable fields of a buyer.
type BuyerInput struct {
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// SaleItemInput is one line of a new sale.
type SaleItemInput struct {
	PondID      uint    `json:"pond_id" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	UnitID      uint    `json:"unit_id" binding:"required"`
	RatePerUnit float64 `json:"rate_per_unit"`
	Amount      float64 `json:"amount"`
}

// SaleInput carries a new sale with its items. PaidAmount is the down
// payment taken when the sale was recorded.
type SaleInput struct {
	Date        time.Time       `json:"date"`
	BuyerID     *uint           `json:"buyer_id"`
	BuyerName   *string         `json:"buyer_name"`
	TotalAmount float64         `json:"total_amount"`
	PaidAmount  float64         `json:"paid_amount"`
	TotalWeight *float64        `json:"total_weight"`
	Items       []SaleItemInput `json:"items"`
}

// TransactionInput carries a new buyer transaction.
type TransactionInput struct {
	Date            time.Time `json:"date"`
	Amount          float64   `json:"amount"`
	TransactionType string    `json:"transaction_type" binding:"required"`
	Description     *string   `json:"description"`
}

// BuyerSummary is a buyer together with lifetime purchase totals.
type BuyerSummary struct {
	Buyer
	TotalBought decimal.Decimal `json:"total_bought"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Balance     decimal.Decimal `json:"balance"`
}

// BuyerDetails is the full view of one buyer: lifetime stats plus the
// sales and transactions inside the requested date range.
type BuyerDetails struct {
	Buyer        *Buyer              `json:"buyer"`
	Stats        BuyerStats          `json:"stats"`
	Sales        []*Sale             `json:"sales"`
	Transactions []*BuyerTransaction `json:"transactions"`
}

// BuyerStats are lifetime totals for a buyer.
type BuyerStats struct {
	TotalBought decimal.Decimal `json:"total_bought"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Balance     decimal.Decimal `json:"balance"`
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CreateBuyer records a new buyer for the user.
func (s *Service) CreateBuyer(userID uint, in BuyerInput) (*Buyer, error) {
	buyer := &Buyer{
		Name:    in.Name,
		Phone:   in.Phone,
		Address: in.Address,
		UserID:  userID,
	}
	if err := s.storage.CreateBuyer(buyer); err != nil {
		s.logger.Error("failed to save buyer", zap.Error(err))
		return nil, fmt.Errorf("failed to save buyer: %w", err)
	}
	return buyer, nil
}

// Buyers lists the user's buyers with lifetime bought/paid/balance totals.
func (s *Service) Buyers(userID uint) ([]BuyerSummary, error) {
	buyers, err := s.storage.Buyers(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list buyers: %w", err)
	}
	summaries := make([]BuyerSummary, 0, len(buyers))
	for _, buyer := range buyers {
		stats, err := s.buyerStats(buyer.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, BuyerSummary{
			Buyer:       *buyer,
			TotalBought: stats.TotalBought,
			TotalPaid:   stats.TotalPaid,
			Balance:     stats.Balance,
		})
	}
	return summaries, nil
}

// buyerStats derives lifetime totals from the buyer's sales. Paid is
// bought minus outstanding due so allocated payments are never counted
// twice.
func (s *Service) buyerStats(buyerID uint) (BuyerStats, error) {
	sales, err := s.storage.SalesByBuyer(buyerID, DateRange{})
	if err != nil {
		return BuyerStats{}, fmt.Errorf("failed to load buyer sales: %w", err)
	}
	bought := decimal.Zero
	due := decimal.Zero
	for _, sale := range sales {
		bought = bought.Add(sale.TotalAmount)
		due = due.Add(sale.DueAmount)
	}
	return BuyerStats{
		TotalBought: bought,
		TotalPaid:   bought.Sub(due),
		Balance:     due,
	}, nil
}

// BuyerByID returns a buyer owned by the user.
func (s *Service) BuyerByID(userID, buyerID uint) (*Buyer, error) {
	return s.storage.BuyerByID(userID, buyerID)
}

// Details returns one buyer with lifetime stats and the sales and
// transactions falling inside the given range.
func (s *Service) Details(userID, buyerID uint, r DateRange) (*BuyerDetails, error) {
	buyer, err := s.storage.BuyerByID(userID, buyerID)
	if err != nil {
		return nil, err
	}
	stats, err := s.buyerStats(buyerID)
	if err != nil {
		return nil, err
	}
	sales, err := s.storage.SalesByBuyer(buyerID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	transactions, err := s.storage.TransactionsByBuyer(buyerID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return &BuyerDetails{
		Buyer:        buyer,
		Stats:        stats,
		Sales:        sales,
		Transactions: transactions,
	}, nil
}

// UpdateBuyer applies the named fields to a buyer owned by the user.
func (s *Service) UpdateBuyer(userID, buyerID uint, in BuyerInput) (*Buyer, error) {
	buyer, err := s.storage.BuyerByID(userID, buyerID)
	if err != nil {
		return nil, err
	}
	buyer.Name = in.Name
	if in.Phone != nil {
		buyer.Phone = in.Phone
	}
	if in.Address != nil {
		buyer.Address = in.Address
	}
	if err := s.storage.SaveBuyer(buyer); err != nil {
		return nil, fmt.Errorf("failed to update buyer: %w", err)
	}
	return buyer, nil
}

// DeleteBuyer removes a buyer owned by the user.
func (s *Service) DeleteBuyer(userID, buyerID uint) error {
	buyer, err := s.storage.BuyerByID(userID, buyerID)
	if err != nil {
		return err
	}
	return s.storage.DeleteBuyer(buyer)
}

// CreateSale records a sale with its items, deriving the due amount and
// payment status from the totals.
func (s *Service) CreateSale(userID uint, in SaleInput) (*Sale, error) {
	if !finite(in.TotalAmount, in.PaidAmount) {
		return nil, ErrInvalidAmount
	}
	if in.BuyerID != nil {
		if _, err := s.storage.BuyerByID(userID, *in.BuyerID); err != nil {
			return nil, err
		}
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	sale := &Sale{
		BuyerID:     in.BuyerID,
		BuyerName:   in.BuyerName,
		Date:        date,
		TotalAmount: decimal.NewFromFloat(in.TotalAmount),
		PaidAmount:  decimal.NewFromFloat(in.PaidAmount),
		TotalWeight: in.TotalWeight,
		UserID:      userID,
	}
	sale.Normalize()
	for _, item := range in.Items {
		if !finite(item.Quantity, item.RatePerUnit, item.Amount) {
			return nil, ErrInvalidAmount
		}
		sale.Items = append(sale.Items, SaleItem{
			PondID:      item.PondID,
			Quantity:    item.Quantity,
			UnitID:      item.UnitID,
			RatePerUnit: item.RatePerUnit,
			Amount:      decimal.NewFromFloat(item.Amount),
		})
	}
	if err := s.storage.CreateSale(sale); err != nil {
		s.logger.Error("failed to save sale", zap.Error(err))
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}
	s.logger.Info("sale created",
		zap.Uint("sale_id", sale.ID),
		zap.String("total_amount", sale.TotalAmount.String()),
		zap.String("payment_status", sale.PaymentStatus),
	)
	return sale, nil
}

// Sales lists the user's sales, most recent first.
func (s *Service) Sales(userID uint) ([]*Sale, error) {
	return s.storage.Sales(userID)
}

// SaleByID returns one sale owned by the user.
func (s *Service) SaleByID(userID, saleID uint) (*Sale, error) {
	return s.storage.SaleByID(userID, saleID)
}

// DeleteSale removes a sale and its items.
func (s *Service) DeleteSale(userID, saleID uint) error {
	sale, err := s.storage.SaleByID(userID, saleID)
	if err != nil {
		return err
	}
	return s.storage.DeleteSale(sale)
}

// RecordTransaction inserts a buyer transaction and, for a positive
// payment, distributes the amount across the buyer's outstanding sales
// oldest first. The insert and every sale update commit as one atomic
// unit.
//
// A payment of zero or less is recorded without allocation; it is benign
// input, not an error. A remainder left after all dues are cleared is
// reported in the result and logged but not stored anywhere.
func (s *Service) RecordTransaction(userID, buyerID uint, in TransactionInput) (*BuyerTransaction, *AllocationResult, error) {
	if in.TransactionType != TransactionPayment && in.TransactionType != TransactionDue {
		return nil, nil, ErrInvalidTransactionType
	}
	if !finite(in.Amount) {
		return nil, nil, ErrInvalidAmount
	}
	if _, err := s.storage.BuyerByID(userID, buyerID); err != nil {
		return nil, nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	amount := decimal.NewFromFloat(in.Amount)
	transaction := &BuyerTransaction{
		BuyerID:         buyerID,
		UserID:          userID,
		Date:            date,
		Amount:          amount,
		TransactionType: in.TransactionType,
		Description:     in.Description,
	}

	var result AllocationResult
	err := s.storage.InTransaction(func(tx TxScope) error {
		if err := tx.CreateTransaction(transaction); err != nil {
			return err
		}
		if in.TransactionType != TransactionPayment || amount.Sign() <= 0 {
			result = AllocationResult{Applications: []Application{}, Remaining: decimal.Zero}
			return nil
		}
		unpaid, err := tx.UnpaidSalesForUpdate(buyerID)
		if err != nil {
			return err
		}
		result = Allocate(unpaid, amount)
		for _, application := range result.Applications {
			for _, sale := range unpaid {
				if sale.ID == application.SaleID {
					if err := tx.SaveSale(sale); err != nil {
						return err
					}
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("payment allocation failed",
			zap.Uint("buyer_id", buyerID),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return nil, nil, err
	}

	s.logger.Info("buyer transaction recorded",
		zap.Uint("buyer_id", buyerID),
		zap.Uint("transaction_id", transaction.ID),
		zap.String("type", in.TransactionType),
		zap.String("amount", amount.String()),
		zap.Int("sales_touched", len(result.Applications)),
	)
	if result.Remaining.Sign() > 0 {
		// Leftover is dropped, not carried as credit. Known limitation.
		s.logger.Warn("payment exceeds outstanding dues, remainder untracked",
			zap.Uint("buyer_id", buyerID),
			zap.String("remaining", result.Remaining.String()),
		)
	}
	return transaction, &result, nil
}
