package sales

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testUserID = uint(1)

func newTestService(t *testing.T) (*Service, *LocalStorage) {
	storage := NewLocalStorage()
	return NewService(storage, zaptest.NewLogger(t)), storage
}

func seedBuyerWithSales(t *testing.T, svc *Service, totals ...float64) *Buyer {
	t.Helper()
	buyer, err := svc.CreateBuyer(testUserID, BuyerInput{Name: "Karim"})
	require.NoError(t, err)
	for i, total := range totals {
		_, err := svc.CreateSale(testUserID, SaleInput{
			Date:        time.Date(2025, time.April, i+1, 0, 0, 0, 0, time.UTC),
			BuyerID:     &buyer.ID,
			TotalAmount: total,
		})
		require.NoError(t, err)
	}
	return buyer
}

func TestRecordTransactionAllocatesPayment(t *testing.T) {
	svc, _ := newTestService(t)
	buyer := seedBuyerWithSales(t, svc, 100, 200)

	transaction, result, err := svc.RecordTransaction(testUserID, buyer.ID, TransactionInput{
		Amount:          150,
		TransactionType: TransactionPayment,
	})
	require.NoError(t, err)
	require.NotNil(t, transaction)
	require.NotNil(t, result)

	require.Len(t, result.Applications, 2)
	assert.True(t, result.Applications[0].Applied.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.Applications[1].Applied.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.Remaining.IsZero())

	details, err := svc.Details(testUserID, buyer.ID, DateRange{})
	require.NoError(t, err)
	assert.True(t, details.Stats.TotalBought.Equal(decimal.NewFromInt(300)))
	assert.True(t, details.Stats.TotalPaid.Equal(decimal.NewFromInt(150)))
	assert.True(t, details.Stats.Balance.Equal(decimal.NewFromInt(150)))
	require.Len(t, details.Transactions, 1)
}

func TestRecordTransactionZeroAmountIsBenign(t *testing.T) {
	svc, _ := newTestService(t)
	buyer := seedBuyerWithSales(t, svc, 100)

	transaction, result, err := svc.RecordTransaction(testUserID, buyer.ID, TransactionInput{
		Amount:          0,
		TransactionType: TransactionPayment,
	})
	require.NoError(t, err)
	require.NotNil(t, transaction)
	assert.Empty(t, result.Applications)

	sales, err := svc.Sales(testUserID)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, StatusDue, sales[0].PaymentStatus)
}

func TestRecordTransactionRejectsNonFiniteAmount(t *testing.T) {
	svc, _ := newTestService(t)
	buyer := seedBuyerWithSales(t, svc, 100)

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, _, err := svc.RecordTransaction(testUserID, buyer.ID, TransactionInput{
			Amount:          amount,
			TransactionType: TransactionPayment,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestRecordTransactionUnknownBuyer(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.RecordTransaction(testUserID, 42, TransactionInput{
		Amount:          50,
		TransactionType: TransactionPayment,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordTransactionOtherUsersBuyer(t *testing.T) {
	svc, _ := newTestService(t)
	buyer := seedBuyerWithSales(t, svc, 100)

	_, _, err := svc.RecordTransaction(testUserID+1, buyer.ID, TransactionInput{
		Amount:          50,
		TransactionType: TransactionPayment,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordTransactionInvalidType(t *testing.T) {
	svc, _ := newTestService(t)
	buyer := seedBuyerWithSales(t, svc, 100)

	_, _, err := svc.RecordTransaction(testUserID, buyer.ID, TransactionInput{
		Amount:          50,
		TransactionType: "refund",
	})
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
}

func TestRecordTransactionDueTypeSkipsAllocation(t *testing.T) {
	svc, _ := newTestService(t)
	buyer := seedBuyerWithSales(t, svc, 100)

	_, result, err := svc.RecordTransaction(testUserID, buyer.ID, TransactionInput{
		Amount:          30,
		TransactionType: TransactionDue,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Applications)

	sales, err := svc.Sales(testUserID)
	require.NoError(t, err)
	assert.Equal(t, StatusDue, sales[0].PaymentStatus)
}

func TestRecordTransactionRollsBackOnFailure(t *testing.T) {
	storage := NewLocalStorage()
	svc := NewService(&failingSaveStorage{storage}, zaptest.NewLogger(t))
	buyer, err := svc.CreateBuyer(testUserID, BuyerInput{Name: "Karim"})
	require.NoError(t, err)
	_, err = svc.CreateSale(testUserID, SaleInput{BuyerID: &buyer.ID, TotalAmount: 100})
	require.NoError(t, err)

	_, _, err = svc.RecordTransaction(testUserID, buyer.ID, TransactionInput{
		Amount:          60,
		TransactionType: TransactionPayment,
	})
	require.Error(t, err)

	// No transaction row and no sale mutation may survive the failure.
	transactions, err := storage.TransactionsByBuyer(buyer.ID, DateRange{})
	require.NoError(t, err)
	assert.Empty(t, transactions)
	sales, err := storage.SalesByBuyer(buyer.ID, DateRange{})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.True(t, sales[0].PaidAmount.IsZero())
	assert.Equal(t, StatusDue, sales[0].PaymentStatus)
}

// failingSaveStorage wraps LocalStorage and fails sale saves inside the
// allocation transaction.
type failingSaveStorage struct {
	*LocalStorage
}

func (f *failingSaveStorage) InTransaction(fn func(tx TxScope) error) error {
	return f.LocalStorage.InTransaction(func(tx TxScope) error {
		return fn(&failingTx{tx})
	})
}

type failingTx struct {
	TxScope
}

func (f *failingTx) SaveSale(*Sale) error {
	return errors.New("disk full")
}

func TestCreateSaleDerivesStatus(t *testing.T) {
	svc, _ := newTestService(t)
	buyer, err := svc.CreateBuyer(testUserID, BuyerInput{Name: "Rahima"})
	require.NoError(t, err)

	sale, err := svc.CreateSale(testUserID, SaleInput{
		BuyerID:     &buyer.ID,
		TotalAmount: 500,
		PaidAmount:  200,
		Items: []SaleItemInput{
			{PondID: 1, Quantity: 40, UnitID: 1, RatePerUnit: 12.5, Amount: 500},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, sale.PaymentStatus)
	assert.True(t, sale.DueAmount.Equal(decimal.NewFromInt(300)))
	require.Len(t, sale.Items, 1)
	assert.Equal(t, sale.ID, sale.Items[0].SaleID)
}

func TestCreateSaleOverpaidClampsDue(t *testing.T) {
	svc, _ := newTestService(t)
	sale, err := svc.CreateSale(testUserID, SaleInput{TotalAmount: 100, PaidAmount: 120})
	require.NoError(t, err)
	assert.True(t, sale.DueAmount.IsZero())
	assert.Equal(t, StatusPaid, sale.PaymentStatus)
}

func TestBuyersSummaries(t *testing.T) {
	svc, _ := newTestService(t)
	buyer := seedBuyerWithSales(t, svc, 100, 50)
	_, _, err := svc.RecordTransaction(testUserID, buyer.ID, TransactionInput{
		Amount:          100,
		TransactionType: TransactionPayment,
	})
	require.NoError(t, err)

	summaries, err := svc.Buyers(testUserID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].TotalBought.Equal(decimal.NewFromInt(150)))
	assert.True(t, summaries[0].TotalPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, summaries[0].Balance.Equal(decimal.NewFromInt(50)))
}

func TestDeleteSaleRequiresOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	sale, err := svc.CreateSale(testUserID, SaleInput{TotalAmount: 100})
	require.NoError(t, err)

	err = svc.DeleteSale(testUserID+1, sale.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteSale(testUserID, sale.ID))
	_, err = svc.SaleByID(testUserID, sale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
