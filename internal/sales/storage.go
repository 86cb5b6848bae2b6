package sales

import (
	"sync"
	"time"
)

// DateRange bounds a query to an inclusive date window. Nil bounds are
// open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// TxScope is the mutation surface handed to the payment allocation flow.
// All calls on a scope happen inside one storage transaction: either every
// write commits or none do.
type TxScope interface {
	CreateTransaction(t *BuyerTransaction) error
	// UnpaidSalesForUpdate returns the buyer's sales that are not fully
	// paid, locked for the duration of the transaction.
	UnpaidSalesForUpdate(buyerID uint) ([]*Sale, error)
	SaveSale(s *Sale) error
}

// Storage is the persistence interface for the sales domain.
type Storage interface {
	CreateBuyer(b *Buyer) error
	BuyerByID(userID, id uint) (*Buyer, error)
	Buyers(userID uint) ([]*Buyer, error)
	SaveBuyer(b *Buyer) error
	DeleteBuyer(b *Buyer) error

	CreateSale(s *Sale) error
	SaleByID(userID, id uint) (*Sale, error)
	Sales(userID uint) ([]*Sale, error)
	SalesByBuyer(buyerID uint, r DateRange) ([]*Sale, error)
	DeleteSale(s *Sale) error

	TransactionsByBuyer(buyerID uint, r DateRange) ([]*BuyerTransaction, error)

	// InTransaction runs fn within a single atomic unit. If fn returns an
	// error every write made through the scope is rolled back.
	InTransaction(fn func(tx TxScope) error) error
}

// LocalStorage provides an in-memory implementation of Storage, used in
// tests. A single mutex stands in for the database's per-row locking, which
// trivially serializes concurrent allocations.
type LocalStorage struct {
	mu           sync.Mutex
	buyers       map[uint]*Buyer
	sales        map[uint]*Sale
	transactions map[uint]*BuyerTransaction
	nextID       uint
}

// NewLocalStorage instantiates an empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		buyers:       map[uint]*Buyer{},
		sales:        map[uint]*Sale{},
		transactions: map[uint]*BuyerTransaction{},
		nextID:       1,
	}
}

func (l *LocalStorage) id() uint {
	id := l.nextID
	l.nextID++
	return id
}

func (l *LocalStorage) CreateBuyer(b *Buyer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b.ID == 0 {
		b.ID = l.id()
	}
	l.buyers[b.ID] = b
	return nil
}

func (l *LocalStorage) BuyerByID(userID, id uint) (*Buyer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buyers[id]
	if !ok || b.UserID != userID {
		return nil, ErrNotFound
	}
	return b, nil
}

func (l *LocalStorage) Buyers(userID uint) ([]*Buyer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	buyers := make([]*Buyer, 0)
	for _, b := range l.buyers {
		if b.UserID == userID {
			buyers = append(buyers, b)
		}
	}
	return buyers, nil
}

func (l *LocalStorage) SaveBuyer(b *Buyer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buyers[b.ID] = b
	return nil
}

func (l *LocalStorage) DeleteBuyer(b *Buyer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buyers, b.ID)
	return nil
}

func (l *LocalStorage) CreateSale(s *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s.ID == 0 {
		s.ID = l.id()
	}
	for i := range s.Items {
		if s.Items[i].ID == 0 {
			s.Items[i].ID = l.id()
		}
		s.Items[i].SaleID = s.ID
	}
	l.sales[s.ID] = s
	return nil
}

func (l *LocalStorage) SaleByID(userID, id uint) (*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sales[id]
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	return s, nil
}

func (l *LocalStorage) Sales(userID uint) ([]*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sales := make([]*Sale, 0)
	for _, s := range l.sales {
		if s.UserID == userID {
			sales = append(sales, s)
		}
	}
	return sales, nil
}

func (l *LocalStorage) SalesByBuyer(buyerID uint, r DateRange) ([]*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sales := make([]*Sale, 0)
	for _, s := range l.sales {
		if s.BuyerID != nil && *s.BuyerID == buyerID && r.contains(s.Date) {
			sales = append(sales, s)
		}
	}
	return sales, nil
}

func (l *LocalStorage) DeleteSale(s *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sales, s.ID)
	return nil
}

func (l *LocalStorage) TransactionsByBuyer(buyerID uint, r DateRange) ([]*BuyerTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	transactions := make([]*BuyerTransaction, 0)
	for _, t := range l.transactions {
		if t.BuyerID == buyerID && r.contains(t.Date) {
			transactions = append(transactions, t)
		}
	}
	return transactions, nil
}

// InTransaction serializes the whole scope under the storage mutex and
// restores the previous state when fn fails, so partial allocations never
// survive an error.
func (l *LocalStorage) InTransaction(fn func(tx TxScope) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	savedSales := make(map[uint]*Sale, len(l.sales))
	for id, s := range l.sales {
		cp := *s
		savedSales[id] = &cp
	}
	savedTransactions := make(map[uint]*BuyerTransaction, len(l.transactions))
	for id, t := range l.transactions {
		cp := *t
		savedTransactions[id] = &cp
	}
	savedNextID := l.nextID

	if err := fn(&localTx{storage: l}); err != nil {
		l.sales = savedSales
		l.transactions = savedTransactions
		l.nextID = savedNextID
		return err
	}
	return nil
}

// localTx operates on the already-locked LocalStorage.
type localTx struct {
	storage *LocalStorage
}

func (tx *localTx) CreateTransaction(t *BuyerTransaction) error {
	if t.ID == 0 {
		t.ID = tx.storage.id()
	}
	tx.storage.transactions[t.ID] = t
	return nil
}

func (tx *localTx) UnpaidSalesForUpdate(buyerID uint) ([]*Sale, error) {
	sales := make([]*Sale, 0)
	for _, s := range tx.storage.sales {
		if s.BuyerID != nil && *s.BuyerID == buyerID && s.PaymentStatus != StatusPaid {
			sales = append(sales, s)
		}
	}
	return sales, nil
}

func (tx *localTx) SaveSale(s *Sale) error {
	tx.storage.sales[s.ID] = s
	return nil
}
