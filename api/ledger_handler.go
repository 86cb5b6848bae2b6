package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gherbooks/internal/ledger"
)

// ledgerHandler implements the creditor, debtor and contributor sub-ledgers.
// The three are structurally identical, so the handlers mirror each other.
type ledgerHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(db *gorm.DB, logger *zap.Logger) *ledgerHandler {
	return &ledgerHandler{db: db, logger: logger}
}

func (h *ledgerHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, ledger.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.logger.Error("ledger operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

type partyRequest struct {
	Name      string  `json:"name" binding:"required"`
	Phone     *string `json:"phone"`
	PartyType *string `json:"party_type"`
	IsActive  *bool   `json:"is_active"`
}

func (r partyRequest) active() bool {
	if r.IsActive == nil {
		return true
	}
	return *r.IsActive
}

type ledgerTransactionRequest struct {
	Amount float64    `json:"amount" binding:"required,gt=0"`
	Type   string     `json:"type" binding:"required"`
	Date   *time.Time `json:"date"`
	Note   *string    `json:"note"`
}

func (r ledgerTransactionRequest) date() time.Time {
	if r.Date != nil {
		return *r.Date
	}
	return time.Now().UTC()
}

// --- creditors ---

func (h *ledgerHandler) handleCreateCreditor(c *gin.Context) {
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	creditor := ledger.Creditor{
		Name:         req.Name,
		Phone:        req.Phone,
		CreditorType: req.PartyType,
		IsActive:     req.active(),
		UserID:       currentUserID(c),
	}
	if err := h.db.Create(&creditor).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, creditor)
}

// handleListCreditors returns the user's creditors with their outstanding
// balance (borrowed minus repaid).
func (h *ledgerHandler) handleListCreditors(c *gin.Context) {
	var creditors []ledger.Creditor
	if err := h.db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&creditors).Error; err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(creditors))
	for _, cr := range creditors {
		var transactions []ledger.CreditorTransaction
		if err := h.db.Where("creditor_id = ?", cr.ID).Find(&transactions).Error; err != nil {
			h.respondError(c, err)
			return
		}
		var borrowed, repaid float64
		for _, t := range transactions {
			switch t.Type {
			case ledger.TypeBorrow:
				borrowed += t.Amount
			case ledger.TypeRepay:
				repaid += t.Amount
			}
		}
		out = append(out, gin.H{
			"id":             cr.ID,
			"name":           cr.Name,
			"phone":          cr.Phone,
			"creditor_type":  cr.CreditorType,
			"is_active":      cr.IsActive,
			"total_borrowed": borrowed,
			"total_repaid":   repaid,
			"balance":        borrowed - repaid,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ledgerHandler) creditorOf(c *gin.Context, id uint) (*ledger.Creditor, error) {
	var creditor ledger.Creditor
	err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&creditor).Error
	if err != nil {
		return nil, err
	}
	return &creditor, nil
}

func (h *ledgerHandler) handleUpdateCreditor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	creditor, err := h.creditorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	creditor.Name = req.Name
	creditor.Phone = req.Phone
	creditor.CreditorType = req.PartyType
	creditor.IsActive = req.active()
	if err := h.db.Save(creditor).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, creditor)
}

func (h *ledgerHandler) handleDeleteCreditor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	creditor, err := h.creditorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("creditor_id = ?", creditor.ID).Delete(&ledger.CreditorTransaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(creditor).Error
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ledgerHandler) handleCreateCreditorTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	creditor, err := h.creditorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req ledgerTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.Type != ledger.TypeBorrow && req.Type != ledger.TypeRepay {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be BORROW or REPAY"})
		return
	}
	transaction := ledger.CreditorTransaction{
		CreditorID: creditor.ID,
		Amount:     req.Amount,
		Type:       req.Type,
		Date:       req.date(),
		Note:       req.Note,
	}
	if err := h.db.Create(&transaction).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *ledgerHandler) handleListCreditorTransactions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	creditor, err := h.creditorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var transactions []ledger.CreditorTransaction
	if err := h.db.Where("creditor_id = ?", creditor.ID).Order("date desc, id desc").Find(&transactions).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// --- debtors ---

func (h *ledgerHandler) handleCreateDebtor(c *gin.Context) {
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	debtor := ledger.Debtor{
		Name:       req.Name,
		Phone:      req.Phone,
		DebtorType: req.PartyType,
		IsActive:   req.active(),
		UserID:     currentUserID(c),
	}
	if err := h.db.Create(&debtor).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, debtor)
}

// handleListDebtors returns the user's debtors with their outstanding
// balance (lent minus received back).
func (h *ledgerHandler) handleListDebtors(c *gin.Context) {
	var debtors []ledger.Debtor
	if err := h.db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&debtors).Error; err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(debtors))
	for _, d := range debtors {
		var transactions []ledger.DebtorTransaction
		if err := h.db.Where("debtor_id = ?", d.ID).Find(&transactions).Error; err != nil {
			h.respondError(c, err)
			return
		}
		var lent, received float64
		for _, t := range transactions {
			switch t.Type {
			case ledger.TypeLend:
				lent += t.Amount
			case ledger.TypeReceive:
				received += t.Amount
			}
		}
		out = append(out, gin.H{
			"id":             d.ID,
			"name":           d.Name,
			"phone":          d.Phone,
			"debtor_type":    d.DebtorType,
			"is_active":      d.IsActive,
			"total_lent":     lent,
			"total_received": received,
			"balance":        lent - received,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ledgerHandler) debtorOf(c *gin.Context, id uint) (*ledger.Debtor, error) {
	var debtor ledger.Debtor
	err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&debtor).Error
	if err != nil {
		return nil, err
	}
	return &debtor, nil
}

func (h *ledgerHandler) handleUpdateDebtor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	debtor, err := h.debtorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	debtor.Name = req.Name
	debtor.Phone = req.Phone
	debtor.DebtorType = req.PartyType
	debtor.IsActive = req.active()
	if err := h.db.Save(debtor).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, debtor)
}

func (h *ledgerHandler) handleDeleteDebtor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	debtor, err := h.debtorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("debtor_id = ?", debtor.ID).Delete(&ledger.DebtorTransaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(debtor).Error
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ledgerHandler) handleCreateDebtorTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	debtor, err := h.debtorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req ledgerTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.Type != ledger.TypeLend && req.Type != ledger.TypeReceive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be LEND or RECEIVE"})
		return
	}
	transaction := ledger.DebtorTransaction{
		DebtorID: debtor.ID,
		Amount:   req.Amount,
		Type:     req.Type,
		Date:     req.date(),
		Note:     req.Note,
	}
	if err := h.db.Create(&transaction).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *ledgerHandler) handleListDebtorTransactions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	debtor, err := h.debtorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var transactions []ledger.DebtorTransaction
	if err := h.db.Where("debtor_id = ?", debtor.ID).Order("date desc, id desc").Find(&transactions).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// --- contributors ---

func (h *ledgerHandler) handleCreateContributor(c *gin.Context) {
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	contributor := ledger.Contributor{
		Name:            req.Name,
		Phone:           req.Phone,
		ContributorType: req.PartyType,
		IsActive:        req.active(),
		UserID:          currentUserID(c),
	}
	if err := h.db.Create(&contributor).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contributor)
}

// handleListContributors returns the user's contributors with capital still
// held (contributed minus returned).
func (h *ledgerHandler) handleListContributors(c *gin.Context) {
	var contributors []ledger.Contributor
	if err := h.db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&contributors).Error; err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(contributors))
	for _, co := range contributors {
		var transactions []ledger.ContributorTransaction
		if err := h.db.Where("contributor_id = ?", co.ID).Find(&transactions).Error; err != nil {
			h.respondError(c, err)
			return
		}
		var contributed, returned float64
		for _, t := range transactions {
			switch t.Type {
			case ledger.TypeContribute:
				contributed += t.Amount
			case ledger.TypeReturn:
				returned += t.Amount
			}
		}
		out = append(out, gin.H{
			"id":                co.ID,
			"name":              co.Name,
			"phone":             co.Phone,
			"contributor_type":  co.ContributorType,
			"is_active":         co.IsActive,
			"total_contributed": contributed,
			"total_returned":    returned,
			"balance":           contributed - returned,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ledgerHandler) contributorOf(c *gin.Context, id uint) (*ledger.Contributor, error) {
	var contributor ledger.Contributor
	err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&contributor).Error
	if err != nil {
		return nil, err
	}
	return &contributor, nil
}

func (h *ledgerHandler) handleUpdateContributor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	contributor, err := h.contributorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	contributor.Name = req.Name
	contributor.Phone = req.Phone
	contributor.ContributorType = req.PartyType
	contributor.IsActive = req.active()
	if err := h.db.Save(contributor).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contributor)
}

func (h *ledgerHandler) handleDeleteContributor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	contributor, err := h.contributorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contributor_id = ?", contributor.ID).Delete(&ledger.ContributorTransaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(contributor).Error
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ledgerHandler) handleCreateContributorTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	contributor, err := h.contributorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req ledgerTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.Type != ledger.TypeContribute && req.Type != ledger.TypeReturn {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be CONTRIBUTE or RETURN"})
		return
	}
	transaction := ledger.ContributorTransaction{
		ContributorID: contributor.ID,
		Amount:        req.Amount,
		Type:          req.Type,
		Date:          req.date(),
		Note:          req.Note,
	}
	if err := h.db.Create(&transaction).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *ledgerHandler) handleListContributorTransactions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	contributor, err := h.contributorOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var transactions []ledger.ContributorTransaction
	if err := h.db.Where("contributor_id = ?", contributor.ID).Order("date desc, id desc").Find(&transactions).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}
