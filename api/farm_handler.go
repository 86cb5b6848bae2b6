package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gherbooks/internal/farm"
)

// farmHandler implements the pond-side bookkeeping endpoints: ponds,
// suppliers, units, feeds, feed purchases and usage, and labor costs.
type farmHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewFarmHandler creates a new farm handler.
func NewFarmHandler(db *gorm.DB, logger *zap.Logger) *farmHandler {
	return &farmHandler{db: db, logger: logger}
}

func (h *farmHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, farm.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, farm.ErrDefaultUnit):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete default units"})
	default:
		h.logger.Error("farm operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// --- ponds ---

type pondRequest struct {
	Name     string  `json:"name" binding:"required"`
	Location string  `json:"location"`
	Size     *string `json:"size"`
}

func (h *farmHandler) handleCreatePond(c *gin.Context) {
	var req pondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	pond := farm.Pond{Name: req.Name, Location: req.Location, Size: req.Size, UserID: currentUserID(c)}
	if err := h.db.Create(&pond).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pond)
}

func (h *farmHandler) handleListPonds(c *gin.Context) {
	var ponds []farm.Pond
	if err := h.db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&ponds).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ponds)
}

func (h *farmHandler) pondOf(c *gin.Context, id uint) (*farm.Pond, error) {
	var pond farm.Pond
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&pond).Error; err != nil {
		return nil, err
	}
	return &pond, nil
}

func (h *farmHandler) handleUpdatePond(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pond, err := h.pondOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req pondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	pond.Name = req.Name
	pond.Location = req.Location
	pond.Size = req.Size
	if err := h.db.Save(pond).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pond)
}

func (h *farmHandler) handleDeletePond(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pond, err := h.pondOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.db.Delete(pond).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- suppliers ---

type supplierRequest struct {
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *farmHandler) handleCreateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	supplier := farm.Supplier{Name: req.Name, Phone: req.Phone, Address: req.Address, UserID: currentUserID(c)}
	if err := h.db.Create(&supplier).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// handleListSuppliers returns each supplier with its credit position:
// purchases on credit minus payments made.
func (h *farmHandler) handleListSuppliers(c *gin.Context) {
	var suppliers []farm.Supplier
	if err := h.db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&suppliers).Error; err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(suppliers))
	for _, s := range suppliers {
		var transactions []farm.SupplierTransaction
		if err := h.db.Where("supplier_id = ?", s.ID).Find(&transactions).Error; err != nil {
			h.respondError(c, err)
			return
		}
		var purchased, onCredit, paid float64
		for _, t := range transactions {
			switch t.TransactionType {
			case farm.PurchaseCash:
				purchased += t.Amount
			case farm.PurchaseCredit:
				purchased += t.Amount
				onCredit += t.Amount
			case farm.Payment:
				paid += t.Amount
			}
		}
		out = append(out, gin.H{
			"id":              s.ID,
			"name":            s.Name,
			"phone":           s.Phone,
			"address":         s.Address,
			"total_purchased": purchased,
			"total_paid":      paid,
			"balance":         onCredit - paid,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *farmHandler) supplierOf(c *gin.Context, id uint) (*farm.Supplier, error) {
	var supplier farm.Supplier
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (h *farmHandler) handleUpdateSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	supplier, err := h.supplierOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	supplier.Name = req.Name
	supplier.Phone = req.Phone
	supplier.Address = req.Address
	if err := h.db.Save(supplier).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *farmHandler) handleDeleteSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	supplier, err := h.supplierOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_id = ?", supplier.ID).Delete(&farm.SupplierTransaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(supplier).Error
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type supplierTransactionRequest struct {
	Date            *time.Time `json:"date"`
	TransactionType string     `json:"transaction_type" binding:"required"`
	Amount          float64    `json:"amount" binding:"required,gt=0"`
	Description     *string    `json:"description"`
}

func (h *farmHandler) handleCreateSupplierTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	supplier, err := h.supplierOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req supplierTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	switch req.TransactionType {
	case farm.PurchaseCash, farm.PurchaseCredit, farm.Payment:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_type must be purchase_cash, purchase_credit or payment"})
		return
	}
	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	transaction := farm.SupplierTransaction{
		SupplierID:      supplier.ID,
		Date:            date,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
	}
	if err := h.db.Create(&transaction).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *farmHandler) handleListSupplierTransactions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	supplier, err := h.supplierOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var transactions []farm.SupplierTransaction
	if err := h.db.Where("supplier_id = ?", supplier.ID).Order("date desc, id desc").Find(&transactions).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// --- units ---

type unitRequest struct {
	Name   string  `json:"name" binding:"required"`
	NameBn *string `json:"name_bn"`
}

func (h *farmHandler) handleCreateUnit(c *gin.Context) {
	var req unitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	userID := currentUserID(c)
	unit := farm.Unit{Name: req.Name, NameBn: req.NameBn, UserID: &userID}
	if err := h.db.Create(&unit).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// handleListUnits returns the shared default units plus the user's own.
func (h *farmHandler) handleListUnits(c *gin.Context) {
	var units []farm.Unit
	if err := h.db.Where("is_default = ? OR user_id = ?", true, currentUserID(c)).Order("id").Find(&units).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

// handleDeleteUnit refuses to touch the seeded defaults.
func (h *farmHandler) handleDeleteUnit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var unit farm.Unit
	if err := h.db.First(&unit, id).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if unit.IsDefault {
		h.respondError(c, farm.ErrDefaultUnit)
		return
	}
	if unit.UserID == nil || *unit.UserID != currentUserID(c) {
		h.respondError(c, farm.ErrNotFound)
		return
	}
	if err := h.db.Delete(&unit).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- fish feeds ---

type fishFeedRequest struct {
	Name  string  `json:"name" binding:"required"`
	Brand *string `json:"brand"`
}

func (h *farmHandler) handleCreateFishFeed(c *gin.Context) {
	var req fishFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	feed := farm.FishFeed{Name: req.Name, Brand: req.Brand, UserID: currentUserID(c)}
	if err := h.db.Create(&feed).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feed)
}

func (h *farmHandler) handleListFishFeeds(c *gin.Context) {
	var feeds []farm.FishFeed
	if err := h.db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&feeds).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feeds)
}

func (h *farmHandler) handleDeleteFishFeed(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var feed farm.FishFeed
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&feed).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.db.Delete(&feed).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- feed purchases ---

type feedPurchaseRequest struct {
	PondID       *uint      `json:"pond_id"`
	SupplierID   uint       `json:"supplier_id" binding:"required"`
	FeedName     string     `json:"feed_name"`
	Quantity     float64    `json:"quantity" binding:"required,gt=0"`
	PricePerUnit float64    `json:"price_per_unit" binding:"required,gt=0"`
	Date         *time.Time `json:"date"`
}

func (h *farmHandler) handleCreateFeedPurchase(c *gin.Context) {
	var req feedPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if _, err := h.supplierOf(c, req.SupplierID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown supplier"})
		return
	}
	if req.PondID != nil {
		if _, err := h.pondOf(c, *req.PondID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown pond"})
			return
		}
	}
	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	purchase := farm.FeedPurchase{
		PondID:       req.PondID,
		SupplierID:   req.SupplierID,
		FeedName:     req.FeedName,
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		TotalAmount:  req.Quantity * req.PricePerUnit,
		Date:         date,
		UserID:       currentUserID(c),
	}
	if err := h.db.Create(&purchase).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *farmHandler) handleListFeedPurchases(c *gin.Context) {
	q := h.db.Where("user_id = ?", currentUserID(c))
	if raw := c.Query("pond_id"); raw != "" {
		q = q.Where("pond_id = ?", raw)
	}
	var purchases []farm.FeedPurchase
	if err := q.Order("date desc, id desc").Find(&purchases).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func (h *farmHandler) handleDeleteFeedPurchase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var purchase farm.FeedPurchase
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&purchase).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.db.Delete(&purchase).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- feed usage ---

type feedUsageRequest struct {
	PondID       uint       `json:"pond_id" binding:"required"`
	FeedID       uint       `json:"feed_id" binding:"required"`
	UnitID       uint       `json:"unit_id" binding:"required"`
	Quantity     float64    `json:"quantity" binding:"required,gt=0"`
	PricePerUnit float64    `json:"price_per_unit" binding:"required,gt=0"`
	Date         *time.Time `json:"date"`
}

func (h *farmHandler) handleCreateFeedUsage(c *gin.Context) {
	var req feedUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if _, err := h.pondOf(c, req.PondID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown pond"})
		return
	}
	var feed farm.FishFeed
	if err := h.db.Where("id = ? AND user_id = ?", req.FeedID, currentUserID(c)).First(&feed).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown feed"})
		return
	}
	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	usage := farm.FeedUsage{
		PondID:       req.PondID,
		FeedID:       req.FeedID,
		UnitID:       req.UnitID,
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		TotalCost:    req.Quantity * req.PricePerUnit,
		Date:         date,
		UserID:       currentUserID(c),
	}
	if err := h.db.Create(&usage).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usage)
}

// handleListFeedUsage enriches each row with pond, feed and unit names so
// the client does not have to join on its side.
func (h *farmHandler) handleListFeedUsage(c *gin.Context) {
	userID := currentUserID(c)
	q := h.db.Where("user_id = ?", userID)
	if raw := c.Query("pond_id"); raw != "" {
		q = q.Where("pond_id = ?", raw)
	}
	if from := parseTimeQuery(c, "start_date"); from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to := parseTimeQuery(c, "end_date"); to != nil {
		q = q.Where("date <= ?", *to)
	}
	var usages []farm.FeedUsage
	if err := q.Order("date desc, id desc").Find(&usages).Error; err != nil {
		h.respondError(c, err)
		return
	}

	pondNames := map[uint]string{}
	var ponds []farm.Pond
	if err := h.db.Where("user_id = ?", userID).Find(&ponds).Error; err != nil {
		h.respondError(c, err)
		return
	}
	for _, p := range ponds {
		pondNames[p.ID] = p.Name
	}
	feedNames := map[uint]string{}
	var feeds []farm.FishFeed
	if err := h.db.Where("user_id = ?", userID).Find(&feeds).Error; err != nil {
		h.respondError(c, err)
		return
	}
	for _, f := range feeds {
		feedNames[f.ID] = f.Name
	}
	unitNames := map[uint]string{}
	var units []farm.Unit
	if err := h.db.Where("is_default = ? OR user_id = ?", true, userID).Find(&units).Error; err != nil {
		h.respondError(c, err)
		return
	}
	for _, u := range units {
		unitNames[u.ID] = u.Name
	}

	out := make([]gin.H, 0, len(usages))
	for _, u := range usages {
		out = append(out, gin.H{
			"id":             u.ID,
			"pond_id":        u.PondID,
			"pond_name":      pondNames[u.PondID],
			"feed_id":        u.FeedID,
			"feed_name":      feedNames[u.FeedID],
			"unit_id":        u.UnitID,
			"unit_name":      unitNames[u.UnitID],
			"quantity":       u.Quantity,
			"price_per_unit": u.PricePerUnit,
			"total_cost":     u.TotalCost,
			"date":           u.Date,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *farmHandler) handleDeleteFeedUsage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var usage farm.FeedUsage
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&usage).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.db.Delete(&usage).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- labor costs ---

type laborCostRequest struct {
	Date        *time.Time `json:"date"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	WorkerCount int        `json:"worker_count" binding:"required,gt=0"`
	Description *string    `json:"description"`
	PondID      *uint      `json:"pond_id"`
}

func (h *farmHandler) handleCreateLaborCost(c *gin.Context) {
	var req laborCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.PondID != nil {
		if _, err := h.pondOf(c, *req.PondID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown pond"})
			return
		}
	}
	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	cost := farm.LaborCost{
		Date:        date,
		Amount:      req.Amount,
		WorkerCount: req.WorkerCount,
		Description: req.Description,
		PondID:      req.PondID,
		UserID:      currentUserID(c),
	}
	if err := h.db.Create(&cost).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cost)
}

func (h *farmHandler) handleListLaborCosts(c *gin.Context) {
	q := h.db.Where("user_id = ?", currentUserID(c))
	if from := parseTimeQuery(c, "start_date"); from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to := parseTimeQuery(c, "end_date"); to != nil {
		q = q.Where("date <= ?", *to)
	}
	var costs []farm.LaborCost
	if err := q.Order("date desc, id desc").Find(&costs).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, costs)
}

func (h *farmHandler) handleDeleteLaborCost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var cost farm.LaborCost
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&cost).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.db.Delete(&cost).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
