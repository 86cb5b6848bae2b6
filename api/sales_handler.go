package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gherbooks/internal/sales"
)

// salesHandler holds the sales service and implements HTTP handlers for
// buyers, sales and buyer payments.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (h *salesHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sales.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, sales.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a finite number"})
	case errors.Is(err, sales.ErrInvalidTransactionType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction type"})
	case errors.Is(err, sales.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting update, retry"})
	default:
		h.logger.Error("sales operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// handleCreateBuyer handles POST /fish-buyers.
func (h *salesHandler) handleCreateBuyer(c *gin.Context) {
	var req sales.BuyerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	buyer, err := h.salesService.CreateBuyer(currentUserID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buyer)
}

// handleListBuyers handles GET /fish-buyers, returning each buyer with
// lifetime bought/paid/balance totals.
func (h *salesHandler) handleListBuyers(c *gin.Context) {
	summaries, err := h.salesService.Buyers(currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// handleBuyerDetails handles GET /fish-buyers/:id with optional
// start_date/end_date filters on the listed sales and transactions.
func (h *salesHandler) handleBuyerDetails(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r := sales.DateRange{
		From: parseTimeQuery(c, "start_date"),
		To:   parseTimeQuery(c, "end_date"),
	}
	details, err := h.salesService.Details(currentUserID(c), id, r)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// handleUpdateBuyer handles PUT /fish-buyers/:id.
func (h *salesHandler) handleUpdateBuyer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req sales.BuyerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	buyer, err := h.salesService.UpdateBuyer(currentUserID(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buyer)
}

// handleDeleteBuyer handles DELETE /fish-buyers/:id.
func (h *salesHandler) handleDeleteBuyer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.salesService.DeleteBuyer(currentUserID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleCreateBuyerTransaction handles POST /fish-buyers/:id/transactions.
// A positive payment is distributed across the buyer's outstanding sales,
// oldest first; the per-sale breakdown is returned for auditing.
func (h *salesHandler) handleCreateBuyerTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req sales.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	transaction, allocation, err := h.salesService.RecordTransaction(currentUserID(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"transaction": transaction,
		"allocation":  allocation,
	})
}

// handleCreateSale handles POST /fish-sales.
func (h *salesHandler) handleCreateSale(c *gin.Context) {
	var req sales.SaleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	sale, err := h.salesService.CreateSale(currentUserID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// handleListSales handles GET /fish-sales.
func (h *salesHandler) handleListSales(c *gin.Context) {
	list, err := h.salesService.Sales(currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// handleGetSale handles GET /fish-sales/:id.
func (h *salesHandler) handleGetSale(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sale, err := h.salesService.SaleByID(currentUserID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// handleDeleteSale handles DELETE /fish-sales/:id.
func (h *salesHandler) handleDeleteSale(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.salesService.DeleteSale(currentUserID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
