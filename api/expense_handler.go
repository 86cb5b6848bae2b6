package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gherbooks/internal/expense"
)

// expenseHandler implements expense types, expenses and the yearly
// spending overview.
type expenseHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(db *gorm.DB, logger *zap.Logger) *expenseHandler {
	return &expenseHandler{db: db, logger: logger}
}

func (h *expenseHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, expense.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.logger.Error("expense operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

type expenseTypeRequest struct {
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

func (h *expenseHandler) handleCreateExpenseType(c *gin.Context) {
	var req expenseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	expenseType := expense.ExpenseType{
		Name:     req.Name,
		IsActive: active,
		UserID:   currentUserID(c),
	}
	if err := h.db.Create(&expenseType).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expenseType)
}

func (h *expenseHandler) handleListExpenseTypes(c *gin.Context) {
	var types []expense.ExpenseType
	if err := h.db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&types).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *expenseHandler) expenseTypeOf(c *gin.Context, id uint) (*expense.ExpenseType, error) {
	var expenseType expense.ExpenseType
	err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&expenseType).Error
	if err != nil {
		return nil, err
	}
	return &expenseType, nil
}

func (h *expenseHandler) handleUpdateExpenseType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	expenseType, err := h.expenseTypeOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req expenseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	expenseType.Name = req.Name
	if req.IsActive != nil {
		expenseType.IsActive = *req.IsActive
	}
	if err := h.db.Save(expenseType).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenseType)
}

// handleDeleteExpenseType soft-deactivates instead of deleting when
// expenses still reference the type.
func (h *expenseHandler) handleDeleteExpenseType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	expenseType, err := h.expenseTypeOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var inUse int64
	if err := h.db.Model(&expense.Expense{}).Where("expense_type_id = ?", expenseType.ID).Count(&inUse).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if inUse > 0 {
		expenseType.IsActive = false
		if err := h.db.Save(expenseType).Error; err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "deactivated": true})
		return
	}
	if err := h.db.Delete(expenseType).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type expenseRequest struct {
	Amount        float64    `json:"amount" binding:"required,gt=0"`
	Description   *string    `json:"description"`
	Date          *time.Time `json:"date"`
	ExpenseTypeID *uint      `json:"expense_type_id"`
}

func (h *expenseHandler) handleCreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.ExpenseTypeID != nil {
		if _, err := h.expenseTypeOf(c, *req.ExpenseTypeID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown expense type"})
			return
		}
	}
	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	entry := expense.Expense{
		Amount:        req.Amount,
		Description:   req.Description,
		Date:          date,
		ExpenseTypeID: req.ExpenseTypeID,
		UserID:        currentUserID(c),
	}
	if err := h.db.Create(&entry).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// handleListExpenses supports skip/limit paging plus optional date and
// type filters.
func (h *expenseHandler) handleListExpenses(c *gin.Context) {
	q := h.db.Where("user_id = ?", currentUserID(c))
	if from := parseTimeQuery(c, "start_date"); from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to := parseTimeQuery(c, "end_date"); to != nil {
		q = q.Where("date <= ?", *to)
	}
	if raw := c.Query("expense_type_id"); raw != "" {
		if typeID, err := strconv.ParseUint(raw, 10, 64); err == nil {
			q = q.Where("expense_type_id = ?", uint(typeID))
		}
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var expenses []expense.Expense
	if err := q.Order("date desc, id desc").Offset(skip).Limit(limit).Find(&expenses).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *expenseHandler) expenseOf(c *gin.Context, id uint) (*expense.Expense, error) {
	var entry expense.Expense
	err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (h *expenseHandler) handleUpdateExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entry, err := h.expenseOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.ExpenseTypeID != nil {
		if _, err := h.expenseTypeOf(c, *req.ExpenseTypeID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown expense type"})
			return
		}
	}
	entry.Amount = req.Amount
	entry.Description = req.Description
	entry.ExpenseTypeID = req.ExpenseTypeID
	if req.Date != nil {
		entry.Date = *req.Date
	}
	if err := h.db.Save(entry).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *expenseHandler) handleDeleteExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entry, err := h.expenseOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.db.Delete(entry).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleOverview handles GET /expenses/stats/overview?year=YYYY.
func (h *expenseHandler) handleOverview(c *gin.Context) {
	now := time.Now()
	year := now.Year()
	if raw := c.Query("year"); raw != "" {
		if y, err := strconv.Atoi(raw); err == nil {
			year = y
		}
	}

	userID := currentUserID(c)
	var expenses []expense.Expense
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if err := h.db.Where("user_id = ? AND date >= ? AND date < ?", userID, start, start.AddDate(1, 0, 0)).
		Find(&expenses).Error; err != nil {
		h.respondError(c, err)
		return
	}
	var types []expense.ExpenseType
	if err := h.db.Where("user_id = ?", userID).Find(&types).Error; err != nil {
		h.respondError(c, err)
		return
	}
	typeNames := make(map[uint]string, len(types))
	for _, t := range types {
		typeNames[t.ID] = t.Name
	}

	c.JSON(http.StatusOK, expense.BuildOverview(expenses, typeNames, year, now))
}
