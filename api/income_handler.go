package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gherbooks/internal/income"
)

// incomeHandler implements persons, organizations, income records and the
// income dashboard.
type incomeHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewIncomeHandler creates a new income handler.
func NewIncomeHandler(db *gorm.DB, logger *zap.Logger) *incomeHandler {
	return &incomeHandler{db: db, logger: logger}
}

func (h *incomeHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, income.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.logger.Error("income operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// --- persons ---

type personRequest struct {
	Name        string  `json:"name" binding:"required"`
	Phone       *string `json:"phone"`
	Designation *string `json:"designation"`
	IsActive    *bool   `json:"is_active"`
}

func (h *incomeHandler) handleCreatePerson(c *gin.Context) {
	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	person := income.Person{
		Name:        req.Name,
		Phone:       req.Phone,
		Designation: req.Designation,
		IsActive:    active,
		UserID:      currentUserID(c),
	}
	if err := h.db.Create(&person).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, person)
}

func (h *incomeHandler) handleListPersons(c *gin.Context) {
	var persons []income.Person
	if err := h.db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&persons).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, persons)
}

func (h *incomeHandler) personOf(c *gin.Context, id uint) (*income.Person, error) {
	var person income.Person
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (h *incomeHandler) handleUpdatePerson(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	person, err := h.personOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	person.Name = req.Name
	person.Phone = req.Phone
	person.Designation = req.Designation
	if req.IsActive != nil {
		person.IsActive = *req.IsActive
	}
	if err := h.db.Save(person).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, person)
}

func (h *incomeHandler) handleDeletePerson(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	person, err := h.personOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.db.Delete(person).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- organizations ---

type organizationRequest struct {
	Name          string  `json:"name" binding:"required"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	IsActive      *bool   `json:"is_active"`
}

func (h *incomeHandler) handleCreateOrganization(c *gin.Context) {
	var req organizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	org := income.Organization{
		Name:          req.Name,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		IsActive:      active,
		UserID:        currentUserID(c),
	}
	if err := h.db.Create(&org).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

func (h *incomeHandler) handleListOrganizations(c *gin.Context) {
	var orgs []income.Organization
	if err := h.db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&orgs).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orgs)
}

func (h *incomeHandler) organizationOf(c *gin.Context, id uint) (*income.Organization, error) {
	var org income.Organization
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (h *incomeHandler) handleUpdateOrganization(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	org, err := h.organizationOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req organizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	org.Name = req.Name
	org.Address = req.Address
	org.ContactPerson = req.ContactPerson
	org.Phone = req.Phone
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}
	if err := h.db.Save(org).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *incomeHandler) handleDeleteOrganization(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	org, err := h.organizationOf(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.db.Delete(org).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- incomes ---

type incomeRequest struct {
	PersonID       uint       `json:"person_id" binding:"required"`
	OrganizationID uint       `json:"organization_id" binding:"required"`
	Amount         float64    `json:"amount" binding:"required,gt=0"`
	Date           *time.Time `json:"date"`
	IncomeType     string     `json:"income_type"`
	Note           *string    `json:"note"`
}

func validIncomeType(t string) bool {
	switch t {
	case income.TypeSalary, income.TypeBonus, income.TypeCommission, income.TypeAllowance, income.TypeOther:
		return true
	}
	return false
}

func (h *incomeHandler) handleCreateIncome(c *gin.Context) {
	var req incomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.IncomeType == "" {
		req.IncomeType = income.TypeSalary
	}
	if !validIncomeType(req.IncomeType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid income type"})
		return
	}
	if _, err := h.personOf(c, req.PersonID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown person"})
		return
	}
	if _, err := h.organizationOf(c, req.OrganizationID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown organization"})
		return
	}
	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	entry := income.Income{
		PersonID:       req.PersonID,
		OrganizationID: req.OrganizationID,
		Amount:         req.Amount,
		Date:           date,
		IncomeType:     req.IncomeType,
		Note:           req.Note,
		UserID:         currentUserID(c),
	}
	if err := h.db.Create(&entry).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// handleListIncomes supports person/organization/type and date filters.
func (h *incomeHandler) handleListIncomes(c *gin.Context) {
	q := h.db.Where("user_id = ?", currentUserID(c))
	if raw := c.Query("person_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			q = q.Where("person_id = ?", uint(id))
		}
	}
	if raw := c.Query("organization_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			q = q.Where("organization_id = ?", uint(id))
		}
	}
	if raw := c.Query("income_type"); raw != "" {
		q = q.Where("income_type = ?", raw)
	}
	if from := parseTimeQuery(c, "start_date"); from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to := parseTimeQuery(c, "end_date"); to != nil {
		q = q.Where("date <= ?", *to)
	}

	var incomes []income.Income
	if err := q.Order("date desc, id desc").Find(&incomes).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, incomes)
}

func (h *incomeHandler) handleUpdateIncome(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var entry income.Income
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&entry).Error; err != nil {
		h.respondError(c, err)
		return
	}
	var req incomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.IncomeType == "" {
		req.IncomeType = entry.IncomeType
	}
	if !validIncomeType(req.IncomeType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid income type"})
		return
	}
	if _, err := h.personOf(c, req.PersonID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown person"})
		return
	}
	if _, err := h.organizationOf(c, req.OrganizationID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown organization"})
		return
	}
	entry.PersonID = req.PersonID
	entry.OrganizationID = req.OrganizationID
	entry.Amount = req.Amount
	entry.IncomeType = req.IncomeType
	entry.Note = req.Note
	if req.Date != nil {
		entry.Date = *req.Date
	}
	if err := h.db.Save(&entry).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *incomeHandler) handleDeleteIncome(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var entry income.Income
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&entry).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.db.Delete(&entry).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleDashboard handles GET /income-dashboard/stats with an optional
// date range on the trend and breakdown figures.
func (h *incomeHandler) handleDashboard(c *gin.Context) {
	userID := currentUserID(c)

	q := h.db.Where("user_id = ?", userID)
	if from := parseTimeQuery(c, "start_date"); from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to := parseTimeQuery(c, "end_date"); to != nil {
		q = q.Where("date <= ?", *to)
	}
	var rows []income.Income
	if err := q.Find(&rows).Error; err != nil {
		h.respondError(c, err)
		return
	}
	var allRows []income.Income
	if err := h.db.Where("user_id = ?", userID).Find(&allRows).Error; err != nil {
		h.respondError(c, err)
		return
	}

	var persons []income.Person
	if err := h.db.Where("user_id = ?", userID).Find(&persons).Error; err != nil {
		h.respondError(c, err)
		return
	}
	personNames := make(map[uint]string, len(persons))
	for _, p := range persons {
		personNames[p.ID] = p.Name
	}
	var orgs []income.Organization
	if err := h.db.Where("user_id = ?", userID).Find(&orgs).Error; err != nil {
		h.respondError(c, err)
		return
	}
	orgNames := make(map[uint]string, len(orgs))
	for _, o := range orgs {
		orgNames[o.ID] = o.Name
	}

	c.JSON(http.StatusOK, income.BuildDashboard(rows, allRows, personNames, orgNames, time.Now()))
}
