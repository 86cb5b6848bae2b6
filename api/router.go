package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gherbooks/internal/auth"
	"gherbooks/internal/dashboard"
	"gherbooks/internal/sales"
)

// Deps carries the services the routes are built on.
type Deps struct {
	DB               *gorm.DB
	AuthService      *auth.Service
	SalesService     *sales.Service
	DashboardService *dashboard.Service
	Logger           *zap.Logger
}

// InitRoutes registers every endpoint on the given Gin engine. Everything
// except registration, login and the health probes sits behind bearer
// auth.
func InitRoutes(e *gin.Engine, deps Deps) {
	e.Use(RequestID(), CORS(), RequestLogger(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	salesHandler := NewSalesHandler(deps.SalesService, deps.Logger)
	ledgerHandler := NewLedgerHandler(deps.DB, deps.Logger)
	expenseHandler := NewExpenseHandler(deps.DB, deps.Logger)
	farmHandler := NewFarmHandler(deps.DB, deps.Logger)
	incomeHandler := NewIncomeHandler(deps.DB, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.DashboardService, deps.Logger)

	e.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to Gher Books API"})
	})
	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	e.POST("/register", authHandler.handleRegister)
	e.POST("/token", authHandler.handleToken)

	authed := e.Group("/", Auth(deps.AuthService))

	// fish buyers and sales
	authed.POST("/fish-buyers", salesHandler.handleCreateBuyer)
	authed.GET("/fish-buyers", salesHandler.handleListBuyers)
	authed.GET("/fish-buyers/:id", salesHandler.handleBuyerDetails)
	authed.PUT("/fish-buyers/:id", salesHandler.handleUpdateBuyer)
	authed.DELETE("/fish-buyers/:id", salesHandler.handleDeleteBuyer)
	authed.POST("/fish-buyers/:id/transactions", salesHandler.handleCreateBuyerTransaction)
	authed.POST("/fish-sales", salesHandler.handleCreateSale)
	authed.GET("/fish-sales", salesHandler.handleListSales)
	authed.GET("/fish-sales/:id", salesHandler.handleGetSale)
	authed.DELETE("/fish-sales/:id", salesHandler.handleDeleteSale)

	// creditors
	authed.POST("/creditors", ledgerHandler.handleCreateCreditor)
	authed.GET("/creditors", ledgerHandler.handleListCreditors)
	authed.PUT("/creditors/:id", ledgerHandler.handleUpdateCreditor)
	authed.DELETE("/creditors/:id", ledgerHandler.handleDeleteCreditor)
	authed.POST("/creditors/:id/transactions", ledgerHandler.handleCreateCreditorTransaction)
	authed.GET("/creditors/:id/transactions", ledgerHandler.handleListCreditorTransactions)

	// debtors
	authed.POST("/debtors", ledgerHandler.handleCreateDebtor)
	authed.GET("/debtors", ledgerHandler.handleListDebtors)
	authed.PUT("/debtors/:id", ledgerHandler.handleUpdateDebtor)
	authed.DELETE("/debtors/:id", ledgerHandler.handleDeleteDebtor)
	authed.POST("/debtors/:id/transactions", ledgerHandler.handleCreateDebtorTransaction)
	authed.GET("/debtors/:id/transactions", ledgerHandler.handleListDebtorTransactions)

	// contributors
	authed.POST("/contributors", ledgerHandler.handleCreateContributor)
	authed.GET("/contributors", ledgerHandler.handleListContributors)
	authed.PUT("/contributors/:id", ledgerHandler.handleUpdateContributor)
	authed.DELETE("/contributors/:id", ledgerHandler.handleDeleteContributor)
	authed.POST("/contributors/:id/transactions", ledgerHandler.handleCreateContributorTransaction)
	authed.GET("/contributors/:id/transactions", ledgerHandler.handleListContributorTransactions)

	// expenses
	authed.POST("/expense-types", expenseHandler.handleCreateExpenseType)
	authed.GET("/expense-types", expenseHandler.handleListExpenseTypes)
	authed.PUT("/expense-types/:id", expenseHandler.handleUpdateExpenseType)
	authed.DELETE("/expense-types/:id", expenseHandler.handleDeleteExpenseType)
	authed.POST("/expenses", expenseHandler.handleCreateExpense)
	authed.GET("/expenses", expenseHandler.handleListExpenses)
	authed.PUT("/expenses/:id", expenseHandler.handleUpdateExpense)
	authed.DELETE("/expenses/:id", expenseHandler.handleDeleteExpense)
	authed.GET("/expenses/stats/overview", expenseHandler.handleOverview)

	// ponds, suppliers, units, feeds and labor
	authed.POST("/ponds", farmHandler.handleCreatePond)
	authed.GET("/ponds", farmHandler.handleListPonds)
	authed.PUT("/ponds/:id", farmHandler.handleUpdatePond)
	authed.DELETE("/ponds/:id", farmHandler.handleDeletePond)
	authed.POST("/suppliers", farmHandler.handleCreateSupplier)
	authed.GET("/suppliers", farmHandler.handleListSuppliers)
	authed.PUT("/suppliers/:id", farmHandler.handleUpdateSupplier)
	authed.DELETE("/suppliers/:id", farmHandler.handleDeleteSupplier)
	authed.POST("/suppliers/:id/transactions", farmHandler.handleCreateSupplierTransaction)
	authed.GET("/suppliers/:id/transactions", farmHandler.handleListSupplierTransactions)
	authed.POST("/units", farmHandler.handleCreateUnit)
	authed.GET("/units", farmHandler.handleListUnits)
	authed.DELETE("/units/:id", farmHandler.handleDeleteUnit)
	authed.POST("/fish-feeds", farmHandler.handleCreateFishFeed)
	authed.GET("/fish-feeds", farmHandler.handleListFishFeeds)
	authed.DELETE("/fish-feeds/:id", farmHandler.handleDeleteFishFeed)
	authed.POST("/pond-feeds", farmHandler.handleCreateFeedPurchase)
	authed.GET("/pond-feeds", farmHandler.handleListFeedPurchases)
	authed.DELETE("/pond-feeds/:id", farmHandler.handleDeleteFeedPurchase)
	authed.POST("/feed-usage", farmHandler.handleCreateFeedUsage)
	authed.GET("/feed-usage", farmHandler.handleListFeedUsage)
	authed.DELETE("/feed-usage/:id", farmHandler.handleDeleteFeedUsage)
	authed.POST("/labor-costs", farmHandler.handleCreateLaborCost)
	authed.GET("/labor-costs", farmHandler.handleListLaborCosts)
	authed.DELETE("/labor-costs/:id", farmHandler.handleDeleteLaborCost)

	// incomes
	authed.POST("/persons", incomeHandler.handleCreatePerson)
	authed.GET("/persons", incomeHandler.handleListPersons)
	authed.PUT("/persons/:id", incomeHandler.handleUpdatePerson)
	authed.DELETE("/persons/:id", incomeHandler.handleDeletePerson)
	authed.POST("/organizations", incomeHandler.handleCreateOrganization)
	authed.GET("/organizations", incomeHandler.handleListOrganizations)
	authed.PUT("/organizations/:id", incomeHandler.handleUpdateOrganization)
	authed.DELETE("/organizations/:id", incomeHandler.handleDeleteOrganization)
	authed.POST("/incomes", incomeHandler.handleCreateIncome)
	authed.GET("/incomes", incomeHandler.handleListIncomes)
	authed.PUT("/incomes/:id", incomeHandler.handleUpdateIncome)
	authed.DELETE("/incomes/:id", incomeHandler.handleDeleteIncome)
	authed.GET("/income-dashboard/stats", incomeHandler.handleDashboard)

	// gher dashboard
	authed.GET("/gher/dashboard/stats", dashboardHandler.handleStats)
}
