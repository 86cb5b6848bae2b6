package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gherbooks/api"
	"gherbooks/internal/auth"
	"gherbooks/internal/dashboard"
	"gherbooks/internal/sales"
)

func newTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	authService := auth.NewService(auth.NewLocalStorage(), logger, "integration-test-secret", time.Hour)
	salesService := sales.NewService(sales.NewLocalStorage(), logger)

	router := gin.New()
	api.InitRoutes(router, api.Deps{
		AuthService:      authService,
		SalesService:     salesService,
		DashboardService: dashboard.NewService(nil, nil, logger),
		Logger:           logger,
	})
	return router
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	w := doJSON(router, http.MethodPost, "/register", "", map[string]string{
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, "expected user registration to succeed")

	w = doJSON(router, http.MethodPost, "/token", "", map[string]string{
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, "expected login to succeed")

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResponse))
	assert.Equal(t, "bearer", tokenResponse.TokenType)
	require.NotEmpty(t, tokenResponse.AccessToken)
	return tokenResponse.AccessToken
}

// TestPaymentAllocation_FullFlow walks the whole credit sales flow:
// register, create a buyer, record two sales on different dates, then pay
// an amount that clears the oldest sale and partially covers the newer one.
func TestPaymentAllocation_FullFlow(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "farmer@example.com")

	var buyer sales.Buyer
	t.Run("POST_CreateBuyer", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/fish-buyers", token, map[string]string{
			"name": "Rahim Traders",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &buyer))
		assert.NotZero(t, buyer.ID)
	})

	var oldSale, newSale sales.Sale
	t.Run("POST_CreateSales", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/fish-sales", token, map[string]interface{}{
			"buyer_id":     buyer.ID,
			"date":         "2026-03-01T00:00:00Z",
			"total_amount": 1000,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &oldSale))
		assert.Equal(t, sales.StatusDue, oldSale.PaymentStatus)

		w = doJSON(router, http.MethodPost, "/fish-sales", token, map[string]interface{}{
			"buyer_id":     buyer.ID,
			"date":         "2026-03-15T00:00:00Z",
			"total_amount": 500,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &newSale))
	})

	t.Run("POST_PaymentAllocatesOldestFirst", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, fmt.Sprintf("/fish-buyers/%d/transactions", buyer.ID), token, map[string]interface{}{
			"amount":           1200,
			"transaction_type": "payment",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var response struct {
			Transaction sales.BuyerTransaction `json:"transaction"`
			Allocation  sales.AllocationResult `json:"allocation"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotZero(t, response.Transaction.ID)

		require.Len(t, response.Allocation.Applications, 2, "expected the payment to touch both sales")
		assert.Equal(t, oldSale.ID, response.Allocation.Applications[0].SaleID, "expected the older sale first")
		assert.True(t, response.Allocation.Applications[0].Applied.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, newSale.ID, response.Allocation.Applications[1].SaleID)
		assert.True(t, response.Allocation.Applications[1].Applied.Equal(decimal.NewFromInt(200)))
		assert.True(t, response.Allocation.Remaining.IsZero())
	})

	t.Run("GET_BuyerDetailsReflectAllocation", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, fmt.Sprintf("/fish-buyers/%d", buyer.ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var details sales.BuyerDetails
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
		assert.True(t, details.Stats.TotalBought.Equal(decimal.NewFromInt(1500)))
		assert.True(t, details.Stats.TotalPaid.Equal(decimal.NewFromInt(1200)))
		assert.True(t, details.Stats.Balance.Equal(decimal.NewFromInt(300)))

		require.Len(t, details.Sales, 2)
		for _, sale := range details.Sales {
			switch sale.ID {
			case oldSale.ID:
				assert.Equal(t, sales.StatusPaid, sale.PaymentStatus)
				assert.True(t, sale.DueAmount.IsZero())
			case newSale.ID:
				assert.Equal(t, sales.StatusPartial, sale.PaymentStatus)
				assert.True(t, sale.DueAmount.Equal(decimal.NewFromInt(300)))
			default:
				t.Fatalf("unexpected sale %d", sale.ID)
			}
		}
	})

	t.Run("GET_BuyerListShowsBalance", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/fish-buyers", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var summaries []sales.BuyerSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
		require.Len(t, summaries, 1)
		assert.True(t, summaries[0].Balance.Equal(decimal.NewFromInt(300)))
	})
}

// TestAuthRequired checks that protected routes reject missing and bogus
// tokens.
func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/fish-buyers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/fish-buyers", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestTenantIsolation checks that one user cannot see or pay against
// another user's buyers.
func TestTenantIsolation(t *testing.T) {
	router := newTestRouter(t)
	ownerToken := registerAndLogin(t, router, "owner@example.com")
	otherToken := registerAndLogin(t, router, "other@example.com")

	w := doJSON(router, http.MethodPost, "/fish-buyers", ownerToken, map[string]string{"name": "Karim"})
	require.Equal(t, http.StatusCreated, w.Code)
	var buyer sales.Buyer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &buyer))

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/fish-buyers/%d", buyer.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/fish-buyers/%d/transactions", buyer.ID), otherToken, map[string]interface{}{
		"amount":           100,
		"transaction_type": "payment",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestInvalidPayment checks the validation responses on the payment
// endpoint.
func TestInvalidPayment(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "validator@example.com")

	w := doJSON(router, http.MethodPost, "/fish-buyers", token, map[string]string{"name": "Test Buyer"})
	require.Equal(t, http.StatusCreated, w.Code)
	var buyer sales.Buyer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &buyer))

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/fish-buyers/%d/transactions", buyer.ID), token, map[string]interface{}{
		"amount":           50,
		"transaction_type": "refund",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "expected unknown transaction types to be rejected")

	// Zero amount is benign input: recorded, nothing allocated.
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/fish-buyers/%d/transactions", buyer.ID), token, map[string]interface{}{
		"amount":           0,
		"transaction_type": "payment",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var response struct {
		Allocation sales.AllocationResult `json:"allocation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Allocation.Applications)
}
