package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/controller"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/router"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/lock"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@bank.example"
	adminPassword = "admin-password"
	userEmail     = "analyst@bank.example"
	userPassword  = "analyst-password"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

// steppingClock advances one second per reading so transaction order is deterministic.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type api struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) api {
	t.Helper()
	store := memory.NewStore()
	locker := lock.NewMemoryLocker()

	users := services.NewUserService(memory.NewUserRepository(store)).WithHashCost(bcrypt.MinCost)
	_, _, err := users.SeedAdmin(context.Background(), "admin-1", adminEmail, adminPassword)
	require.NoError(t, err)
	_, err = users.CreateUser(context.Background(), domain.CreateUserInput{Email: userEmail, Password: userPassword})
	require.NoError(t, err)

	pricing := services.NewPricingService()
	accounts := services.NewAccountService(
		memory.NewAccountRepository(store),
		memory.NewTransactionRepository(store),
		memory.NewTransactor(store),
		locker,
		services.WithAccountClock(steppingClock()),
	)
	loans := services.NewLoanService(memory.NewLoanRepository(store), locker, pricing)

	mux := router.New(
		middleware.BasicAuth(users),
		controller.NewHealthController(nil),
		controller.NewAccountController(accounts),
		controller.NewLoanController(loans),
		controller.NewPricingController(pricing),
		controller.NewUserController(users),
	)
	return api{t: t, handler: mux}
}

func (a api) do(method, path, email, password string, body any) (int, envelope) {
	a.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if email != "" {
		req.SetBasicAuth(email, password)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)

	var out envelope
	if rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr.Code, out
}

func (a api) asUser(method, path string, body any) (int, envelope) {
	return a.do(method, path, userEmail, userPassword, body)
}

func (a api) asAdmin(method, path string, body any) (int, envelope) {
	return a.do(method, path, adminEmail, adminPassword, body)
}

func decode[T any](t *testing.T, e envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(e.Data, &v))
	return v
}

func TestHealthIsPublicAndSwaggerServed(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)

	req := httptest.NewRequest(http.MethodGet, "/swagger/openapi.json", nil)
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, json.Valid(rr.Body.Bytes()))
}

func TestRoutesRequireCredentials(t *testing.T) {
	a := newAPI(t)

	code, _ := a.do(http.MethodGet, "/loans", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodGet, "/loans", userEmail, "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAccountFlowOverHTTP(t *testing.T) {
	a := newAPI(t)

	code, body := a.asUser(http.MethodPost, "/accounts", map[string]string{"holderName": "Ana Lee"})
	require.Equal(t, http.StatusCreated, code)
	ana := decode[map[string]any](t, body)
	anaNumber := ana["accountNumber"].(string)
	assert.Regexp(t, `^ANA\d{4}$`, anaNumber)
	assert.Equal(t, "0", ana["balance"])

	code, body = a.asUser(http.MethodPost, "/accounts", map[string]string{"holderName": "Bo"})
	require.Equal(t, http.StatusCreated, code)
	boNumber := decode[map[string]any](t, body)["accountNumber"].(string)

	code, body = a.asUser(http.MethodPost, "/accounts/"+anaNumber+"/deposit", map[string]string{"amount": "100.10"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "100.1", decode[map[string]any](t, body)["balance"])

	code, body = a.asUser(http.MethodPost, "/accounts/"+anaNumber+"/deposit", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(domain.KindInvalidAmount), body.Code)

	code, _ = a.asUser(http.MethodPost, "/accounts/"+anaNumber+"/withdraw", map[string]string{"amount": "500"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = a.asUser(http.MethodPost, "/accounts/transfer", map[string]string{
		"sourceAccountNumber":      anaNumber,
		"destinationAccountNumber": boNumber,
		"amount":                   "40.05",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "60.05", decode[map[string]any](t, body)["balance"])

	code, body = a.asUser(http.MethodGet, "/accounts/"+anaNumber+"/transactions", nil)
	require.Equal(t, http.StatusOK, code)
	txns := decode[[]map[string]any](t, body)
	require.Len(t, txns, 3)
	assert.Equal(t, "TRANSFER", txns[0]["type"])
	assert.Equal(t, "FAILED", txns[1]["status"])
	assert.Equal(t, "DEPOSIT", txns[2]["type"])

	code, _ = a.asUser(http.MethodGet, "/accounts/ZZZ0000", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLoanLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)

	code, body := a.asUser(http.MethodPost, "/loans", map[string]any{
		"clientName":           "Acme",
		"loanType":             "TERM",
		"requestedAmount":      "50000000",
		"proposedInterestRate": "11",
		"tenureMonths":         36,
		"financials":           map[string]string{"rating": "A"},
	})
	require.Equal(t, http.StatusCreated, code)
	loan := decode[map[string]any](t, body)
	id := loan["id"].(string)
	assert.Equal(t, "DRAFT", loan["status"])

	code, _ = a.asUser(http.MethodPost, "/loans", map[string]any{"clientName": "Acme"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.asUser(http.MethodPost, "/loans/"+id+"/status", map[string]string{"status": "SUBMITTED"})
	require.Equal(t, http.StatusOK, code)

	code, _ = a.asUser(http.MethodPost, "/loans/"+id+"/status", map[string]string{"status": "UNDER_REVIEW"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.asUser(http.MethodPut, "/loans/"+id, map[string]any{"tenureMonths": 12})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.asUser(http.MethodPut, "/loans/"+id+"/admin", map[string]string{"sanctionedAmount": "1"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.asAdmin(http.MethodPut, "/loans/"+id+"/admin", map[string]string{"sanctionedAmount": "45000000"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "45000000", decode[map[string]any](t, body)["sanctionedAmount"])

	code, _ = a.asAdmin(http.MethodPost, "/loans/"+id+"/status", map[string]string{"status": "UNDER_REVIEW"})
	require.Equal(t, http.StatusOK, code)
	code, body = a.asAdmin(http.MethodPost, "/loans/"+id+"/status", map[string]string{"status": "APPROVED", "comments": "ok"})
	require.Equal(t, http.StatusOK, code)
	approved := decode[map[string]any](t, body)
	assert.Equal(t, "admin-1", approved["approvedBy"])
	assert.Len(t, approved["actions"], 3)

	code, _ = a.asAdmin(http.MethodPost, "/loans/"+id+"/status", map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = a.asUser(http.MethodGet, "/loans/"+id+"/pricing", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "LOW", decode[map[string]any](t, body)["riskCategory"])

	code, body = a.asUser(http.MethodGet, "/loans?status=approved&size=5", nil)
	require.Equal(t, http.StatusOK, code)
	page := decode[map[string]any](t, body)
	assert.EqualValues(t, 1, page["totalItems"])

	code, _ = a.asUser(http.MethodGet, "/loans?size=abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.asAdmin(http.MethodDelete, "/loans/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = a.asAdmin(http.MethodDelete, "/loans/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.asUser(http.MethodGet, "/loans/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = a.asUser(http.MethodGet, "/loans", nil)
	require.Equal(t, http.StatusOK, code)
	visible := decode[map[string]any](t, body)["totalItems"].(float64)

	code, _ = a.asUser(http.MethodGet, "/loans?includeDeleted=true", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.asAdmin(http.MethodGet, "/loans?includeDeleted=true", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, visible+1, decode[map[string]any](t, body)["totalItems"])
}

func TestPricingOverHTTP(t *testing.T) {
	a := newAPI(t)

	code, body := a.asUser(http.MethodPost, "/pricing", map[string]any{
		"amount":       "10000",
		"proposedRate": "12",
		"tenureMonths": 12,
		"rating":       "A",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{
		"recommendedRate": "12.00",
		"emi":             "888.49",
		"totalInterest":   "661.88",
		"riskCategory":    "LOW",
	}, decode[map[string]any](t, body))
}

func TestAdminUserManagementOverHTTP(t *testing.T) {
	a := newAPI(t)

	code, _ := a.asUser(http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := a.asAdmin(http.MethodPost, "/admin/users", map[string]string{"email": "new@bank.example", "password": "new-password"})
	require.Equal(t, http.StatusCreated, code)
	created := decode[map[string]any](t, body)
	assert.Equal(t, "USER", created["role"])
	assert.NotContains(t, created, "passwordHash")

	code, _ = a.asAdmin(http.MethodPost, "/admin/users", map[string]string{"email": "new@bank.example", "password": "new-password"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.asAdmin(http.MethodPut, "/admin/users/"+created["id"].(string)+"/status", map[string]bool{"active": false})
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodGet, "/me", "new@bank.example", "new-password", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.asUser(http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, userEmail, decode[map[string]any](t, body)["email"])
}
