package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-loan-service/src/internal/commons"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

type AccountController struct {
	service service_interfaces.AccountService
}

func NewAccountController(service service_interfaces.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("POST /accounts", withAuth(authMiddleware, c.createAccount))
	mux.Handle("POST /accounts/transfer", withAuth(authMiddleware, c.transfer))
	mux.Handle("GET /accounts/{accountNumber}", withAuth(authMiddleware, c.getAccount))
	mux.Handle("POST /accounts/{accountNumber}/deposit", withAuth(authMiddleware, c.deposit))
	mux.Handle("POST /accounts/{accountNumber}/withdraw", withAuth(authMiddleware, c.withdraw))
	mux.Handle("GET /accounts/{accountNumber}/transactions", withAuth(authMiddleware, c.getTransactions))
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateAccountRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.AccountResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		badRequest[models.AccountResponse](w, r, start, "validation failed", err)
		return
	}

	account, err := c.service.CreateAccount(r.Context(), req.HolderName)
	if err != nil {
		serviceError[models.AccountResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusCreated, commons.SuccessResponse("Account created", models.NewAccountResponse(account)))
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	account, err := c.service.GetByAccountNumber(r.Context(), r.PathValue("accountNumber"))
	if err != nil {
		serviceError[models.AccountResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Account fetched", models.NewAccountResponse(account)))
}

func (c *AccountController) deposit(w http.ResponseWriter, r *http.Request) {
	c.moveFunds(w, r, "Deposit successful", c.service.Deposit)
}

func (c *AccountController) withdraw(w http.ResponseWriter, r *http.Request) {
	c.moveFunds(w, r, "Withdrawal successful", c.service.Withdraw)
}

func (c *AccountController) moveFunds(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	apply func(ctx context.Context, accountNumber string, amount *decimal.Decimal) (domain.Account, error),
) {
	start := time.Now()

	var req models.AmountRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.AccountResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	amount, err := req.ParsedAmount()
	if err != nil {
		badRequest[models.AccountResponse](w, r, start, "validation failed", err)
		return
	}

	account, err := apply(r.Context(), r.PathValue("accountNumber"), amount)
	if err != nil {
		serviceError[models.AccountResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse(message, models.NewAccountResponse(account)))
}

func (c *AccountController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TransferRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.AccountResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		badRequest[models.AccountResponse](w, r, start, "validation failed", err)
		return
	}
	amount, err := req.ParsedAmount()
	if err != nil {
		badRequest[models.AccountResponse](w, r, start, "validation failed", err)
		return
	}

	source, err := c.service.Transfer(r.Context(), req.SourceAccountNumber, req.DestinationAccountNumber, amount)
	if err != nil {
		serviceError[models.AccountResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Transfer successful", models.NewAccountResponse(source)))
}

func (c *AccountController) getTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	transactions, err := c.service.GetTransactions(r.Context(), r.PathValue("accountNumber"))
	if err != nil {
		serviceError[[]models.TransactionResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Transactions fetched", models.NewTransactionResponses(transactions)))
}
