package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-loan-service/src/internal/commons"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/service_interfaces"
)

type LoanController struct {
	service service_interfaces.LoanService
}

func NewLoanController(service service_interfaces.LoanService) *LoanController {
	return &LoanController{service: service}
}

func (c *LoanController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("POST /loans", withAuth(authMiddleware, c.createLoan))
	mux.Handle("GET /loans", withAuth(authMiddleware, c.listLoans))
	mux.Handle("GET /loans/{id}", withAuth(authMiddleware, c.getLoan))
	mux.Handle("PUT /loans/{id}", withAuth(authMiddleware, c.updateLoan))
	mux.Handle("PUT /loans/{id}/admin", withAuth(authMiddleware, middleware.RequireAdmin(http.HandlerFunc(c.updateLoanAdmin)).ServeHTTP))
	mux.Handle("POST /loans/{id}/status", withAuth(authMiddleware, c.changeStatus))
	mux.Handle("DELETE /loans/{id}", withAuth(authMiddleware, c.deleteLoan))
	mux.Handle("GET /loans/{id}/pricing", withAuth(authMiddleware, c.loanPricing))
}

func (c *LoanController) createLoan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateLoanRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.LoanResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	in, err := req.Input()
	if err != nil {
		badRequest[models.LoanResponse](w, r, start, "validation failed", err)
		return
	}

	loan, err := c.service.CreateLoan(r.Context(), in, middleware.ActorFrom(r.Context()))
	if err != nil {
		serviceError[models.LoanResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusCreated, commons.SuccessResponse("Loan created", models.NewLoanResponse(loan)))
}

func (c *LoanController) listLoans(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	in, err := models.ListLoansQuery(r.URL.Query().Get)
	if err != nil {
		badRequest[models.PageResponse[models.LoanResponse]](w, r, start, "validation failed", err)
		return
	}
	if in.IncludeDeleted && !middleware.ActorFrom(r.Context()).Role.IsPrivileged() {
		serviceError[models.PageResponse[models.LoanResponse]](w, r, start,
			fmt.Errorf("%w: only administrators may list deleted loans", domain.ErrForbidden))
		return
	}

	page, err := c.service.ListLoans(r.Context(), in)
	if err != nil {
		serviceError[models.PageResponse[models.LoanResponse]](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Loans fetched", models.NewLoanPageResponse(page)))
}

func (c *LoanController) getLoan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	loan, err := c.service.GetLoanByID(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError[models.LoanResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Loan fetched", models.NewLoanResponse(loan)))
}

func (c *LoanController) updateLoan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.UpdateLoanRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.LoanResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	in, err := req.Input()
	if err != nil {
		badRequest[models.LoanResponse](w, r, start, "validation failed", err)
		return
	}

	loan, err := c.service.UpdateLoan(r.Context(), r.PathValue("id"), in, middleware.ActorFrom(r.Context()))
	if err != nil {
		serviceError[models.LoanResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Loan updated", models.NewLoanResponse(loan)))
}

func (c *LoanController) updateLoanAdmin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.UpdateLoanAdminRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.LoanResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	in, err := req.Input()
	if err != nil {
		badRequest[models.LoanResponse](w, r, start, "validation failed", err)
		return
	}

	loan, err := c.service.UpdateLoanAdmin(r.Context(), r.PathValue("id"), in, middleware.ActorFrom(r.Context()))
	if err != nil {
		serviceError[models.LoanResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Loan updated", models.NewLoanResponse(loan)))
}

func (c *LoanController) changeStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ChangeStatusRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.LoanResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		badRequest[models.LoanResponse](w, r, start, "validation failed", err)
		return
	}

	loan, err := c.service.ChangeStatus(r.Context(), r.PathValue("id"), req.Input(), middleware.ActorFrom(r.Context()))
	if err != nil {
		serviceError[models.LoanResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Loan status changed", models.NewLoanResponse(loan)))
}

func (c *LoanController) deleteLoan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	loan, err := c.service.DeleteLoan(r.Context(), r.PathValue("id"), middleware.ActorFrom(r.Context()))
	if err != nil {
		serviceError[models.LoanResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Loan deleted", models.NewLoanResponse(loan)))
}

func (c *LoanController) loanPricing(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	pricing, err := c.service.CalculateLoanPricing(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError[models.PricingResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Pricing calculated", models.NewPricingResponse(pricing)))
}
