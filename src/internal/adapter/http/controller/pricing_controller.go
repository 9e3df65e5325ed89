package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-loan-service/src/internal/commons"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/service_interfaces"
)

type PricingController struct {
	service service_interfaces.PricingService
}

func NewPricingController(service service_interfaces.PricingService) *PricingController {
	return &PricingController{service: service}
}

func (c *PricingController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("POST /pricing", withAuth(authMiddleware, c.calculate))
}

func (c *PricingController) calculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.PricingRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.PricingResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	in, err := req.Input()
	if err != nil {
		badRequest[models.PricingResponse](w, r, start, "validation failed", err)
		return
	}

	pricing, err := c.service.CalculatePricing(r.Context(), in)
	if err != nil {
		serviceError[models.PricingResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Pricing calculated", models.NewPricingResponse(pricing)))
}
