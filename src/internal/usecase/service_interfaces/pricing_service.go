package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

type PricingService interface {
	CalculatePricing(ctx context.Context, in domain.PricingInput) (domain.Pricing, error)
}
