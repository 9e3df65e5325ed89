package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.PricingService = (*PricingService)(nil)

type ratingTerms struct {
	markup decimal.Decimal
	risk   domain.RiskCategory
}

var ratingTable = map[string]ratingTerms{
	"A": {markup: decimal.Zero, risk: domain.RiskLow},
	"B": {markup: decimal.RequireFromString("0.5"), risk: domain.RiskMedium},
	"C": {markup: decimal.RequireFromString("1.0"), risk: domain.RiskHigh},
}

var fallbackTerms = ratingTerms{markup: decimal.RequireFromString("1.5"), risk: domain.RiskVeryHigh}

type PricingService struct{}

func NewPricingService() *PricingService {
	return &PricingService{}
}

func (s *PricingService) CalculatePricing(_ context.Context, in domain.PricingInput) (domain.Pricing, error) {
	pricing, err := CalculatePricing(in)
	if err != nil {
		logger.Error("pricing service calculate failed", err, logger.Fields{
			"amount":       in.Amount.String(),
			"tenureMonths": in.TenureMonths,
		})
		return domain.Pricing{}, err
	}
	return pricing, nil
}

// CalculatePricing derives the recommended rate, EMI and total interest for the
// given terms. It has no side effects and returns identical output for identical input.
func CalculatePricing(in domain.PricingInput) (domain.Pricing, error) {
	if in.TenureMonths <= 0 {
		return domain.Pricing{}, fmt.Errorf("%w: tenureMonths must be positive", domain.ErrInvalidInput)
	}
	if in.Amount.IsNegative() {
		return domain.Pricing{}, fmt.Errorf("%w: amount cannot be negative", domain.ErrInvalidInput)
	}
	if in.ProposedRate.IsNegative() {
		return domain.Pricing{}, fmt.Errorf("%w: proposedRate cannot be negative", domain.ErrInvalidInput)
	}

	terms := termsFor(in.Rating)
	recommended := in.ProposedRate.Add(terms.markup)

	n := in.TenureMonths
	principal := in.Amount.InexactFloat64()
	monthlyRate := recommended.InexactFloat64() / 100 / 12

	// A rate too small to move the float compound factor prices like a zero rate.
	power := math.Pow(1+monthlyRate, float64(n))
	var emi decimal.Decimal
	totalInterest := decimal.Zero
	if monthlyRate == 0 || power == 1 {
		emi = in.Amount.Div(decimal.NewFromInt(int64(n))).Round(2)
	} else {
		installment := principal * monthlyRate * power / (power - 1)
		if !isFinite(installment) {
			return domain.Pricing{}, fmt.Errorf("%w: rate %s over %d months has no finite installment",
				domain.ErrInvalidInput, recommended.String(), n)
		}
		emi = decimal.NewFromFloat(installment).Round(2)
		totalInterest = emi.Mul(decimal.NewFromInt(int64(n))).Sub(in.Amount).Round(2)
	}

	return domain.Pricing{
		RecommendedRate: recommended.Round(2),
		EMI:             emi,
		TotalInterest:   totalInterest,
		RiskCategory:    terms.risk,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func termsFor(rating string) ratingTerms {
	normalized := strings.ToUpper(strings.TrimSpace(rating))
	if normalized == "" {
		normalized = domain.DefaultRating
	}
	if terms, ok := ratingTable[normalized]; ok {
		return terms
	}
	return fallbackTerms
}
