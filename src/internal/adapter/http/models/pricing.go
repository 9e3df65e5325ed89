package models

import (
	"errors"
	"strings"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

type PricingRequest struct {
	Amount       string `json:"amount"`
	ProposedRate string `json:"proposedRate"`
	TenureMonths int    `json:"tenureMonths"`
	Rating       string `json:"rating,omitempty"`
}

func (r PricingRequest) Input() (domain.PricingInput, error) {
	var errs []string

	amount := requiredDecimal("amount", r.Amount, &errs)
	rate := requiredDecimal("proposedRate", r.ProposedRate, &errs)
	if rate != nil && rate.IsNegative() {
		errs = append(errs, "proposedRate cannot be negative")
	}
	if r.TenureMonths <= 0 {
		errs = append(errs, "tenureMonths must be greater than zero")
	}

	if len(errs) > 0 {
		return domain.PricingInput{}, errors.New(strings.Join(errs, "; "))
	}
	return domain.PricingInput{
		Amount:       *amount,
		ProposedRate: *rate,
		TenureMonths: r.TenureMonths,
		Rating:       r.Rating,
	}, nil
}

type PricingResponse struct {
	RecommendedRate string `json:"recommendedRate"`
	EMI             string `json:"emi"`
	TotalInterest   string `json:"totalInterest"`
	RiskCategory    string `json:"riskCategory"`
}

func NewPricingResponse(p domain.Pricing) PricingResponse {
	return PricingResponse{
		RecommendedRate: p.RecommendedRate.StringFixed(2),
		EMI:             p.EMI.StringFixed(2),
		TotalInterest:   p.TotalInterest.StringFixed(2),
		RiskCategory:    string(p.RiskCategory),
	}
}
