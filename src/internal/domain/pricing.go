package domain

import "github.com/shopspring/decimal"

const DefaultRating = "C"

type RiskCategory string

const (
	RiskLow      RiskCategory = "LOW"
	RiskMedium   RiskCategory = "MEDIUM"
	RiskHigh     RiskCategory = "HIGH"
	RiskVeryHigh RiskCategory = "VERY_HIGH"
)

type PricingInput struct {
	Amount       decimal.Decimal
	ProposedRate decimal.Decimal
	TenureMonths int
	Rating       string
}

type Pricing struct {
	RecommendedRate decimal.Decimal
	EMI             decimal.Decimal
	TotalInterest   decimal.Decimal
	RiskCategory    RiskCategory
}
