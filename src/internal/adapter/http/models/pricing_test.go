package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingRequestRejectsNegativeRate(t *testing.T) {
	_, err := PricingRequest{Amount: "1000", ProposedRate: "-1", TenureMonths: 12}.Input()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proposedRate cannot be negative")

	in, err := PricingRequest{Amount: "1000", ProposedRate: "0", TenureMonths: 12, Rating: "B"}.Input()
	require.NoError(t, err)
	assert.True(t, in.ProposedRate.IsZero())
	assert.Equal(t, "B", in.Rating)
}
