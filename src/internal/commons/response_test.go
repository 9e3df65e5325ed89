package commons

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessResponseOmitsErrorFields(t *testing.T) {
	raw, err := json.Marshal(SuccessResponse("Account fetched", map[string]string{"accountNumber": "ANA0001"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":true,"message":"Account fetched","data":{"accountNumber":"ANA0001"}}`, string(raw))
}

func TestCodedErrorResponse(t *testing.T) {
	raw, err := json.Marshal(CodedErrorResponse[struct{}]("INSUFFICIENT_BALANCE", "Insufficient balance"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":false,"message":"Insufficient balance","code":"INSUFFICIENT_BALANCE"}`, string(raw))
}
