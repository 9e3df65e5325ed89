package controller

import (
	"net/http/httptest"
	"testing"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResourceOf(t *testing.T) {
	cases := map[string]string{
		"/accounts/ACC123/deposit": "account",
		"/loans":                   "loan",
		"/loans/abc/pricing":       "loan",
		"/pricing":                 "pricing",
		"/admin/users/u-1/status":  "user",
		"/me":                      "user",
		"/health":                  "service",
		"/":                        "service",
	}
	for path, want := range cases {
		assert.Equal(t, want, resourceOf(path), path)
	}
}

func TestRequestFieldsCarryCaller(t *testing.T) {
	r := httptest.NewRequest("GET", "/loans?includeDeleted=true", nil)
	anonymous := requestFields(r)
	assert.Equal(t, "loan", anonymous["resource"])
	assert.Equal(t, "includeDeleted=true", anonymous["query"])
	assert.NotContains(t, anonymous, "userId")

	r = r.WithContext(middleware.WithUser(r.Context(), domain.User{ID: "admin-1", Role: domain.RoleAdmin}))
	fields := requestFields(r)
	assert.Equal(t, "admin-1", fields["userId"])
	assert.Equal(t, "ADMIN", fields["role"])
}
