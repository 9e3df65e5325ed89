package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
)

// requestFields identifies the call and, once authenticated, the caller.
func requestFields(r *http.Request) logger.Fields {
	fields := logger.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"resource": resourceOf(r.URL.Path),
	}
	if r.URL.RawQuery != "" {
		fields["query"] = r.URL.RawQuery
	}
	if user, ok := middleware.UserFrom(r.Context()); ok {
		fields["userId"] = user.ID
		fields["role"] = string(user.Role)
	}
	return fields
}

// resourceOf names the aggregate a path addresses: account, loan, pricing, user.
func resourceOf(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if segments[0] == "admin" && len(segments) > 1 {
		segments = segments[1:]
	}
	switch segments[0] {
	case "accounts":
		return "account"
	case "loans":
		return "loan"
	case "pricing":
		return "pricing"
	case "users", "me":
		return "user"
	default:
		return "service"
	}
}

func logRequest(r *http.Request, payload any) {
	fields := requestFields(r)
	if payload != nil {
		fields["payload"] = logger.SanitizePayload(payload)
	}
	logger.Info("ledger api request", fields)
}

func logResponse(r *http.Request, status int, payload any, start time.Time) {
	fields := requestFields(r)
	fields["status"] = status
	fields["durationMs"] = time.Since(start).Milliseconds()
	fields["response"] = logger.SanitizePayload(payload)
	logger.Info("ledger api response", fields)
}

func logError(r *http.Request, err error, extra logger.Fields) {
	fields := requestFields(r)
	for k, v := range extra {
		fields[k] = v
	}
	logger.Error("ledger api handler error", err, fields)
}
