package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/commons"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
)

const maxBodyBytes = 1 << 20

func withAuth(authMiddleware func(http.Handler) http.Handler, handler http.HandlerFunc) http.Handler {
	if authMiddleware == nil {
		return handler
	}
	return authMiddleware(handler)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respond[T any](w http.ResponseWriter, r *http.Request, start time.Time, status int, response commons.Response[T]) {
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func badRequest[T any](w http.ResponseWriter, r *http.Request, start time.Time, message string, err error) {
	logError(r, err, nil)
	respond(w, r, start, http.StatusBadRequest, commons.ErrorResponse[T](message, err.Error()))
}

func serviceError[T any](w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	logError(r, err, logger.Fields{"kind": kind, "status": status})

	if status == http.StatusInternalServerError {
		respond(w, r, start, status, commons.CodedErrorResponse[T](string(kind), "An error occurred while processing the request"))
		return
	}
	respond(w, r, start, status, commons.CodedErrorResponse[T](string(kind), err.Error()))
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidAmount, domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case domain.KindLoanEditNotAllowed, domain.KindStatusChangeNotAllowed, domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConcurrentModification, domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
