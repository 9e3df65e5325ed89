package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email string, password string) (domain.User, error)
}

type userKey struct{}

func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the authenticated user stored by BasicAuth.
func UserFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey{}).(domain.User)
	return user, ok
}

// ActorFrom returns the actor for the authenticated user, or the zero actor.
func ActorFrom(ctx context.Context) domain.Actor {
	user, ok := UserFrom(ctx)
	if !ok {
		return domain.Actor{}
	}
	return user.Actor()
}

// BasicAuth authenticates the request's email/password pair against the user
// directory and stores the resolved user on the request context.
func BasicAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil {
				logger.Error("basic auth middleware missing authenticator", nil, logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "server auth configuration is missing", http.StatusInternalServerError)
				return
			}

			email, password, ok := r.BasicAuth()
			if !ok {
				logger.Info("basic auth middleware unauthorized request", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"credentials": "missing",
				})
				unauthorized(w)
				return
			}

			user, err := auth.Authenticate(r.Context(), email, password)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrUnauthorized):
				logger.Info("basic auth middleware unauthorized request", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"credentials": "invalid",
				})
				unauthorized(w)
				return
			case errors.Is(err, domain.ErrForbidden):
				logger.Info("basic auth middleware inactive user", logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			default:
				logger.Error("basic auth middleware authenticate failed", err, logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			logger.Info("basic auth middleware authorized request", logger.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"userId": user.ID,
				"role":   user.Role,
			})
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin rejects callers whose role is not privileged. It must run after BasicAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if !user.Role.IsPrivileged() {
			logger.Info("admin middleware forbidden request", logger.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"userId": user.ID,
			})
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="ledger-loan-service"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
