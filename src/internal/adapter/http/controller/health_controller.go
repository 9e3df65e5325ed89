package controller

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/commons"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type HealthController struct {
	checks map[string]HealthCheck
}

func NewHealthController(checks map[string]HealthCheck) *HealthController {
	return &HealthController{checks: checks}
}

// RegisterRoutes leaves /health unauthenticated so load balancers can probe it.
func (c *HealthController) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /health", c.health)
}

func (c *HealthController) health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	result := HealthResponse{Status: "UP", Dependencies: map[string]string{}}
	for _, name := range names {
		if err := c.checks[name](ctx); err != nil {
			logError(r, err, logger.Fields{"dependency": name})
			result.Status = "DOWN"
			result.Dependencies[name] = "DOWN"
			continue
		}
		result.Dependencies[name] = "UP"
	}

	if result.Status != "UP" {
		respond(w, r, start, http.StatusServiceUnavailable, commons.Response[HealthResponse]{
			Success: false,
			Message: "Service unhealthy",
			Data:    &result,
		})
		return
	}
	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Service healthy", result))
}
