package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-loan-service/src/internal/commons"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/service_interfaces"
)

type UserController struct {
	service service_interfaces.UserService
}

func NewUserController(service service_interfaces.UserService) *UserController {
	return &UserController{service: service}
}

func (c *UserController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	admin := func(h http.HandlerFunc) http.Handler {
		return withAuth(authMiddleware, middleware.RequireAdmin(h).ServeHTTP)
	}

	mux.Handle("GET /me", withAuth(authMiddleware, c.me))
	mux.Handle("GET /admin/users", admin(c.listUsers))
	mux.Handle("POST /admin/users", admin(c.createUser))
	mux.Handle("GET /admin/users/{id}", admin(c.getUser))
	mux.Handle("PUT /admin/users/{id}/status", admin(c.updateUserStatus))
}

func (c *UserController) me(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		serviceError[models.UserResponse](w, r, start, domain.ErrUnauthorized)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("User fetched", models.NewUserResponse(user)))
}

func (c *UserController) createUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.UserResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		badRequest[models.UserResponse](w, r, start, "validation failed", err)
		return
	}

	user, err := c.service.CreateUser(r.Context(), req.Input())
	if err != nil {
		serviceError[models.UserResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusCreated, commons.SuccessResponse("User created", models.NewUserResponse(user)))
}

func (c *UserController) listUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	users, err := c.service.ListUsers(r.Context())
	if err != nil {
		serviceError[[]models.UserResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("Users fetched", models.NewUserResponses(users)))
}

func (c *UserController) getUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	user, err := c.service.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError[models.UserResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("User fetched", models.NewUserResponse(user)))
}

func (c *UserController) updateUserStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.UpdateUserStatusRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest[models.UserResponse](w, r, start, "invalid request body", err)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		badRequest[models.UserResponse](w, r, start, "validation failed", err)
		return
	}

	user, err := c.service.UpdateUserStatus(r.Context(), r.PathValue("id"), *req.Active)
	if err != nil {
		serviceError[models.UserResponse](w, r, start, err)
		return
	}

	respond(w, r, start, http.StatusOK, commons.SuccessResponse("User status updated", models.NewUserResponse(user)))
}
