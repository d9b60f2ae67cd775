package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/martialcamp/enrollment-api/internal/models"
	"github.com/martialcamp/enrollment-api/internal/service"
	appErrors "github.com/martialcamp/enrollment-api/pkg/errors"
	"github.com/martialcamp/enrollment-api/pkg/response"
)

type userService interface {
	Register(ctx context.Context, req service.RegisterUserRequest) (*models.User, bool, error)
	List(ctx context.Context) ([]models.User, error)
	ListInstructors(ctx context.Context, limit *int) ([]models.User, error)
	RoleFor(ctx context.Context, claims *models.TokenClaims, email string) (*service.RoleResult, error)
	SetRole(ctx context.Context, id string, role models.UserRole) (*models.User, error)
}

// UserHandler wires HTTP endpoints to the user service.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// Register godoc
// @Summary Register user
// @Description Idempotent user creation keyed by email
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.RegisterUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}

	user, created, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !created {
		response.JSON(c, http.StatusOK, gin.H{"message": "user already exists"})
		return
	}
	response.Created(c, user)
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// Role godoc
// @Summary Self-only role lookup
// @Description Returns the caller's stored role; a foreign email yields a null role
// @Tags Users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} response.Envelope
// @Router /users/role/{email} [get]
func (h *UserHandler) Role(c *gin.Context) {
	result, err := h.service.RoleFor(c.Request.Context(), claimsFromContext(c), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// SetRole godoc
// @Summary Set user role
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Param role query string true "Role" Enums(admin, instructor, student)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [patch]
func (h *UserHandler) SetRole(c *gin.Context) {
	user, err := h.service.SetRole(c.Request.Context(), c.Param("id"), models.UserRole(c.Query("role")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Instructors godoc
// @Summary List instructors
// @Tags Users
// @Produce json
// @Param limit query int false "Applied literally; zero yields an empty list"
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *UserHandler) Instructors(c *gin.Context) {
	users, err := h.service.ListInstructors(c.Request.Context(), limitFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}
