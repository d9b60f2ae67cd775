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

type classService interface {
	ListPublic(ctx context.Context, limit *int) ([]models.Class, error)
	ListMine(ctx context.Context, instructorEmail string) ([]models.Class, error)
	GetMine(ctx context.Context, instructorEmail, id string) (*models.Class, error)
	Create(ctx context.Context, claims *models.TokenClaims, req service.CreateClassRequest) (*models.Class, error)
	UpdateMine(ctx context.Context, instructorEmail, id string, req service.UpdateClassRequest) (*models.Class, error)
	ListPending(ctx context.Context) ([]models.Class, error)
	SetStatus(ctx context.Context, id string, status models.ClassStatus) (*models.Class, error)
	SetFeedback(ctx context.Context, id, feedback string) (*models.Class, error)
}

// ClassHandler wires HTTP endpoints to the class service.
type ClassHandler struct {
	service classService
}

// NewClassHandler creates a new handler.
func NewClassHandler(svc classService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// ListPublic godoc
// @Summary List approved classes
// @Description Approved classes ordered by enrollment, most enrolled first
// @Tags Classes
// @Produce json
// @Param limit query int false "Applied literally; zero yields an empty list"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) ListPublic(c *gin.Context) {
	classes, err := h.service.ListPublic(c.Request.Context(), limitFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// ListMine godoc
// @Summary List own classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /my-classes [get]
func (h *ClassHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	classes, err := h.service.ListMine(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// GetMine godoc
// @Summary Get own class
// @Tags Classes
// @Produce json
// @Param id path string true "Class id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /my-classes/{id} [get]
func (h *ClassHandler) GetMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	class, err := h.service.GetMine(c.Request.Context(), claims.Email, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// Create godoc
// @Summary Submit class offering
// @Description Creates a class in pending state for admin moderation
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /my-classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}

	class, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// UpdateMine godoc
// @Summary Update own class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class id"
// @Param payload body service.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /my-classes/{id} [patch]
func (h *ClassHandler) UpdateMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}

	class, err := h.service.UpdateMine(c.Request.Context(), claims.Email, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// ListPending godoc
// @Summary List pending classes
// @Tags Moderation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /pending-classes [get]
func (h *ClassHandler) ListPending(c *gin.Context) {
	classes, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// SetStatus godoc
// @Summary Resolve pending class
// @Tags Moderation
// @Produce json
// @Param id path string true "Class id"
// @Param status query string true "Status" Enums(approved, denied)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /pending-classes/{id} [patch]
func (h *ClassHandler) SetStatus(c *gin.Context) {
	class, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), models.ClassStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// SetFeedback godoc
// @Summary Set class feedback
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path string true "Class id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /feedback/{id} [patch]
func (h *ClassHandler) SetFeedback(c *gin.Context) {
	var payload struct {
		Feedback string `json:"feedback" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "feedback required"))
		return
	}

	class, err := h.service.SetFeedback(c.Request.Context(), c.Param("id"), payload.Feedback)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}
