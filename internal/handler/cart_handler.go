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

type cartService interface {
	Add(ctx context.Context, claims *models.TokenClaims, req service.AddCartItemRequest) (*models.CartItem, error)
	List(ctx context.Context, claims *models.TokenClaims, email string) ([]models.CartItem, error)
	Remove(ctx context.Context, claims *models.TokenClaims, id string) error
}

// CartHandler wires HTTP endpoints to the cart service.
type CartHandler struct {
	service cartService
}

// NewCartHandler creates a new handler.
func NewCartHandler(svc cartService) *CartHandler {
	return &CartHandler{service: svc}
}

// Add godoc
// @Summary Select class
// @Description Adds a class to the caller's cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param payload body service.AddCartItemRequest true "Cart payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /selectedClass [post]
func (h *CartHandler) Add(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cart payload"))
		return
	}

	item, err := h.service.Add(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// List godoc
// @Summary List selected classes
// @Description Returns the caller's cart; a foreign email answers forbidden
// @Tags Cart
// @Produce json
// @Param email query string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /selectedClass [get]
func (h *CartHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), claimsFromContext(c), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Remove godoc
// @Summary Remove selected class
// @Tags Cart
// @Produce json
// @Param id path string true "Cart item id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /selectedClass/{id} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
