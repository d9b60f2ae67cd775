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

type paymentService interface {
	CreateIntent(ctx context.Context, req service.CreateIntentRequest) (*service.CreateIntentResponse, error)
	Checkout(ctx context.Context, claims *models.TokenClaims, req service.CheckoutRequest) (*service.CheckoutResult, error)
	ConfirmSeats(ctx context.Context, ids []interface{}) (*service.ConfirmSeatsResult, error)
	EnrolledClasses(ctx context.Context, claims *models.TokenClaims, email string) ([]models.Class, error)
	History(ctx context.Context, claims *models.TokenClaims, email string) ([]models.Payment, error)
	Receipt(ctx context.Context, claims *models.TokenClaims, id string) ([]byte, error)
}

// PaymentHandler wires HTTP endpoints to the payment service.
type PaymentHandler struct {
	service paymentService
	metrics *service.MetricsService
}

// NewPaymentHandler creates a new handler. metrics may be nil.
func NewPaymentHandler(svc paymentService, metrics *service.MetricsService) *PaymentHandler {
	return &PaymentHandler{service: svc, metrics: metrics}
}

// CreateIntent godoc
// @Summary Create payment intent
// @Description Requests a charge intent from the processor for the given price
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreateIntentRequest true "Price payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /create-payment-intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req service.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment intent payload"))
		return
	}

	res, err := h.service.CreateIntent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncPaymentIntent()
	}
	response.JSON(c, http.StatusOK, res)
}

// Checkout godoc
// @Summary Record payment
// @Description Records the payment and clears the originating cart entries
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CheckoutRequest true "Checkout payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Checkout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid checkout payload"))
		return
	}

	res, err := h.service.Checkout(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncCheckout()
	}
	response.Created(c, res)
}

// ConfirmSeats godoc
// @Summary Confirm seats
// @Description Increments the enrolled counter for each listed class
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body []string true "Class ids"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments [patch]
func (h *PaymentHandler) ConfirmSeats(c *gin.Context) {
	var ids []interface{}
	if err := c.ShouldBindJSON(&ids); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class id list"))
		return
	}

	res, err := h.service.ConfirmSeats(c.Request.Context(), ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Enrolled godoc
// @Summary List enrolled classes
// @Description Derives enrollment from the caller's payment history
// @Tags Payments
// @Produce json
// @Param email query string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) Enrolled(c *gin.Context) {
	classes, err := h.service.EnrolledClasses(c.Request.Context(), claimsFromContext(c), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// History godoc
// @Summary Payment history
// @Description Raw payment records, newest first
// @Tags Payments
// @Produce json
// @Param email query string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /payment-history [get]
func (h *PaymentHandler) History(c *gin.Context) {
	payments, err := h.service.History(c.Request.Context(), claimsFromContext(c), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments)
}

// Receipt godoc
// @Summary Payment receipt PDF
// @Tags Payments
// @Produce application/pdf
// @Param id path string true "Payment id"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /payment-history/{id}/receipt [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	doc, err := h.service.Receipt(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
