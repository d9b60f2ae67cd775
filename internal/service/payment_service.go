package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/martialcamp/enrollment-api/internal/models"
	appErrors "github.com/martialcamp/enrollment-api/pkg/errors"
)

type paymentRepository interface {
	Checkout(ctx context.Context, payment *models.Payment) (int64, error)
	ListByStudent(ctx context.Context, email string) ([]models.Payment, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	ClassIDsByStudent(ctx context.Context, email string) ([][]string, error)
}

type enrollmentClassRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Class, error)
	IncrementEnrolled(ctx context.Context, ids []string) (int64, error)
}

// PaymentGateway creates a charge intent with the external processor and
// returns its client secret. No local state is involved.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

// ReceiptRenderer renders a payment receipt document.
type ReceiptRenderer interface {
	Render(payment *models.Payment, classNames []string) ([]byte, error)
}

// CreateIntentRequest asks the processor for a charge intent over a price in
// whole currency units.
type CreateIntentRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
}

// CreateIntentResponse returns the processor's client secret.
type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CheckoutRequest finalizes a paid cart. Id lists accept arbitrary nesting,
// matching what accumulating frontends send.
type CheckoutRequest struct {
	Amount           float64       `json:"amount" validate:"gte=0"`
	TransactionID    string        `json:"transaction_id"`
	ClassIDs         []interface{} `json:"classIds" validate:"required"`
	SelectedClassIDs []interface{} `json:"selectedClassIds" validate:"required"`
}

// CheckoutResult reports what the checkout recorded and cleared.
type CheckoutResult struct {
	Payment          *models.Payment `json:"payment"`
	CartItemsRemoved int64           `json:"cart_items_removed"`
}

// ConfirmSeatsResult reports how many class counters were bumped.
type ConfirmSeatsResult struct {
	ClassesUpdated int64 `json:"classes_updated"`
}

// PaymentService coordinates the enrollment workflow: charge intent, checkout
// (record payment + clear cart), seat confirmation, and the derived
// enrolled-classes view.
type PaymentService struct {
	payments  paymentRepository
	classes   enrollmentClassRepository
	gateway   PaymentGateway
	receipts  ReceiptRenderer
	currency  string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(payments paymentRepository, classes enrollmentClassRepository, gateway PaymentGateway, receipts ReceiptRenderer, currency string, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{payments: payments, classes: classes, gateway: gateway, receipts: receipts, currency: currency, validator: validate, logger: logger}
}

// CreateIntent converts the price to the smallest currency unit and requests
// a charge intent from the processor.
func (s *PaymentService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment intent payload")
	}

	amount := int64(math.Round(req.Price * 100))
	secret, err := s.gateway.CreateIntent(ctx, amount, s.currency)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "payment processor rejected the intent")
	}

	return &CreateIntentResponse{ClientSecret: secret}, nil
}

// Checkout records the payment and clears the originating cart entries in one
// transaction.
func (s *PaymentService) Checkout(ctx context.Context, claims *models.TokenClaims, req CheckoutRequest) (*CheckoutResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkout payload")
	}

	payment := &models.Payment{
		StudentEmail:     claims.Email,
		Amount:           req.Amount,
		TransactionID:    req.TransactionID,
		ClassIDs:         FlattenIDs(req.ClassIDs),
		SelectedClassIDs: FlattenIDs(req.SelectedClassIDs),
	}

	removed, err := s.payments.Checkout(ctx, payment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.logger.Info("checkout recorded",
		zap.String("email", payment.StudentEmail),
		zap.Int("classes", len(payment.ClassIDs)),
		zap.Int64("cart_items_removed", removed),
	)

	return &CheckoutResult{Payment: payment, CartItemsRemoved: removed}, nil
}

// ConfirmSeats increments the enrolled counter for each listed class. Classes
// already at capacity keep their counter; the caller learns how many rows
// changed.
func (s *PaymentService) ConfirmSeats(ctx context.Context, ids []interface{}) (*ConfirmSeatsResult, error) {
	classIDs := FlattenIDs(ids)
	if len(classIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id list is empty")
	}

	updated, err := s.classes.IncrementEnrolled(ctx, classIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm seats")
	}

	return &ConfirmSeatsResult{ClassesUpdated: updated}, nil
}

// EnrolledClasses derives the enrolled view by joining payment history against
// class offerings. Duplicate ids across payments pass through to the lookup.
func (s *PaymentService) EnrolledClasses(ctx context.Context, claims *models.TokenClaims, email string) ([]models.Class, error) {
	if claims == nil || claims.Email != email {
		return nil, appErrors.ErrForbidden
	}

	idLists, err := s.payments.ClassIDsByStudent(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect paid class ids")
	}

	nested := make([]interface{}, 0, len(idLists))
	for _, ids := range idLists {
		inner := make([]interface{}, 0, len(ids))
		for _, id := range ids {
			inner = append(inner, id)
		}
		nested = append(nested, inner)
	}

	classIDs := FlattenIDs(nested)
	classes, err := s.classes.FindByIDs(ctx, classIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolled classes")
	}
	return classes, nil
}

// History returns the student's raw payment records, newest first.
func (s *PaymentService) History(ctx context.Context, claims *models.TokenClaims, email string) ([]models.Payment, error) {
	if claims == nil || claims.Email != email {
		return nil, appErrors.ErrForbidden
	}

	payments, err := s.payments.ListByStudent(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}

// Receipt renders a PDF receipt for one of the caller's payments. Somebody
// else's payment answers not-found.
func (s *PaymentService) Receipt(ctx context.Context, claims *models.TokenClaims, id string) ([]byte, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}

	if claims == nil || payment.StudentEmail != claims.Email {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}

	classes, err := s.classes.FindByIDs(ctx, []string(payment.ClassIDs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load paid classes")
	}
	names := make([]string, 0, len(classes))
	for _, class := range classes {
		names = append(names, class.Name)
	}

	doc, err := s.receipts.Render(payment, names)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return doc, nil
}
