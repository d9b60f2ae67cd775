package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/martialcamp/enrollment-api/internal/models"
	appErrors "github.com/martialcamp/enrollment-api/pkg/errors"
)

type cartRepository interface {
	Create(ctx context.Context, item *models.CartItem) error
	ListByStudent(ctx context.Context, email string) ([]models.CartItem, error)
	FindByID(ctx context.Context, id string) (*models.CartItem, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// AddCartItemRequest selects a class for later checkout.
type AddCartItemRequest struct {
	ClassID   string  `json:"class_id" validate:"required"`
	ClassName string  `json:"class_name"`
	Picture   string  `json:"picture"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// CartService manages a student's selected classes. Selection is an intent,
// not an enrollment: no capacity check happens here.
type CartService struct {
	repo      cartRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCartService constructs a CartService instance.
func NewCartService(repo cartRepository, validate *validator.Validate, logger *zap.Logger) *CartService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{repo: repo, validator: validate, logger: logger}
}

// Add puts a class into the caller's cart.
func (s *CartService) Add(ctx context.Context, claims *models.TokenClaims, req AddCartItemRequest) (*models.CartItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cart payload")
	}

	item := &models.CartItem{
		StudentEmail: claims.Email,
		ClassID:      req.ClassID,
		ClassName:    req.ClassName,
		Picture:      req.Picture,
		Price:        req.Price,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add cart item")
	}
	return item, nil
}

// List returns the cart for the given email. Callers may only read their own
// cart; any other email answers forbidden.
func (s *CartService) List(ctx context.Context, claims *models.TokenClaims, email string) ([]models.CartItem, error) {
	if claims == nil || claims.Email != email {
		return nil, appErrors.ErrForbidden
	}

	items, err := s.repo.ListByStudent(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cart items")
	}
	return items, nil
}

// Remove deletes a cart entry owned by the caller.
func (s *CartService) Remove(ctx context.Context, claims *models.TokenClaims, id string) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "cart item not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cart item")
	}

	if claims == nil || item.StudentEmail != claims.Email {
		return appErrors.ErrForbidden
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete cart item")
	}
	return nil
}
