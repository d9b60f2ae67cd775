package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/martialcamp/enrollment-api/internal/models"
	appErrors "github.com/martialcamp/enrollment-api/pkg/errors"
)

const publicClassCachePrefix = "classes:public"

type classRepository interface {
	ListApproved(ctx context.Context, limit *int) ([]models.Class, error)
	ListByStatus(ctx context.Context, status models.ClassStatus) ([]models.Class, error)
	ListByInstructor(ctx context.Context, email string) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	UpdateDetails(ctx context.Context, id, name, picture string, seats int, price float64) error
	UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error
	UpdateFeedback(ctx context.Context, id, feedback string) error
}

type classCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateClassRequest is the instructor's class submission payload.
type CreateClassRequest struct {
	Name           string  `json:"name" validate:"required"`
	Picture        string  `json:"picture"`
	InstructorName string  `json:"instructor_name"`
	Seats          int     `json:"seats" validate:"gte=0"`
	Price          float64 `json:"price" validate:"gte=0"`
}

// UpdateClassRequest carries the instructor-editable fields.
type UpdateClassRequest struct {
	Name    string  `json:"name" validate:"required"`
	Picture string  `json:"picture"`
	Seats   int     `json:"seats" validate:"gte=0"`
	Price   float64 `json:"price" validate:"gte=0"`
}

// ClassService covers the public catalog, instructor CRUD, and the admin
// moderation queue.
type ClassService struct {
	repo      classRepository
	cache     classCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance. cache may be nil, in
// which case every listing hits the database.
func NewClassService(repo classRepository, cache classCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// ListPublic returns approved classes, most enrolled first. The limit is
// applied literally: zero yields an empty list, absent means no cap.
func (s *ClassService) ListPublic(ctx context.Context, limit *int) ([]models.Class, error) {
	key := publicClassCachePrefix + ":all"
	if limit != nil {
		key = fmt.Sprintf("%s:limit:%d", publicClassCachePrefix, *limit)
	}

	if s.cache != nil {
		var cached []models.Class
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("class cache read failed", zap.Error(err))
		}
	}

	classes, err := s.repo.ListApproved(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, classes, s.cacheTTL); err != nil {
			s.logger.Warn("class cache write failed", zap.Error(err))
		}
	}

	return classes, nil
}

// ListMine returns the instructor's own classes.
func (s *ClassService) ListMine(ctx context.Context, instructorEmail string) ([]models.Class, error) {
	classes, err := s.repo.ListByInstructor(ctx, instructorEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor classes")
	}
	return classes, nil
}

// GetMine returns one of the instructor's classes by id. Another instructor's
// class answers with not-found rather than leaking its existence.
func (s *ClassService) GetMine(ctx context.Context, instructorEmail, id string) (*models.Class, error) {
	class, err := s.findClass(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.InstructorEmail != instructorEmail {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return class, nil
}

// Create submits a new class offering; it enters the moderation queue pending.
func (s *ClassService) Create(ctx context.Context, claims *models.TokenClaims, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	instructorName := req.InstructorName
	if instructorName == "" {
		instructorName = claims.Name
	}

	class := &models.Class{
		Name:            req.Name,
		Picture:         req.Picture,
		InstructorName:  instructorName,
		InstructorEmail: claims.Email,
		Price:           req.Price,
		Seats:           req.Seats,
		Status:          models.ClassStatusPending,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.invalidatePublicCache(ctx)
	return class, nil
}

// UpdateMine updates the editable fields of the instructor's own class.
func (s *ClassService) UpdateMine(ctx context.Context, instructorEmail, id string, req UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class, err := s.GetMine(ctx, instructorEmail, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDetails(ctx, id, req.Name, req.Picture, req.Seats, req.Price); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}

	class.Name = req.Name
	class.Picture = req.Picture
	class.Seats = req.Seats
	class.Price = req.Price

	s.invalidatePublicCache(ctx)
	return class, nil
}

// ListPending returns the admin moderation queue.
func (s *ClassService) ListPending(ctx context.Context) ([]models.Class, error) {
	classes, err := s.repo.ListByStatus(ctx, models.ClassStatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending classes")
	}
	return classes, nil
}

// SetStatus resolves a pending class to approved or denied.
func (s *ClassService) SetStatus(ctx context.Context, id string, status models.ClassStatus) (*models.Class, error) {
	if status != models.ClassStatusApproved && status != models.ClassStatusDenied {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or denied")
	}

	class, err := s.findClass(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class status")
	}

	class.Status = status
	s.invalidatePublicCache(ctx)
	return class, nil
}

// SetFeedback stores admin feedback on a class, in any moderation state.
func (s *ClassService) SetFeedback(ctx context.Context, id, feedback string) (*models.Class, error) {
	class, err := s.findClass(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFeedback(ctx, id, feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class feedback")
	}

	class.Feedback = &feedback
	s.invalidatePublicCache(ctx)
	return class, nil
}

func (s *ClassService) findClass(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

func (s *ClassService) invalidatePublicCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, publicClassCachePrefix+":*"); err != nil {
		s.logger.Warn("class cache invalidation failed", zap.Error(err))
	}
}
