package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/martialcamp/enrollment-api/internal/models"
)

// CartRepository provides database access for selected (not yet paid) classes.
type CartRepository struct {
	db *sqlx.DB
}

// NewCartRepository creates a new instance of CartRepository.
func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Create inserts a cart entry.
func (r *CartRepository) Create(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO cart_items (id, student_email, class_id, class_name, picture, price, created_at) VALUES (:id, :student_email, :class_id, :class_name, :picture, :price, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create cart item: %w", err)
	}
	return nil
}

// ListByStudent returns the student's cart, oldest entry first.
func (r *CartRepository) ListByStudent(ctx context.Context, email string) ([]models.CartItem, error) {
	const query = `SELECT id, student_email, class_id, class_name, picture, price, created_at FROM cart_items WHERE student_email = $1 ORDER BY created_at ASC`
	items := []models.CartItem{}
	if err := r.db.SelectContext(ctx, &items, query, email); err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	return items, nil
}

// FindByID returns a cart entry by identifier.
func (r *CartRepository) FindByID(ctx context.Context, id string) (*models.CartItem, error) {
	const query = `SELECT id, student_email, class_id, class_name, picture, price, created_at FROM cart_items WHERE id = $1 LIMIT 1`
	var item models.CartItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find cart item: %w", err)
	}
	return &item, nil
}

// Delete removes a cart entry and reports whether a row was removed.
func (r *CartRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM cart_items WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete cart item rows affected: %w", err)
	}
	return affected, nil
}
