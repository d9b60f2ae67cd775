package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/martialcamp/enrollment-api/internal/models"
)

const paymentColumns = `id, student_email, amount, transaction_id, class_ids, selected_class_ids, paid_at, created_at`

// PaymentRepository provides database access for payment records.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Checkout records the payment and clears the matching cart entries in a
// single transaction, so a paid cart can never keep stale entries. It returns
// the number of cart rows removed.
func (r *PaymentRepository) Checkout(ctx context.Context, payment *models.Payment) (int64, error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.PaidAt.IsZero() {
		payment.PaidAt = now
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertQuery = `INSERT INTO payments (id, student_email, amount, transaction_id, class_ids, selected_class_ids, paid_at, created_at) VALUES (:id, :student_email, :amount, :transaction_id, :class_ids, :selected_class_ids, :paid_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, payment); err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}

	const deleteQuery = `DELETE FROM cart_items WHERE id = ANY($1)`
	res, err := tx.ExecContext(ctx, deleteQuery, pq.Array([]string(payment.SelectedClassIDs)))
	if err != nil {
		return 0, fmt.Errorf("clear cart items: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cart rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit checkout: %w", err)
	}
	return deleted, nil
}

// ListByStudent returns the student's payment history, newest first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, email string) ([]models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE student_email = $1 ORDER BY paid_at DESC`, paymentColumns)
	payments := []models.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, email); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// FindByID returns a payment by identifier.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1 LIMIT 1`, paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &payment, nil
}

// ClassIDsByStudent returns the class-id list of every payment made by the
// student, one slice per payment record, in no particular order.
func (r *PaymentRepository) ClassIDsByStudent(ctx context.Context, email string) ([][]string, error) {
	const query = `SELECT class_ids FROM payments WHERE student_email = $1`
	rows, err := r.db.QueryxContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("collect class ids: %w", err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		var ids pq.StringArray
		if err := rows.Scan(&ids); err != nil {
			return nil, fmt.Errorf("scan class ids: %w", err)
		}
		result = append(result, []string(ids))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class ids: %w", err)
	}
	return result, nil
}
