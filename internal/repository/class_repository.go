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

const classColumns = `id, name, picture, instructor_name, instructor_email, price, seats, students_enrolled, status, feedback, created_at, updated_at`

// ClassRepository provides database access for class offerings.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ListApproved returns approved classes ordered by enrollment, most enrolled
// first. A non-nil limit is applied literally (zero yields an empty list).
func (r *ClassRepository) ListApproved(ctx context.Context, limit *int) ([]models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE status = $1 ORDER BY students_enrolled DESC`, classColumns)
	if limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *limit)
	}

	classes := []models.Class{}
	if err := r.db.SelectContext(ctx, &classes, query, models.ClassStatusApproved); err != nil {
		return nil, fmt.Errorf("list approved classes: %w", err)
	}
	return classes, nil
}

// ListByStatus returns classes in the given moderation state.
func (r *ClassRepository) ListByStatus(ctx context.Context, status models.ClassStatus) ([]models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE status = $1 ORDER BY created_at DESC`, classColumns)
	classes := []models.Class{}
	if err := r.db.SelectContext(ctx, &classes, query, status); err != nil {
		return nil, fmt.Errorf("list classes by status: %w", err)
	}
	return classes, nil
}

// ListByInstructor returns every class owned by the given instructor.
func (r *ClassRepository) ListByInstructor(ctx context.Context, email string) ([]models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE instructor_email = $1 ORDER BY created_at DESC`, classColumns)
	classes := []models.Class{}
	if err := r.db.SelectContext(ctx, &classes, query, email); err != nil {
		return nil, fmt.Errorf("list classes by instructor: %w", err)
	}
	return classes, nil
}

// FindByID returns a class by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE id = $1 LIMIT 1`, classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	return &class, nil
}

// FindByIDs returns the classes whose ids appear in the given set. Duplicate
// ids are tolerated and resolve to a single row each.
func (r *ClassRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Class, error) {
	if len(ids) == 0 {
		return []models.Class{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE id = ANY($1)`, classColumns)
	classes := []models.Class{}
	if err := r.db.SelectContext(ctx, &classes, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find classes by ids: %w", err)
	}
	return classes, nil
}

// Create inserts a new class offering.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, name, picture, instructor_name, instructor_email, price, seats, students_enrolled, status, feedback, created_at, updated_at) VALUES (:id, :name, :picture, :instructor_name, :instructor_email, :price, :seats, :students_enrolled, :status, :feedback, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// UpdateDetails updates the instructor-editable fields of a class.
func (r *ClassRepository) UpdateDetails(ctx context.Context, id, name, picture string, seats int, price float64) error {
	const query = `UPDATE classes SET name = $2, picture = $3, seats = $4, price = $5, updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, name, picture, seats, price, time.Now().UTC()); err != nil {
		return fmt.Errorf("update class details: %w", err)
	}
	return nil
}

// UpdateStatus moves a class through the moderation lifecycle.
func (r *ClassRepository) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error {
	const query = `UPDATE classes SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update class status: %w", err)
	}
	return nil
}

// UpdateFeedback sets the admin feedback text for a class.
func (r *ClassRepository) UpdateFeedback(ctx context.Context, id, feedback string) error {
	const query = `UPDATE classes SET feedback = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, feedback, time.Now().UTC()); err != nil {
		return fmt.Errorf("update class feedback: %w", err)
	}
	return nil
}

// IncrementEnrolled bumps the enrolled counter by one for each listed class.
// Classes already at capacity are skipped; the guard lives in the statement so
// concurrent finalizations cannot push a counter past seats.
func (r *ClassRepository) IncrementEnrolled(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `UPDATE classes SET students_enrolled = students_enrolled + 1, updated_at = $2 WHERE id = ANY($1) AND students_enrolled < seats`
	res, err := r.db.ExecContext(ctx, query, pq.Array(ids), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("increment enrolled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("increment enrolled rows affected: %w", err)
	}
	return affected, nil
}
