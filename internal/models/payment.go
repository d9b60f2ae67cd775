package models

import (
	"time"

	"github.com/lib/pq"
)

// Payment is the immutable receipt of a completed checkout. Enrollment is not
// stored anywhere else: a student is enrolled in a class exactly when one of
// their payments lists its id.
type Payment struct {
	ID               string         `db:"id" json:"id"`
	StudentEmail     string         `db:"student_email" json:"student_email"`
	Amount           float64        `db:"amount" json:"amount"`
	TransactionID    string         `db:"transaction_id" json:"transaction_id"`
	ClassIDs         pq.StringArray `db:"class_ids" json:"class_ids"`
	SelectedClassIDs pq.StringArray `db:"selected_class_ids" json:"selected_class_ids"`
	PaidAt           time.Time      `db:"paid_at" json:"paid_at"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}
