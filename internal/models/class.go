package models

import "time"

// ClassStatus represents the moderation lifecycle of a class offering.
type ClassStatus string

const (
	ClassStatusPending  ClassStatus = "pending"
	ClassStatusApproved ClassStatus = "approved"
	ClassStatusDenied   ClassStatus = "denied"
)

// Class represents a class offering published by an instructor.
type Class struct {
	ID               string      `db:"id" json:"id"`
	Name             string      `db:"name" json:"name"`
	Picture          string      `db:"picture" json:"picture"`
	InstructorName   string      `db:"instructor_name" json:"instructor_name"`
	InstructorEmail  string      `db:"instructor_email" json:"instructor_email"`
	Price            float64     `db:"price" json:"price"`
	Seats            int         `db:"seats" json:"seats"`
	StudentsEnrolled int         `db:"students_enrolled" json:"students_enrolled"`
	Status           ClassStatus `db:"status" json:"status"`
	Feedback         *string     `db:"feedback" json:"feedback,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}
