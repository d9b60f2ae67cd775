package models

import "time"

// CartItem is a class a student selected for enrollment but has not paid for
// yet. The class name and price are denormalised so the cart can be rendered
// without joining back to the classes table.
type CartItem struct {
	ID           string    `db:"id" json:"id"`
	StudentEmail string    `db:"student_email" json:"student_email"`
	ClassID      string    `db:"class_id" json:"class_id"`
	ClassName    string    `db:"class_name" json:"class_name"`
	Picture      string    `db:"picture" json:"picture"`
	Price        float64   `db:"price" json:"price"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
