package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// PaymentRepository persists payments.
type PaymentRepository struct {
	executor
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{executor{db: db}}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, exec sqlx.ExtContext, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}
	const query = `INSERT INTO payments (id, student_id, amount, payment_method, status, payment_date)
        VALUES (:id, :student_id, :amount, :payment_method, :status, :payment_date)`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// DeleteByStudent removes a student's payments.
func (r *PaymentRepository) DeleteByStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) error {
	if _, err := r.pick(exec).ExecContext(ctx, `DELETE FROM payments WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	return nil
}
