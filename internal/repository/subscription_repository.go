package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// SubscriptionRepository persists class bundles.
type SubscriptionRepository struct {
	executor
}

// NewSubscriptionRepository constructs a SubscriptionRepository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{executor{db: db}}
}

const subscriptionColumns = "id, student_id, payment_id, status, number_of_classes, remaining_classes, start_date, end_date, created_at, updated_at"

// Create inserts a subscription.
func (r *SubscriptionRepository) Create(ctx context.Context, exec sqlx.ExtContext, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	const query = `INSERT INTO subscriptions (id, student_id, payment_id, status, number_of_classes, remaining_classes, start_date, end_date, created_at, updated_at)
        VALUES (:id, :student_id, :payment_id, :status, :number_of_classes, :remaining_classes, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, sub); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// ListActive returns the student's subscriptions that are usable on day.
func (r *SubscriptionRepository) ListActive(ctx context.Context, studentID string, day models.Date) ([]models.Subscription, error) {
	query := "SELECT " + subscriptionColumns + ` FROM subscriptions
        WHERE student_id = $1 AND status = 'active' AND end_date >= $2 AND remaining_classes > 0
        ORDER BY end_date ASC`
	var subs []models.Subscription
	if err := r.db.SelectContext(ctx, &subs, query, studentID, day); err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	return subs, nil
}

// LockUsable locks the student's usable subscription that ends first.
func (r *SubscriptionRepository) LockUsable(ctx context.Context, exec sqlx.ExtContext, studentID string, day models.Date) (*models.Subscription, error) {
	query := "SELECT " + subscriptionColumns + ` FROM subscriptions
        WHERE student_id = $1 AND status = 'active' AND end_date >= $2 AND remaining_classes > 0
        ORDER BY end_date ASC, created_at ASC LIMIT 1 FOR UPDATE`
	var sub models.Subscription
	if err := sqlx.GetContext(ctx, r.pick(exec), &sub, query, studentID, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock subscription: %w", err)
	}
	return &sub, nil
}

// UpdateBalance stores the remaining class count and status.
func (r *SubscriptionRepository) UpdateBalance(ctx context.Context, exec sqlx.ExtContext, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subscriptions SET remaining_classes = :remaining_classes, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, sub); err != nil {
		return fmt.Errorf("update subscription balance: %w", err)
	}
	return nil
}

// ExpireOverdue marks active subscriptions that ended before day as expired.
func (r *SubscriptionRepository) ExpireOverdue(ctx context.Context, day models.Date) (int64, error) {
	const query = `UPDATE subscriptions SET status = 'expired', updated_at = NOW() WHERE status = 'active' AND end_date < $1`
	res, err := r.db.ExecContext(ctx, query, day)
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}
	return affected, nil
}

// DeleteByStudent removes a student's subscriptions.
func (r *SubscriptionRepository) DeleteByStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) error {
	if _, err := r.pick(exec).ExecContext(ctx, `DELETE FROM subscriptions WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}
	return nil
}
