package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/jobs"
)

// SweepJobKind identifies subscription expiry jobs on the queue.
const SweepJobKind = "subscriptions.expire"

type subscriptionExpirer interface {
	ExpireOverdue(ctx context.Context, day models.Date) (int64, error)
}

// SubscriptionSweeper marks subscriptions whose end date has passed as expired.
type SubscriptionSweeper struct {
	repo    subscriptionExpirer
	metrics *MetricsService
	logger  *zap.Logger
	today   func() models.Date
}

// NewSubscriptionSweeper constructs the sweeper.
func NewSubscriptionSweeper(repo subscriptionExpirer, metrics *MetricsService, logger *zap.Logger) *SubscriptionSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionSweeper{repo: repo, metrics: metrics, logger: logger, today: models.Today}
}

// Handle is the queue handler for SweepJobKind jobs.
func (s *SubscriptionSweeper) Handle(ctx context.Context, job jobs.Job) error {
	if job.Kind != SweepJobKind {
		s.logger.Warn("unexpected job kind", zap.String("kind", job.Kind))
		return nil
	}
	expired, err := s.repo.ExpireOverdue(ctx, s.today())
	if err != nil {
		return err
	}
	s.metrics.AddExpiredSubscriptions(expired)
	if expired > 0 {
		s.logger.Info("subscriptions expired", zap.Int64("count", expired))
	}
	return nil
}
