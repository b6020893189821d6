package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type paymentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, payment *models.Payment) error
}

type subscriptionRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, sub *models.Subscription) error
	ListActive(ctx context.Context, studentID string, day models.Date) ([]models.Subscription, error)
}

// BillingServiceParams groups the collaborators of BillingService.
type BillingServiceParams struct {
	DB            txProvider
	Payments      paymentRepository
	Subscriptions subscriptionRepository
	Audit         auditWriter
	Validator     *validator.Validate
	Logger        *zap.Logger
}

// BillingService sells class bundles.
type BillingService struct {
	db            txProvider
	payments      paymentRepository
	subscriptions subscriptionRepository
	audit         auditWriter
	validator     *validator.Validate
	logger        *zap.Logger
	today         func() models.Date
}

// NewBillingService constructs BillingService.
func NewBillingService(p BillingServiceParams) *BillingService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &BillingService{
		db:            p.DB,
		payments:      p.Payments,
		subscriptions: p.Subscriptions,
		audit:         p.Audit,
		validator:     p.Validator,
		logger:        p.Logger,
		today:         models.Today,
	}
}

// CreatePaymentWithSubscription records a completed payment and the bundle it
// buys. callerStudentID is the student profile of the authenticated user and
// must match the request.
func (s *BillingService) CreatePaymentWithSubscription(ctx context.Context, req dto.CreatePaymentWithSubscriptionRequest, callerStudentID, actorID string) (*models.PaymentWithSubscription, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid payment payload")
	}
	if callerStudentID == "" || req.StudentID != callerStudentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "payments can only be made for your own account")
	}
	if !req.Amount.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount must be greater than zero")
	}
	if req.StartDate.IsZero() {
		req.StartDate = s.today()
	}

	payment := models.Payment{
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        models.PaymentStatusCompleted,
	}
	sub := models.Subscription{
		StudentID:        req.StudentID,
		Status:           models.SubscriptionStatusActive,
		NumberOfClasses:  req.NumberOfClasses,
		RemainingClasses: req.NumberOfClasses,
		StartDate:        req.StartDate,
		EndDate:          req.StartDate.AddMonths(1),
	}
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.payments.Create(ctx, tx, &payment); err != nil {
			return storeError(err, "", "failed to create payment")
		}
		sub.PaymentID = payment.ID
		if err := s.subscriptions.Create(ctx, tx, &sub); err != nil {
			return storeError(err, "", "failed to create subscription")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.logger, actorID, models.AuditActionPaymentCreate, models.AuditResourcePayment, payment.ID, map[string]interface{}{
		"amount":            payment.Amount.String(),
		"number_of_classes": sub.NumberOfClasses,
		"subscription_id":   sub.ID,
	})
	return &models.PaymentWithSubscription{Payment: payment, Subscription: sub}, nil
}

// ActiveSubscriptions lists bundles that can still pay for a class today.
func (s *BillingService) ActiveSubscriptions(ctx context.Context, studentID string) ([]models.Subscription, error) {
	subs, err := s.subscriptions.ListActive(ctx, studentID, s.today())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	return subs, nil
}
