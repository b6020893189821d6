package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

const billingStudentID = "3c4d5e6f-7a8b-4c9d-8e0f-1a2b3c4d5e6f"

type paymentRepoStub struct {
	created *models.Payment
}

func (s *paymentRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, payment *models.Payment) error {
	payment.ID = "pay-1"
	s.created = payment
	return nil
}

type subscriptionRepoStub struct {
	created   *models.Subscription
	createErr error
	day       models.Date
}

func (s *subscriptionRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, sub *models.Subscription) error {
	if s.createErr != nil {
		return s.createErr
	}
	sub.ID = "sub-1"
	s.created = sub
	return nil
}

func (s *subscriptionRepoStub) ListActive(ctx context.Context, studentID string, day models.Date) ([]models.Subscription, error) {
	s.day = day
	return nil, nil
}

type auditStub struct{ entries []*models.AuditLog }

func (s *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.entries = append(s.entries, log)
	return nil
}

func newBillingFixture(db txProvider) (*BillingService, *paymentRepoStub, *subscriptionRepoStub, *auditStub) {
	payments := &paymentRepoStub{}
	subs := &subscriptionRepoStub{}
	audit := &auditStub{}
	svc := NewBillingService(BillingServiceParams{DB: db, Payments: payments, Subscriptions: subs, Audit: audit})
	svc.today = func() models.Date { return models.NewDate(2025, time.March, 5) }
	return svc, payments, subs, audit
}

func validPurchase() dto.CreatePaymentWithSubscriptionRequest {
	return dto.CreatePaymentWithSubscriptionRequest{
		StudentID:       billingStudentID,
		Amount:          decimal.RequireFromString("120.50"),
		PaymentMethod:   models.PaymentMethodCard,
		NumberOfClasses: 8,
		StartDate:       models.NewDate(2025, time.January, 31),
	}
}

func TestBillingServiceCreatePaymentWithSubscription(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc, payments, subs, audit := newBillingFixture(db)

	out, err := svc.CreatePaymentWithSubscription(context.Background(), validPurchase(), billingStudentID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payments.created.Status)
	assert.Equal(t, "pay-1", subs.created.PaymentID)
	assert.Equal(t, 8, out.Subscription.RemainingClasses)
	assert.Equal(t, models.SubscriptionStatusActive, out.Subscription.Status)
	assert.Equal(t, "2025-02-28", out.Subscription.EndDate.String())
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionPaymentCreate, audit.entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillingServiceRejectsOtherStudent(t *testing.T) {
	svc, payments, _, _ := newBillingFixture(noopTxProvider{})

	_, err := svc.CreatePaymentWithSubscription(context.Background(), validPurchase(), "6f5e4d3c-2b1a-4c9d-8e0f-1a2b3c4d5e6f", "u-2")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Nil(t, payments.created)
}

func TestBillingServiceRejectsInvalidPurchase(t *testing.T) {
	cases := map[string]func(*dto.CreatePaymentWithSubscriptionRequest){
		"zero amount":     func(r *dto.CreatePaymentWithSubscriptionRequest) { r.Amount = decimal.Zero },
		"negative amount": func(r *dto.CreatePaymentWithSubscriptionRequest) { r.Amount = decimal.NewFromInt(-5) },
		"no classes":      func(r *dto.CreatePaymentWithSubscriptionRequest) { r.NumberOfClasses = 0 },
		"too many":        func(r *dto.CreatePaymentWithSubscriptionRequest) { r.NumberOfClasses = 17 },
		"bad method":      func(r *dto.CreatePaymentWithSubscriptionRequest) { r.PaymentMethod = "crypto" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, _, _, _ := newBillingFixture(noopTxProvider{})
			req := validPurchase()
			mutate(&req)

			_, err := svc.CreatePaymentWithSubscription(context.Background(), req, billingStudentID, "u-1")
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
}

func TestBillingServiceRollsBackOnSubscriptionFailure(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	svc, _, subs, audit := newBillingFixture(db)
	subs.createErr = errors.New("insert failed")

	_, err := svc.CreatePaymentWithSubscription(context.Background(), validPurchase(), billingStudentID, "u-1")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.Empty(t, audit.entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillingServiceActiveSubscriptionsUsesToday(t *testing.T) {
	svc, _, subs, _ := newBillingFixture(noopTxProvider{})

	list, err := svc.ActiveSubscriptions(context.Background(), billingStudentID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Equal(t, "2025-03-05", subs.day.String())
}

func TestBillingServiceStartDateDefaultsToToday(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc, _, subs, _ := newBillingFixture(db)
	req := validPurchase()
	req.StartDate = models.Date{}

	out, err := svc.CreatePaymentWithSubscription(context.Background(), req, billingStudentID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", subs.created.StartDate.String())
	assert.Equal(t, "2025-04-05", out.Subscription.EndDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
