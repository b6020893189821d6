package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
)

type billingServiceMock struct {
	caller    string
	actor     string
	listedFor string
}

func (m *billingServiceMock) CreatePaymentWithSubscription(ctx context.Context, req dto.CreatePaymentWithSubscriptionRequest, callerStudentID, actorID string) (*models.PaymentWithSubscription, error) {
	m.caller = callerStudentID
	m.actor = actorID
	return &models.PaymentWithSubscription{}, nil
}

func (m *billingServiceMock) ActiveSubscriptions(ctx context.Context, studentID string) ([]models.Subscription, error) {
	m.listedFor = studentID
	return []models.Subscription{}, nil
}

func TestBillingHandlerPassesCallerIdentity(t *testing.T) {
	svc := &billingServiceMock{}
	h := NewBillingHandler(svc, studentsByUser{"u-stu": ownStudent})
	body := `{"student_id":"` + ownStudent + `","amount":"3200.00","payment_method":"card","number_of_classes":8,"start_date":"2025-03-01"}`
	c, w := newTestContext(http.MethodPost, "/payments/create-with-subscription", body, &models.JWTClaims{UserID: "u-stu", Role: models.RoleStudent})

	h.CreateWithSubscription(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, ownStudent, svc.caller)
	assert.Equal(t, "u-stu", svc.actor)
}

func TestBillingHandlerSubscriptionsOwnership(t *testing.T) {
	svc := &billingServiceMock{}
	h := NewBillingHandler(svc, studentsByUser{"u-stu": ownStudent})

	c, w := newTestContext(http.MethodGet, "/subscriptions/active/"+otherStudent, nil, &models.JWTClaims{UserID: "u-stu", Role: models.RoleStudent})
	withParam(c, "studentId", otherStudent)
	h.Subscriptions(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, svc.listedFor)

	c, w = newTestContext(http.MethodGet, "/subscriptions/active/"+otherStudent, nil, &models.JWTClaims{UserID: "u-admin", Role: models.RoleAdmin})
	withParam(c, "studentId", otherStudent)
	h.Subscriptions(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, otherStudent, svc.listedFor)
}
