package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type billingService interface {
	CreatePaymentWithSubscription(ctx context.Context, req dto.CreatePaymentWithSubscriptionRequest, callerStudentID, actorID string) (*models.PaymentWithSubscription, error)
	ActiveSubscriptions(ctx context.Context, studentID string) ([]models.Subscription, error)
}

// BillingHandler exposes payment and subscription endpoints.
type BillingHandler struct {
	billing  billingService
	students studentResolver
}

// NewBillingHandler constructs BillingHandler.
func NewBillingHandler(billing billingService, students studentResolver) *BillingHandler {
	return &BillingHandler{billing: billing, students: students}
}

// CreateWithSubscription godoc
// @Summary Buy a class bundle
// @Description Records a completed payment and an active subscription valid for one month from start_date (today when omitted)
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body dto.CreatePaymentWithSubscriptionRequest true "Purchase"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /payments/create-with-subscription [post]
func (h *BillingHandler) CreateWithSubscription(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreatePaymentWithSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	studentID, ok := ownStudentID(c, h.students, claims)
	if !ok {
		return
	}
	out, err := h.billing.CreatePaymentWithSubscription(c.Request.Context(), req, studentID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, out)
}

// Subscriptions godoc
// @Summary Active subscriptions
// @Tags Billing
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{studentId} [get]
func (h *BillingHandler) Subscriptions(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	if !authorizeStudent(c, h.students, studentID, models.RoleAdmin) {
		return
	}
	subs, err := h.billing.ActiveSubscriptions(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}
