package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// CreatePaymentWithSubscriptionRequest buys a class bundle.
type CreatePaymentWithSubscriptionRequest struct {
	StudentID       string               `json:"student_id" validate:"required,uuid"`
	Amount          decimal.Decimal      `json:"amount"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" validate:"required,oneof=card cash bank_transfer"`
	NumberOfClasses int                  `json:"number_of_classes" validate:"required,gt=0,lte=16"`
	StartDate       models.Date          `json:"start_date"`
}
