package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentStatus tracks settlement of a payment.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment funds a subscription.
type Payment struct {
	ID            string          `db:"id" json:"id"`
	StudentID     string          `db:"student_id" json:"student_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"payment_method"`
	Status        PaymentStatus   `db:"status" json:"status"`
	PaymentDate   time.Time       `db:"payment_date" json:"payment_date"`
}

// PaymentWithSubscription is returned by the purchase flow.
type PaymentWithSubscription struct {
	Payment      Payment      `json:"payment"`
	Subscription Subscription `json:"subscription"`
}
