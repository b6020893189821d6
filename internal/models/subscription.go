package models

import (
	"errors"
	"time"
)

// MaxClassesPerSubscription caps a bundle's size.
const MaxClassesPerSubscription = 16

// SubscriptionStatus is active until the bundle is used up or runs out of time.
type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// ErrSubscriptionExhausted is returned when consuming from an unusable bundle.
var ErrSubscriptionExhausted = errors.New("subscription has no remaining classes")

// Subscription is a purchased bundle of class credits.
type Subscription struct {
	ID               string             `db:"id" json:"id"`
	StudentID        string             `db:"student_id" json:"student_id"`
	PaymentID        string             `db:"payment_id" json:"payment_id"`
	Status           SubscriptionStatus `db:"status" json:"status"`
	NumberOfClasses  int                `db:"number_of_classes" json:"number_of_classes"`
	RemainingClasses int                `db:"remaining_classes" json:"remaining_classes"`
	StartDate        Date               `db:"start_date" json:"start_date"`
	EndDate          Date               `db:"end_date" json:"end_date"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

// UsableOn reports whether the bundle can pay for a class on day.
func (s Subscription) UsableOn(day Date) bool {
	return s.Status == SubscriptionStatusActive && !s.EndDate.Before(day) && s.RemainingClasses > 0
}

// ConsumeClass spends one class credit, expiring the bundle on the last one.
func (s *Subscription) ConsumeClass() error {
	if s.Status != SubscriptionStatusActive || s.RemainingClasses <= 0 {
		return ErrSubscriptionExhausted
	}
	s.RemainingClasses--
	if s.RemainingClasses == 0 {
		s.Status = SubscriptionStatusExpired
	}
	return nil
}
