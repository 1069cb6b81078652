package response_models

import (
	"time"

	"github.com/google/uuid"
)

type CustomerKeyResponse struct {
	CustomerKey string `json:"customerKey"`
}

type PaymentHistoryResponse struct {
	ID            uuid.UUID  `json:"id"`
	OrderID       string     `json:"orderId"`
	PaymentKey    *string    `json:"paymentKey,omitempty"`
	PaymentMethod string     `json:"paymentMethod"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	FailureReason *string    `json:"failureReason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type SubscriptionResponse struct {
	ID                 uuid.UUID                `json:"id"`
	PlanType           string                   `json:"planType"`
	EffectivePlanType  string                   `json:"effectivePlanType"`
	Status             string                   `json:"status"`
	CurrentPeriodStart time.Time                `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time                `json:"currentPeriodEnd"`
	HasBillingKey      bool                     `json:"hasBillingKey"`
	Payments           []PaymentHistoryResponse `json:"payments"`
}

type BillingResultResponse struct {
	SubscriptionID   uuid.UUID `json:"subscriptionId"`
	PaymentKey       string    `json:"paymentKey"`
	OrderID          string    `json:"orderId"`
	Amount           int64     `json:"amount"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd"`
	Reactivated      bool      `json:"reactivated"`
}

type RenewalResult struct {
	SubscriptionID uuid.UUID `json:"subscriptionId"`
	Success        bool      `json:"success"`
	Skipped        bool      `json:"skipped,omitempty"`
	PaymentKey     string    `json:"paymentKey,omitempty"`
	Error          string    `json:"error,omitempty"`
}

type RenewalReport struct {
	Success   bool            `json:"success"`
	Processed int             `json:"processed"`
	Results   []RenewalResult `json:"results"`
}
