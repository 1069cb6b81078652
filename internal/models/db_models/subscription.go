package db_models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubStatusActive    SubscriptionStatus = "ACTIVE"
	SubStatusCancelled SubscriptionStatus = "CANCELLED"
	SubStatusExpired   SubscriptionStatus = "EXPIRED"
)

// Subscription is the single primary billing record of a user.
type Subscription struct {
	BaseModel
	UserID             uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	PlanType           PlanType           `gorm:"type:varchar(16);not null;default:PRO" json:"planType"`
	Status             SubscriptionStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CurrentPeriodStart time.Time          `gorm:"not null" json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time          `gorm:"not null;index" json:"currentPeriodEnd"`
	BillingKey         *string            `json:"-"`
	CustomerKey        *string            `json:"customerKey,omitempty"`

	Payments []PaymentHistory `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

func (Subscription) TableName() string { return "subscriptions" }

func (s *Subscription) HasBillingCredentials() bool {
	return s.BillingKey != nil && *s.BillingKey != "" &&
		s.CustomerKey != nil && *s.CustomerKey != ""
}
