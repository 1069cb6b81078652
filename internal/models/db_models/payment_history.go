package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusPending   PaymentStatus = "PENDING"
)

// PaymentHistory is one row per charge attempt.
type PaymentHistory struct {
	BaseModel
	SubscriptionID uuid.UUID     `gorm:"type:uuid;not null;index" json:"subscriptionId"`
	OrderID        string        `gorm:"not null;uniqueIndex" json:"orderId"`
	PaymentKey     *string       `json:"paymentKey,omitempty"`
	PaymentMethod  string        `gorm:"not null;default:CARD" json:"paymentMethod"`
	Amount         int64         `gorm:"not null" json:"amount"`
	Status         PaymentStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	PaidAt         *time.Time    `json:"paidAt,omitempty"`
	FailureReason  *string       `gorm:"type:text" json:"failureReason,omitempty"`

	// Gateway response snapshot.
	Receipt datatypes.JSON `json:"-"`
}

func (PaymentHistory) TableName() string { return "payment_histories" }
