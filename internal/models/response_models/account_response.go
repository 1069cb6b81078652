package response_models

import (
	"time"

	"github.com/google/uuid"
)

// AccountResponse reports both the stored plan and the plan currently in
// force; they differ once a cancelled or unpaid period has lapsed.
type AccountResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PlanType          string     `json:"planType"`
	EffectivePlanType string     `json:"effectivePlanType"`
	PlanExpiresAt     *time.Time `json:"planExpiresAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}
