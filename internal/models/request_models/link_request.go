package request_models

import "time"

type CreateLinkRequest struct {
	OriginalURL string     `json:"originalUrl" binding:"required,max=2048"`
	Slug        string     `json:"slug,omitempty" binding:"omitempty,slug"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	ClickLimit  *int64     `json:"clickLimit,omitempty" binding:"omitempty,gt=0"`
}

// UpdateLinkRequest fields are optional; an explicit null clears
// expiresAt or clickLimit.
type UpdateLinkRequest struct {
	OriginalURL Nullable[string]    `json:"originalUrl"`
	ExpiresAt   Nullable[time.Time] `json:"expiresAt"`
	ClickLimit  Nullable[int64]     `json:"clickLimit"`
	Status      Nullable[string]    `json:"status"`
}
