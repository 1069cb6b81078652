package response_models

import (
	"time"

	"github.com/google/uuid"
)

type CreateLinkResponse struct {
	LinkID   uuid.UUID `json:"linkId"`
	Slug     string    `json:"slug"`
	ShortURL string    `json:"shortUrl"`
}

type LinkResponse struct {
	ID          uuid.UUID  `json:"id"`
	OriginalURL string     `json:"originalUrl"`
	Slug        string     `json:"slug"`
	ShortURL    string     `json:"shortUrl"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	ClickLimit  *int64     `json:"clickLimit,omitempty"`
	ClickCount  int64      `json:"clickCount"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// LinkStatsResponse limits use -1 for unlimited.
type LinkStatsResponse struct {
	PlanType         string `json:"planType"`
	DailyCount       int64  `json:"dailyCount"`
	ActiveCount      int64  `json:"activeCount"`
	DailyLimit       int64  `json:"dailyLimit"`
	ActiveLimit      int64  `json:"activeLimit"`
	CanUseCustomSlug bool   `json:"canUseCustomSlug"`
	CanUseExpiry     bool   `json:"canUseExpiry"`
	CanUseClickLimit bool   `json:"canUseClickLimit"`
}

type ToggleStatusResponse struct {
	Status string `json:"status"`
}
