package db_models

import (
	"time"

	"github.com/google/uuid"
)

type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "ACTIVE"
	LinkStatusInactive LinkStatus = "INACTIVE"
	LinkStatusExpired  LinkStatus = "EXPIRED"
)

func (s LinkStatus) Valid() bool {
	switch s {
	case LinkStatusActive, LinkStatusInactive, LinkStatusExpired:
		return true
	}
	return false
}

type Link struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	OriginalURL string     `gorm:"column:original_url;type:text;not null" json:"originalUrl"`
	Slug        string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_links_slug" json:"slug"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	ClickLimit  *int64     `json:"clickLimit,omitempty"`
	ClickCount  int64      `gorm:"not null;default:0" json:"clickCount"`
	Status      LinkStatus `gorm:"type:varchar(16);not null;default:ACTIVE;index" json:"status"`

	Events []LinkEvent `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Link) TableName() string { return "links" }

// Resolvable reports whether a visit at now should be redirected.
func (l *Link) Resolvable(now time.Time) bool {
	if l.Status != LinkStatusActive {
		return false
	}
	if l.ExpiresAt != nil && !now.Before(*l.ExpiresAt) {
		return false
	}
	if l.ClickLimit != nil && l.ClickCount >= *l.ClickLimit {
		return false
	}
	return true
}
