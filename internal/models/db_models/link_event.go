package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LinkEventType string

const LinkEventClick LinkEventType = "CLICK"

// LinkEvent is append-only.
type LinkEvent struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	LinkID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	EventType LinkEventType `gorm:"type:varchar(16);not null;default:CLICK"`
	Origin    *string       `gorm:"type:text"`
	UserAgent *string       `gorm:"type:text"`
	CreatedAt time.Time     `gorm:"not null;index"`
}

func (LinkEvent) TableName() string { return "link_events" }

func (e *LinkEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return nil
}
