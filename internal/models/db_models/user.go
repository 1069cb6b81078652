package db_models

import "time"

type User struct {
	BaseModel
	Name          string
	Email         string     `gorm:"uniqueIndex"`
	PlanType      PlanType   `gorm:"type:varchar(16);not null;default:FREE"`
	PlanExpiresAt *time.Time `gorm:"column:plan_expires_at"`
}

func (User) TableName() string { return "users" }
