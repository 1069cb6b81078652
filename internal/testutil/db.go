// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"linkhub/internal/infra"
	"linkhub/internal/models/db_models"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
// A single connection keeps detached goroutines on the same database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), infra.NewGormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&db_models.User{},
		&db_models.Link{},
		&db_models.LinkEvent{},
		&db_models.Subscription{},
		&db_models.PaymentHistory{},
	))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, plan db_models.PlanType) *db_models.User {
	t.Helper()
	u := &db_models.User{
		Name:     "tester",
		Email:    uuid.NewString() + "@example.com",
		PlanType: plan,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateSubscription inserts a subscription row directly, bypassing the
// lifecycle manager.
func CreateSubscription(t testing.TB, db *gorm.DB, userID uuid.UUID, status db_models.SubscriptionStatus, periodEnd time.Time, withKeys bool) *db_models.Subscription {
	t.Helper()
	sub := &db_models.Subscription{
		UserID:             userID,
		PlanType:           db_models.PlanPro,
		Status:             status,
		CurrentPeriodStart: periodEnd.AddDate(0, -1, 0),
		CurrentPeriodEnd:   periodEnd,
	}
	if withKeys {
		bk, ck := "bk_"+userID.String(), "customer_"+userID.String()
		sub.BillingKey = &bk
		sub.CustomerKey = &ck
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}
