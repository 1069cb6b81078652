package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"linkhub/internal/models/db_models"
	"linkhub/internal/repositories"
	"linkhub/internal/testutil"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

type subscriptionFixture struct {
	db       *gorm.DB
	accounts repositories.AccountRepository
	subs     repositories.SubscriptionRepository
	svc      *SubscriptionService
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()
	db := testutil.NewDB(t)
	accounts := repositories.NewAccountRepository(db)
	subs := repositories.NewSubscriptionRepository(db)
	svc := NewSubscriptionService(db, subs, accounts, logger.Discard()).(*SubscriptionService)
	return &subscriptionFixture{db: db, accounts: accounts, subs: subs, svc: svc}
}

func (f *subscriptionFixture) user(t *testing.T, id uuid.UUID) *db_models.User {
	t.Helper()
	u, err := f.accounts.FindById(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

// payments reads the ledger the way the subscription endpoint does,
// through the preloaded user subscription.
func (f *subscriptionFixture) payments(t *testing.T, subscriptionID uuid.UUID) []db_models.PaymentHistory {
	t.Helper()
	ctx := context.Background()
	sub, err := f.subs.FindById(ctx, subscriptionID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	withPayments, err := f.subs.FindByUserIdWithPayments(ctx, sub.UserID)
	require.NoError(t, err)
	require.NotNil(t, withPayments)
	return withPayments.Payments
}

func TestEffectivePlanType(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tomorrow := now.AddDate(0, 0, 1)
	yesterday := now.AddDate(0, 0, -1)
	active := db_models.SubStatusActive
	cancelled := db_models.SubStatusCancelled
	expired := db_models.SubStatusExpired

	cases := []struct {
		name     string
		userPlan db_models.PlanType
		status   *db_models.SubscriptionStatus
		end      *time.Time
		want     db_models.PlanType
	}{
		{"cancelled until tomorrow", db_models.PlanPro, &cancelled, &tomorrow, db_models.PlanPro},
		{"cancelled ended yesterday", db_models.PlanPro, &cancelled, &yesterday, db_models.PlanFree},
		{"active in period", db_models.PlanPro, &active, &tomorrow, db_models.PlanPro},
		{"active lapsed", db_models.PlanPro, &active, &yesterday, db_models.PlanFree},
		{"active without end", db_models.PlanPro, &active, nil, db_models.PlanPro},
		{"cancelled without end", db_models.PlanPro, &cancelled, nil, db_models.PlanFree},
		{"expired", db_models.PlanPro, &expired, &tomorrow, db_models.PlanFree},
		{"free user", db_models.PlanFree, &active, &tomorrow, db_models.PlanFree},
		{"no subscription", db_models.PlanPro, nil, nil, db_models.PlanFree},
		{"period ends now", db_models.PlanPro, &active, &now, db_models.PlanFree},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EffectivePlanType(tc.userPlan, tc.status, tc.end, now))
		})
	}
}

func TestSubscriptionService_CreateWithFirstPayment(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanFree)
	paidAt := time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)

	res, err := f.svc.CreateWithFirstPayment(ctx, CreateSubscriptionParams{
		UserID:      user.ID,
		BillingKey:  "bk_1",
		CustomerKey: "customer_1",
		Payment: PaymentInfo{
			Amount:     4900,
			PaymentKey: "pay_1",
			OrderID:    "order_1",
			PaidAt:     paidAt,
			Receipt:    []byte(`{"status":"DONE"}`),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, db_models.SubStatusActive, res.Subscription.Status)
	assert.Equal(t, paidAt, res.Subscription.CurrentPeriodStart)
	assert.Equal(t, time.Date(2024, 2, 15, 3, 0, 0, 0, time.UTC), res.Subscription.CurrentPeriodEnd)
	assert.Equal(t, "CARD", res.Payment.PaymentMethod)

	u := f.user(t, user.ID)
	assert.Equal(t, db_models.PlanPro, u.PlanType)
	require.NotNil(t, u.PlanExpiresAt)
	assert.True(t, u.PlanExpiresAt.Equal(res.Subscription.CurrentPeriodEnd))

	payments := f.payments(t, res.Subscription.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, db_models.PaymentStatusSuccess, payments[0].Status)
}

func TestSubscriptionService_CreateIsAtomic(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanFree)
	other := testutil.CreateUser(t, f.db, db_models.PlanFree)

	_, err := f.svc.CreateWithFirstPayment(ctx, CreateSubscriptionParams{
		UserID: other.ID, BillingKey: "bk", CustomerKey: "ck",
		Payment: PaymentInfo{Amount: 4900, OrderID: "order_dup"},
	})
	require.NoError(t, err)

	// Same order id violates the ledger's unique index after the subscription
	// row was written; nothing of the attempt may remain.
	_, err = f.svc.CreateWithFirstPayment(ctx, CreateSubscriptionParams{
		UserID: user.ID, BillingKey: "bk2", CustomerKey: "ck2",
		Payment: PaymentInfo{Amount: 4900, OrderID: "order_dup"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrDatabaseError)

	sub, err := f.subs.FindByUserId(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.Equal(t, db_models.PlanFree, f.user(t, user.ID).PlanType)
}

func TestSubscriptionService_Renew(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	sub := testutil.CreateSubscription(t, f.db, user.ID, db_models.SubStatusActive, end, true)

	res, err := f.svc.Renew(ctx, RenewParams{
		SubscriptionID: sub.ID,
		Amount:         4900,
		PaymentKey:     "pay_2",
		OrderID:        "order_2",
	})
	require.NoError(t, err)
	want := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, res.Subscription.CurrentPeriodEnd)
	assert.Equal(t, end, res.Subscription.CurrentPeriodStart)

	stored, err := f.subs.FindById(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentPeriodEnd.Equal(want))
	assert.True(t, f.user(t, user.ID).PlanExpiresAt.Equal(want))

	_, err = f.svc.Renew(ctx, RenewParams{SubscriptionID: uuid.New(), Amount: 4900, OrderID: "order_3"})
	assert.ErrorIs(t, err, utils.ErrSubscriptionNotFound)
}

func TestSubscriptionService_CancelKeepsProUntilPeriodEnd(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)
	end := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	sub := testutil.CreateSubscription(t, f.db, user.ID, db_models.SubStatusActive, end, true)

	cancelled, err := f.svc.Cancel(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.SubStatusCancelled, cancelled.Status)
	assert.True(t, cancelled.CurrentPeriodEnd.Equal(end))
	require.NotNil(t, cancelled.BillingKey)

	plan, err := f.svc.ResolveEffectivePlan(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.PlanPro, plan)

	f.svc.now = func() time.Time { return end.Add(time.Minute) }
	plan, err = f.svc.ResolveEffectivePlan(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.PlanFree, plan)
}

func TestSubscriptionService_Reactivate(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanFree)
	sub := testutil.CreateSubscription(t, f.db, user.ID, db_models.SubStatusExpired, time.Now().UTC().AddDate(0, 0, -10), false)

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	got, err := f.svc.Reactivate(ctx, sub.ID, "bk_new", "ck_new")
	require.NoError(t, err)
	assert.Equal(t, db_models.SubStatusActive, got.Status)
	assert.Equal(t, now, got.CurrentPeriodStart)
	assert.Equal(t, time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), got.CurrentPeriodEnd)
	assert.Equal(t, "bk_new", *got.BillingKey)

	u := f.user(t, user.ID)
	assert.Equal(t, db_models.PlanPro, u.PlanType)
	assert.True(t, u.PlanExpiresAt.Equal(got.CurrentPeriodEnd))

	_, err = f.svc.Reactivate(ctx, sub.ID, "", "ck")
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestSubscriptionService_ReactivateWithPayment(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanFree)
	sub := testutil.CreateSubscription(t, f.db, user.ID, db_models.SubStatusCancelled, time.Now().UTC().AddDate(0, 0, -3), true)

	res, err := f.svc.ReactivateWithPayment(ctx, sub.ID, "bk", "ck", PaymentInfo{Amount: 4900, OrderID: "order_r", PaymentKey: "pay_r"})
	require.NoError(t, err)
	require.NotNil(t, res.Payment)
	assert.Equal(t, sub.ID, res.Payment.SubscriptionID)

	payments := f.payments(t, sub.ID)
	assert.Len(t, payments, 1)
}

func TestSubscriptionService_Expire(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)
	sub := testutil.CreateSubscription(t, f.db, user.ID, db_models.SubStatusActive, time.Now().UTC().AddDate(0, 0, 5), true)

	got, err := f.svc.Expire(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.SubStatusExpired, got.Status)

	u := f.user(t, user.ID)
	assert.Equal(t, db_models.PlanFree, u.PlanType)
	assert.Nil(t, u.PlanExpiresAt)

	plan, err := f.svc.ResolveEffectivePlan(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.PlanFree, plan)
}

func TestSubscriptionService_GetUserSubscriptionOrdersPayments(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)
	sub := testutil.CreateSubscription(t, f.db, user.ID, db_models.SubStatusActive, time.Now().UTC().AddDate(0, 0, 5), true)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"order_a", "order_b", "order_c"} {
		require.NoError(t, f.db.Create(&db_models.PaymentHistory{
			BaseModel:      db_models.BaseModel{CreatedAt: base.AddDate(0, i, 0)},
			SubscriptionID: sub.ID,
			OrderID:        id,
			PaymentMethod:  "CARD",
			Amount:         4900,
			Status:         db_models.PaymentStatusSuccess,
		}).Error)
	}
	require.NoError(t, f.svc.RecordFailedPayment(ctx, sub.ID, "order_d", 4900, "card declined"))

	got, err := f.svc.GetUserSubscription(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Payments, 4)
	assert.Equal(t, "order_d", got.Payments[0].OrderID)
	assert.Equal(t, db_models.PaymentStatusFailed, got.Payments[0].Status)
	assert.Equal(t, "order_c", got.Payments[1].OrderID)
	assert.Equal(t, "order_a", got.Payments[3].OrderID)

	none, err := f.svc.GetUserSubscription(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSubscriptionService_ResolveEffectivePlanWithoutSubscription(t *testing.T) {
	f := newSubscriptionFixture(t)
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)

	plan, err := f.svc.ResolveEffectivePlan(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.PlanFree, plan)
}
