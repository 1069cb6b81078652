package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"linkhub/internal/models/db_models"
	"linkhub/internal/repositories"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

const defaultPaymentMethod = "CARD"

type PaymentInfo struct {
	Amount        int64
	PaymentKey    string
	OrderID       string
	PaymentMethod string
	PaidAt        time.Time
	Receipt       json.RawMessage
}

type CreateSubscriptionParams struct {
	// SubscriptionID is optional; callers pass it when the order id was
	// already derived from it.
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	BillingKey     string
	CustomerKey    string
	Payment        PaymentInfo
}

type RenewParams struct {
	SubscriptionID uuid.UUID
	Amount         int64
	PaymentKey     string
	OrderID        string
	PaymentMethod  string
	ApprovedAt     time.Time
	Receipt        json.RawMessage
}

type SubscriptionResult struct {
	Subscription *db_models.Subscription
	Payment      *db_models.PaymentHistory
}

type SubscriptionServiceInterface interface {
	CreateWithFirstPayment(ctx context.Context, p CreateSubscriptionParams) (*SubscriptionResult, error)
	Renew(ctx context.Context, p RenewParams) (*SubscriptionResult, error)
	Cancel(ctx context.Context, subscriptionID uuid.UUID) (*db_models.Subscription, error)
	Reactivate(ctx context.Context, subscriptionID uuid.UUID, billingKey, customerKey string) (*db_models.Subscription, error)
	Expire(ctx context.Context, subscriptionID uuid.UUID) (*db_models.Subscription, error)
	RecordFailedPayment(ctx context.Context, subscriptionID uuid.UUID, orderID string, amount int64, reason string) error
	ReactivateWithPayment(ctx context.Context, subscriptionID uuid.UUID, billingKey, customerKey string, payment PaymentInfo) (*SubscriptionResult, error)
	GetUserSubscription(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error)
	ListDueForRenewal(ctx context.Context, before time.Time) ([]db_models.Subscription, error)
	ResolveEffectivePlan(ctx context.Context, userID uuid.UUID) (db_models.PlanType, error)
}

type SubscriptionService struct {
	db          *gorm.DB
	subRepo     repositories.SubscriptionRepository
	accountRepo repositories.AccountRepository
	log         logger.Interface
	now         func() time.Time
}

func NewSubscriptionService(
	db *gorm.DB,
	subRepo repositories.SubscriptionRepository,
	accountRepo repositories.AccountRepository,
	log logger.Interface,
) SubscriptionServiceInterface {
	return &SubscriptionService{
		db:          db,
		subRepo:     subRepo,
		accountRepo: accountRepo,
		log:         log.Named("subscription_service"),
		now:         time.Now,
	}
}

// EffectivePlanType is the single gate for plan-dependent behaviour. PRO is
// granted only when the user row says PRO and the subscription is usable:
// not EXPIRED, and either ACTIVE or CANCELLED with its period still running.
// A set period end bounds ACTIVE subscriptions as well, so a lapsed renewal
// computes FREE while the stored status stays ACTIVE.
func EffectivePlanType(userPlan db_models.PlanType, status *db_models.SubscriptionStatus, periodEnd *time.Time, now time.Time) db_models.PlanType {
	if userPlan != db_models.PlanPro || status == nil {
		return db_models.PlanFree
	}
	switch *status {
	case db_models.SubStatusActive:
		if periodEnd == nil || now.Before(*periodEnd) {
			return db_models.PlanPro
		}
	case db_models.SubStatusCancelled:
		if periodEnd != nil && now.Before(*periodEnd) {
			return db_models.PlanPro
		}
	}
	return db_models.PlanFree
}

func paymentMethodOrDefault(m string) string {
	if m == "" {
		return defaultPaymentMethod
	}
	return m
}

func receiptJSON(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	return datatypes.JSON(raw)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func (s *SubscriptionService) CreateWithFirstPayment(ctx context.Context, p CreateSubscriptionParams) (*SubscriptionResult, error) {
	if p.Payment.Amount <= 0 {
		return nil, utils.NewValidationError("amount", "amount must be positive")
	}
	paidAt := p.Payment.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	paidAt = paidAt.UTC()
	periodEnd := utils.AddMonth(paidAt)

	billingKey, customerKey := p.BillingKey, p.CustomerKey
	sub := &db_models.Subscription{
		BaseModel:          db_models.BaseModel{ID: p.SubscriptionID},
		UserID:             p.UserID,
		PlanType:           db_models.PlanPro,
		Status:             db_models.SubStatusActive,
		CurrentPeriodStart: paidAt,
		CurrentPeriodEnd:   periodEnd,
		BillingKey:         &billingKey,
		CustomerKey:        &customerKey,
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	payment := &db_models.PaymentHistory{
		SubscriptionID: sub.ID,
		OrderID:        p.Payment.OrderID,
		PaymentKey:     optionalString(p.Payment.PaymentKey),
		PaymentMethod:  paymentMethodOrDefault(p.Payment.PaymentMethod),
		Amount:         p.Payment.Amount,
		Status:         db_models.PaymentStatusSuccess,
		PaidAt:         &paidAt,
		Receipt:        receiptJSON(p.Payment.Receipt),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subRepo := s.subRepo.WithTx(tx)
		if err := subRepo.Insert(ctx, sub); err != nil {
			return utils.DatabaseError("insert subscription", err)
		}
		if err := subRepo.InsertPayment(ctx, payment); err != nil {
			return utils.DatabaseError("insert payment", err)
		}
		if err := s.accountRepo.WithTx(tx).UpdatePlan(ctx, p.UserID, db_models.PlanPro, &periodEnd); err != nil {
			return utils.DatabaseError("promote user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("subscription created",
		"subscription_id", sub.ID,
		"user_id", p.UserID,
		"period_end", periodEnd,
	)
	return &SubscriptionResult{Subscription: sub, Payment: payment}, nil
}

// loadForUpdate fetches the subscription inside tx.
func loadForUpdate(ctx context.Context, repo repositories.SubscriptionRepository, id uuid.UUID) (*db_models.Subscription, error) {
	sub, err := repo.FindById(ctx, id)
	if err != nil {
		return nil, utils.DatabaseError("find subscription", err)
	}
	if sub == nil {
		return nil, utils.ErrSubscriptionNotFound
	}
	return sub, nil
}

// Renew extends the period by one calendar month from the previous end, not
// from now, so early or late runs never shift the billing anchor.
func (s *SubscriptionService) Renew(ctx context.Context, p RenewParams) (*SubscriptionResult, error) {
	if p.Amount <= 0 {
		return nil, utils.NewValidationError("amount", "amount must be positive")
	}

	var (
		sub     *db_models.Subscription
		payment *db_models.PaymentHistory
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subRepo := s.subRepo.WithTx(tx)
		var err error
		sub, err = loadForUpdate(ctx, subRepo, p.SubscriptionID)
		if err != nil {
			return err
		}

		newEnd := utils.AddMonth(sub.CurrentPeriodEnd).UTC()
		sub.CurrentPeriodStart = sub.CurrentPeriodEnd.UTC()
		sub.CurrentPeriodEnd = newEnd
		sub.Status = db_models.SubStatusActive
		if err := subRepo.Save(ctx, sub); err != nil {
			return utils.DatabaseError("save subscription", err)
		}

		paidAt := p.ApprovedAt
		if paidAt.IsZero() {
			paidAt = s.now()
		}
		payment = &db_models.PaymentHistory{
			SubscriptionID: sub.ID,
			OrderID:        p.OrderID,
			PaymentKey:     optionalString(p.PaymentKey),
			PaymentMethod:  paymentMethodOrDefault(p.PaymentMethod),
			Amount:         p.Amount,
			Status:         db_models.PaymentStatusSuccess,
			PaidAt:         optionalTime(paidAt),
			Receipt:        receiptJSON(p.Receipt),
		}
		if err := subRepo.InsertPayment(ctx, payment); err != nil {
			return utils.DatabaseError("insert payment", err)
		}
		if err := s.accountRepo.WithTx(tx).UpdatePlan(ctx, sub.UserID, db_models.PlanPro, &newEnd); err != nil {
			return utils.DatabaseError("extend user plan", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("subscription renewed", "subscription_id", sub.ID, "period_end", sub.CurrentPeriodEnd)
	return &SubscriptionResult{Subscription: sub, Payment: payment}, nil
}

// Cancel stops renewals. The user keeps PRO until the current period ends.
func (s *SubscriptionService) Cancel(ctx context.Context, subscriptionID uuid.UUID) (*db_models.Subscription, error) {
	var sub *db_models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subRepo := s.subRepo.WithTx(tx)
		var err error
		sub, err = loadForUpdate(ctx, subRepo, subscriptionID)
		if err != nil {
			return err
		}
		sub.Status = db_models.SubStatusCancelled
		if err := subRepo.Save(ctx, sub); err != nil {
			return utils.DatabaseError("save subscription", err)
		}
		end := sub.CurrentPeriodEnd
		if err := s.accountRepo.WithTx(tx).UpdatePlan(ctx, sub.UserID, db_models.PlanPro, &end); err != nil {
			return utils.DatabaseError("update user plan", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("subscription cancelled", "subscription_id", sub.ID, "period_end", sub.CurrentPeriodEnd)
	return sub, nil
}

func (s *SubscriptionService) Reactivate(ctx context.Context, subscriptionID uuid.UUID, billingKey, customerKey string) (*db_models.Subscription, error) {
	res, err := s.reactivate(ctx, subscriptionID, billingKey, customerKey, nil)
	if err != nil {
		return nil, err
	}
	return res.Subscription, nil
}

// ReactivateWithPayment reactivates and appends the SUCCESS payment that
// paid for the new period in the same transaction.
func (s *SubscriptionService) ReactivateWithPayment(ctx context.Context, subscriptionID uuid.UUID, billingKey, customerKey string, payment PaymentInfo) (*SubscriptionResult, error) {
	if payment.Amount <= 0 {
		return nil, utils.NewValidationError("amount", "amount must be positive")
	}
	return s.reactivate(ctx, subscriptionID, billingKey, customerKey, &payment)
}

// reactivate restarts the period at now (or the payment time), stores the new
// credentials and promotes the user.
func (s *SubscriptionService) reactivate(ctx context.Context, subscriptionID uuid.UUID, billingKey, customerKey string, p *PaymentInfo) (*SubscriptionResult, error) {
	if billingKey == "" || customerKey == "" {
		return nil, utils.NewValidationError("billingKey", "billing key and customer key are required")
	}

	start := s.now().UTC()
	if p != nil && !p.PaidAt.IsZero() {
		start = p.PaidAt.UTC()
	}
	end := utils.AddMonth(start)

	var (
		sub     *db_models.Subscription
		payment *db_models.PaymentHistory
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subRepo := s.subRepo.WithTx(tx)
		var err error
		sub, err = loadForUpdate(ctx, subRepo, subscriptionID)
		if err != nil {
			return err
		}
		bk, ck := billingKey, customerKey
		sub.Status = db_models.SubStatusActive
		sub.BillingKey = &bk
		sub.CustomerKey = &ck
		sub.CurrentPeriodStart = start
		sub.CurrentPeriodEnd = end
		if err := subRepo.Save(ctx, sub); err != nil {
			return utils.DatabaseError("save subscription", err)
		}
		if p != nil {
			payment = &db_models.PaymentHistory{
				SubscriptionID: sub.ID,
				OrderID:        p.OrderID,
				PaymentKey:     optionalString(p.PaymentKey),
				PaymentMethod:  paymentMethodOrDefault(p.PaymentMethod),
				Amount:         p.Amount,
				Status:         db_models.PaymentStatusSuccess,
				PaidAt:         &start,
				Receipt:        receiptJSON(p.Receipt),
			}
			if err := subRepo.InsertPayment(ctx, payment); err != nil {
				return utils.DatabaseError("insert payment", err)
			}
		}
		if err := s.accountRepo.WithTx(tx).UpdatePlan(ctx, sub.UserID, db_models.PlanPro, &end); err != nil {
			return utils.DatabaseError("promote user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("subscription reactivated", "subscription_id", sub.ID, "period_end", end)
	return &SubscriptionResult{Subscription: sub, Payment: payment}, nil
}

func (s *SubscriptionService) Expire(ctx context.Context, subscriptionID uuid.UUID) (*db_models.Subscription, error) {
	var sub *db_models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subRepo := s.subRepo.WithTx(tx)
		var err error
		sub, err = loadForUpdate(ctx, subRepo, subscriptionID)
		if err != nil {
			return err
		}
		sub.Status = db_models.SubStatusExpired
		if err := subRepo.Save(ctx, sub); err != nil {
			return utils.DatabaseError("save subscription", err)
		}
		if err := s.accountRepo.WithTx(tx).UpdatePlan(ctx, sub.UserID, db_models.PlanFree, nil); err != nil {
			return utils.DatabaseError("demote user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("subscription expired", "subscription_id", sub.ID, "user_id", sub.UserID)
	return sub, nil
}

func (s *SubscriptionService) RecordFailedPayment(ctx context.Context, subscriptionID uuid.UUID, orderID string, amount int64, reason string) error {
	payment := &db_models.PaymentHistory{
		SubscriptionID: subscriptionID,
		OrderID:        orderID,
		PaymentMethod:  defaultPaymentMethod,
		Amount:         amount,
		Status:         db_models.PaymentStatusFailed,
		FailureReason:  optionalString(reason),
	}
	if err := s.subRepo.InsertPayment(ctx, payment); err != nil {
		return utils.DatabaseError("insert failed payment", err)
	}
	return nil
}

// GetUserSubscription returns the user's subscription with payments newest
// first, or nil when there is none.
func (s *SubscriptionService) GetUserSubscription(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	sub, err := s.subRepo.FindByUserIdWithPayments(ctx, userID)
	if err != nil {
		return nil, utils.DatabaseError("find subscription", err)
	}
	return sub, nil
}

func (s *SubscriptionService) ListDueForRenewal(ctx context.Context, before time.Time) ([]db_models.Subscription, error) {
	subs, err := s.subRepo.ListDueForRenewal(ctx, before.UTC())
	if err != nil {
		return nil, utils.DatabaseError("list due subscriptions", err)
	}
	return subs, nil
}

// ResolveEffectivePlan loads the user and subscription and computes the plan
// that gates link creation. Unknown users and users without a subscription
// are FREE.
func (s *SubscriptionService) ResolveEffectivePlan(ctx context.Context, userID uuid.UUID) (db_models.PlanType, error) {
	sub, err := s.subRepo.FindByUserId(ctx, userID)
	if err != nil {
		return db_models.PlanFree, utils.DatabaseError("find subscription", err)
	}
	if sub == nil {
		return db_models.PlanFree, nil
	}

	user, err := s.accountRepo.FindById(ctx, userID)
	if err != nil {
		return db_models.PlanFree, utils.DatabaseError("find user", err)
	}
	userPlan := db_models.PlanFree
	if user != nil {
		userPlan = user.PlanType
	}

	status := sub.Status
	end := sub.CurrentPeriodEnd
	return EffectivePlanType(userPlan, &status, &end, s.now()), nil
}

func orderIDFor(subscriptionID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("order_%s_%d", subscriptionID, at.UnixMilli())
}
