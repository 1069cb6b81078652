package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"linkhub/internal/config"
	"linkhub/internal/models/db_models"
	"linkhub/internal/models/response_models"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

const revokeTimeout = 10 * time.Second

type IssueBillingInput struct {
	UserID      uuid.UUID
	AuthKey     string
	CustomerKey string
	Amount      *int64
}

// BillingServiceInterface drives the provider callback flow and the
// subscriber-facing billing operations.
type BillingServiceInterface interface {
	CustomerKey(userID uuid.UUID) string
	IssueAndSubscribe(ctx context.Context, in IssueBillingInput) (*response_models.BillingResultResponse, error)
	GetSubscription(ctx context.Context, userID uuid.UUID) (*response_models.SubscriptionResponse, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*response_models.SubscriptionResponse, error)
	Reactivate(ctx context.Context, userID uuid.UUID, billingKey, customerKey string) (*response_models.SubscriptionResponse, error)
}

type BillingService struct {
	gateway       PaymentGateway
	subscriptions SubscriptionServiceInterface
	cfg           config.BillingConfig
	log           logger.Interface
	now           func() time.Time
}

func NewBillingService(
	gateway PaymentGateway,
	subscriptions SubscriptionServiceInterface,
	cfg *config.Config,
	log logger.Interface,
) BillingServiceInterface {
	return &BillingService{
		gateway:       gateway,
		subscriptions: subscriptions,
		cfg:           cfg.Billing,
		log:           log.Named("billing_service"),
		now:           time.Now,
	}
}

func (s *BillingService) CustomerKey(userID uuid.UUID) string {
	return "customer_" + userID.String()
}

// IssueAndSubscribe exchanges the provider authKey for a billing key, charges
// the first month and records the subscription. Any failure after the key
// was issued revokes it so no orphaned key stays at the provider.
func (s *BillingService) IssueAndSubscribe(ctx context.Context, in IssueBillingInput) (*response_models.BillingResultResponse, error) {
	customerKey := s.CustomerKey(in.UserID)
	if in.CustomerKey != "" && in.CustomerKey != customerKey {
		return nil, utils.NewValidationError("customerKey", "customer key does not belong to the caller")
	}
	amount := s.cfg.ProPrice
	if in.Amount != nil && *in.Amount != amount {
		return nil, utils.NewValidationError("amount", fmt.Sprintf("amount must be %d", amount))
	}

	existing, err := s.subscriptions.GetUserSubscription(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil && subscriptionUsable(existing, s.now()) {
		return nil, utils.ErrAlreadySubscribed
	}

	issued, err := s.gateway.IssueBillingKey(ctx, in.AuthKey, customerKey)
	if err != nil {
		return nil, err
	}

	subscriptionID := uuid.New()
	if existing != nil {
		subscriptionID = existing.ID
	}
	orderID := orderIDFor(subscriptionID, s.now())

	charge, err := s.gateway.ChargeBillingKey(ctx, ChargeRequest{
		BillingKey:  issued.BillingKey,
		CustomerKey: customerKey,
		OrderID:     orderID,
		OrderName:   s.cfg.ProOrderName,
		Amount:      amount,
	})
	if err != nil {
		s.revoke(issued.BillingKey, "charge failed")
		return nil, err
	}
	if !charge.Approved() {
		s.revoke(issued.BillingKey, "charge not approved")
		return nil, fmt.Errorf("order %s status %s: %w", orderID, charge.Status, utils.ErrPaymentNotApproved)
	}

	payment := PaymentInfo{
		Amount:        amount,
		PaymentKey:    charge.PaymentKey,
		OrderID:       orderID,
		PaymentMethod: charge.Method,
		PaidAt:        charge.ApprovedAt,
		Receipt:       charge.Raw,
	}

	var (
		result      *SubscriptionResult
		reactivated bool
	)
	if existing != nil {
		reactivated = true
		result, err = s.subscriptions.ReactivateWithPayment(ctx, existing.ID, issued.BillingKey, customerKey, payment)
	} else {
		result, err = s.subscriptions.CreateWithFirstPayment(ctx, CreateSubscriptionParams{
			SubscriptionID: subscriptionID,
			UserID:         in.UserID,
			BillingKey:     issued.BillingKey,
			CustomerKey:    customerKey,
			Payment:        payment,
		})
	}
	if err != nil {
		// The charge went through; keep enough detail for manual reconciliation.
		s.log.Errorw("charged payment could not be recorded",
			"user_id", in.UserID,
			"order_id", orderID,
			"payment_key", charge.PaymentKey,
			"error", err,
		)
		s.revoke(issued.BillingKey, "persistence failed")
		return nil, err
	}

	return &response_models.BillingResultResponse{
		SubscriptionID:   result.Subscription.ID,
		PaymentKey:       charge.PaymentKey,
		OrderID:          orderID,
		Amount:           amount,
		CurrentPeriodEnd: result.Subscription.CurrentPeriodEnd,
		Reactivated:      reactivated,
	}, nil
}

// revoke runs on its own context so a cancelled request still cleans up.
func (s *BillingService) revoke(billingKey, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), revokeTimeout)
	defer cancel()
	if err := s.gateway.RevokeBillingKey(ctx, billingKey); err != nil {
		s.log.Warnw("billing key revocation failed", "reason", reason, "error", err)
		return
	}
	s.log.Infow("billing key revoked", "reason", reason)
}

func (s *BillingService) GetSubscription(ctx context.Context, userID uuid.UUID) (*response_models.SubscriptionResponse, error) {
	sub, err := s.subscriptions.GetUserSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, utils.ErrSubscriptionNotFound
	}
	return toSubscriptionResponse(sub, s.now()), nil
}

func (s *BillingService) Cancel(ctx context.Context, userID uuid.UUID) (*response_models.SubscriptionResponse, error) {
	sub, err := s.subscriptions.GetUserSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, utils.ErrSubscriptionNotFound
	}
	if sub.Status == db_models.SubStatusCancelled {
		return toSubscriptionResponse(sub, s.now()), nil
	}
	if sub.Status == db_models.SubStatusExpired {
		return nil, utils.NewValidationError("status", "expired subscriptions cannot be cancelled")
	}

	updated, err := s.subscriptions.Cancel(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	updated.Payments = sub.Payments
	return toSubscriptionResponse(updated, s.now()), nil
}

func (s *BillingService) Reactivate(ctx context.Context, userID uuid.UUID, billingKey, customerKey string) (*response_models.SubscriptionResponse, error) {
	if customerKey != s.CustomerKey(userID) {
		return nil, utils.NewValidationError("customerKey", "customer key does not belong to the caller")
	}
	sub, err := s.subscriptions.GetUserSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, utils.ErrSubscriptionNotFound
	}

	updated, err := s.subscriptions.Reactivate(ctx, sub.ID, billingKey, customerKey)
	if err != nil {
		return nil, err
	}
	updated.Payments = sub.Payments
	return toSubscriptionResponse(updated, s.now()), nil
}

func subscriptionUsable(sub *db_models.Subscription, now time.Time) bool {
	status := sub.Status
	end := sub.CurrentPeriodEnd
	return EffectivePlanType(db_models.PlanPro, &status, &end, now) == db_models.PlanPro
}

func toSubscriptionResponse(sub *db_models.Subscription, now time.Time) *response_models.SubscriptionResponse {
	effective := db_models.PlanFree
	if subscriptionUsable(sub, now) {
		effective = db_models.PlanPro
	}

	payments := make([]response_models.PaymentHistoryResponse, 0, len(sub.Payments))
	for _, p := range sub.Payments {
		payments = append(payments, response_models.PaymentHistoryResponse{
			ID:            p.ID,
			OrderID:       p.OrderID,
			PaymentKey:    p.PaymentKey,
			PaymentMethod: p.PaymentMethod,
			Amount:        p.Amount,
			Status:        string(p.Status),
			PaidAt:        p.PaidAt,
			FailureReason: p.FailureReason,
			CreatedAt:     p.CreatedAt,
		})
	}

	return &response_models.SubscriptionResponse{
		ID:                 sub.ID,
		PlanType:           string(sub.PlanType),
		EffectivePlanType:  string(effective),
		Status:             string(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		HasBillingKey:      sub.HasBillingCredentials(),
		Payments:           payments,
	}
}
