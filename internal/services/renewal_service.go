package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkhub/internal/config"
	"linkhub/internal/models/db_models"
	"linkhub/internal/models/response_models"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

const missingCredentialsReason = "missing billing credentials"

type RenewalServiceInterface interface {
	RunRenewals(ctx context.Context) (*response_models.RenewalReport, error)
}

type RenewalService struct {
	gateway       PaymentGateway
	subscriptions SubscriptionServiceInterface
	billing       config.BillingConfig
	perSubTimeout time.Duration
	loc           *time.Location
	log           logger.Interface
	now           func() time.Time
}

func NewRenewalService(
	gateway PaymentGateway,
	subscriptions SubscriptionServiceInterface,
	cfg *config.Config,
	log logger.Interface,
) RenewalServiceInterface {
	timeout := cfg.Renewal.PerSubscriptionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RenewalService{
		gateway:       gateway,
		subscriptions: subscriptions,
		billing:       cfg.Billing,
		perSubTimeout: timeout,
		loc:           cfg.Location(),
		log:           log.Named("renewal_service"),
		now:           time.Now,
	}
}

// RunRenewals charges every ACTIVE subscription whose period ends before the
// start of tomorrow. Each subscription succeeds or fails on its own; only
// the initial selection can fail the whole run.
func (s *RenewalService) RunRenewals(ctx context.Context) (*response_models.RenewalReport, error) {
	cutoff := utils.StartOfTomorrow(s.now(), s.loc)
	due, err := s.subscriptions.ListDueForRenewal(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	s.log.Infow("renewal run started", "due", len(due), "cutoff", cutoff)

	report := &response_models.RenewalReport{
		Success: true,
		Results: make([]response_models.RenewalResult, 0, len(due)),
	}
	for i := range due {
		if ctx.Err() != nil {
			s.log.Warnw("renewal run interrupted", "remaining", len(due)-i, "error", ctx.Err())
			break
		}
		report.Results = append(report.Results, s.renewOne(ctx, &due[i]))
	}
	report.Processed = len(report.Results)

	var succeeded, skipped int
	for _, r := range report.Results {
		switch {
		case r.Success:
			succeeded++
		case r.Skipped:
			skipped++
		}
	}
	s.log.Infow("renewal run finished",
		"processed", report.Processed,
		"succeeded", succeeded,
		"skipped", skipped,
		"failed", report.Processed-succeeded-skipped,
	)
	return report, nil
}

func (s *RenewalService) renewOne(parent context.Context, sub *db_models.Subscription) (result response_models.RenewalResult) {
	result.SubscriptionID = sub.ID

	if !sub.HasBillingCredentials() {
		s.log.Warnw("renewal skipped", "subscription_id", sub.ID, "reason", missingCredentialsReason)
		result.Skipped = true
		result.Error = missingCredentialsReason
		return result
	}

	ctx, cancel := context.WithTimeout(parent, s.perSubTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("renewal panicked", "subscription_id", sub.ID, "panic", fmt.Sprintf("%v", r))
			result.Success = false
			result.Error = "internal error"
		}
	}()

	orderID := orderIDFor(sub.ID, s.now())
	amount := s.billing.ProPrice

	charge, err := s.gateway.ChargeBillingKey(ctx, ChargeRequest{
		BillingKey:  *sub.BillingKey,
		CustomerKey: *sub.CustomerKey,
		OrderID:     orderID,
		OrderName:   s.billing.ProOrderName,
		Amount:      amount,
	})
	if err == nil && !charge.Approved() {
		err = fmt.Errorf("charge status %s: %w", charge.Status, utils.ErrPaymentNotApproved)
	}
	if err != nil {
		s.fail(sub, orderID, amount, err, &result)
		return result
	}

	if _, err := s.subscriptions.Renew(ctx, RenewParams{
		SubscriptionID: sub.ID,
		Amount:         amount,
		PaymentKey:     charge.PaymentKey,
		OrderID:        orderID,
		PaymentMethod:  charge.Method,
		ApprovedAt:     charge.ApprovedAt,
		Receipt:        charge.Raw,
	}); err != nil {
		s.log.Errorw("charged renewal could not be recorded",
			"subscription_id", sub.ID,
			"order_id", orderID,
			"payment_key", charge.PaymentKey,
			"error", err,
		)
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.PaymentKey = charge.PaymentKey
	return result
}

// fail records the attempt as a FAILED ledger row, best effort, on a fresh
// context so an exhausted per-subscription budget still leaves a trace.
func (s *RenewalService) fail(sub *db_models.Subscription, orderID string, amount int64, cause error, result *response_models.RenewalResult) {
	result.Error = cause.Error()

	var gwErr *utils.GatewayError
	if errors.As(cause, &gwErr) {
		s.log.Errorw("renewal charge failed",
			"subscription_id", sub.ID,
			"order_id", orderID,
			"status", gwErr.StatusCode,
			"body", gwErr.Body,
			"error", gwErr.Err,
		)
	} else {
		s.log.Errorw("renewal charge failed", "subscription_id", sub.ID, "order_id", orderID, "error", cause)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.subscriptions.RecordFailedPayment(ctx, sub.ID, orderID, amount, cause.Error()); err != nil {
		s.log.Warnw("failed payment not recorded", "subscription_id", sub.ID, "error", err)
	}
}
