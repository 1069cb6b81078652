package services

import (
	"context"
	"sync"
)

type mockGateway struct {
	mu sync.Mutex

	IssueFunc  func(ctx context.Context, authKey, customerKey string) (*BillingKeyResult, error)
	ChargeFunc func(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	RevokeFunc func(ctx context.Context, billingKey string) error

	charges []ChargeRequest
	revoked []string
}

func (m *mockGateway) IssueBillingKey(ctx context.Context, authKey, customerKey string) (*BillingKeyResult, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, authKey, customerKey)
	}
	return &BillingKeyResult{BillingKey: "bk_" + authKey, CustomerKey: customerKey, Method: "카드"}, nil
}

func (m *mockGateway) ChargeBillingKey(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	m.mu.Lock()
	m.charges = append(m.charges, req)
	m.mu.Unlock()
	if m.ChargeFunc != nil {
		return m.ChargeFunc(ctx, req)
	}
	return &ChargeResult{
		PaymentKey:  "pay_" + req.OrderID,
		OrderID:     req.OrderID,
		Status:      tossStatusDone,
		TotalAmount: req.Amount,
		Method:      "카드",
		Raw:         []byte(`{"status":"DONE"}`),
	}, nil
}

func (m *mockGateway) RevokeBillingKey(ctx context.Context, billingKey string) error {
	m.mu.Lock()
	m.revoked = append(m.revoked, billingKey)
	m.mu.Unlock()
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, billingKey)
	}
	return nil
}
