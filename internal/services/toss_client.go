package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"linkhub/internal/config"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

const (
	tossStatusDone = "DONE"
	tossCurrency   = "KRW"
	maxErrorBody   = 4 << 10
)

type BillingKeyResult struct {
	BillingKey      string    `json:"billingKey"`
	CustomerKey     string    `json:"customerKey"`
	Method          string    `json:"method"`
	AuthenticatedAt time.Time `json:"authenticatedAt"`
}

type ChargeRequest struct {
	BillingKey  string
	CustomerKey string
	OrderID     string
	OrderName   string
	Amount      int64
}

type ChargeResult struct {
	PaymentKey  string
	OrderID     string
	Status      string
	TotalAmount int64
	ApprovedAt  time.Time
	Method      string
	// Raw is the provider response body, kept as the receipt.
	Raw json.RawMessage
}

// Approved reports whether the provider completed the charge.
func (r *ChargeResult) Approved() bool {
	return r != nil && r.Status == tossStatusDone
}

// PaymentGateway is the recurring-billing provider. Every method makes a
// single attempt.
type PaymentGateway interface {
	IssueBillingKey(ctx context.Context, authKey, customerKey string) (*BillingKeyResult, error)
	ChargeBillingKey(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	RevokeBillingKey(ctx context.Context, billingKey string) error
}

type TossClient struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	timeout    time.Duration
	log        logger.Interface
}

func NewTossClient(cfg config.TossConfig, log logger.Interface) PaymentGateway {
	return &TossClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.SecretKey+":")),
		timeout:    cfg.Timeout,
		log:        log.Named("toss_client"),
	}
}

type tossIssueResponse struct {
	BillingKey      string `json:"billingKey"`
	CustomerKey     string `json:"customerKey"`
	Method          string `json:"method"`
	AuthenticatedAt string `json:"authenticatedAt"`
}

type tossChargeResponse struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"totalAmount"`
	ApprovedAt  string `json:"approvedAt"`
	Method      string `json:"method"`
}

func (c *TossClient) IssueBillingKey(ctx context.Context, authKey, customerKey string) (*BillingKeyResult, error) {
	body := map[string]string{
		"authKey":     authKey,
		"customerKey": customerKey,
	}
	raw, err := c.do(ctx, "issue billing key", http.MethodPost, "/billing/authorizations/issue", body)
	if err != nil {
		return nil, err
	}

	var resp tossIssueResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &utils.GatewayError{Op: "issue billing key", Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.BillingKey == "" {
		return nil, &utils.GatewayError{Op: "issue billing key", Err: errors.New("response has no billing key")}
	}

	return &BillingKeyResult{
		BillingKey:      resp.BillingKey,
		CustomerKey:     resp.CustomerKey,
		Method:          resp.Method,
		AuthenticatedAt: parseTossTime(resp.AuthenticatedAt),
	}, nil
}

func (c *TossClient) ChargeBillingKey(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body := map[string]interface{}{
		"customerKey": req.CustomerKey,
		"orderId":     req.OrderID,
		"orderName":   req.OrderName,
		"amount":      req.Amount,
		"currency":    tossCurrency,
	}
	raw, err := c.do(ctx, "charge billing key", http.MethodPost, "/billing/"+url.PathEscape(req.BillingKey), body)
	if err != nil {
		return nil, err
	}

	var resp tossChargeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &utils.GatewayError{Op: "charge billing key", Err: fmt.Errorf("decode response: %w", err)}
	}

	c.log.Infow("billing charge completed",
		"order_id", resp.OrderID,
		"status", resp.Status,
		"amount", resp.TotalAmount,
	)
	return &ChargeResult{
		PaymentKey:  resp.PaymentKey,
		OrderID:     resp.OrderID,
		Status:      resp.Status,
		TotalAmount: resp.TotalAmount,
		ApprovedAt:  parseTossTime(resp.ApprovedAt),
		Method:      resp.Method,
		Raw:         json.RawMessage(raw),
	}, nil
}

func (c *TossClient) RevokeBillingKey(ctx context.Context, billingKey string) error {
	_, err := c.do(ctx, "revoke billing key", http.MethodDelete, "/billing", map[string]string{
		"billingKey": billingKey,
	})
	return err
}

// do sends one JSON request. Non-2xx answers, transport failures and
// timeouts all come back as *utils.GatewayError.
func (c *TossClient) do(ctx context.Context, op, method, path string, payload interface{}) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, &utils.GatewayError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, &utils.GatewayError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &utils.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &utils.GatewayError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &utils.GatewayError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func parseTossTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
