package request_models

type IssueBillingKeyRequest struct {
	AuthKey     string `json:"authKey" binding:"required"`
	CustomerKey string `json:"customerKey,omitempty"`
	Amount      *int64 `json:"amount,omitempty" binding:"omitempty,gt=0"`
}

type ReactivateSubscriptionRequest struct {
	BillingKey  string `json:"billingKey" binding:"required"`
	CustomerKey string `json:"customerKey" binding:"required"`
}
