package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"linkhub/internal/models/request_models"
	"linkhub/internal/models/response_models"
	"linkhub/internal/services"
	"linkhub/pkg/utils"
)

type BillingController struct {
	billingService services.BillingServiceInterface
}

func NewBillingController(billingService services.BillingServiceInterface) *BillingController {
	return &BillingController{billingService: billingService}
}

// GetCustomerKey godoc
// @Summary Customer key for the payment widget
// @Tags Billing
// @Produce json
// @Success 200 {object} response_models.CustomerKeyResponse
// @Security BearerAuth
// @Router /api/billing/customer-key [get]
func (b *BillingController) GetCustomerKey(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	utils.RespondSuccess(c, response_models.CustomerKeyResponse{
		CustomerKey: b.billingService.CustomerKey(userID),
	}, "Customer key fetched successfully")
}

// IssueBillingKey godoc
// @Summary Complete card registration and start PRO
// @Description Exchanges the provider authKey for a billing key, charges the first month and activates the subscription
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body request_models.IssueBillingKeyRequest true "Billing auth payload"
// @Success 200 {object} response_models.BillingResultResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 402 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/billing/issue-billing-key [post]
func (b *BillingController) IssueBillingKey(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req request_models.IssueBillingKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.BindingErrorMessage(err))
		return
	}

	res, err := b.billingService.IssueAndSubscribe(c.Request.Context(), services.IssueBillingInput{
		UserID:      userID,
		AuthKey:     req.AuthKey,
		CustomerKey: req.CustomerKey,
		Amount:      req.Amount,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, res, "Subscription activated")
}

// GetSubscription godoc
// @Summary Current subscription with payment history
// @Tags Billing
// @Produce json
// @Success 200 {object} response_models.SubscriptionResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/billing/subscription [get]
func (b *BillingController) GetSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sub, err := b.billingService.GetSubscription(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription fetched successfully")
}

// CancelSubscription godoc
// @Summary Cancel the subscription
// @Description Stops renewals; PRO stays available until the current period ends
// @Tags Billing
// @Produce json
// @Success 200 {object} response_models.SubscriptionResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/billing/cancel [post]
func (b *BillingController) CancelSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sub, err := b.billingService.Cancel(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription cancelled")
}

// ReactivateSubscription godoc
// @Summary Reactivate with new billing credentials
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body request_models.ReactivateSubscriptionRequest true "Billing credentials"
// @Success 200 {object} response_models.SubscriptionResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/billing/reactivate [post]
func (b *BillingController) ReactivateSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req request_models.ReactivateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.BindingErrorMessage(err))
		return
	}

	sub, err := b.billingService.Reactivate(c.Request.Context(), userID, req.BillingKey, req.CustomerKey)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription reactivated")
}
