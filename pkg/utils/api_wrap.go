package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"linkhub/pkg/logger"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondStatus(c, http.StatusOK, data, message)
}

func RespondStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

// HandleServiceError translates service errors into the response envelope.
// Gateway and storage causes are logged in full and answered generically.
func HandleServiceError(c *gin.Context, err error) {
	log := logger.Default()

	var (
		validationErr *ValidationError
		quotaErr      *QuotaError
		gatewayErr    *GatewayError
	)

	switch {
	case errors.As(err, &validationErr):
		RespondError(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &quotaErr):
		RespondError(c, http.StatusTooManyRequests, quotaErr.Reason)
	case errors.Is(err, ErrLinkNotFoundOrForbidden):
		RespondError(c, http.StatusNotFound, "Link not found or access denied")
	case errors.Is(err, ErrSlugTaken):
		RespondError(c, http.StatusConflict, "Slug is already in use")
	case errors.Is(err, ErrSlugAllocationFailed):
		RespondError(c, http.StatusServiceUnavailable, "Could not allocate a slug, please try again")
	case errors.As(err, &gatewayErr):
		log.Errorw("payment gateway failure",
			"op", gatewayErr.Op,
			"status", gatewayErr.StatusCode,
			"body", gatewayErr.Body,
			"error", gatewayErr.Err,
			"trace_id", c.GetString("trace_id"),
		)
		RespondError(c, http.StatusPaymentRequired, "Payment failed")
	case errors.Is(err, ErrPaymentNotApproved):
		log.Warnw("payment not approved", "error", err, "trace_id", c.GetString("trace_id"))
		RespondError(c, http.StatusPaymentRequired, "Payment failed")
	case errors.Is(err, ErrSubscriptionNotFound):
		RespondError(c, http.StatusNotFound, "Subscription not found")
	case errors.Is(err, ErrAlreadySubscribed):
		RespondError(c, http.StatusConflict, "Subscription is already active")
	case errors.Is(err, ErrAccountNotFound):
		RespondError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrDatabaseError):
		log.Errorw("database error", "error", err, "trace_id", c.GetString("trace_id"))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Errorw("unhandled service error", "error", err, "trace_id", c.GetString("trace_id"))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
