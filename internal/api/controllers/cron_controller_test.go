package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"linkhub/internal/models/response_models"
	"linkhub/pkg/middleware"
)

type fakeRenewals struct {
	calls int
}

func (f *fakeRenewals) RunRenewals(context.Context) (*response_models.RenewalReport, error) {
	f.calls++
	return &response_models.RenewalReport{
		Success:   true,
		Processed: 1,
		Results: []response_models.RenewalResult{
			{SubscriptionID: uuid.New(), Success: false, Error: "card declined"},
		},
	}, nil
}

func TestCronController_RunBilling(t *testing.T) {
	renewals := &fakeRenewals{}
	r := gin.New()
	g := r.Group("/api/cron", middleware.CronAuthMiddleware("cron-secret"))
	g.GET("/billing", NewCronController(renewals).RunBilling)
	g.POST("/billing", NewCronController(renewals).RunBilling)

	req := httptest.NewRequest(http.MethodGet, "/api/cron/billing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, renewals.calls)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/api/cron/billing", nil)
		req.Header.Set("Authorization", "Bearer cron-secret")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var report response_models.RenewalReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.True(t, report.Success)
		assert.Equal(t, 1, report.Processed)
		require.Len(t, report.Results, 1)
		assert.False(t, report.Results[0].Success)
	}
	assert.Equal(t, 2, renewals.calls)
}
