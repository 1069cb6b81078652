package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"linkhub/internal/config"
	"linkhub/internal/repositories"
	"linkhub/internal/services"
	"linkhub/internal/testutil"
	"linkhub/pkg/logger"
	"linkhub/pkg/memcache"
	"linkhub/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.RegisterBindingValidators()
}

func testConfig() *config.Config {
	return &config.Config{
		Timezone:    "Asia/Seoul",
		BrandDomain: "https://lnk.test",
		CronSecret:  "cron-secret",
		Billing:     config.BillingConfig{ProPrice: 4900, ProOrderName: "LinkHub Pro 구독"},
		Cache:       config.CacheConfig{TTL: time.Minute},
	}
}

type stack struct {
	db            *gorm.DB
	links         services.LinkServiceInterface
	redirects     services.RedirectServiceInterface
	subscriptions services.SubscriptionServiceInterface
	accounts      services.AccountServiceInterface
}

func newStack(t *testing.T) *stack {
	t.Helper()
	cfg := testConfig()
	db := testutil.NewDB(t)
	log := logger.Discard()

	linkRepo := repositories.NewLinkRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	cache := services.NewLinkCache(memcache.NewTTLStore(), cfg.Cache.TTL, log)
	links := services.NewLinkService(db, linkRepo, services.NewPlanService(), cache, cfg, log)
	subscriptions := services.NewSubscriptionService(db, repositories.NewSubscriptionRepository(db), accountRepo, log)

	return &stack{
		db:            db,
		links:         links,
		redirects:     services.NewRedirectService(linkRepo, links, cache, log),
		subscriptions: subscriptions,
		accounts:      services.NewAccountService(accountRepo, subscriptions, log),
	}
}

// asUser stands in for the JWT middleware.
func asUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id.String())
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
