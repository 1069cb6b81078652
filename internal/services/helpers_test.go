package services

import (
	"testing"
	"time"

	"gorm.io/gorm"
	"linkhub/internal/config"
	"linkhub/internal/repositories"
	"linkhub/internal/testutil"
	"linkhub/pkg/logger"
	"linkhub/pkg/memcache"
)

func testConfig() *config.Config {
	return &config.Config{
		Timezone:    "Asia/Seoul",
		BrandDomain: "https://lnk.test/",
		Billing: config.BillingConfig{
			ProPrice:     4900,
			ProOrderName: "LinkHub Pro 구독",
		},
		Renewal: config.RenewalConfig{
			PerSubscriptionTimeout: 5 * time.Second,
		},
	}
}

type linkFixture struct {
	db    *gorm.DB
	repo  repositories.LinkRepository
	cache LinkCache
	svc   *LinkService
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repositories.NewLinkRepository(db)
	cache := NewLinkCache(memcache.NewTTLStore(), time.Minute, logger.Discard())
	svc := NewLinkService(db, repo, NewPlanService(), cache, testConfig(), logger.Discard()).(*LinkService)
	return &linkFixture{db: db, repo: repo, cache: cache, svc: svc}
}

func ptr[T any](v T) *T { return &v }
