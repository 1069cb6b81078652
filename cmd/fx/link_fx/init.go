package link_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"linkhub/internal/config"
	"linkhub/internal/repositories"
	"linkhub/internal/services"
	"linkhub/pkg/logger"
	mem "linkhub/pkg/memcache"
)

var Module = fx.Provide(
	provideLinkRepo,
	services.NewPlanService,
	provideLinkCache,
	services.NewLinkService,
	services.NewRedirectService,
)

func provideLinkRepo(db *gorm.DB) repositories.LinkRepository {
	return repositories.NewLinkRepository(db)
}

func provideLinkCache(store mem.Store, cfg *config.Config, log logger.Interface) services.LinkCache {
	return services.NewLinkCache(store, cfg.Cache.TTL, log)
}
