package memcache_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"linkhub/internal/config"
	"linkhub/internal/infra"
	"linkhub/pkg/logger"
	mem "linkhub/pkg/memcache"
)

const sweepInterval = time.Minute

var Module = fx.Provide(provideStore)

// provideStore uses Redis when REDIS_URL is set and an in-process store
// otherwise.
func provideStore(lc fx.Lifecycle, cfg *config.Config, log logger.Interface) (mem.Store, error) {
	log = log.Named("memcache")

	if cfg.Cache.RedisURL == "" {
		store := mem.NewTTLStore()
		done := make(chan struct{})
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				logger.SafeGo(log, "ttl_sweeper", func() {
					ticker := time.NewTicker(sweepInterval)
					defer ticker.Stop()
					for {
						select {
						case <-done:
							return
						case <-ticker.C:
							if n := store.Sweep(); n > 0 {
								log.Debugw("swept expired cache entries", "count", n)
							}
						}
					}
				})
				return nil
			},
			OnStop: func(context.Context) error {
				close(done)
				return nil
			},
		})
		log.Infow("using in-process link cache")
		return store, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := infra.ConnectRedis(ctx, cfg.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Infow("using redis link cache")
	return infra.NewRedisStore(client), nil
}
