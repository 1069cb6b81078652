package renewal_fx

import (
	"context"

	"go.uber.org/fx"
	"linkhub/internal/config"
	"linkhub/internal/scheduler"
	"linkhub/internal/services"
	"linkhub/pkg/logger"
)

var Module = fx.Options(
	fx.Provide(services.NewRenewalService),
	fx.Invoke(startScheduler),
)

func startScheduler(lc fx.Lifecycle, cfg *config.Config, renewals services.RenewalServiceInterface, log logger.Interface) {
	if !cfg.Renewal.Enabled {
		log.Infow("in-process renewal scheduler disabled; use the cron endpoint or the renew command")
		return
	}

	s := scheduler.NewRenewalScheduler(
		renewals,
		cfg.Renewal.Cron,
		cfg.Location(),
		cfg.Renewal.RunTimeout,
		log,
	)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return s.Start()
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
}
