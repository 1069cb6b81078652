package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"linkhub/cmd/fx/account_fx"
	"linkhub/cmd/fx/config_fx"
	"linkhub/cmd/fx/controllers_fx"
	"linkhub/cmd/fx/db_fx"
	"linkhub/cmd/fx/link_fx"
	"linkhub/cmd/fx/memcache_fx"
	"linkhub/cmd/fx/payment_service_fx"
	"linkhub/cmd/fx/renewal_fx"
	"linkhub/internal/config"
	"linkhub/internal/services"
	"linkhub/pkg/logger"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the HTTP server and, when RENEWAL_ENABLED is set, the in-process renewal scheduler.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				config_fx.Module,
				db_fx.Module,
				memcache_fx.Module,
				account_fx.Module,
				link_fx.Module,
				payment_service_fx.Module,
				renewal_fx.Module,
				controllers_fx.Module,

				fx.Provide(ProvideRouter),
				fx.Invoke(StartServer),
				fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
			)
			app.Run()
			return app.Err()
		},
	}
}

// StartServer's stop hook runs before the database closes, so in-flight
// click writes are drained while the connection is still open.
func StartServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	engine *gin.Engine,
	redirects services.RedirectServiceInterface,
	log logger.Interface,
) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.SafeGo(log, "http_server", func() {
				log.Infow("starting HTTP server", "addr", srv.Addr, "mode", gin.Mode())
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorw("HTTP server stopped unexpectedly", "error", err)
				}
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			if err := redirects.Drain(ctx); err != nil {
				log.Warnw("click accounting still running at shutdown", "error", err)
			}
			return nil
		},
	})
}
