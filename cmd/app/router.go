package main

import (
	"github.com/gin-gonic/gin"
	"linkhub/internal/api/controllers"
	"linkhub/internal/config"
	"linkhub/pkg/logger"
	"linkhub/pkg/middleware"
	"linkhub/pkg/utils"
)

type routeControllers struct {
	account  *controllers.AccountController
	link     *controllers.LinkController
	redirect *controllers.RedirectController
	billing  *controllers.BillingController
	cron     *controllers.CronController
	health   *controllers.HealthController
}

func ProvideRouter(
	cfg *config.Config,
	log logger.Interface,
	accountController *controllers.AccountController,
	linkController *controllers.LinkController,
	redirectController *controllers.RedirectController,
	billingController *controllers.BillingController,
	cronController *controllers.CronController,
	healthController *controllers.HealthController,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	utils.RegisterBindingValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log))

	RegisterRoutes(r, cfg, routeControllers{
		account:  accountController,
		link:     linkController,
		redirect: redirectController,
		billing:  billingController,
		cron:     cronController,
		health:   healthController,
	})

	return r
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, c routeControllers) {
	r.GET("/healthz", c.health.Healthz)
	r.GET("/redirect/:slug", c.redirect.Redirect)

	api := r.Group("/api")

	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	authed.GET("/accounts/me", c.account.GetMe)

	linksGroup := authed.Group("/links")
	linksGroup.POST("", c.link.CreateLink)
	linksGroup.GET("", c.link.ListLinks)
	linksGroup.GET("/stats", c.link.GetStats)
	linksGroup.PATCH("/:id", c.link.UpdateLink)
	linksGroup.DELETE("/:id", c.link.DeleteLink)
	linksGroup.POST("/:id/toggle", c.link.ToggleLinkStatus)

	billingGroup := authed.Group("/billing")
	billingGroup.GET("/customer-key", c.billing.GetCustomerKey)
	billingGroup.POST("/issue-billing-key", c.billing.IssueBillingKey)
	billingGroup.GET("/subscription", c.billing.GetSubscription)
	billingGroup.POST("/cancel", c.billing.CancelSubscription)
	billingGroup.POST("/reactivate", c.billing.ReactivateSubscription)

	cronGroup := api.Group("/cron")
	cronGroup.Use(middleware.CronAuthMiddleware(cfg.CronSecret))
	cronGroup.GET("/billing", c.cron.RunBilling)
	cronGroup.POST("/billing", c.cron.RunBilling)
}
