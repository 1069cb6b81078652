package controllers_fx

import (
	"go.uber.org/fx"
	"linkhub/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewLinkController),
	fx.Provide(controllers.NewRedirectController),
	fx.Provide(controllers.NewBillingController),
	fx.Provide(controllers.NewCronController),
	fx.Provide(controllers.NewHealthController))
