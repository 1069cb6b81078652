package payment_service_fx

import (
	"errors"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"linkhub/internal/config"
	"linkhub/internal/repositories"
	"linkhub/internal/services"
	"linkhub/pkg/logger"
)

var Module = fx.Provide(
	providePaymentGateway,
	provideSubscriptionRepo,
	services.NewSubscriptionService,
	services.NewBillingService,
)

func providePaymentGateway(cfg *config.Config, log logger.Interface) (services.PaymentGateway, error) {
	if cfg.Toss.SecretKey == "" {
		return nil, errors.New("TOSS_SECRET_KEY is required")
	}
	return services.NewTossClient(cfg.Toss, log), nil
}

func provideSubscriptionRepo(db *gorm.DB) repositories.SubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}
