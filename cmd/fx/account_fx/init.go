package account_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"linkhub/internal/repositories"
	"linkhub/internal/services"
)

var Module = fx.Provide(
	services.NewAccountService, provideAccountRepo)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}
