package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"linkhub/internal/models/db_models"
	"linkhub/internal/models/response_models"
	"linkhub/internal/repositories"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

type AccountServiceInterface interface {
	// EnsureUser returns the user with the given email, creating a FREE
	// account when none exists.
	EnsureUser(ctx context.Context, name, email string) (*db_models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*response_models.AccountResponse, error)
}

type AccountService struct {
	accountRepo   repositories.AccountRepository
	subscriptions SubscriptionServiceInterface
	log           logger.Interface
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	subscriptions SubscriptionServiceInterface,
	log logger.Interface,
) AccountServiceInterface {
	return &AccountService{
		accountRepo:   accountRepo,
		subscriptions: subscriptions,
		log:           log.Named("account_service"),
	}
}

func (a *AccountService) EnsureUser(ctx context.Context, name, email string) (*db_models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, utils.NewValidationError("email", "a valid email is required")
	}

	existing, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, utils.DatabaseError("find user by email", err)
	}
	if existing != nil {
		return existing, nil
	}

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user := &db_models.User{
		Name:     name,
		Email:    email,
		PlanType: db_models.PlanFree,
	}
	if err := a.accountRepo.Insert(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			// Lost a race with a concurrent insert.
			return a.accountRepo.FindByEmail(ctx, email)
		}
		return nil, utils.DatabaseError("insert user", err)
	}

	a.log.Infow("user created", "user_id", user.ID)
	return user, nil
}

func (a *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*response_models.AccountResponse, error) {
	user, err := a.accountRepo.FindById(ctx, userID)
	if err != nil {
		return nil, utils.DatabaseError("find user", err)
	}
	if user == nil {
		return nil, utils.ErrAccountNotFound
	}

	effective, err := a.subscriptions.ResolveEffectivePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &response_models.AccountResponse{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		PlanType:          string(user.PlanType),
		EffectivePlanType: string(effective),
		PlanExpiresAt:     user.PlanExpiresAt,
		CreatedAt:         user.CreatedAt,
	}, nil
}
