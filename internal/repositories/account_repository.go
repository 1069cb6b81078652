package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"linkhub/internal/models/db_models"
)

// AccountRepository reads and writes the plan fields of users. Identity
// itself is owned by the token issuer.
type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository
	Insert(ctx context.Context, user *db_models.User) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.User, error)
	FindByEmail(ctx context.Context, email string) (*db_models.User, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, plan db_models.PlanType, expiresAt *time.Time) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (a *accountRepository) WithTx(tx *gorm.DB) AccountRepository {
	return &accountRepository{db: tx}
}

func (a *accountRepository) Insert(ctx context.Context, user *db_models.User) error {
	return a.db.WithContext(ctx).Create(user).Error
}

func (a *accountRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.User, error) {
	var user db_models.User
	err := a.db.WithContext(ctx).First(&user, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (a *accountRepository) FindByEmail(ctx context.Context, email string) (*db_models.User, error) {
	var user db_models.User
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePlan sets plan_type and plan_expires_at. A missing user is reported
// as gorm.ErrRecordNotFound.
func (a *accountRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan db_models.PlanType, expiresAt *time.Time) error {
	res := a.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan_type":       plan,
			"plan_expires_at": expiresAt,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
