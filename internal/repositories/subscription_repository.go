package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"linkhub/internal/models/db_models"
)

type SubscriptionRepository interface {
	WithTx(tx *gorm.DB) SubscriptionRepository
	Insert(ctx context.Context, sub *db_models.Subscription) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Subscription, error)
	FindByUserId(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error)
	FindByUserIdWithPayments(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error)
	ListDueForRenewal(ctx context.Context, before time.Time) ([]db_models.Subscription, error)
	Save(ctx context.Context, sub *db_models.Subscription) error
	InsertPayment(ctx context.Context, payment *db_models.PaymentHistory) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: tx}
}

func (r *subscriptionRepository) Insert(ctx context.Context, sub *db_models.Subscription) error {
	return r.db.WithContext(ctx).Omit("Payments").Create(sub).Error
}

func (r *subscriptionRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Subscription, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *subscriptionRepository) FindByUserId(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *subscriptionRepository) FindByUserIdWithPayments(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	q := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("user_id = ?", userID)
	return r.first(q)
}

func (r *subscriptionRepository) first(q *gorm.DB) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	if err := q.First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// ListDueForRenewal returns ACTIVE subscriptions whose period ends at or
// before the given instant, oldest first.
func (r *subscriptionRepository) ListDueForRenewal(ctx context.Context, before time.Time) ([]db_models.Subscription, error) {
	var subs []db_models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND current_period_end <= ?", db_models.SubStatusActive, before).
		Order("current_period_end ASC").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) Save(ctx context.Context, sub *db_models.Subscription) error {
	return r.db.WithContext(ctx).Omit("Payments").Save(sub).Error
}

func (r *subscriptionRepository) InsertPayment(ctx context.Context, payment *db_models.PaymentHistory) error {
	return r.db.WithContext(ctx).Create(payment).Error
}
