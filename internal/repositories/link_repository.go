package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"linkhub/internal/models/db_models"
)

type LinkRepository interface {
	WithTx(tx *gorm.DB) LinkRepository
	Insert(ctx context.Context, link *db_models.Link) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Link, error)
	FindBySlug(ctx context.Context, slug string) (*db_models.Link, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Link, error)
	CountCreatedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	CountActive(ctx context.Context, userID uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementClickCount(ctx context.Context, id uuid.UUID) error
	InsertEvent(ctx context.Context, event *db_models.LinkEvent) error
	DeleteEvents(ctx context.Context, linkID uuid.UUID) error
}

type linkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) WithTx(tx *gorm.DB) LinkRepository {
	return &linkRepository{db: tx}
}

func (r *linkRepository) Insert(ctx context.Context, link *db_models.Link) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *linkRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Link, error) {
	var link db_models.Link
	err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) FindBySlug(ctx context.Context, slug string) (*db_models.Link, error) {
	var link db_models.Link
	err := r.db.WithContext(ctx).First(&link, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db_models.Link{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *linkRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Link, error) {
	var links []db_models.Link
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

func (r *linkRepository) CountCreatedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db_models.Link{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *linkRepository) CountActive(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db_models.Link{}).
		Where("user_id = ? AND status = ?", userID, db_models.LinkStatusActive).
		Count(&count).Error
	return count, err
}

func (r *linkRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&db_models.Link{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *linkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&db_models.Link{}, "id = ?", id).Error
}

// IncrementClickCount is a single atomic UPDATE so concurrent clicks never
// lose increments.
func (r *linkRepository) IncrementClickCount(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Link{}).
		Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *linkRepository) InsertEvent(ctx context.Context, event *db_models.LinkEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *linkRepository) DeleteEvents(ctx context.Context, linkID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&db_models.LinkEvent{}, "link_id = ?", linkID).Error
}

// IsDuplicateKey reports unique violations from either Postgres or SQLite.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
