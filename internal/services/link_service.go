package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"linkhub/internal/config"
	"linkhub/internal/models/db_models"
	"linkhub/internal/models/response_models"
	"linkhub/internal/repositories"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

const maxURLLength = 2048

type CreateLinkInput struct {
	UserID      uuid.UUID
	OriginalURL string
	Slug        *string
	ExpiresAt   *time.Time
	ClickLimit  *int64
}

type CreateLinkResult struct {
	LinkID uuid.UUID
	Slug   string
}

// UpdateLinkInput leaves nil fields untouched. The Clear flags null out
// ExpiresAt and ClickLimit.
type UpdateLinkInput struct {
	OriginalURL     *string
	ExpiresAt       *time.Time
	ClearExpiresAt  bool
	ClickLimit      *int64
	ClearClickLimit bool
	Status          *db_models.LinkStatus
}

type LinkServiceInterface interface {
	Create(ctx context.Context, in CreateLinkInput, plan db_models.PlanType) (*CreateLinkResult, error)
	Update(ctx context.Context, linkID, userID uuid.UUID, in UpdateLinkInput) error
	Delete(ctx context.Context, linkID, userID uuid.UUID) error
	ToggleStatus(ctx context.Context, linkID, userID uuid.UUID) (db_models.LinkStatus, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]response_models.LinkResponse, error)
	Stats(ctx context.Context, userID uuid.UUID, plan db_models.PlanType) (*response_models.LinkStatsResponse, error)
	IncrementClickCount(ctx context.Context, linkID uuid.UUID, origin, userAgent string) error
	ShortURL(slug string) string
}

type LinkService struct {
	db       *gorm.DB
	linkRepo repositories.LinkRepository
	plans    PlanServiceInterface
	cache    LinkCache
	log      logger.Interface

	brandDomain string
	loc         *time.Location
	now         func() time.Time
	newSlug     func() string
}

func NewLinkService(
	db *gorm.DB,
	linkRepo repositories.LinkRepository,
	plans PlanServiceInterface,
	cache LinkCache,
	cfg *config.Config,
	log logger.Interface,
) LinkServiceInterface {
	return &LinkService{
		db:          db,
		linkRepo:    linkRepo,
		plans:       plans,
		cache:       cache,
		log:         log.Named("link_service"),
		brandDomain: strings.TrimRight(cfg.BrandDomain, "/"),
		loc:         cfg.Location(),
		now:         time.Now,
		newSlug:     utils.GenerateSlug,
	}
}

func (s *LinkService) ShortURL(slug string) string {
	return s.brandDomain + "/redirect/" + slug
}

func (s *LinkService) Create(ctx context.Context, in CreateLinkInput, plan db_models.PlanType) (*CreateLinkResult, error) {
	originalURL, err := validateOriginalURL(in.OriginalURL)
	if err != nil {
		return nil, err
	}
	if in.ClickLimit != nil && *in.ClickLimit <= 0 {
		return nil, utils.NewValidationError("clickLimit", "click limit must be a positive number")
	}
	now := s.now().UTC()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, utils.NewValidationError("expiresAt", "expiry must be in the future")
	}

	if err := s.checkQuota(ctx, in.UserID, plan, now); err != nil {
		return nil, err
	}

	var slug string
	if in.Slug != nil && *in.Slug != "" {
		slug = *in.Slug
		if err := utils.ValidateSlug(slug); err != nil {
			return nil, err
		}
		taken, err := s.linkRepo.SlugExists(ctx, slug)
		if err != nil {
			return nil, utils.DatabaseError("check slug", err)
		}
		if taken {
			return nil, utils.ErrSlugTaken
		}
	} else {
		slug, err = s.allocateSlug(ctx)
		if err != nil {
			return nil, err
		}
	}

	link := &db_models.Link{
		UserID:      in.UserID,
		OriginalURL: originalURL,
		Slug:        slug,
		ClickLimit:  in.ClickLimit,
		ClickCount:  0,
		Status:      db_models.LinkStatusActive,
	}
	if in.ExpiresAt != nil {
		exp := in.ExpiresAt.UTC()
		link.ExpiresAt = &exp
	}

	if err := s.linkRepo.Insert(ctx, link); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, utils.ErrSlugTaken
		}
		return nil, utils.DatabaseError("insert link", err)
	}

	s.log.Infow("link created", "link_id", link.ID, "user_id", in.UserID, "slug", slug)
	return &CreateLinkResult{LinkID: link.ID, Slug: slug}, nil
}

func (s *LinkService) checkQuota(ctx context.Context, userID uuid.UUID, plan db_models.PlanType, now time.Time) error {
	todayCount, err := s.linkRepo.CountCreatedSince(ctx, userID, utils.StartOfDay(now, s.loc))
	if err != nil {
		return utils.DatabaseError("count daily links", err)
	}
	if check := s.plans.CheckDailyLimit(plan, todayCount); !check.Allowed {
		return &utils.QuotaError{Kind: utils.ErrDailyQuotaExceeded, Reason: check.Reason}
	}

	activeCount, err := s.linkRepo.CountActive(ctx, userID)
	if err != nil {
		return utils.DatabaseError("count active links", err)
	}
	if check := s.plans.CheckActiveLinksLimit(plan, activeCount); !check.Allowed {
		return &utils.QuotaError{Kind: utils.ErrActiveQuotaExceeded, Reason: check.Reason}
	}
	return nil
}

func (s *LinkService) allocateSlug(ctx context.Context) (string, error) {
	for attempt := 0; attempt < utils.MaxSlugAttempts; attempt++ {
		candidate := s.newSlug()
		taken, err := s.linkRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", utils.DatabaseError("probe slug", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	s.log.Errorw("slug allocation exhausted", "attempts", utils.MaxSlugAttempts)
	return "", utils.ErrSlugAllocationFailed
}

func validateOriginalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", utils.NewValidationError("originalUrl", "URL is required")
	}
	if len(raw) > maxURLLength {
		return "", utils.NewValidationError("originalUrl", "URL must be at most 2048 characters")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", utils.NewValidationError("originalUrl", "URL must be an absolute http or https URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", utils.NewValidationError("originalUrl", "URL must use http or https")
	}
	return raw, nil
}

// loadOwned returns ErrLinkNotFoundOrForbidden for missing and foreign links
// alike so callers cannot probe other users' ids.
func loadOwned(ctx context.Context, repo repositories.LinkRepository, linkID, userID uuid.UUID) (*db_models.Link, error) {
	link, err := repo.FindById(ctx, linkID)
	if err != nil {
		return nil, utils.DatabaseError("find link", err)
	}
	if link == nil || link.UserID != userID {
		return nil, utils.ErrLinkNotFoundOrForbidden
	}
	return link, nil
}

func (s *LinkService) Update(ctx context.Context, linkID, userID uuid.UUID, in UpdateLinkInput) error {
	fields := map[string]interface{}{}

	if in.OriginalURL != nil {
		u, err := validateOriginalURL(*in.OriginalURL)
		if err != nil {
			return err
		}
		fields["original_url"] = u
	}
	switch {
	case in.ClearExpiresAt:
		fields["expires_at"] = nil
	case in.ExpiresAt != nil:
		if !in.ExpiresAt.After(s.now()) {
			return utils.NewValidationError("expiresAt", "expiry must be in the future")
		}
		fields["expires_at"] = in.ExpiresAt.UTC()
	}
	switch {
	case in.ClearClickLimit:
		fields["click_limit"] = nil
	case in.ClickLimit != nil:
		if *in.ClickLimit <= 0 {
			return utils.NewValidationError("clickLimit", "click limit must be a positive number")
		}
		fields["click_limit"] = *in.ClickLimit
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return utils.NewValidationError("status", "status must be ACTIVE, INACTIVE or EXPIRED")
		}
		fields["status"] = *in.Status
	}

	var slug string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.linkRepo.WithTx(tx)
		link, err := loadOwned(ctx, repo, linkID, userID)
		if err != nil {
			return err
		}
		slug = link.Slug
		if err := repo.UpdateFields(ctx, linkID, fields); err != nil {
			return utils.DatabaseError("update link", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, slug)
	return nil
}

func (s *LinkService) Delete(ctx context.Context, linkID, userID uuid.UUID) error {
	var slug string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.linkRepo.WithTx(tx)
		link, err := loadOwned(ctx, repo, linkID, userID)
		if err != nil {
			return err
		}
		slug = link.Slug
		if err := repo.DeleteEvents(ctx, linkID); err != nil {
			return utils.DatabaseError("delete link events", err)
		}
		if err := repo.Delete(ctx, linkID); err != nil {
			return utils.DatabaseError("delete link", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, slug)
	s.log.Infow("link deleted", "link_id", linkID, "user_id", userID)
	return nil
}

// ToggleStatus flips ACTIVE and INACTIVE. EXPIRED links are returned as-is.
func (s *LinkService) ToggleStatus(ctx context.Context, linkID, userID uuid.UUID) (db_models.LinkStatus, error) {
	var (
		slug string
		next db_models.LinkStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.linkRepo.WithTx(tx)
		link, err := loadOwned(ctx, repo, linkID, userID)
		if err != nil {
			return err
		}
		slug = link.Slug

		switch link.Status {
		case db_models.LinkStatusActive:
			next = db_models.LinkStatusInactive
		case db_models.LinkStatusInactive:
			next = db_models.LinkStatusActive
		default:
			next = link.Status
			return nil
		}
		if err := repo.UpdateFields(ctx, linkID, map[string]interface{}{"status": next}); err != nil {
			return utils.DatabaseError("toggle link", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(ctx, slug)
	return next, nil
}

func (s *LinkService) ListByOwner(ctx context.Context, userID uuid.UUID) ([]response_models.LinkResponse, error) {
	links, err := s.linkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.DatabaseError("list links", err)
	}

	out := make([]response_models.LinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, response_models.LinkResponse{
			ID:          l.ID,
			OriginalURL: l.OriginalURL,
			Slug:        l.Slug,
			ShortURL:    s.ShortURL(l.Slug),
			ExpiresAt:   l.ExpiresAt,
			ClickLimit:  l.ClickLimit,
			ClickCount:  l.ClickCount,
			Status:      string(l.Status),
			CreatedAt:   l.CreatedAt,
			UpdatedAt:   l.UpdatedAt,
		})
	}
	return out, nil
}

func (s *LinkService) Stats(ctx context.Context, userID uuid.UUID, plan db_models.PlanType) (*response_models.LinkStatsResponse, error) {
	daily, err := s.linkRepo.CountCreatedSince(ctx, userID, utils.StartOfDay(s.now(), s.loc))
	if err != nil {
		return nil, utils.DatabaseError("count daily links", err)
	}
	active, err := s.linkRepo.CountActive(ctx, userID)
	if err != nil {
		return nil, utils.DatabaseError("count active links", err)
	}

	limits := s.plans.GetPlanLimits(plan)
	if !plan.Valid() {
		plan = db_models.PlanFree
	}
	return &response_models.LinkStatsResponse{
		PlanType:         string(plan),
		DailyCount:       daily,
		ActiveCount:      active,
		DailyLimit:       limits.DailyLinkCreation,
		ActiveLimit:      limits.MaxActiveLinks,
		CanUseCustomSlug: s.plans.CanUseCustomSlug(plan),
		CanUseExpiry:     s.plans.CanUseExpiry(plan),
		CanUseClickLimit: s.plans.CanUseClickLimit(plan),
	}, nil
}

// IncrementClickCount bumps the counter and appends a CLICK event atomically.
func (s *LinkService) IncrementClickCount(ctx context.Context, linkID uuid.UUID, origin, userAgent string) error {
	event := &db_models.LinkEvent{
		LinkID:    linkID,
		EventType: db_models.LinkEventClick,
		Origin:    optionalString(origin),
		UserAgent: optionalString(userAgent),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.linkRepo.WithTx(tx)
		if err := repo.IncrementClickCount(ctx, linkID); err != nil {
			return err
		}
		return repo.InsertEvent(ctx, event)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("increment click count: %w", utils.ErrLinkNotFound)
		}
		return utils.DatabaseError("increment click count", err)
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
