package services

import (
	"context"
	"sync"
	"time"

	"linkhub/internal/models/db_models"
	"linkhub/internal/repositories"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

const clickAccountingTimeout = 5 * time.Second

type ClickMeta struct {
	Origin    string
	UserAgent string
}

type RedirectServiceInterface interface {
	Resolve(ctx context.Context, slug string) (*db_models.Link, error)
	Evaluate(link *db_models.Link, now time.Time) error
	Redirect(ctx context.Context, slug string, meta ClickMeta) (string, error)
	Drain(ctx context.Context) error
}

type RedirectService struct {
	linkRepo repositories.LinkRepository
	links    LinkServiceInterface
	cache    LinkCache
	log      logger.Interface
	now      func() time.Time

	inflight sync.WaitGroup

	// accounted is signalled after each detached click write; tests only.
	accounted func()
}

func NewRedirectService(
	linkRepo repositories.LinkRepository,
	links LinkServiceInterface,
	cache LinkCache,
	log logger.Interface,
) RedirectServiceInterface {
	return &RedirectService{
		linkRepo: linkRepo,
		links:    links,
		cache:    cache,
		log:      log.Named("redirect_service"),
		now:      time.Now,
	}
}

// Resolve treats malformed slugs as unknown.
func (s *RedirectService) Resolve(ctx context.Context, slug string) (*db_models.Link, error) {
	if !utils.IsValidSlug(slug) {
		return nil, utils.ErrLinkNotFound
	}
	if link, ok := s.cache.Get(ctx, slug); ok {
		return link, nil
	}

	link, err := s.linkRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, utils.DatabaseError("find link by slug", err)
	}
	if link == nil {
		return nil, utils.ErrLinkNotFound
	}
	s.cache.Set(ctx, link)
	return link, nil
}

// Evaluate checks expiry, then the click limit, then the status.
func (s *RedirectService) Evaluate(link *db_models.Link, now time.Time) error {
	if link.ExpiresAt != nil && !now.Before(*link.ExpiresAt) {
		return utils.ErrLinkExpired
	}
	if link.ClickLimit != nil && link.ClickCount >= *link.ClickLimit {
		return utils.ErrLinkLimitExceeded
	}
	if link.Status != db_models.LinkStatusActive {
		return utils.ErrLinkInactive
	}
	return nil
}

// Redirect returns the destination URL. Click accounting runs detached from
// the request and its failures are only logged. Writes still running at
// shutdown finish only if Drain is called before the database is closed.
func (s *RedirectService) Redirect(ctx context.Context, slug string, meta ClickMeta) (string, error) {
	link, err := s.Resolve(ctx, slug)
	if err != nil {
		return "", err
	}
	if err := s.Evaluate(link, s.now()); err != nil {
		return "", err
	}

	linkID := link.ID
	s.inflight.Add(1)
	logger.SafeGo(s.log, "click_accounting", func() {
		defer s.inflight.Done()
		if s.accounted != nil {
			defer s.accounted()
		}
		actx, cancel := context.WithTimeout(context.Background(), clickAccountingTimeout)
		defer cancel()
		if err := s.links.IncrementClickCount(actx, linkID, meta.Origin, meta.UserAgent); err != nil {
			s.log.Errorw("click accounting failed", "link_id", linkID, "slug", slug, "error", err)
		}
	})

	return link.OriginalURL, nil
}

// Drain waits for detached click writes until they finish or ctx ends.
func (s *RedirectService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
