package services

import (
	"context"
	"encoding/json"
	"time"

	"linkhub/internal/models/db_models"
	"linkhub/pkg/logger"
	"linkhub/pkg/memcache"
)

// LinkCache fronts slug lookups for the redirect path. Links carrying a click
// limit are never cached because their click count decides resolvability.
type LinkCache interface {
	Get(ctx context.Context, slug string) (*db_models.Link, bool)
	Set(ctx context.Context, link *db_models.Link)
	Invalidate(ctx context.Context, slug string)
}

type linkCache struct {
	store memcache.Store
	ttl   time.Duration
	log   logger.Interface
}

func NewLinkCache(store memcache.Store, ttl time.Duration, log logger.Interface) LinkCache {
	return &linkCache{store: store, ttl: ttl, log: log.Named("link_cache")}
}

func slugKey(slug string) string { return "slug:" + slug }

func (c *linkCache) Get(ctx context.Context, slug string) (*db_models.Link, bool) {
	raw, ok, err := c.store.Get(ctx, slugKey(slug))
	if err != nil {
		c.log.Warnw("cache get failed", "slug", slug, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var link db_models.Link
	if err := json.Unmarshal(raw, &link); err != nil {
		c.log.Warnw("cache entry corrupt", "slug", slug, "error", err)
		c.Invalidate(ctx, slug)
		return nil, false
	}
	return &link, true
}

func (c *linkCache) Set(ctx context.Context, link *db_models.Link) {
	if link == nil || link.ClickLimit != nil {
		return
	}
	raw, err := json.Marshal(link)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, slugKey(link.Slug), raw, c.ttl); err != nil {
		c.log.Warnw("cache set failed", "slug", link.Slug, "error", err)
	}
}

func (c *linkCache) Invalidate(ctx context.Context, slug string) {
	if err := c.store.Delete(ctx, slugKey(slug)); err != nil {
		c.log.Warnw("cache invalidate failed", "slug", slug, "error", err)
	}
}
