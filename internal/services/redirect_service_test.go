package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"linkhub/internal/models/db_models"
	"linkhub/internal/testutil"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

type redirectFixture struct {
	*linkFixture
	redirect *RedirectService
	clicks   chan struct{}
}

func newRedirectFixture(t *testing.T) *redirectFixture {
	f := newLinkFixture(t)
	r := NewRedirectService(f.repo, f.svc, f.cache, logger.Discard()).(*RedirectService)
	clicks := make(chan struct{}, 16)
	r.accounted = func() { clicks <- struct{}{} }
	return &redirectFixture{linkFixture: f, redirect: r, clicks: clicks}
}

func (f *redirectFixture) waitClick(t *testing.T) {
	t.Helper()
	select {
	case <-f.clicks:
	case <-time.After(3 * time.Second):
		t.Fatal("click accounting did not run")
	}
}

func TestRedirectService_Evaluate(t *testing.T) {
	svc := &RedirectService{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		link db_models.Link
		want error
	}{
		{"active", db_models.Link{Status: db_models.LinkStatusActive}, nil},
		{"expiry in future", db_models.Link{Status: db_models.LinkStatusActive, ExpiresAt: ptr(now.Add(time.Second))}, nil},
		{"expiry equals now", db_models.Link{Status: db_models.LinkStatusActive, ExpiresAt: ptr(now)}, utils.ErrLinkExpired},
		{"expired", db_models.Link{Status: db_models.LinkStatusActive, ExpiresAt: ptr(now.Add(-time.Hour))}, utils.ErrLinkExpired},
		{"under limit", db_models.Link{Status: db_models.LinkStatusActive, ClickLimit: ptr(int64(3)), ClickCount: 2}, nil},
		{"at limit", db_models.Link{Status: db_models.LinkStatusActive, ClickLimit: ptr(int64(3)), ClickCount: 3}, utils.ErrLinkLimitExceeded},
		{"inactive", db_models.Link{Status: db_models.LinkStatusInactive}, utils.ErrLinkInactive},
		{"expired wins over limit and status", db_models.Link{
			Status:     db_models.LinkStatusInactive,
			ExpiresAt:  ptr(now),
			ClickLimit: ptr(int64(1)),
			ClickCount: 1,
		}, utils.ErrLinkExpired},
		{"limit wins over status", db_models.Link{
			Status:     db_models.LinkStatusInactive,
			ClickLimit: ptr(int64(1)),
			ClickCount: 1,
		}, utils.ErrLinkLimitExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Evaluate(&tc.link, now)
			if tc.want == nil {
				assert.NoError(t, err)
				assert.True(t, tc.link.Resolvable(now))
				return
			}
			assert.ErrorIs(t, err, tc.want)
			assert.False(t, tc.link.Resolvable(now))
		})
	}
}

func TestRedirectService_Resolve(t *testing.T) {
	f := newRedirectFixture(t)
	ctx := context.Background()

	_, err := f.redirect.Resolve(ctx, "missing1")
	assert.ErrorIs(t, err, utils.ErrLinkNotFound)

	_, err = f.redirect.Resolve(ctx, "bad slug!")
	assert.ErrorIs(t, err, utils.ErrLinkNotFound)
}

func TestRedirectService_RedirectCountsClicks(t *testing.T) {
	f := newRedirectFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)

	res, err := f.svc.Create(ctx, CreateLinkInput{UserID: user.ID, OriginalURL: "https://example.com/x"}, db_models.PlanPro)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		target, err := f.redirect.Redirect(ctx, res.Slug, ClickMeta{Origin: "https://ref.example", UserAgent: "agent"})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/x", target)
		f.waitClick(t)
	}

	link, err := f.repo.FindById(ctx, res.LinkID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), link.ClickCount)
}

func TestRedirectService_ClickLimitBoundary(t *testing.T) {
	f := newRedirectFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)

	res, err := f.svc.Create(ctx, CreateLinkInput{
		UserID:      user.ID,
		OriginalURL: "https://example.com",
		ClickLimit:  ptr(int64(2)),
	}, db_models.PlanPro)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := f.redirect.Redirect(ctx, res.Slug, ClickMeta{})
		require.NoError(t, err)
		f.waitClick(t)
	}

	_, err = f.redirect.Redirect(ctx, res.Slug, ClickMeta{})
	assert.ErrorIs(t, err, utils.ErrLinkLimitExceeded)
}

func TestRedirectService_CancelledRequestStillCounts(t *testing.T) {
	f := newRedirectFixture(t)
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)

	res, err := f.svc.Create(context.Background(), CreateLinkInput{UserID: user.ID, OriginalURL: "https://example.com"}, db_models.PlanPro)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = f.redirect.Redirect(ctx, res.Slug, ClickMeta{})
	require.NoError(t, err)
	cancel()
	f.waitClick(t)

	link, err := f.repo.FindById(context.Background(), res.LinkID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ClickCount)
}

func TestRedirectService_CacheInvalidatedOnToggle(t *testing.T) {
	f := newRedirectFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)

	res, err := f.svc.Create(ctx, CreateLinkInput{UserID: user.ID, OriginalURL: "https://example.com"}, db_models.PlanPro)
	require.NoError(t, err)

	_, err = f.redirect.Redirect(ctx, res.Slug, ClickMeta{})
	require.NoError(t, err)
	f.waitClick(t)
	_, cached := f.cache.Get(ctx, res.Slug)
	require.True(t, cached)

	_, err = f.svc.ToggleStatus(ctx, res.LinkID, user.ID)
	require.NoError(t, err)
	_, cached = f.cache.Get(ctx, res.Slug)
	assert.False(t, cached)

	_, err = f.redirect.Redirect(ctx, res.Slug, ClickMeta{})
	assert.ErrorIs(t, err, utils.ErrLinkInactive)
}

func TestRedirectService_AccountingFailureDoesNotBreakRedirect(t *testing.T) {
	f := newRedirectFixture(t)
	ctx := context.Background()

	link := &db_models.Link{
		BaseModel:   db_models.BaseModel{ID: uuid.New()},
		Slug:        "ghostlnk",
		OriginalURL: "https://example.com/ghost",
		Status:      db_models.LinkStatusActive,
	}
	f.cache.Set(ctx, link)

	target, err := f.redirect.Redirect(ctx, "ghostlnk", ClickMeta{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/ghost", target)
	f.waitClick(t)
}

type blockingClicks struct {
	LinkServiceInterface
	started chan struct{}
	release chan struct{}
}

func (b *blockingClicks) IncrementClickCount(ctx context.Context, linkID uuid.UUID, origin, userAgent string) error {
	b.started <- struct{}{}
	<-b.release
	return b.LinkServiceInterface.IncrementClickCount(ctx, linkID, origin, userAgent)
}

func TestRedirectService_DrainWaitsForClickWrites(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, db_models.PlanPro)
	res, err := f.svc.Create(ctx, CreateLinkInput{UserID: user.ID, OriginalURL: "https://example.com"}, db_models.PlanPro)
	require.NoError(t, err)

	clicks := &blockingClicks{LinkServiceInterface: f.svc, started: make(chan struct{}, 1), release: make(chan struct{})}
	r := NewRedirectService(f.repo, clicks, f.cache, logger.Discard())

	_, err = r.Redirect(ctx, res.Slug, ClickMeta{})
	require.NoError(t, err)
	<-clicks.started

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Drain(short), context.DeadlineExceeded)

	close(clicks.release)
	require.NoError(t, r.Drain(ctx))

	link, err := f.repo.FindById(ctx, res.LinkID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ClickCount)
}
