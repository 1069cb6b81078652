package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"linkhub/internal/models/db_models"
	"linkhub/internal/models/response_models"
	"linkhub/internal/testutil"
)

func newLinkRouter(s *stack, userID uuid.UUID) *gin.Engine {
	ctrl := NewLinkController(s.links, s.subscriptions)
	r := gin.New()
	g := r.Group("/api/links", asUser(userID))
	g.POST("", ctrl.CreateLink)
	g.GET("", ctrl.ListLinks)
	g.GET("/stats", ctrl.GetStats)
	g.PATCH("/:id", ctrl.UpdateLink)
	g.DELETE("/:id", ctrl.DeleteLink)
	g.POST("/:id/toggle", ctrl.ToggleLinkStatus)
	return r
}

func createLink(t *testing.T, r *gin.Engine, body interface{}) response_models.CreateLinkResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/links", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out response_models.CreateLinkResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &out))
	return out
}

func TestLinkController_CreateAndList(t *testing.T) {
	s := newStack(t)
	user := testutil.CreateUser(t, s.db, db_models.PlanFree)
	r := newLinkRouter(s, user.ID)

	created := createLink(t, r, map[string]interface{}{"originalUrl": "https://example.com/a"})
	assert.Len(t, created.Slug, 8)
	assert.Equal(t, "https://lnk.test/redirect/"+created.Slug, created.ShortURL)

	w := doJSON(t, r, http.MethodGet, "/api/links", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var links []response_models.LinkResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &links))
	require.Len(t, links, 1)
	assert.Equal(t, created.LinkID, links[0].ID)
	assert.Equal(t, "ACTIVE", links[0].Status)
}

func TestLinkController_CreateValidation(t *testing.T) {
	s := newStack(t)
	user := testutil.CreateUser(t, s.db, db_models.PlanFree)
	r := newLinkRouter(s, user.ID)

	cases := []struct {
		name string
		body interface{}
	}{
		{"missing url", map[string]interface{}{}},
		{"bad slug", map[string]interface{}{"originalUrl": "https://example.com", "slug": "no spaces"}},
		{"short slug", map[string]interface{}{"originalUrl": "https://example.com", "slug": "ab"}},
		{"zero click limit", map[string]interface{}{"originalUrl": "https://example.com", "clickLimit": 0}},
		{"not a url", map[string]interface{}{"originalUrl": "ftp://example.com"}},
		{"malformed json", `{"originalUrl":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/links", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestLinkController_CustomSlugConflict(t *testing.T) {
	s := newStack(t)
	user := testutil.CreateUser(t, s.db, db_models.PlanFree)
	r := newLinkRouter(s, user.ID)

	createLink(t, r, map[string]interface{}{"originalUrl": "https://example.com", "slug": "my-link"})

	w := doJSON(t, r, http.MethodPost, "/api/links", map[string]interface{}{"originalUrl": "https://example.com", "slug": "my-link"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLinkController_FreeDailyQuota(t *testing.T) {
	s := newStack(t)
	user := testutil.CreateUser(t, s.db, db_models.PlanFree)
	r := newLinkRouter(s, user.ID)

	for i := 0; i < 5; i++ {
		createLink(t, r, map[string]interface{}{"originalUrl": "https://example.com"})
	}

	w := doJSON(t, r, http.MethodPost, "/api/links", map[string]interface{}{"originalUrl": "https://example.com"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, decode(t, w).Message, "Daily link creation limit")
}

func TestLinkController_ProUserIsUnlimited(t *testing.T) {
	s := newStack(t)
	user := testutil.CreateUser(t, s.db, db_models.PlanPro)
	testutil.CreateSubscription(t, s.db, user.ID, db_models.SubStatusActive, time.Now().UTC().AddDate(0, 0, 10), true)
	r := newLinkRouter(s, user.ID)

	for i := 0; i < 6; i++ {
		createLink(t, r, map[string]interface{}{"originalUrl": "https://example.com"})
	}

	w := doJSON(t, r, http.MethodGet, "/api/links/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats response_models.LinkStatsResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.Equal(t, "PRO", stats.PlanType)
	assert.Equal(t, int64(6), stats.DailyCount)
	assert.Equal(t, int64(-1), stats.DailyLimit)
	assert.True(t, stats.CanUseCustomSlug)
}

func TestLinkController_UpdateClearsWithNull(t *testing.T) {
	s := newStack(t)
	user := testutil.CreateUser(t, s.db, db_models.PlanFree)
	r := newLinkRouter(s, user.ID)

	created := createLink(t, r, map[string]interface{}{"originalUrl": "https://example.com", "clickLimit": 3})

	w := doJSON(t, r, http.MethodPatch, "/api/links/"+created.LinkID.String(), `{"clickLimit": null, "originalUrl": "https://example.org"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var link db_models.Link
	require.NoError(t, s.db.First(&link, "id = ?", created.LinkID).Error)
	assert.Nil(t, link.ClickLimit)
	assert.Equal(t, "https://example.org", link.OriginalURL)

	w = doJSON(t, r, http.MethodPatch, "/api/links/"+created.LinkID.String(), `{"originalUrl": null}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/links/"+created.LinkID.String(), `{"status": "PAUSED"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkController_OwnershipAndToggle(t *testing.T) {
	s := newStack(t)
	owner := testutil.CreateUser(t, s.db, db_models.PlanFree)
	other := testutil.CreateUser(t, s.db, db_models.PlanFree)
	ownerRouter := newLinkRouter(s, owner.ID)
	otherRouter := newLinkRouter(s, other.ID)

	created := createLink(t, ownerRouter, map[string]interface{}{"originalUrl": "https://example.com"})
	path := "/api/links/" + created.LinkID.String()

	assert.Equal(t, http.StatusNotFound, doJSON(t, otherRouter, http.MethodPost, path+"/toggle", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, otherRouter, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, ownerRouter, http.MethodDelete, "/api/links/not-a-uuid", nil).Code)

	w := doJSON(t, ownerRouter, http.MethodPost, path+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var toggled response_models.ToggleStatusResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &toggled))
	assert.Equal(t, "INACTIVE", toggled.Status)

	assert.Equal(t, http.StatusOK, doJSON(t, ownerRouter, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, ownerRouter, http.MethodDelete, path, nil).Code)
}

func TestLinkController_RequiresUser(t *testing.T) {
	s := newStack(t)
	ctrl := NewLinkController(s.links, s.subscriptions)
	r := gin.New()
	r.GET("/api/links", ctrl.ListLinks)

	w := doJSON(t, r, http.MethodGet, "/api/links", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
