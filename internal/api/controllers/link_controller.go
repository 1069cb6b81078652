package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"linkhub/internal/models/db_models"
	"linkhub/internal/models/request_models"
	"linkhub/internal/models/response_models"
	"linkhub/internal/services"
	"linkhub/pkg/utils"
)

type LinkController struct {
	linkService         services.LinkServiceInterface
	subscriptionService services.SubscriptionServiceInterface
}

func NewLinkController(
	linkService services.LinkServiceInterface,
	subscriptionService services.SubscriptionServiceInterface,
) *LinkController {
	return &LinkController{
		linkService:         linkService,
		subscriptionService: subscriptionService,
	}
}

// CreateLink godoc
// @Summary Create a short link
// @Description Creates a short link for the authenticated user within the limits of their effective plan
// @Tags Links
// @Accept json
// @Produce json
// @Param request body request_models.CreateLinkRequest true "Link payload"
// @Success 201 {object} response_models.CreateLinkResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/links [post]
func (l *LinkController) CreateLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req request_models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.BindingErrorMessage(err))
		return
	}

	plan, err := l.subscriptionService.ResolveEffectivePlan(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	in := services.CreateLinkInput{
		UserID:      userID,
		OriginalURL: req.OriginalURL,
		ExpiresAt:   req.ExpiresAt,
		ClickLimit:  req.ClickLimit,
	}
	if req.Slug != "" {
		in.Slug = &req.Slug
	}

	res, err := l.linkService.Create(c.Request.Context(), in, plan)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondStatus(c, http.StatusCreated, response_models.CreateLinkResponse{
		LinkID:   res.LinkID,
		Slug:     res.Slug,
		ShortURL: l.linkService.ShortURL(res.Slug),
	}, "Link created successfully")
}

// ListLinks godoc
// @Summary List my links
// @Description Returns the caller's links, newest first
// @Tags Links
// @Produce json
// @Success 200 {array} response_models.LinkResponse
// @Security BearerAuth
// @Router /api/links [get]
func (l *LinkController) ListLinks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	links, err := l.linkService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, links, "Links fetched successfully")
}

// GetStats godoc
// @Summary Link usage against plan limits
// @Tags Links
// @Produce json
// @Success 200 {object} response_models.LinkStatsResponse
// @Security BearerAuth
// @Router /api/links/stats [get]
func (l *LinkController) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	plan, err := l.subscriptionService.ResolveEffectivePlan(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	stats, err := l.linkService.Stats(c.Request.Context(), userID, plan)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, stats, "Stats fetched successfully")
}

// UpdateLink godoc
// @Summary Update a link
// @Description Partially updates a link. A JSON null clears expiresAt or clickLimit.
// @Tags Links
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Param request body request_models.UpdateLinkRequest true "Fields to change"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/links/{id} [patch]
func (l *LinkController) UpdateLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	linkID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request_models.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.BindingErrorMessage(err))
		return
	}

	in, err := toUpdateLinkInput(req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if err := l.linkService.Update(c.Request.Context(), linkID, userID, in); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Link updated successfully")
}

func toUpdateLinkInput(req request_models.UpdateLinkRequest) (services.UpdateLinkInput, error) {
	var in services.UpdateLinkInput

	if req.OriginalURL.Set {
		if req.OriginalURL.IsNull() {
			return in, utils.NewValidationError("originalUrl", "originalUrl cannot be null")
		}
		in.OriginalURL = req.OriginalURL.Value
	}
	if req.ExpiresAt.IsNull() {
		in.ClearExpiresAt = true
	} else {
		in.ExpiresAt = req.ExpiresAt.Value
	}
	if req.ClickLimit.IsNull() {
		in.ClearClickLimit = true
	} else {
		in.ClickLimit = req.ClickLimit.Value
	}
	if req.Status.Set {
		if req.Status.IsNull() {
			return in, utils.NewValidationError("status", "status cannot be null")
		}
		status := db_models.LinkStatus(*req.Status.Value)
		in.Status = &status
	}
	return in, nil
}

// DeleteLink godoc
// @Summary Delete a link
// @Description Deletes the link and its click events
// @Tags Links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/links/{id} [delete]
func (l *LinkController) DeleteLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	linkID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := l.linkService.Delete(c.Request.Context(), linkID, userID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Link deleted successfully")
}

// ToggleLinkStatus godoc
// @Summary Toggle a link between ACTIVE and INACTIVE
// @Tags Links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} response_models.ToggleStatusResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/links/{id}/toggle [post]
func (l *LinkController) ToggleLinkStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	linkID, ok := pathID(c, "id")
	if !ok {
		return
	}

	status, err := l.linkService.ToggleStatus(c.Request.Context(), linkID, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.ToggleStatusResponse{Status: string(status)}, "Link status updated")
}
