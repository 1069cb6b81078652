package controllers

import (
	"github.com/gin-gonic/gin"
	"linkhub/internal/services"
	"linkhub/pkg/utils"
)

type AccountController struct {
	accountService services.AccountServiceInterface
}

func NewAccountController(accountService services.AccountServiceInterface) *AccountController {
	return &AccountController{
		accountService: accountService,
	}
}

// GetMe godoc
// @Summary Current account
// @Description Returns the caller's account with the stored and effective plan
// @Tags Accounts
// @Produce json
// @Success 200 {object} response_models.AccountResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/accounts/me [get]
func (a *AccountController) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := a.accountService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, profile, "Account fetched successfully")
}
