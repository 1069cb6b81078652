package controllers

import (
	"github.com/gin-gonic/gin"
	"linkhub/internal/services"
	"linkhub/pkg/utils"
	"net/http"
)

type CronController struct {
	renewalService services.RenewalServiceInterface
}

func NewCronController(renewalService services.RenewalServiceInterface) *CronController {
	return &CronController{renewalService: renewalService}
}

// RunBilling godoc
// @Summary Run the renewal batch
// @Description Charges every subscription due by the end of today. Requires the cron secret as a bearer token.
// @Tags Cron
// @Produce json
// @Success 200 {object} response_models.RenewalReport
// @Failure 401 {object} utils.APIResponse
// @Router /api/cron/billing [get]
// @Router /api/cron/billing [post]
func (cr *CronController) RunBilling(c *gin.Context) {
	report, err := cr.renewalService.RunRenewals(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
