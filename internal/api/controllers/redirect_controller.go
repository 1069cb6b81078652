package controllers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"linkhub/internal/services"
	"linkhub/pkg/logger"
	"linkhub/pkg/utils"
)

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{display:flex;min-height:100vh;margin:0;align-items:center;justify-content:center;font-family:system-ui,sans-serif;color:#111}
p{color:#666}
</style>
</head>
<body>
<main style="text-align:center">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</main>
</body>
</html>
`))

type pageData struct {
	Title   string
	Message string
}

type RedirectController struct {
	redirectService services.RedirectServiceInterface
	log             logger.Interface
}

func NewRedirectController(redirectService services.RedirectServiceInterface, log logger.Interface) *RedirectController {
	return &RedirectController{
		redirectService: redirectService,
		log:             log.Named("redirect_controller"),
	}
}

// Redirect godoc
// @Summary Follow a short link
// @Description Redirects to the original URL, or renders a status page when the link cannot be followed
// @Tags Redirect
// @Produce html
// @Param slug path string true "Short link slug"
// @Success 302 {string} string "Redirect to the original URL"
// @Failure 403 {string} string "Link inactive"
// @Failure 404 {string} string "Link not found"
// @Failure 410 {string} string "Link expired or click limit reached"
// @Router /redirect/{slug} [get]
func (r *RedirectController) Redirect(c *gin.Context) {
	origin := c.GetHeader("Referer")
	if origin == "" {
		origin = c.GetHeader("Origin")
	}

	target, err := r.redirectService.Redirect(c.Request.Context(), c.Param("slug"), services.ClickMeta{
		Origin:    origin,
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		r.renderFailure(c, err)
		return
	}

	c.Redirect(http.StatusFound, target)
}

func (r *RedirectController) renderFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrLinkNotFound):
		r.render(c, http.StatusNotFound, pageData{"링크를 찾을 수 없습니다", "요청하신 링크가 존재하지 않습니다."})
	case errors.Is(err, utils.ErrLinkExpired):
		r.render(c, http.StatusGone, pageData{"링크가 만료되었습니다", "이 링크는 만료되어 더 이상 사용할 수 없습니다."})
	case errors.Is(err, utils.ErrLinkLimitExceeded):
		r.render(c, http.StatusGone, pageData{"클릭 제한을 초과했습니다", "이 링크는 최대 클릭 수에 도달했습니다."})
	case errors.Is(err, utils.ErrLinkInactive):
		r.render(c, http.StatusForbidden, pageData{"링크가 비활성화되었습니다", "이 링크는 현재 사용할 수 없습니다."})
	default:
		r.log.Errorw("redirect failed", "slug", c.Param("slug"), "error", err, "trace_id", c.GetString("trace_id"))
		r.render(c, http.StatusInternalServerError, pageData{"일시적인 오류가 발생했습니다", "잠시 후 다시 시도해 주세요."})
	}
}

func (r *RedirectController) render(c *gin.Context, code int, data pageData) {
	var buf bytes.Buffer
	if err := statusPage.Execute(&buf, data); err != nil {
		r.log.Errorw("render status page", "error", err)
		c.String(code, data.Title)
		return
	}
	c.Data(code, "text/html; charset=utf-8", buf.Bytes())
}
