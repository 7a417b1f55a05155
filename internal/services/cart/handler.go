package cart

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/validation"
	"github.com/ashfaq-akash/LittleLemonApi/internal/web"
)

// Handler serves /cart/menu-items
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/cart/menu-items", h.list)
	rg.POST("/cart/menu-items", h.add)
	rg.DELETE("/cart/menu-items", h.clear)
}

func (h *Handler) list(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		web.Fail(c, h.logger, "cart_list_failed", err)
		return
	}
	lines, err := h.service.ListMine(c.Request.Context(), p)
	if err != nil {
		web.Fail(c, h.logger, "cart_list_failed", err)
		return
	}

	owner := &web.UserRef{ID: p.UserID, Username: p.Username, Email: p.Email}
	out := make([]*web.CartLineResponse, 0, len(lines))
	for i := range lines {
		out = append(out, web.NewCartLineResponse(&lines[i], owner))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) add(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		web.Fail(c, h.logger, "cart_add_failed", err)
		return
	}
	var in LineInput
	if err := validation.BindJSON(c, &in); err != nil {
		web.Fail(c, h.logger, "cart_add_failed", err)
		return
	}

	line, err := h.service.AddLine(c.Request.Context(), p, in)
	if err != nil {
		web.Fail(c, h.logger, "cart_add_failed", err)
		return
	}
	owner := &web.UserRef{ID: p.UserID, Username: p.Username, Email: p.Email}
	c.JSON(http.StatusCreated, web.NewCartLineResponse(line, owner))
}

func (h *Handler) clear(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		web.Fail(c, h.logger, "cart_clear_failed", err)
		return
	}
	if err := h.service.ClearMine(c.Request.Context(), p); err != nil {
		web.Fail(c, h.logger, "cart_clear_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
