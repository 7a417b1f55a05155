package order

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/validation"
	"github.com/ashfaq-akash/LittleLemonApi/internal/web"
)

// Handler handles HTTP requests for the order lifecycle
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/orders", h.list)
	rg.POST("/orders", h.create)
	rg.GET("/orders/:id", h.get)
	rg.PUT("/orders/:id", h.update)
	rg.PATCH("/orders/:id", h.update)
	rg.DELETE("/orders/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		web.Fail(c, h.logger, "order_list_failed", err)
		return
	}
	orders, err := h.service.List(c.Request.Context(), p)
	if err != nil {
		web.Fail(c, h.logger, "order_list_failed", err)
		return
	}

	out := make([]*web.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, web.NewOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) create(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		web.Fail(c, h.logger, "order_create_failed", err)
		return
	}

	h.logger.Debug("order_received", "Received order creation request", web.RequestID(c), map[string]interface{}{
		"user_id": p.UserID,
	})

	o, err := h.service.Create(c.Request.Context(), p)
	if err != nil {
		web.Fail(c, h.logger, "order_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, web.NewOrderResponse(o))
}

func (h *Handler) get(c *gin.Context) {
	o, ok := h.withOrder(c, "order_get_failed", func(c *gin.Context, id int64) (*models.Order, error) {
		p, err := web.MustPrincipal(c)
		if err != nil {
			return nil, err
		}
		return h.service.Get(c.Request.Context(), p, id)
	})
	if ok {
		c.JSON(http.StatusOK, web.NewOrderResponse(o))
	}
}

func (h *Handler) update(c *gin.Context) {
	o, ok := h.withOrder(c, "order_update_failed", func(c *gin.Context, id int64) (*models.Order, error) {
		p, err := web.MustPrincipal(c)
		if err != nil {
			return nil, err
		}
		patch := Patch{}
		if err := validation.BindJSON(c, &patch); err != nil {
			return nil, err
		}
		return h.service.Update(c.Request.Context(), p, id, patch, c.Request.Method == http.MethodPatch)
	})
	if ok {
		c.JSON(http.StatusOK, web.NewOrderResponse(o))
	}
}

func (h *Handler) delete(c *gin.Context) {
	_, ok := h.withOrder(c, "order_delete_failed", func(c *gin.Context, id int64) (*models.Order, error) {
		p, err := web.MustPrincipal(c)
		if err != nil {
			return nil, err
		}
		return nil, h.service.Delete(c.Request.Context(), p, id)
	})
	if ok {
		c.Status(http.StatusNoContent)
	}
}

// withOrder resolves the :id parameter and runs fn, writing the error response on failure
func (h *Handler) withOrder(c *gin.Context, action string, fn func(*gin.Context, int64) (*models.Order, error)) (*models.Order, bool) {
	id, err := web.IDParam(c, "id", "Order")
	if err == nil {
		var o *models.Order
		if o, err = fn(c, id); err == nil {
			return o, true
		}
	}
	web.Fail(c, h.logger, action, err)
	return nil, false
}
