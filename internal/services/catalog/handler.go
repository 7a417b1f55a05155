package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/validation"
	"github.com/ashfaq-akash/LittleLemonApi/internal/web"
)

// Handler serves the category and menu item endpoints
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

// Register mounts the catalog routes on rg. rg must require authentication.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/category", h.listCategories)
	rg.POST("/category", h.createCategory)
	rg.GET("/category/:id", h.getCategory)
	rg.PUT("/category/:id", h.updateCategory)
	rg.PATCH("/category/:id", h.updateCategory)
	rg.DELETE("/category/:id", h.deleteCategory)

	rg.GET("/menu-items", h.listMenuItems)
	rg.POST("/menu-items", h.createMenuItem)
	rg.GET("/menu-items/:id", h.getMenuItem)
	rg.PUT("/menu-items/:id", h.updateMenuItem)
	rg.PATCH("/menu-items/:id", h.updateMenuItem)
	rg.DELETE("/menu-items/:id", h.deleteMenuItem)
}

func (h *Handler) fail(c *gin.Context, action string, err error) {
	web.Fail(c, h.logger, action, err)
}

func renderCategories(categories []models.Category) []*web.CategoryResponse {
	out := make([]*web.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, web.NewCategoryResponse(&categories[i]))
	}
	return out
}

func (h *Handler) listCategories(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "category_list_failed", err)
		return
	}
	categories, err := h.service.ListCategories(c.Request.Context(), p)
	if err != nil {
		h.fail(c, "category_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, renderCategories(categories))
}

func (h *Handler) createCategory(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "category_create_failed", err)
		return
	}
	var in CategoryInput
	if err := validation.BindJSON(c, &in); err != nil {
		h.fail(c, "category_create_failed", err)
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), p, in)
	if err != nil {
		h.fail(c, "category_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, web.NewCategoryResponse(cat))
}

func (h *Handler) getCategory(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "category_get_failed", err)
		return
	}
	id, err := web.IDParam(c, "id", "Category")
	if err != nil {
		h.fail(c, "category_get_failed", err)
		return
	}
	cat, err := h.service.GetCategory(c.Request.Context(), p, id)
	if err != nil {
		h.fail(c, "category_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, web.NewCategoryResponse(cat))
}

func (h *Handler) updateCategory(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "category_update_failed", err)
		return
	}
	id, err := web.IDParam(c, "id", "Category")
	if err != nil {
		h.fail(c, "category_update_failed", err)
		return
	}
	var in CategoryInput
	if err := validation.BindJSON(c, &in); err != nil {
		h.fail(c, "category_update_failed", err)
		return
	}
	partial := c.Request.Method == http.MethodPatch
	cat, err := h.service.UpdateCategory(c.Request.Context(), p, id, in, partial)
	if err != nil {
		h.fail(c, "category_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, web.NewCategoryResponse(cat))
}

func (h *Handler) deleteCategory(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "category_delete_failed", err)
		return
	}
	id, err := web.IDParam(c, "id", "Category")
	if err != nil {
		h.fail(c, "category_delete_failed", err)
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), p, id); err != nil {
		h.fail(c, "category_delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// menuItemRequest accepts the price as a JSON number or a numeric string
type menuItemRequest struct {
	Title      *string      `json:"title"`
	Price      *json.Number `json:"price"`
	Featured   *bool        `json:"featured"`
	CategoryID *int64       `json:"category_id"`
}

func (r menuItemRequest) input() (MenuItemInput, error) {
	v := apperr.NewValidation()
	in := MenuItemInput{
		Title:      r.Title,
		Price:      validation.Decimal(v, "price", r.Price),
		Featured:   r.Featured,
		CategoryID: r.CategoryID,
	}
	return in, v.OrNil()
}

func (h *Handler) bindMenuItem(c *gin.Context) (MenuItemInput, error) {
	var req menuItemRequest
	if err := validation.BindJSON(c, &req); err != nil {
		return MenuItemInput{}, err
	}
	return req.input()
}

func renderMenuItems(items []models.MenuItem) []*web.MenuItemResponse {
	out := make([]*web.MenuItemResponse, 0, len(items))
	for i := range items {
		out = append(out, web.NewMenuItemResponse(&items[i]))
	}
	return out
}

func (h *Handler) listMenuItems(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "menu_item_list_failed", err)
		return
	}
	filter, err := h.service.ParseMenuItemQuery(c.Request.URL.Query())
	if err != nil {
		h.fail(c, "menu_item_list_failed", err)
		return
	}
	items, err := h.service.ListMenuItems(c.Request.Context(), p, filter)
	if err != nil {
		h.fail(c, "menu_item_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, renderMenuItems(items))
}

func (h *Handler) createMenuItem(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "menu_item_create_failed", err)
		return
	}
	in, err := h.bindMenuItem(c)
	if err != nil {
		h.fail(c, "menu_item_create_failed", err)
		return
	}
	item, err := h.service.CreateMenuItem(c.Request.Context(), p, in)
	if err != nil {
		h.fail(c, "menu_item_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, web.NewMenuItemResponse(item))
}

func (h *Handler) getMenuItem(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "menu_item_get_failed", err)
		return
	}
	id, err := web.IDParam(c, "id", "Menu item")
	if err != nil {
		h.fail(c, "menu_item_get_failed", err)
		return
	}
	item, err := h.service.GetMenuItem(c.Request.Context(), p, id)
	if err != nil {
		h.fail(c, "menu_item_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, web.NewMenuItemResponse(item))
}

func (h *Handler) updateMenuItem(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "menu_item_update_failed", err)
		return
	}
	id, err := web.IDParam(c, "id", "Menu item")
	if err != nil {
		h.fail(c, "menu_item_update_failed", err)
		return
	}
	in, err := h.bindMenuItem(c)
	if err != nil {
		h.fail(c, "menu_item_update_failed", err)
		return
	}
	partial := c.Request.Method == http.MethodPatch
	item, err := h.service.UpdateMenuItem(c.Request.Context(), p, id, in, partial)
	if err != nil {
		h.fail(c, "menu_item_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, web.NewMenuItemResponse(item))
}

func (h *Handler) deleteMenuItem(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		h.fail(c, "menu_item_delete_failed", err)
		return
	}
	id, err := web.IDParam(c, "id", "Menu item")
	if err != nil {
		h.fail(c, "menu_item_delete_failed", err)
		return
	}
	if err := h.service.DeleteMenuItem(c.Request.Context(), p, id); err != nil {
		h.fail(c, "menu_item_delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
