package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ashfaq-akash/LittleLemonApi/internal/access"
	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/pricing"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
	"github.com/ashfaq-akash/LittleLemonApi/internal/validation"
)

const (
	msgRequired = "This field is required."
	msgSlug     = "Enter a valid “slug” consisting of letters, numbers, underscores or hyphens."
)

// Service manages categories and menu items
type Service struct {
	store          store.Store
	logger         *logger.Logger
	defaultPerPage int
	maxPerPage     int
}

// NewService creates a catalog service. perPage bounds apply to menu item listings.
func NewService(st store.Store, log *logger.Logger, defaultPerPage, maxPerPage int) *Service {
	return &Service{
		store:          st,
		logger:         log,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
}

// CategoryInput carries category fields. Nil fields were not sent.
type CategoryInput struct {
	Title *string `json:"title" validate:"omitnil,max=255"`
	Slug  *string `json:"slug" validate:"omitnil,max=255"`
}

func (s *Service) ListCategories(ctx context.Context, p access.Principal) ([]models.Category, error) {
	if err := access.Authorize(p, access.ResourceCategory, access.ActionList, access.Target{}); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, p access.Principal, id int64) (*models.Category, error) {
	c, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ResourceCategory, access.ActionRead, access.Target{}); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) findCategory(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Category")
	}
	return c, err
}

func (s *Service) CreateCategory(ctx context.Context, p access.Principal, in CategoryInput) (*models.Category, error) {
	if err := access.Authorize(p, access.ResourceCategory, access.ActionCreate, access.Target{}); err != nil {
		return nil, err
	}

	c := &models.Category{}
	if err := applyCategory(c, in, false); err != nil {
		return nil, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// UpdateCategory replaces (partial=false) or patches the category
func (s *Service) UpdateCategory(ctx context.Context, p access.Principal, id int64, in CategoryInput, partial bool) (*models.Category, error) {
	c, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ResourceCategory, access.ActionUpdate, access.Target{}); err != nil {
		return nil, err
	}

	if !partial {
		c.Slug = ""
	}
	if err := applyCategory(c, in, partial); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// applyCategory validates in and copies it onto c. A blank slug is derived from the title.
func applyCategory(c *models.Category, in CategoryInput, partial bool) error {
	if err := validation.Struct(in); err != nil {
		return err
	}

	v := apperr.NewValidation()
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			v.Add("title", "This field may not be blank.")
		}
		c.Title = strings.TrimSpace(*in.Title)
	} else if !partial {
		v.Add("title", msgRequired)
	}
	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		if slug != "" && !ValidSlug(slug) {
			v.Add("slug", msgSlug)
		}
		c.Slug = slug
	}
	if !v.Empty() {
		return v
	}

	if c.Slug == "" {
		c.Slug = Slugify(c.Title)
		if c.Slug == "" {
			return apperr.Field("title", "Title must contain at least one letter or digit to derive a slug.")
		}
	}
	return nil
}

func (s *Service) DeleteCategory(ctx context.Context, p access.Principal, id int64) error {
	if _, err := s.findCategory(ctx, id); err != nil {
		return err
	}
	if err := access.Authorize(p, access.ResourceCategory, access.ActionDelete, access.Target{}); err != nil {
		return err
	}

	err := s.store.DeleteCategory(ctx, id)
	switch {
	case errors.Is(err, store.ErrForeignKeyViolation):
		return apperr.Protected("Cannot delete this category because menu items still reference it.")
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Category")
	case err != nil:
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// MenuItemInput carries menu item fields. Nil fields were not sent.
type MenuItemInput struct {
	Title      *string          `json:"title" validate:"omitnil,max=255"`
	Price      *decimal.Decimal `json:"price"`
	Featured   *bool            `json:"featured"`
	CategoryID *int64           `json:"category_id"`
}

// ParseMenuItemQuery turns listing query parameters into a filter
func (s *Service) ParseMenuItemQuery(q url.Values) (models.MenuItemFilter, error) {
	f := models.MenuItemFilter{
		CategoryTitle: q.Get("category"),
		Search:        q.Get("search"),
		Page:          1,
		PerPage:       s.defaultPerPage,
	}
	v := apperr.NewValidation()

	if raw := q.Get("to_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			v.Add("to_price", "A valid number is required.")
		} else {
			f.MaxPrice = &d
		}
	}

	if raw := q.Get("ordering"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			key := models.SortKey{}
			if strings.HasPrefix(part, "-") {
				key.Desc = true
				part = part[1:]
			}
			key.Field = models.MenuItemField(part)
			switch key.Field {
			case models.MenuItemFieldID, models.MenuItemFieldTitle, models.MenuItemFieldPrice,
				models.MenuItemFieldFeatured, models.MenuItemFieldCategory:
				f.Ordering = append(f.Ordering, key)
			default:
				v.Add("ordering", fmt.Sprintf("Cannot order by %q. Choices are id, title, price, featured, category.", part))
			}
		}
	}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			v.Add("page", "Page number must be a positive integer.")
		} else {
			f.Page = n
		}
	}

	if raw := q.Get("perpage"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			v.Add("perpage", "Page size must be a positive integer.")
		} else {
			f.PerPage = min(n, s.maxPerPage)
		}
	}

	return f, v.OrNil()
}

func (s *Service) ListMenuItems(ctx context.Context, p access.Principal, f models.MenuItemFilter) ([]models.MenuItem, error) {
	if err := access.Authorize(p, access.ResourceMenuItem, access.ActionList, access.Target{}); err != nil {
		return nil, err
	}
	return s.store.ListMenuItems(ctx, f)
}

func (s *Service) GetMenuItem(ctx context.Context, p access.Principal, id int64) (*models.MenuItem, error) {
	m, err := s.findMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ResourceMenuItem, access.ActionRead, access.Target{}); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) findMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	m, err := s.store.GetMenuItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Menu item")
	}
	return m, err
}

func (s *Service) CreateMenuItem(ctx context.Context, p access.Principal, in MenuItemInput) (*models.MenuItem, error) {
	if err := access.Authorize(p, access.ResourceMenuItem, access.ActionCreate, access.Target{}); err != nil {
		return nil, err
	}

	m := &models.MenuItem{}
	if err := s.applyMenuItem(ctx, m, in, false); err != nil {
		return nil, err
	}
	if err := s.store.CreateMenuItem(ctx, m); err != nil {
		return nil, s.menuItemWriteErr(err, m)
	}
	return m, nil
}

// UpdateMenuItem replaces (partial=false) or patches the menu item
func (s *Service) UpdateMenuItem(ctx context.Context, p access.Principal, id int64, in MenuItemInput, partial bool) (*models.MenuItem, error) {
	m, err := s.findMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ResourceMenuItem, access.ActionUpdate, access.Target{}); err != nil {
		return nil, err
	}

	if err := s.applyMenuItem(ctx, m, in, partial); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMenuItem(ctx, m); err != nil {
		return nil, s.menuItemWriteErr(err, m)
	}
	return m, nil
}

func (s *Service) applyMenuItem(ctx context.Context, m *models.MenuItem, in MenuItemInput, partial bool) error {
	if err := validation.Struct(in); err != nil {
		return err
	}

	v := apperr.NewValidation()
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			v.Add("title", "This field may not be blank.")
		}
		m.Title = title
	} else if !partial {
		v.Add("title", msgRequired)
	}

	if in.Price != nil {
		if msg := pricing.ValidateMenuPrice(*in.Price); msg != "" {
			v.Add("price", msg)
		}
		m.Price = pricing.Round(*in.Price)
	} else if !partial {
		v.Add("price", msgRequired)
	}

	if in.Featured != nil {
		m.Featured = *in.Featured
	} else if !partial {
		m.Featured = false
	}

	if in.CategoryID != nil {
		if _, err := s.store.GetCategory(ctx, *in.CategoryID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			v.Add("category_id", invalidPK(*in.CategoryID))
		}
		m.CategoryID = *in.CategoryID
	} else if !partial {
		v.Add("category_id", msgRequired)
	}

	return v.OrNil()
}

// menuItemWriteErr covers a category deleted between validation and write
func (s *Service) menuItemWriteErr(err error, m *models.MenuItem) error {
	switch {
	case errors.Is(err, store.ErrForeignKeyViolation):
		return apperr.Field("category_id", invalidPK(m.CategoryID))
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Menu item")
	}
	return fmt.Errorf("save menu item: %w", err)
}

func invalidPK(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// DeleteMenuItem removes the item together with cart lines and order items that reference it
func (s *Service) DeleteMenuItem(ctx context.Context, p access.Principal, id int64) error {
	if _, err := s.findMenuItem(ctx, id); err != nil {
		return err
	}
	if err := access.Authorize(p, access.ResourceMenuItem, access.ActionDelete, access.Target{}); err != nil {
		return err
	}

	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Menu item")
		}
		return fmt.Errorf("delete menu item: %w", err)
	}
	s.logger.Info("menu_item_deleted", "Menu item deleted", "", map[string]interface{}{
		"menu_item_id": id,
		"deleted_by":   p.Username,
	})
	return nil
}
