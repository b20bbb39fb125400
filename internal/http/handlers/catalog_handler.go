package handlers

import (
	"strconv"
	"strings"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		applog.Error(c, "catalog.home", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the catalog"})
	}
	return render(c, "home", fiber.Map{"Categories": cats})
}

// List is the catalog page: optional free-text query, category filter,
// on-sale flag and sort key, paginated.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	f := repos.ListFilter{Sort: validate.SortKey(c.Query("order_by"))}

	if rawQ := strings.TrimSpace(c.Query("q")); rawQ != "" {
		q, ok := validate.Q(rawQ)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return c.Status(fiber.StatusBadRequest).Render("catalog", fiber.Map{
				"Products":   []domain.Product{},
				"Categories": []domain.Category{},
				"Err":        "Enter a valid keyword (letters/numbers only)",
				"Q":          "",
				"OnSale":     false,
				"OrderBy":    "",
				"Page":       1,
				"PrevPage":   0,
				"NextPage":   2,
				"TotalPages": 0,
			})
		}
		f.Query = q
	}

	if slug := c.Params("category_slug"); slug != "" {
		s, ok := validate.Slug(slug)
		if !ok {
			return c.Status(404).Render("notfound", fiber.Map{"Message": "Category not found"})
		}
		f.CategorySlug = s
	}

	f.OnSale = c.Query("on_sale") == "on"

	page, _ := strconv.Atoi(c.Query("page", "1"))
	result, err := h.Catalog.Browse(f, page)
	if err != nil {
		applog.Error(c, "catalog.list", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the catalog"})
	}

	cats, err := h.Catalog.ListCategories()
	if err != nil {
		applog.Error(c, "catalog.categories", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the catalog"})
	}

	return render(c, "catalog", fiber.Map{
		"Products":     result.Products,
		"Categories":   cats,
		"CategorySlug": f.CategorySlug,
		"Q":            f.Query,
		"OnSale":       f.OnSale,
		"OrderBy":      f.Sort,
		"Page":         result.Page,
		"PrevPage":     result.Page - 1,
		"NextPage":     result.Page + 1,
		"TotalPages":   result.TotalPages,
	})
}
