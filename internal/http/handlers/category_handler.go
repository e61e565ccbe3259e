package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, "home", fiber.Map{"Title": "Categories", "Categories": cats},
		fiber.Map{"categories": cats})
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "category"})
		return services.ErrNotFound
	}
	// An unknown category is just an empty listing.
	cat, err := h.Catalog.GetCategory(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		cat, err = domain.Category{ID: id}, nil
	}
	if err != nil {
		return err
	}
	products, err := h.Catalog.ListProductsByCategory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, "category", fiber.Map{"Title": cat.Name, "Category": cat, "Products": products},
		fiber.Map{"category": cat, "products": products})
}
