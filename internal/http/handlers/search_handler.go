package handlers

import (
	"github.com/gofiber/fiber/v2"

	"exportimport/internal/services"
	"exportimport/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /search?search=
//
// The text reaches the store as a case-insensitive pattern unless the
// catalog runs in literal mode.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Search(c.Query("search"))
	if !ok {
		return invalid("search text is too long")
	}
	products, err := h.Catalog.Search(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(products)
}
