package handlers

import (
	"github.com/gofiber/fiber/v2"

	"exportimport/internal/domain"
	applog "exportimport/internal/log"
	"exportimport/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.Catalog.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ps)
}

// GET /products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	p, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// GET /recent-products
func (h *ProductHandler) Recent(c *fiber.Ctx) error {
	ps, err := h.Catalog.Recent(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ps)
}

// GET /my-exports?email=
func (h *ProductHandler) Mine(c *fiber.Ctx) error {
	email, err := ownerQuery(c)
	if err != nil {
		return err
	}
	ps, err := h.Catalog.ListByOwner(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(ps)
}

// POST /products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var p domain.Product
	if err := decodeBody(c, &p); err != nil {
		return err
	}
	id, err := h.Catalog.Create(c.UserContext(), p)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.create", map[string]any{"product": id})
	return c.Status(fiber.StatusCreated).JSON(insertResponse{Success: true, InsertedID: id})
}

// PATCH /products/:id updates name and price only.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in struct {
		Name  *string  `json:"name"`
		Price *float64 `json:"price"`
	}
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	res, err := h.Catalog.UpdateNamePrice(c.UserContext(), id, in.Name, in.Price)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.update", map[string]any{"product": id})
	return c.JSON(updateResponse{Success: true, MatchedCount: res.Matched, ModifiedCount: res.Modified})
}

// PUT /product/:id merges every submitted field into the stored product.
func (h *ProductHandler) Replace(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var p domain.Product
	if err := decodeBody(c, &p); err != nil {
		return err
	}
	res, err := h.Catalog.Merge(c.UserContext(), id, p)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.replace", map[string]any{"product": id})
	return c.JSON(updateResponse{Success: true, MatchedCount: res.Matched, ModifiedCount: res.Modified})
}

// DELETE /products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	n, err := h.Catalog.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.delete", map[string]any{"product": id, "deleted": n})
	return c.JSON(deleteResponse{Success: true, DeletedCount: n})
}
