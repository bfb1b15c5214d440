package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "exportimport/internal/log"
	"exportimport/internal/services"
	"exportimport/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// PATCH /products/:id/decrement {"decrement": n}
func (h *InventoryHandler) Decrement(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in struct {
		Decrement *float64 `json:"decrement"`
	}
	if err := decodeBody(c, &in); err != nil {
		return invalid("invalid decrement value")
	}
	if in.Decrement == nil {
		return invalid("invalid decrement value")
	}
	by, ok := validate.Count(*in.Decrement)
	if !ok || by <= 0 {
		return invalid("invalid decrement value")
	}

	if err := h.Inv.Decrement(c.UserContext(), id, by); err != nil {
		return err
	}
	applog.Audit(c, "product.decrement", map[string]any{"product": id, "by": by})
	return c.JSON(okResponse{Success: true})
}

// PATCH /products/:id/increment-imported {"increment": n}, n defaults to 1.
func (h *InventoryHandler) IncrementImported(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in struct {
		Increment *float64 `json:"increment"`
	}
	if len(c.Body()) > 0 {
		if err := decodeBody(c, &in); err != nil {
			return invalid("invalid increment value")
		}
	}
	var by int64
	if in.Increment != nil {
		n, ok := validate.Count(*in.Increment)
		if !ok {
			return invalid("invalid increment value")
		}
		by = n
	}

	res, err := h.Inv.IncrementImported(c.UserContext(), id, by)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.increment_imported", map[string]any{"product": id, "by": by})
	return c.JSON(updateResponse{Success: true, MatchedCount: res.Matched, ModifiedCount: res.Modified})
}
