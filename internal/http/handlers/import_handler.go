package handlers

import (
	"github.com/gofiber/fiber/v2"

	"exportimport/internal/domain"
	applog "exportimport/internal/log"
	"exportimport/internal/services"
)

type ImportHandler struct {
	Imports *services.ImportService
}

// POST /imported
func (h *ImportHandler) Create(c *fiber.Ctx) error {
	var rec domain.ImportedRecord
	if err := decodeBody(c, &rec); err != nil {
		return err
	}
	id, err := h.Imports.Create(c.UserContext(), rec)
	if err != nil {
		return err
	}
	applog.Audit(c, "imported.create", map[string]any{"imported": id})
	return c.Status(fiber.StatusCreated).JSON(insertResponse{Success: true, InsertedID: id})
}

// GET /my-imported?email=
func (h *ImportHandler) Mine(c *fiber.Ctx) error {
	email, err := ownerQuery(c)
	if err != nil {
		return err
	}
	recs, err := h.Imports.ListByImporter(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(recs)
}

// DELETE /imported/:id
func (h *ImportHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	n, err := h.Imports.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	applog.Audit(c, "imported.delete", map[string]any{"imported": id, "deleted": n})
	return c.JSON(deleteResponse{Success: true, DeletedCount: n})
}
