package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"exportimport/internal/docstore"
	applog "exportimport/internal/log"
)

type HealthHandler struct {
	Store docstore.Store
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.SendString("it's running well")
}

// Ready reports whether the store answers a ping.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		applog.Error(c, "health.store.fail", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
	}
	return c.JSON(fiber.Map{"ok": true})
}
