package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	applog "exportimport/internal/log"
)

// IdempotencyHeader carries the client's retry key on mutating requests.
const IdempotencyHeader = "X-Idempotency-Key"

type AppOptions struct {
	// IdempotencyStorage backs replayed responses. Nil means in-memory.
	IdempotencyStorage fiber.Storage
	IdempotencyTTL     time.Duration
}

// NewApp builds the Fiber app with middleware and every route mounted.
func NewApp(d *Deps, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "exportimport",
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(applog.Access())
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New())

	idem := idempotency.Config{
		KeyHeader: IdempotencyHeader,
		KeyHeaderValidate: func(k string) error {
			if _, err := uuid.Parse(k); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Idempotency key must be a UUID")
			}
			return nil
		},
		Lifetime: opts.IdempotencyTTL,
	}
	if idem.Lifetime <= 0 {
		idem.Lifetime = 30 * time.Minute
	}
	if opts.IdempotencyStorage != nil {
		idem.Storage = opts.IdempotencyStorage
	}
	app.Use(idempotency.New(idem))

	Mount(app, d)
	return app
}

// Mount registers the routes on app.
func Mount(app *fiber.App, d *Deps) {
	app.Get("/", d.HealthHandler.Root)
	app.Get("/healthz", d.HealthHandler.Ready)

	// Products
	app.Get("/products", d.ProductHandler.List)
	app.Get("/products/:id", d.ProductHandler.Detail)
	app.Get("/recent-products", d.ProductHandler.Recent)
	app.Get("/my-exports", d.ProductHandler.Mine)
	app.Post("/products", d.ProductHandler.Create)
	app.Patch("/products/:id", d.ProductHandler.Update)
	app.Put("/product/:id", d.ProductHandler.Replace)
	app.Delete("/products/:id", d.ProductHandler.Delete)

	// Quantity adjustments
	app.Patch("/products/:id/decrement", d.InventoryHandler.Decrement)
	app.Patch("/products/:id/increment-imported", d.InventoryHandler.IncrementImported)

	// Imports
	app.Post("/imported", d.ImportHandler.Create)
	app.Get("/my-imported", d.ImportHandler.Mine)
	app.Delete("/imported/:id", d.ImportHandler.Delete)

	app.Get("/search", d.SearchHandler.Search)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route not found")
	})
}
