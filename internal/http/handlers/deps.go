package handlers

import (
	"exportimport/internal/config"
	"exportimport/internal/docstore"
	"exportimport/internal/repos"
	"exportimport/internal/services"
)

type Deps struct {
	HealthHandler    *HealthHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	ImportHandler    *ImportHandler
	SearchHandler    *SearchHandler
}

// NewDeps builds every handler around one shared store client.
func NewDeps(store docstore.Store, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(store)
	invRepo := repos.NewInventoryRepo(store)
	impRepo := repos.NewImportedRepo(store)

	catalogSvc := services.NewCatalogService(prodRepo, cfg.StoreTimeout, cfg.SearchLiteral)
	invSvc := services.NewInventoryService(invRepo, cfg.StoreTimeout)
	impSvc := services.NewImportService(impRepo, cfg.StoreTimeout)

	return &Deps{
		HealthHandler:    &HealthHandler{Store: store},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		ImportHandler:    &ImportHandler{Imports: impSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
	}
}
