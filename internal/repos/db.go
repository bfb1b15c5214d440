package repos

import (
	"context"
	"fmt"
	"log"
	"time"

	"exportimport/internal/config"
	"exportimport/internal/docstore"
	"exportimport/internal/domain"
)

// OpenStore connects the configured backend.
func OpenStore(ctx context.Context, cfg config.Config) (docstore.Store, error) {
	var (
		s   docstore.Store
		err error
	)
	switch cfg.StoreDriver {
	case config.DriverMongo:
		s, err = docstore.OpenMongo(ctx, cfg.MongoURI, cfg.DBName)
		if err == nil {
			log.Println("[store] pinged your deployment, connected to MongoDB")
		}
	case config.DriverSQLite:
		s, err = docstore.OpenSQLite(cfg.SQLiteDSN)
		if err == nil {
			log.Printf("[store] sqlite document store at %s", cfg.SQLiteDSN)
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	if cfg.SeedDemo {
		if err := SeedIfEmpty(ctx, s); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

// SeedIfEmpty inserts demo products when the products collection is empty.
func SeedIfEmpty(ctx context.Context, s docstore.Store) error {
	products := NewProductRepo(s)
	empty, err := products.Empty(ctx)
	if err != nil || !empty {
		return err
	}

	log.Println("[seed] inserting demo products")

	now := time.Now()
	demo := []struct {
		name, owner string
		price       float64
		qty         int64
		age         time.Duration
	}{
		{"Jute Shopping Bag", "alice@exportimport.test", 4.5, 120, 72 * time.Hour},
		{"Smartphone Case", "alice@exportimport.test", 9.99, 40, 48 * time.Hour},
		{"Cotton T-Shirt", "bob@exportimport.test", 6.25, 300, 24 * time.Hour},
		{"Ceramic Tea Set", "bob@exportimport.test", 35, 8, time.Hour},
	}
	for _, d := range demo {
		p := domain.Product{
			Name:              domain.Ptr(d.name),
			ProductName:       domain.Ptr(d.name),
			Price:             domain.Ptr(d.price),
			Email:             domain.Ptr(d.owner),
			CreatedAt:         domain.Ptr(docstore.FormatTime(now.Add(-d.age))),
			AvailableQuantity: domain.Ptr(d.qty),
			ImportedQuantity:  domain.Ptr[int64](0),
		}
		if _, err := products.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
