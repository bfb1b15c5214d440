package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"exportimport/internal/docstore"
	"exportimport/internal/domain"
	"exportimport/internal/repos"
)

// RecentLimit is how many products /recent-products returns.
const RecentLimit = 6

type CatalogService struct {
	Prods   *repos.ProductRepo
	Timeout time.Duration
	// Literal escapes search input instead of using it as a pattern.
	Literal bool
	Now     func() time.Time
}

func NewCatalogService(prods *repos.ProductRepo, timeout time.Duration, literal bool) *CatalogService {
	return &CatalogService{Prods: prods, Timeout: timeout, Literal: literal, Now: time.Now}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	out, err := s.Prods.List(ctx)
	if err != nil {
		return nil, storeErr("products", err)
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (domain.Product, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return p, storeErr("product", err)
	}
	return p, nil
}

func (s *CatalogService) Recent(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	out, err := s.Prods.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, storeErr("products", err)
	}
	return out, nil
}

func (s *CatalogService) ListByOwner(ctx context.Context, email string) ([]domain.Product, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	out, err := s.Prods.ListByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("products", err)
	}
	return out, nil
}

// Search passes q to the store as a case-insensitive pattern. Callers control
// the expression unless Literal is set.
func (s *CatalogService) Search(ctx context.Context, q string) ([]domain.Product, error) {
	if s.Literal {
		q = regexp.QuoteMeta(q)
	} else if _, err := regexp.Compile(q); err != nil {
		return nil, fmt.Errorf("%w: search is not a valid pattern", domain.ErrInvalidArgument)
	}
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	out, err := s.Prods.Search(ctx, q)
	if err != nil {
		return nil, storeErr("products", err)
	}
	return out, nil
}

// Create stores p under a store-assigned id, stamping created_at when absent.
func (s *CatalogService) Create(ctx context.Context, p domain.Product) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	p.ID = ""
	if p.CreatedAt == nil {
		p.CreatedAt = domain.Ptr(docstore.FormatTime(s.Now()))
	}
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	id, err := s.Prods.Create(ctx, p)
	if err != nil {
		return "", storeErr("product", err)
	}
	return id, nil
}

// UpdateNamePrice sets only name and price; other fields are left untouched.
func (s *CatalogService) UpdateNamePrice(ctx context.Context, id string, name *string, price *float64) (docstore.UpdateResult, error) {
	set := map[string]any{}
	if name != nil {
		set["name"] = *name
	}
	if price != nil {
		set["price"] = *price
	}
	if len(set) == 0 {
		return docstore.UpdateResult{}, fmt.Errorf("%w: name or price required", domain.ErrInvalidArgument)
	}
	return s.update(ctx, id, set)
}

// Merge sets every field present in p, keeping fields p does not mention.
func (s *CatalogService) Merge(ctx context.Context, id string, p domain.Product) (docstore.UpdateResult, error) {
	if err := p.Validate(); err != nil {
		return docstore.UpdateResult{}, err
	}
	set := p.Fields()
	if len(set) == 0 {
		return docstore.UpdateResult{}, fmt.Errorf("%w: empty update", domain.ErrInvalidArgument)
	}
	return s.update(ctx, id, set)
}

func (s *CatalogService) update(ctx context.Context, id string, set map[string]any) (docstore.UpdateResult, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	res, err := s.Prods.Update(ctx, id, set)
	if err != nil {
		return res, storeErr("product", err)
	}
	if res.Matched == 0 {
		return res, fmt.Errorf("%w: product", domain.ErrNotFound)
	}
	return res, nil
}

// Delete reports how many products were removed; zero is not an error.
func (s *CatalogService) Delete(ctx context.Context, id string) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	n, err := s.Prods.Delete(ctx, id)
	if err != nil {
		return 0, storeErr("product", err)
	}
	return n, nil
}
