package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exportimport/internal/docstore"
	"exportimport/internal/domain"
	"exportimport/internal/repos"
)

type InventoryService struct {
	Inv     *repos.InventoryRepo
	Timeout time.Duration
}

func NewInventoryService(inv *repos.InventoryRepo, timeout time.Duration) *InventoryService {
	return &InventoryService{Inv: inv, Timeout: timeout}
}

// Decrement takes "by" units off available_quantity in one conditional update,
// so concurrent callers can never drive the counter below zero.
func (s *InventoryService) Decrement(ctx context.Context, productID string, by int64) error {
	if by <= 0 {
		return fmt.Errorf("%w: invalid decrement value", domain.ErrInvalidArgument)
	}
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	err := s.Inv.Decrement(ctx, productID, by)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repos.ErrConditionFailed) {
		return storeErr("product", err)
	}
	// Nothing was modified; tell a missing product apart from short stock.
	ok, xerr := s.Inv.Exists(ctx, productID)
	if xerr != nil {
		return storeErr("product", xerr)
	}
	if !ok {
		return fmt.Errorf("%w: product", domain.ErrNotFound)
	}
	return domain.ErrInsufficientQuantity
}

// IncrementImported adds "by" (1 when zero) to imported_quantity. Negative
// values are applied as given.
func (s *InventoryService) IncrementImported(ctx context.Context, productID string, by int64) (docstore.UpdateResult, error) {
	if by == 0 {
		by = 1
	}
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	res, err := s.Inv.IncrementImported(ctx, productID, by)
	if err != nil {
		return res, storeErr("product", err)
	}
	if res.Matched == 0 {
		return res, fmt.Errorf("%w: product", domain.ErrNotFound)
	}
	return res, nil
}
