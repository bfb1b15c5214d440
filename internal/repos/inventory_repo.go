package repos

import (
	"context"
	"errors"

	"exportimport/internal/docstore"
)

// ErrConditionFailed means no product matched the id plus quantity condition.
var ErrConditionFailed = errors.New("no product matched the quantity condition")

// InventoryRepo owns the counter fields of the products collection.
type InventoryRepo struct{ coll docstore.Collection }

func NewInventoryRepo(s docstore.Store) *InventoryRepo {
	return &InventoryRepo{coll: s.Collection(ProductsCollection)}
}

// Decrement atomically subtracts "by" from available_quantity if enough stock exists.
// Returns ErrConditionFailed if there isn't sufficient stock or the product is gone.
func (r *InventoryRepo) Decrement(ctx context.Context, productID string, by int64) error {
	res, err := r.coll.UpdateOne(ctx,
		docstore.ByID(productID).And(docstore.Gte("available_quantity", by)),
		docstore.Update{Inc: map[string]int64{"available_quantity": -by}},
	)
	if err != nil {
		return err
	}
	if res.Matched == 0 {
		return ErrConditionFailed
	}
	return nil
}

// IncrementImported adds "by" to imported_quantity; an absent field counts as zero.
func (r *InventoryRepo) IncrementImported(ctx context.Context, productID string, by int64) (docstore.UpdateResult, error) {
	return r.coll.UpdateOne(ctx,
		docstore.ByID(productID),
		docstore.Update{Inc: map[string]int64{"imported_quantity": by}},
	)
}

func (r *InventoryRepo) Exists(ctx context.Context, productID string) (bool, error) {
	_, err := r.coll.FindOne(ctx, docstore.ByID(productID))
	if errors.Is(err, docstore.ErrNoDocument) {
		return false, nil
	}
	return err == nil, err
}
