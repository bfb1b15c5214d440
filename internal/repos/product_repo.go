package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"exportimport/internal/docstore"
	"exportimport/internal/domain"
)

const (
	ProductsCollection = "products"
	ImportedCollection = "imported"
)

// ErrCorruptDocument means a stored document could not be read at all.
var ErrCorruptDocument = errors.New("stored document is not readable")

// storedDecoder is implemented by records that tolerate foreign field types.
type storedDecoder interface {
	DecodeStored(data []byte) error
}

type ProductRepo struct{ coll docstore.Collection }

func NewProductRepo(s docstore.Store) *ProductRepo {
	return &ProductRepo{coll: s.Collection(ProductsCollection)}
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	docs, err := r.coll.Find(ctx, nil, docstore.FindOptions{})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Product](docs)
}

// Get returns docstore.ErrNoDocument when the id resolves to nothing.
func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	doc, err := r.coll.FindOne(ctx, docstore.ByID(id))
	if err != nil {
		return p, err
	}
	err = decode(doc, &p)
	return p, err
}

// Recent lists products newest first by created_at.
func (r *ProductRepo) Recent(ctx context.Context, limit int64) ([]domain.Product, error) {
	docs, err := r.coll.Find(ctx, nil, docstore.FindOptions{SortField: "created_at", SortDesc: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Product](docs)
}

func (r *ProductRepo) ListByEmail(ctx context.Context, email string) ([]domain.Product, error) {
	docs, err := r.coll.Find(ctx, docstore.Filter{docstore.Eq("email", email)}, docstore.FindOptions{})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Product](docs)
}

// Search matches product_name against pattern, ignoring case.
func (r *ProductRepo) Search(ctx context.Context, pattern string) ([]domain.Product, error) {
	docs, err := r.coll.Find(ctx, docstore.Filter{docstore.Matches("product_name", pattern)}, docstore.FindOptions{})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Product](docs)
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (string, error) {
	return r.coll.Insert(ctx, p.Fields())
}

func (r *ProductRepo) Update(ctx context.Context, id string, set map[string]any) (docstore.UpdateResult, error) {
	return r.coll.UpdateOne(ctx, docstore.ByID(id), docstore.Update{Set: set})
}

func (r *ProductRepo) Delete(ctx context.Context, id string) (int64, error) {
	return r.coll.DeleteOne(ctx, docstore.ByID(id))
}

func (r *ProductRepo) Empty(ctx context.Context) (bool, error) {
	docs, err := r.coll.Find(ctx, nil, docstore.FindOptions{Limit: 1})
	return len(docs) == 0, err
}

func decode(doc docstore.Document, dst storedDecoder) error {
	b, err := json.Marshal(doc)
	if err == nil {
		err = dst.DecodeStored(b)
	}
	if err != nil {
		// Keep the cause out of the chain: its kind must not leak into the
		// client-facing error taxonomy.
		return fmt.Errorf("%w: %s: %v", ErrCorruptDocument, doc.ID(), err)
	}
	return nil
}

func decodeAll[T any, PT interface {
	*T
	storedDecoder
}](docs []docstore.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := decode(d, PT(&v)); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
