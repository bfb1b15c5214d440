package repos

import (
	"context"

	"exportimport/internal/docstore"
	"exportimport/internal/domain"
)

type ImportedRepo struct{ coll docstore.Collection }

func NewImportedRepo(s docstore.Store) *ImportedRepo {
	return &ImportedRepo{coll: s.Collection(ImportedCollection)}
}

// Create stores r under a fresh id; r.ID is never sent to the store.
func (r *ImportedRepo) Create(ctx context.Context, rec domain.ImportedRecord) (string, error) {
	return r.coll.Insert(ctx, rec.Fields())
}

func (r *ImportedRepo) ListByImporter(ctx context.Context, email string) ([]domain.ImportedRecord, error) {
	docs, err := r.coll.Find(ctx, docstore.Filter{docstore.Eq("imported_by", email)}, docstore.FindOptions{})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ImportedRecord](docs)
}

func (r *ImportedRepo) Get(ctx context.Context, id string) (domain.ImportedRecord, error) {
	var rec domain.ImportedRecord
	doc, err := r.coll.FindOne(ctx, docstore.ByID(id))
	if err != nil {
		return rec, err
	}
	err = decode(doc, &rec)
	return rec, err
}

func (r *ImportedRepo) Delete(ctx context.Context, id string) (int64, error) {
	return r.coll.DeleteOne(ctx, docstore.ByID(id))
}
