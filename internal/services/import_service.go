package services

import (
	"context"
	"time"

	"exportimport/internal/domain"
	"exportimport/internal/repos"
)

type ImportService struct {
	Imports *repos.ImportedRepo
	Timeout time.Duration
}

func NewImportService(imports *repos.ImportedRepo, timeout time.Duration) *ImportService {
	return &ImportService{Imports: imports, Timeout: timeout}
}

// Create drops any caller-supplied id ("_id" or "id"); the store assigns a fresh one.
func (s *ImportService) Create(ctx context.Context, rec domain.ImportedRecord) (string, error) {
	rec.ID = ""
	delete(rec.Extra, "id")
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	id, err := s.Imports.Create(ctx, rec)
	if err != nil {
		return "", storeErr("imported record", err)
	}
	return id, nil
}

func (s *ImportService) ListByImporter(ctx context.Context, email string) ([]domain.ImportedRecord, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	out, err := s.Imports.ListByImporter(ctx, email)
	if err != nil {
		return nil, storeErr("imported records", err)
	}
	return out, nil
}

func (s *ImportService) Delete(ctx context.Context, id string) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	n, err := s.Imports.Delete(ctx, id)
	if err != nil {
		return 0, storeErr("imported record", err)
	}
	return n, nil
}
