package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exportimport/internal/docstore"
	"exportimport/internal/domain"
)

// storeErr maps docstore errors onto the domain taxonomy. Messages of the
// client-facing kinds are safe to show; StoreFailure keeps the cause for logs.
func storeErr(what string, err error) error {
	switch {
	case errors.Is(err, docstore.ErrInvalidID):
		return fmt.Errorf("%w: malformed %s id", domain.ErrInvalidArgument, what)
	case errors.Is(err, docstore.ErrBadField):
		return fmt.Errorf("%w: unsupported field name", domain.ErrInvalidArgument)
	case errors.Is(err, docstore.ErrNoDocument):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrStoreFailure, what, err)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
