package domain

import "errors"

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInsufficientQuantity = errors.New("not enough quantity available")
	ErrNotFound             = errors.New("not found")
	ErrStoreFailure         = errors.New("store failure")
)
