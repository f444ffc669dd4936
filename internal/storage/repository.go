package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is a string-keyed store of serialized documents.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	// SetMany writes every entry or none.
	SetMany(ctx context.Context, entries map[string]string) error
	Keys(ctx context.Context) ([]string, error)
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}
