// Package cache keeps rendered responses keyed by a request hash.
package cache

import "context"

type Store[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Put(ctx context.Context, key string, v T) error
	Len() int
}
