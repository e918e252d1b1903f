// Package kv provides the small key-value abstraction used for local persistence.
package kv

import "context"

// Store is a flat key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
