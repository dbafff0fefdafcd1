package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key has no value in the store.
var ErrNotFound = errors.New("key not found")

// Well-known store keys. Values are JSON-encoded.
const (
	KeyUserRole   = "userRole"
	KeyUserName   = "userName"
	KeyMarketData = "marketData"
	KeyForumPosts = "forumPosts"
)

// HistoryKey is the composite cache key for the synthetic price history of
// one (item name, region) pair.
func HistoryKey(name, region string) string {
	return fmt.Sprintf("priceHistory_%s_%s", name, region)
}

// Store is the persistent key-value layer. Every dashboard entity is owned by
// exactly one key; writes are atomic per key, there is no cross-key
// transaction.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// DecodeError reports a stored value whose shape no longer matches the
// entity schema. Callers surface it instead of propagating zero fields.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode stored value for key %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
