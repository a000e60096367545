package cache

import (
	"context"
	"time"
)

// Store is the byte level contract every cache backend implements.
//
// A missing or expired key is reported as ok == false with a nil error.
// Errors are reserved for backend failures such as an unreachable server.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
