package repositorycache

import (
	"github.com/apex/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-contacts-cache/cache"
)

// IDGenerator returns a fresh entity id.
type IDGenerator func() (string, error)

// Option configures a service.
type Option func(*serviceOptions)

type serviceOptions struct {
	logger   log.Interface
	newID    IDGenerator
	coalesce bool
}

func buildOptions(opts []Option) serviceOptions {
	o := serviceOptions{
		logger: log.Log,
		newID:  NewUUIDv7,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the service logger.
func WithLogger(logger log.Interface) Option {
	return func(o *serviceOptions) { o.logger = logger }
}

// WithIDGenerator overrides the id generator used on create.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *serviceOptions) { o.newID = gen }
}

// WithLoadCoalescing collapses concurrent cache misses on the same key into
// a single store load. It is off by default, in which case concurrent
// misses each hit the store.
//
// Callers sharing a load share its outcome, including a cancellation of
// the context of the caller that started it.
func WithLoadCoalescing() Option {
	return func(o *serviceOptions) { o.coalesce = true }
}

// NewUUIDv7 returns a time ordered UUID string.
func NewUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// loader runs store loads after a cache miss, optionally coalesced.
type loader struct {
	group *singleflight.Group
}

func newLoader(coalesce bool) loader {
	if !coalesce {
		return loader{}
	}
	return loader{group: &singleflight.Group{}}
}

func load[T any](l loader, key string, fn func() (T, error)) (T, error) {
	if l.group == nil {
		return fn()
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// cacheable reports whether suffix may be used as an item key. The
// collection suffix is reserved, so a lookup value equal to it bypasses
// the cache.
func cacheable(suffix string) bool {
	return suffix != cache.CollectionSuffix
}
