package cache

import (
	"context"
	"time"

	"github.com/apex/log"

	"github.com/goliatone/go-contacts-cache/domain"
)

// Repository is a typed view over a Store for a single entity type.
// Every key it touches starts with its prefix and every write uses its TTL.
type Repository[T any] struct {
	store   Store
	prefix  string
	ttl     time.Duration
	keys    KeySerializer
	codec   Codec
	logger  log.Interface
	metrics *Metrics
}

// Option configures a Repository.
type Option func(*repositoryOptions)

type repositoryOptions struct {
	keys    KeySerializer
	codec   Codec
	logger  log.Interface
	metrics *Metrics
}

// WithKeySerializer overrides the default "<prefix>:<suffix>" key shape.
func WithKeySerializer(keys KeySerializer) Option {
	return func(o *repositoryOptions) { o.keys = keys }
}

// WithCodec overrides the default JSON codec.
func WithCodec(codec Codec) Option {
	return func(o *repositoryOptions) { o.codec = codec }
}

// WithLogger sets the logger used for hit, miss and decode diagnostics.
func WithLogger(logger log.Interface) Option {
	return func(o *repositoryOptions) { o.logger = logger }
}

// WithMetrics records operation counters on m.
func WithMetrics(m *Metrics) Option {
	return func(o *repositoryOptions) { o.metrics = m }
}

// NewRepository builds a typed cache repository over store.
func NewRepository[T any](store Store, prefix string, ttl time.Duration, opts ...Option) *Repository[T] {
	o := repositoryOptions{
		keys:   NewDefaultKeySerializer(),
		codec:  JSONCodec{},
		logger: log.Log,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Repository[T]{
		store:   store,
		prefix:  prefix,
		ttl:     ttl,
		keys:    o.keys,
		codec:   o.codec,
		logger:  o.logger.WithField("prefix", prefix),
		metrics: o.metrics,
	}
}

// Prefix returns the entity prefix of every key written by r.
func (r *Repository[T]) Prefix() string { return r.prefix }

// TTL returns the time-to-live applied to every write.
func (r *Repository[T]) TTL() time.Duration { return r.ttl }

// Key returns the full cache key for suffix.
func (r *Repository[T]) Key(suffix string) string {
	return r.keys.SerializeKey(r.prefix, suffix)
}

// Get returns the item cached under suffix. Absent and undecodable entries
// both report ok == false with a nil error.
func (r *Repository[T]) Get(ctx context.Context, suffix string) (T, bool, error) {
	var zero T
	var value *T

	ok, err := r.load(ctx, r.Key(suffix), &value)
	if err != nil || !ok {
		return zero, false, err
	}
	if value == nil {
		r.invalid(r.Key(suffix), nil)
		return zero, false, nil
	}
	r.hit(r.Key(suffix))
	return *value, true, nil
}

// GetByID is Get for an id suffix.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (T, bool, error) {
	return r.Get(ctx, id)
}

// GetAll returns the cached collection.
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, bool, error) {
	var items []T

	ok, err := r.load(ctx, r.Key(CollectionSuffix), &items)
	if err != nil || !ok {
		return nil, false, err
	}
	if items == nil {
		r.invalid(r.Key(CollectionSuffix), nil)
		return nil, false, nil
	}
	r.hit(r.Key(CollectionSuffix))
	return items, true, nil
}

// Set caches value under suffix, replacing any previous entry.
func (r *Repository[T]) Set(ctx context.Context, suffix string, value T) error {
	return r.save(ctx, r.Key(suffix), value)
}

// SetByID is Set for an id suffix.
func (r *Repository[T]) SetByID(ctx context.Context, id string, value T) error {
	return r.Set(ctx, id, value)
}

// SetAll caches the full collection. A nil slice is stored as empty.
func (r *Repository[T]) SetAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return r.save(ctx, r.Key(CollectionSuffix), items)
}

// Delete removes the entries for suffixes. Absent keys are not an error.
func (r *Repository[T]) Delete(ctx context.Context, suffixes ...string) error {
	if len(suffixes) == 0 {
		return nil
	}

	keys := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		keys = append(keys, r.Key(s))
	}

	if err := r.store.Delete(ctx, keys...); err != nil {
		r.metrics.Observe(r.prefix, OutcomeError)
		return domain.CacheFailure(err, "delete")
	}

	for range keys {
		r.metrics.Observe(r.prefix, OutcomeDelete)
	}
	r.logger.WithField("keys", keys).Debug("cache invalidated")
	return nil
}

// DeleteAll removes the collection entry.
func (r *Repository[T]) DeleteAll(ctx context.Context) error {
	return r.Delete(ctx, CollectionSuffix)
}

func (r *Repository[T]) load(ctx context.Context, key string, dest any) (bool, error) {
	data, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.metrics.Observe(r.prefix, OutcomeError)
		return false, domain.CacheFailure(err, "get")
	}
	if !ok {
		r.metrics.Observe(r.prefix, OutcomeMiss)
		r.logger.WithField("key", key).Debug("cache miss")
		return false, nil
	}

	if err := r.codec.Unmarshal(data, dest); err != nil {
		r.invalid(key, err)
		return false, nil
	}
	return true, nil
}

func (r *Repository[T]) hit(key string) {
	r.metrics.Observe(r.prefix, OutcomeHit)
	r.logger.WithField("key", key).Debug("cache hit")
}

func (r *Repository[T]) save(ctx context.Context, key string, value any) error {
	data, err := r.codec.Marshal(value)
	if err != nil {
		r.metrics.Observe(r.prefix, OutcomeError)
		return domain.CacheFailure(err, "encode")
	}

	if err := r.store.Set(ctx, key, data, r.ttl); err != nil {
		r.metrics.Observe(r.prefix, OutcomeError)
		return domain.CacheFailure(err, "set")
	}

	r.metrics.Observe(r.prefix, OutcomeSet)
	r.logger.WithField("key", key).WithField("ttl", r.ttl).Debug("cache set")
	return nil
}

// invalid records an entry that could not be decoded. It is reported to
// the caller as a miss so the next load overwrites it.
func (r *Repository[T]) invalid(key string, err error) {
	r.metrics.Observe(r.prefix, OutcomeInvalid)
	entry := r.logger.WithField("key", key).WithField("codec", r.codec.Name())
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("discarding undecodable cache entry")
}
