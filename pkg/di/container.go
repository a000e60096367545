package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-contacts-cache/cache"
	"github.com/goliatone/go-contacts-cache/domain"
	"github.com/goliatone/go-contacts-cache/internal/config"
	"github.com/goliatone/go-contacts-cache/internal/store"
	"github.com/goliatone/go-contacts-cache/repositorycache"
)

// Container wires the durable store, the cache backend and the cache-aside
// services from a single configuration. It owns the resources it opened and
// releases them on Close.
type Container struct {
	cfg        config.Config
	logger     log.Interface
	db         *bun.DB
	cacheStore cache.Store
	registry   *prometheus.Registry
	metrics    *cache.Metrics
	categories *repositorycache.CategoryService
	contacts   *repositorycache.ContactService
	closers    []func() error
}

// Option overrides a dependency the container would otherwise build.
type Option func(*Container)

// WithLogger sets the logger handed to every component.
func WithLogger(logger log.Interface) Option {
	return func(c *Container) { c.logger = logger }
}

// WithRegistry registers the cache metrics on reg instead of a fresh
// registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *Container) { c.registry = reg }
}

// WithCacheStore uses an existing cache backend. The container does not
// close it.
func WithCacheStore(s cache.Store) Option {
	return func(c *Container) { c.cacheStore = s }
}

// WithDB uses an existing database handle. The container does not close it.
func WithDB(db *bun.DB) Option {
	return func(c *Container) { c.db = db }
}

// NewContainer builds every component described by cfg.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Log
	}
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
	}

	if err := c.build(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithDefaults builds a container over in-memory SQLite and the
// in-process cache.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	return NewContainer(ctx, config.Default(), opts...)
}

func (c *Container) build(ctx context.Context) error {
	if c.db == nil {
		db, err := store.Open(ctx, c.cfg.DB)
		if err != nil {
			return err
		}
		c.db = db
		c.closers = append(c.closers, db.Close)
	}

	if c.cfg.DB.AutoMigrate {
		if err := c.migrate(ctx); err != nil {
			return err
		}
	}

	if c.cacheStore == nil {
		s, err := cache.NewStore(c.cfg.Cache)
		if err != nil {
			return err
		}
		c.cacheStore = s
		if closer, ok := s.(io.Closer); ok {
			c.closers = append(c.closers, closer.Close)
		}
	}

	codec, err := cache.CodecByName(c.cfg.Cache.Codec)
	if err != nil {
		return err
	}

	c.metrics = cache.NewMetrics(c.registry)
	if sized, ok := c.cacheStore.(cache.Sizer); ok {
		if err := cache.RegisterEntriesGauge(c.registry, sized); err != nil {
			return fmt.Errorf("register cache gauge: %w", err)
		}
	}
	cacheOpts := []cache.Option{
		cache.WithKeySerializer(cache.NewNamespacedKeySerializer(c.cfg.Cache.Namespace)),
		cache.WithCodec(codec),
		cache.WithLogger(c.logger),
		cache.WithMetrics(c.metrics),
	}

	serviceOpts := []repositorycache.Option{repositorycache.WithLogger(c.logger)}
	if c.cfg.Cache.CoalesceLoads {
		serviceOpts = append(serviceOpts, repositorycache.WithLoadCoalescing())
	}

	c.categories = repositorycache.NewCategoryService(
		store.NewCategoryStore(c.db),
		cache.NewRepository[domain.Category](c.cacheStore, repositorycache.CategoryPrefix, c.cfg.Cache.CategoryTTL, cacheOpts...),
		serviceOpts...,
	)
	c.contacts = repositorycache.NewContactService(
		store.NewContactStore(c.db),
		c.categories,
		cache.NewRepository[domain.ContactWithCategory](c.cacheStore, repositorycache.ContactPrefix, c.cfg.Cache.ContactTTL, cacheOpts...),
		serviceOpts...,
	)

	c.logger.WithFields(log.Fields{
		"db":    c.cfg.DB.Driver,
		"cache": c.cfg.Cache.Backend,
		"codec": codec.Name(),
	}).Info("container ready")
	return nil
}

func (c *Container) migrate(ctx context.Context) error {
	if c.cfg.DB.Driver == store.DriverSQLite {
		return store.CreateSchema(ctx, c.db)
	}

	m, err := store.NewMigrator(c.cfg.DB.DSN, c.logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// Categories returns the category service.
func (c *Container) Categories() *repositorycache.CategoryService { return c.categories }

// Contacts returns the contact service.
func (c *Container) Contacts() *repositorycache.ContactService { return c.contacts }

// DB returns the database handle.
func (c *Container) DB() *bun.DB { return c.db }

// CacheStore returns the cache backend shared by both entities.
func (c *Container) CacheStore() cache.Store { return c.cacheStore }

// Registry returns the registry holding the cache metrics.
func (c *Container) Registry() *prometheus.Registry { return c.registry }

// Metrics returns the cache operation counters.
func (c *Container) Metrics() *cache.Metrics { return c.metrics }

// Logger returns the logger handed to every component.
func (c *Container) Logger() log.Interface { return c.logger }

// Config returns a copy of the configuration the container was built from.
func (c *Container) Config() config.Config { return c.cfg }

// Health pings the database and, when it supports it, the cache backend.
func (c *Container) Health(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if p, ok := c.cacheStore.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

// Close releases the resources opened by the container, newest first.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
