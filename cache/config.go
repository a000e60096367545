package cache

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/goliatone/go-contacts-cache/internal/cacheinfra"
)

// Backends understood by NewStore.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend     string        `yaml:"backend" env:"BACKEND"`
	Namespace   string        `yaml:"namespace" env:"NAMESPACE"`
	Codec       string        `yaml:"codec" env:"CODEC"`
	CategoryTTL time.Duration `yaml:"category_ttl" env:"CATEGORY_TTL"`
	ContactTTL  time.Duration `yaml:"contact_ttl" env:"CONTACT_TTL"`
	// CoalesceLoads collapses concurrent misses on one key into a single
	// store load.
	CoalesceLoads bool         `yaml:"coalesce_loads" env:"COALESCE_LOADS"`
	Memory        MemoryConfig `yaml:"memory" envPrefix:"MEMORY_"`
	Redis         RedisConfig  `yaml:"redis" envPrefix:"REDIS_"`
}

// MemoryConfig mirrors the in-process sturdyc backend options.
type MemoryConfig struct {
	Capacity           int           `yaml:"capacity" env:"CAPACITY"`
	NumShards          int           `yaml:"num_shards" env:"NUM_SHARDS"`
	EvictionPercentage int           `yaml:"eviction_percentage" env:"EVICTION_PERCENTAGE"`
	EvictionInterval   time.Duration `yaml:"eviction_interval" env:"EVICTION_INTERVAL"`
	// Clock drives entry expiry. Nil uses the wall clock.
	Clock clockwork.Clock `yaml:"-"`
}

// RedisConfig mirrors the redis backend options.
type RedisConfig struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	Username     string        `yaml:"username" env:"USERNAME"`
	Password     string        `yaml:"password" env:"PASSWORD"`
	DB           int           `yaml:"db" env:"DB"`
	PoolSize     int           `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

// DefaultConfig returns a Config using the in-memory backend and a one
// hour TTL for both entities.
func DefaultConfig() Config {
	mem := cacheinfra.DefaultConfig()
	rds := cacheinfra.DefaultRedisConfig()

	return Config{
		Backend:     BackendMemory,
		Codec:       JSONCodec{}.Name(),
		CategoryTTL: time.Hour,
		ContactTTL:  time.Hour,
		Memory: MemoryConfig{
			Capacity:           mem.Capacity,
			NumShards:          mem.NumShards,
			EvictionPercentage: mem.EvictionPercentage,
			EvictionInterval:   mem.EvictionInterval,
		},
		Redis: RedisConfig{
			Addr:         rds.Addr,
			DB:           rds.DB,
			PoolSize:     rds.PoolSize,
			MinIdleConns: rds.MinIdleConns,
			DialTimeout:  rds.DialTimeout,
			ReadTimeout:  rds.ReadTimeout,
			WriteTimeout: rds.WriteTimeout,
		},
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.CategoryTTL <= 0 {
		return &cacheinfra.ConfigError{Field: "CategoryTTL", Message: "must be greater than 0"}
	}
	if c.ContactTTL <= 0 {
		return &cacheinfra.ConfigError{Field: "ContactTTL", Message: "must be greater than 0"}
	}
	if _, err := CodecByName(c.Codec); err != nil {
		return &cacheinfra.ConfigError{Field: "Codec", Message: err.Error()}
	}

	switch c.Backend {
	case BackendMemory:
		return c.memoryConfig().Validate()
	case BackendRedis:
		return c.redisConfig().Validate()
	default:
		return &cacheinfra.ConfigError{Field: "Backend", Message: fmt.Sprintf("unknown backend %q", c.Backend)}
	}
}

// NewStore constructs the configured cache backend. Backends holding network
// resources also implement io.Closer.
func NewStore(cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Backend == BackendRedis {
		store, err := cacheinfra.NewRedisStore(cfg.redisConfig())
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := cacheinfra.NewSturdycStore(cfg.memoryConfig())
	if err != nil {
		return nil, err
	}
	return store, nil
}

// memoryConfig sizes the memory backend so its own expiry never cuts an
// entry shorter than the entity TTLs.
func (c Config) memoryConfig() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Memory.Capacity,
		NumShards:          c.Memory.NumShards,
		TTL:                max(c.CategoryTTL, c.ContactTTL),
		EvictionPercentage: c.Memory.EvictionPercentage,
		EvictionInterval:   c.Memory.EvictionInterval,
		Clock:              c.Memory.Clock,
	}
}

func (c Config) redisConfig() cacheinfra.RedisConfig {
	return cacheinfra.RedisConfig{
		Addr:         c.Redis.Addr,
		Username:     c.Redis.Username,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		PoolSize:     c.Redis.PoolSize,
		MinIdleConns: c.Redis.MinIdleConns,
		DialTimeout:  c.Redis.DialTimeout,
		ReadTimeout:  c.Redis.ReadTimeout,
		WriteTimeout: c.Redis.WriteTimeout,
	}
}
