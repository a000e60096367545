package cacheinfra

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the upper bound on how long sturdyc keeps any entry. Per call
	// TTLs longer than this are cut to it.
	// Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration

	// Clock is used to stamp and check per entry expiry. Nil uses the
	// real clock.
	Clock clockwork.Clock
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, TTL, and EvictionPercentage are passed directly
// to sturdyc.New() and are not included here.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// entry is what the sturdyc client holds: the encoded value plus the
// instant it stops being served.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// SturdycStore is an in-process byte store backed by a sturdyc client.
type SturdycStore struct {
	client *sturdyc.Client[entry]
	clock  clockwork.Clock
	maxTTL time.Duration
}

// NewSturdycStore validates cfg and initializes a sturdyc client.
//
// sturdyc applies a single TTL to the whole client, so every entry also
// carries its own deadline and Get treats entries past it as absent.
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	client := sturdyc.New[entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycStore{client: client, clock: clock, maxTTL: cfg.TTL}, nil
}

// Get returns a copy of the bytes stored under key.
func (s *SturdycStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	e, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}

	if !s.clock.Now().Before(e.expiresAt) {
		s.client.Delete(key)
		return nil, false, nil
	}

	return append([]byte(nil), e.data...), true, nil
}

// Set stores a copy of value under key for ttl.
func (s *SturdycStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 || ttl > s.maxTTL {
		ttl = s.maxTTL
	}

	s.client.Set(key, entry{
		data:      append([]byte(nil), value...),
		expiresAt: s.clock.Now().Add(ttl),
	})
	return nil
}

// Delete removes keys. Absent keys are ignored.
func (s *SturdycStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.client.Delete(key)
	}
	return nil
}

// Size returns the number of entries currently held, expired or not.
func (s *SturdycStore) Size() int {
	return s.client.Size()
}
