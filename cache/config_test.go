package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/goliatone/go-contacts-cache/internal/cacheinfra"
)

var (
	_ Store = (*cacheinfra.SturdycStore)(nil)
	_ Store = (*cacheinfra.RedisStore)(nil)
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %q", cfg.Backend)
	}
	if cfg.CategoryTTL != time.Hour || cfg.ContactTTL != time.Hour {
		t.Errorf("expected 1h TTLs, got %v / %v", cfg.CategoryTTL, cfg.ContactTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero category ttl", func(c *Config) { c.CategoryTTL = 0 }, "CategoryTTL"},
		{"zero contact ttl", func(c *Config) { c.ContactTTL = 0 }, "ContactTTL"},
		{"unknown codec", func(c *Config) { c.Codec = "xml" }, "Codec"},
		{"unknown backend", func(c *Config) { c.Backend = "memcached" }, "Backend"},
		{"bad memory capacity", func(c *Config) { c.Memory.Capacity = 0 }, "Capacity"},
		{"empty redis addr", func(c *Config) { c.Backend = BackendRedis; c.Redis.Addr = "" }, "Redis.Addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			var cfgErr *cacheinfra.ConfigError
			if err := cfg.Validate(); !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestNewStore_Memory(t *testing.T) {
	store, err := NewStore(DefaultConfig())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	ctx := context.Background()
	if err := store.Set(ctx, "category:all", []byte("[]"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "category:all"); !ok {
		t.Error("expected hit after Set")
	}
}

func TestNewStore_Redis(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Backend = BackendRedis
	cfg.Redis.Addr = srv.Addr()

	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	closer, ok := store.(io.Closer)
	if !ok {
		t.Fatal("redis store should implement io.Closer")
	}
	defer closer.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "contact:all", []byte("[]"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !srv.Exists("contact:all") {
		t.Error("expected key in redis")
	}
}

func TestNewStore_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "nope"

	store, err := NewStore(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if store != nil {
		t.Error("expected nil store")
	}
}
