package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-contacts-cache/domain"
)

// mockStore records every call and keeps entries in a map
type mockStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	calls   []string
	failGet error
	failSet error
	failDel error
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "Get "+key)
	if m.failGet != nil {
		return nil, false, m.failGet
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "Set "+key)
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.calls = append(m.calls, "Delete "+k)
	}
	if m.failDel != nil {
		return m.failDel
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mockStore) raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return string(v), ok
}

func TestRepository_SetGet(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo := NewRepository[domain.Category](store, "category", time.Hour)

	want := domain.Category{ID: "k1", Name: "Friends"}
	if err := repo.Set(ctx, "k1", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, ok := store.raw("category:k1")
	if !ok {
		t.Fatal("expected value under category:k1")
	}
	if raw != `{"id":"k1","name":"Friends"}` {
		t.Errorf("unexpected stored JSON: %s", raw)
	}
	if store.ttls["category:k1"] != time.Hour {
		t.Errorf("expected TTL 1h, got %v", store.ttls["category:k1"])
	}

	got, ok, err := repo.GetByID(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRepository_Miss(t *testing.T) {
	repo := NewRepository[domain.Category](newMockStore(), "category", time.Hour)

	_, ok, err := repo.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("miss should not be an error: %v", err)
	}
	if ok {
		t.Error("expected miss")
	}
}

func TestRepository_Collection(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo := NewRepository[domain.Category](store, "category", time.Hour)

	if err := repo.SetAll(ctx, nil); err != nil {
		t.Fatalf("SetAll failed: %v", err)
	}
	if raw, _ := store.raw("category:all"); raw != "[]" {
		t.Errorf("nil collection should be stored as [], got %s", raw)
	}

	items, ok, err := repo.GetAll(ctx)
	if err != nil || !ok {
		t.Fatalf("expected hit on empty collection, got ok=%v err=%v", ok, err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty collection, got %v", items)
	}

	list := []domain.Category{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}
	repo.SetAll(ctx, list)
	items, _, _ = repo.GetAll(ctx)
	if len(items) != 2 || items[0] != list[0] || items[1] != list[1] {
		t.Errorf("collection order not preserved: %v", items)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if _, ok := store.raw("category:all"); ok {
		t.Error("expected collection key to be deleted")
	}
}

func TestRepository_UndecodableIsMiss(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		raw  string
	}{
		{"garbage item", "contact:1", "{not json"},
		{"null item", "contact:1", "null"},
		{"array in item key", "contact:1", `[{"id":"1"}]`},
		{"garbage collection", "contact:all", "[[["},
		{"null collection", "contact:all", "null"},
		{"object in collection key", "contact:all", `{"id":"1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			store.data[tt.key] = []byte(tt.raw)
			metrics := NewMetrics(nil)
			repo := NewRepository[domain.ContactWithCategory](store, "contact", time.Hour, WithMetrics(metrics))

			var ok bool
			var err error
			if tt.key == "contact:all" {
				_, ok, err = repo.GetAll(ctx)
			} else {
				_, ok, err = repo.Get(ctx, "1")
			}

			if err != nil {
				t.Fatalf("undecodable entry should not be an error: %v", err)
			}
			if ok {
				t.Error("undecodable entry should be a miss")
			}
			if got := testutil.ToFloat64(metrics.Counter("contact", OutcomeInvalid)); got != 1 {
				t.Errorf("expected 1 invalid observation, got %v", got)
			}
		})
	}
}

func TestRepository_BackendErrorsAreCacheFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")

	store := newMockStore()
	store.failGet, store.failSet, store.failDel = boom, boom, boom
	repo := NewRepository[domain.Category](store, "category", time.Hour)

	_, _, err := repo.Get(ctx, "k1")
	assertCacheFailure(t, "Get", err, boom)

	_, _, err = repo.GetAll(ctx)
	assertCacheFailure(t, "GetAll", err, boom)

	assertCacheFailure(t, "Set", repo.Set(ctx, "k1", domain.Category{}), boom)
	assertCacheFailure(t, "Delete", repo.Delete(ctx, "k1"), boom)
}

func assertCacheFailure(t *testing.T, op string, err, cause error) {
	t.Helper()
	if !domain.IsCacheFailure(err) {
		t.Errorf("%s: expected cache failure, got %v", op, err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("%s: cause not preserved in %v", op, err)
	}
}

func TestRepository_DeleteMultiple(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	repo := NewRepository[domain.Category](store, "category", time.Hour)

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete with no suffix: %v", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("expected no backend call, got %v", store.calls)
	}

	repo.Delete(ctx, "k1", CollectionSuffix)
	want := []string{"Delete category:k1", "Delete category:all"}
	if len(store.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", store.calls, want)
	}
	for i := range want {
		if store.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, store.calls[i], want[i])
		}
	}
}

func TestRepository_Codecs(t *testing.T) {
	ctx := context.Background()
	want := domain.ContactWithCategory{
		ID: "c1", Name: "Ann", Email: "ann@x.io", Phone: "1",
		Category: &domain.CategoryRef{ID: "k1", Name: "Friends"},
	}

	for _, codec := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			repo := NewRepository[domain.ContactWithCategory](newMockStore(), "contact", time.Hour, WithCodec(codec))
			if err := repo.Set(ctx, "c1", want); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, ok, err := repo.Get(ctx, "c1")
			if err != nil || !ok {
				t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
			}
			if got.ID != want.ID || got.Category == nil || *got.Category != *want.Category {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestRepository_Namespace(t *testing.T) {
	store := newMockStore()
	repo := NewRepository[domain.Category](store, "category", time.Hour,
		WithKeySerializer(NewNamespacedKeySerializer("test")))

	if got := repo.Key(CollectionSuffix); got != "test:category:all" {
		t.Errorf("Key() = %q, want test:category:all", got)
	}
}

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	repo := NewRepository[domain.Category](newMockStore(), "category", time.Hour, WithMetrics(metrics))
	ctx := context.Background()

	repo.Get(ctx, "k1")
	repo.Set(ctx, "k1", domain.Category{ID: "k1"})
	repo.Get(ctx, "k1")
	repo.Delete(ctx, "k1", CollectionSuffix)

	checks := map[string]float64{OutcomeMiss: 1, OutcomeSet: 1, OutcomeHit: 1, OutcomeDelete: 2}
	for outcome, want := range checks {
		if got := testutil.ToFloat64(metrics.Counter("category", outcome)); got != want {
			t.Errorf("%s = %v, want %v", outcome, got, want)
		}
	}

	if n, err := testutil.GatherAndCount(reg, "contacts_cache_operations_total"); err != nil || n == 0 {
		t.Errorf("expected registered series, got n=%d err=%v", n, err)
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.Observe("category", OutcomeHit)
}

func TestCodecByName(t *testing.T) {
	for _, name := range []string{"", "json", "msgpack"} {
		if _, err := CodecByName(name); err != nil {
			t.Errorf("CodecByName(%q) failed: %v", name, err)
		}
	}
	if _, err := CodecByName("gob"); err == nil {
		t.Error("expected error for unknown codec")
	}
}
