// Package cache provides the byte level cache contract and a typed
// repository on top of it.
//
// # Overview
//
// Two layers live here:
//
//   - Store: the backend contract (Get, Set with TTL, Delete). The memory
//     (sturdyc) and redis backends in internal/cacheinfra implement it.
//   - Repository[T]: a typed view bound to one entity prefix and TTL that
//     encodes values with a Codec (JSON by default).
//
// # Key Layout
//
// Keys are "<prefix>:<suffix>". The suffix is an entity id, a lookup value
// such as a category name, or CollectionSuffix ("all") for the full list:
//
//	category:all
//	category:0190b5c2-7d3e-7000-8000-000000000001
//	category:Friends
//
// A namespace may be prepended with NewNamespacedKeySerializer when several
// deployments share a redis instance.
//
// # Basic Usage
//
//	store, err := cache.NewStore(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	categories := cache.NewRepository[domain.Category](store, "category", time.Hour)
//
//	if err := categories.Set(ctx, c.ID, c); err != nil {
//		return err
//	}
//	cached, ok, err := categories.Get(ctx, c.ID)
//
// # Error Handling
//
// A missing key is never an error. An entry that cannot be decoded is
// logged, counted as "invalid" and reported as a miss, so the next load
// from the durable store overwrites it. Backend failures are returned as
// domain cache failures with the original error kept in the chain.
//
// The cache is never authoritative: callers own invalidation.
package cache
