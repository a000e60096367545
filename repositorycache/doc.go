// Package repositorycache implements the cache-aside services for categories
// and contacts.
//
// # Overview
//
// Each service sits between a caller and two collaborators: a durable store
// (the source of truth) and a typed cache repository bound to the entity's
// key prefix and TTL. Reads go through the cache; writes go to the store and
// then invalidate or repopulate the affected cache entries.
//
// # Key Layout
//
//	category:all         every category, ordered by name
//	category:<id>        one category
//	category:<name>      one category, looked up by name
//	contact:all          every contact joined with its category
//	contact:<id>         one contact joined with its category
//
// # Read Path
//
//  1. Look up the key in the cache
//  2. On hit, return the cached value without touching the store
//  3. On miss, load from the store (NotFound if absent)
//  4. Cache the loaded value with the entity TTL and return it
//
// An item read never falls back to the collection entry.
//
// # Write Path
//
//   - Create: uniqueness check, optional category check (contacts), store
//     write, then the collection entry is dropped. The item entry is left
//     for the first read to fill.
//   - Update: load current, uniqueness check if the unique field changes,
//     optional category check, merge, store write, drop the item and
//     collection entries (and for categories the old and new name entries),
//     then cache the updated item.
//   - Delete: store delete, then drop the item and collection entries.
//     Deleting something absent succeeds.
//
// # Concurrency
//
// Services hold no locks. A write racing a collection miss can leave an
// outdated collection cached until the next write or TTL expiry; this is
// accepted. Concurrent misses each hit the store unless WithLoadCoalescing
// is set.
//
// # Cross-Entity Reference
//
// Contact writes that set a category check it through a CategoryLookup,
// normally the CategoryService, so the check itself reads through the
// category cache. A missing category fails with the category NotFound code.
// Deleting a category does not touch contacts; they keep the dangling id.
//
// # Error Handling
//
// Store and cache backend errors are wrapped as domain store and cache
// failures and returned. Nothing is retried and steps already committed are
// not rolled back.
//
// # Usage
//
//	categories := repositorycache.NewCategoryService(categoryStore,
//		cache.NewRepository[domain.Category](backend, repositorycache.CategoryPrefix, time.Hour))
//	contacts := repositorycache.NewContactService(contactStore, categories,
//		cache.NewRepository[domain.ContactWithCategory](backend, repositorycache.ContactPrefix, time.Hour))
//
//	friends, err := categories.Create(ctx, domain.CategoryInput{Name: "Friends"})
package repositorycache
