package repositorycache

import (
	"context"

	"github.com/apex/log"

	"github.com/goliatone/go-contacts-cache/cache"
	"github.com/goliatone/go-contacts-cache/domain"
)

// CategoryPrefix is the cache key prefix of category entries.
const CategoryPrefix = "category"

// CategoryService reads categories through the cache and keeps the cache
// consistent with every write it performs.
type CategoryService struct {
	store  CategoryStore
	cache  *cache.Repository[domain.Category]
	logger log.Interface
	newID  IDGenerator
	loads  loader
}

var _ CategoryLookup = (*CategoryService)(nil)

// NewCategoryService wires a category service over store and its cache.
func NewCategoryService(store CategoryStore, c *cache.Repository[domain.Category], opts ...Option) *CategoryService {
	o := buildOptions(opts)
	return &CategoryService{
		store:  store,
		cache:  c,
		logger: o.logger.WithField("entity", CategoryPrefix),
		newID:  o.newID,
		loads:  newLoader(o.coalesce),
	}
}

// GetAll returns every category ordered by name. A cached collection is
// returned as is; otherwise the store is read and the collection cached.
func (s *CategoryService) GetAll(ctx context.Context) ([]domain.Category, error) {
	items, ok, err := s.cache.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return items, nil
	}

	items, err = load(s.loads, cache.CollectionSuffix, func() ([]domain.Category, error) {
		list, err := s.store.FindAll(ctx)
		if err != nil {
			return nil, domain.StoreFailure(err, "find all categories")
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetAll(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID returns the category with id, reading through the item cache.
func (s *CategoryService) GetByID(ctx context.Context, id string) (domain.Category, error) {
	return s.getBy(ctx, id, "id:"+id, func(c domain.Category) bool { return c.ID == id }, func() (*domain.Category, error) {
		return s.store.FindByID(ctx, id)
	})
}

// GetByName returns the category named name, reading through the cache
// entry keyed by the name.
func (s *CategoryService) GetByName(ctx context.Context, name string) (domain.Category, error) {
	return s.getBy(ctx, name, "name:"+name, func(c domain.Category) bool { return c.Name == name }, func() (*domain.Category, error) {
		return s.store.FindByName(ctx, name)
	})
}

// getBy reads the entry under suffix. Ids and names share the key space, so
// an entry that does not satisfy matches was written by the other lookup and
// counts as a miss.
func (s *CategoryService) getBy(ctx context.Context, suffix, loadKey string, matches func(domain.Category) bool, find func() (*domain.Category, error)) (domain.Category, error) {
	useCache := cacheable(suffix)

	if useCache {
		cached, ok, err := s.cache.Get(ctx, suffix)
		if err != nil {
			return domain.Category{}, err
		}
		if ok && matches(cached) {
			return cached, nil
		}
		if ok {
			s.logger.WithField("key", suffix).Debug("cached category belongs to another lookup")
		}
	}

	found, err := load(s.loads, loadKey, func() (*domain.Category, error) {
		c, err := find()
		if err != nil {
			return nil, domain.StoreFailure(err, "find category")
		}
		return c, nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	if found == nil {
		return domain.Category{}, domain.ErrCategoryNotFound()
	}

	if useCache {
		if err := s.cache.Set(ctx, suffix, *found); err != nil {
			return domain.Category{}, err
		}
	}
	return *found, nil
}

// Create stores a new category and drops the cached collection. The item
// entry is filled by the first read.
func (s *CategoryService) Create(ctx context.Context, input domain.CategoryInput) (domain.Category, error) {
	if err := s.ensureNameFree(ctx, input.Name, ""); err != nil {
		return domain.Category{}, err
	}

	id, err := s.newID()
	if err != nil {
		return domain.Category{}, err
	}

	created, err := s.store.Create(ctx, domain.Category{ID: id, Name: input.Name})
	if err != nil {
		return domain.Category{}, domain.StoreFailure(err, "create category")
	}

	if err := s.cache.DeleteAll(ctx); err != nil {
		return domain.Category{}, err
	}

	s.logger.WithField("id", created.ID).Debug("category created")
	return created, nil
}

// Update merges patch over the stored category, persists it, then drops the
// item, collection and name entries and caches the updated value.
func (s *CategoryService) Update(ctx context.Context, patch domain.CategoryPatch) (domain.Category, error) {
	current, err := s.store.FindByID(ctx, patch.ID)
	if err != nil {
		return domain.Category{}, domain.StoreFailure(err, "find category")
	}
	if current == nil {
		return domain.Category{}, domain.ErrCategoryNotFound()
	}

	next := patch.Apply(*current)
	if next.Name != current.Name {
		if err := s.ensureNameFree(ctx, next.Name, current.ID); err != nil {
			return domain.Category{}, err
		}
	}

	updated, err := s.store.Update(ctx, next)
	if err != nil {
		return domain.Category{}, domain.StoreFailure(err, "update category")
	}

	stale := []string{updated.ID, cache.CollectionSuffix}
	stale = appendNameKeys(stale, current.Name, updated.Name)
	if err := s.cache.Delete(ctx, stale...); err != nil {
		return domain.Category{}, err
	}
	if err := s.cache.Set(ctx, updated.ID, updated); err != nil {
		return domain.Category{}, err
	}

	s.logger.WithField("id", updated.ID).Debug("category updated")
	return updated, nil
}

// Delete removes the category and its cache entries. Deleting an absent
// category succeeds. Contacts referencing it keep the reference.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.StoreFailure(err, "find category")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return domain.StoreFailure(err, "delete category")
	}

	stale := []string{id, cache.CollectionSuffix}
	if current != nil {
		stale = appendNameKeys(stale, current.Name)
	}
	if err := s.cache.Delete(ctx, stale...); err != nil {
		return err
	}

	s.logger.WithField("id", id).Debug("category deleted")
	return nil
}

// ensureNameFree fails with a Conflict when another category than selfID
// already uses name.
func (s *CategoryService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.store.FindByName(ctx, name)
	if err != nil {
		return domain.StoreFailure(err, "find category by name")
	}
	if existing != nil && existing.ID != selfID {
		return domain.ErrCategoryNameTaken()
	}
	return nil
}

// appendNameKeys adds the distinct cacheable names to keys.
func appendNameKeys(keys []string, names ...string) []string {
	seen := map[string]bool{}
	for _, name := range names {
		if name == "" || !cacheable(name) || seen[name] {
			continue
		}
		seen[name] = true
		keys = append(keys, name)
	}
	return keys
}
