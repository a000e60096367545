package repositorycache

import (
	"context"

	"github.com/apex/log"

	"github.com/goliatone/go-contacts-cache/cache"
	"github.com/goliatone/go-contacts-cache/domain"
)

// ContactPrefix is the cache key prefix of contact entries.
const ContactPrefix = "contact"

// ContactService reads contacts through the cache, validates category
// references through a CategoryLookup and keeps the cache consistent with
// every write it performs.
type ContactService struct {
	store      ContactStore
	categories CategoryLookup
	cache      *cache.Repository[domain.ContactWithCategory]
	logger     log.Interface
	newID      IDGenerator
	loads      loader
}

// NewContactService wires a contact service. categories is consulted before
// any write that sets a category reference.
func NewContactService(store ContactStore, categories CategoryLookup, c *cache.Repository[domain.ContactWithCategory], opts ...Option) *ContactService {
	o := buildOptions(opts)
	return &ContactService{
		store:      store,
		categories: categories,
		cache:      c,
		logger:     o.logger.WithField("entity", ContactPrefix),
		newID:      o.newID,
		loads:      newLoader(o.coalesce),
	}
}

// GetAll returns every contact with its category, ordered by name.
func (s *ContactService) GetAll(ctx context.Context) ([]domain.ContactWithCategory, error) {
	items, ok, err := s.cache.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return items, nil
	}

	items, err = load(s.loads, cache.CollectionSuffix, func() ([]domain.ContactWithCategory, error) {
		list, err := s.store.FindAll(ctx)
		if err != nil {
			return nil, domain.StoreFailure(err, "find all contacts")
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

// GetByID returns the contact with id, reading through the item cache.
func (s *ContactService) GetByID(ctx context.Context, id string) (domain.ContactWithCategory, error) {
	useCache := cacheable(id)

	if useCache {
		cached, ok, err := s.cache.GetByID(ctx, id)
		if err != nil {
			return domain.ContactWithCategory{}, err
		}
		if ok {
			return cached, nil
		}
	}

	found, err := load(s.loads, "id:"+id, func() (*domain.ContactWithCategory, error) {
		c, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, domain.StoreFailure(err, "find contact")
		}
		return c, nil
	})
	if err != nil {
		return domain.ContactWithCategory{}, err
	}
	if found == nil {
		return domain.ContactWithCategory{}, domain.ErrContactNotFound()
	}

	if useCache {
		if err := s.cache.SetByID(ctx, id, *found); err != nil {
			return domain.ContactWithCategory{}, err
		}
	}
	return *found, nil
}

// Create stores a new contact and drops the cached collection. The email
// must be unused and a supplied category must exist.
func (s *ContactService) Create(ctx context.Context, input domain.ContactInput) (domain.ContactWithCategory, error) {
	if err := s.ensureEmailFree(ctx, input.Email, ""); err != nil {
		return domain.ContactWithCategory{}, err
	}

	var ref *domain.CategoryRef
	if input.CategoryID != "" {
		r, err := s.resolveCategory(ctx, input.CategoryID)
		if err != nil {
			return domain.ContactWithCategory{}, err
		}
		ref = r
	}

	id, err := s.newID()
	if err != nil {
		return domain.ContactWithCategory{}, err
	}

	created, err := s.store.Create(ctx, domain.Contact{
		ID:         id,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		CategoryID: input.CategoryID,
	})
	if err != nil {
		return domain.ContactWithCategory{}, domain.StoreFailure(err, "create contact")
	}

	if err := s.cache.DeleteAll(ctx); err != nil {
		return domain.ContactWithCategory{}, err
	}

	s.logger.WithField("id", created.ID).Debug("contact created")
	return created.WithCategory(ref), nil
}

// Update merges patch over the stored contact and persists it. The item
// and collection entries are dropped and the item is cached again with the
// updated value.
func (s *ContactService) Update(ctx context.Context, patch domain.ContactPatch) (domain.ContactWithCategory, error) {
	current, err := s.store.FindByID(ctx, patch.ID)
	if err != nil {
		return domain.ContactWithCategory{}, domain.StoreFailure(err, "find contact")
	}
	if current == nil {
		return domain.ContactWithCategory{}, domain.ErrContactNotFound()
	}

	next := patch.Apply(current.Contact())
	if next.Email != current.Email {
		if err := s.ensureEmailFree(ctx, next.Email, current.ID); err != nil {
			return domain.ContactWithCategory{}, err
		}
	}

	ref := current.Category
	if patch.CategoryID != nil && *patch.CategoryID != "" {
		r, err := s.resolveCategory(ctx, *patch.CategoryID)
		if err != nil {
			return domain.ContactWithCategory{}, err
		}
		ref = r
	}

	updated, err := s.store.Update(ctx, next)
	if err != nil {
		return domain.ContactWithCategory{}, domain.StoreFailure(err, "update contact")
	}

	view := updated.WithCategory(ref)
	if err := s.cache.Delete(ctx, updated.ID, cache.CollectionSuffix); err != nil {
		return domain.ContactWithCategory{}, err
	}
	if err := s.cache.SetByID(ctx, updated.ID, view); err != nil {
		return domain.ContactWithCategory{}, err
	}

	s.logger.WithField("id", updated.ID).Debug("contact updated")
	return view, nil
}

// Delete removes the contact and its cache entries. Deleting an absent
// contact succeeds.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return domain.StoreFailure(err, "delete contact")
	}

	if err := s.cache.Delete(ctx, id, cache.CollectionSuffix); err != nil {
		return err
	}

	s.logger.WithField("id", id).Debug("contact deleted")
	return nil
}

func (s *ContactService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return domain.StoreFailure(err, "find contact by email")
	}
	if existing != nil && existing.ID != selfID {
		return domain.ErrContactEmailTaken()
	}
	return nil
}

// resolveCategory checks the referenced category exists. Its NotFound
// carries the category text code, not the contact one.
func (s *ContactService) resolveCategory(ctx context.Context, id string) (*domain.CategoryRef, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.CategoryRef{ID: c.ID, Name: c.Name}, nil
}
