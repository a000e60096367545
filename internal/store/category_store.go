package store

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-contacts-cache/domain"
	"github.com/goliatone/go-contacts-cache/repositorycache"
)

// CategoryStore persists categories through a go-repository-bun repository.
type CategoryStore struct {
	repo repository.Repository[*CategoryRecord]
}

var _ repositorycache.CategoryStore = (*CategoryStore)(nil)

// CategoryHandlers returns the repository model handlers for categories.
func CategoryHandlers() repository.ModelHandlers[*CategoryRecord] {
	return repository.ModelHandlers[*CategoryRecord]{
		NewRecord: func() *CategoryRecord { return &CategoryRecord{} },
		GetID: func(r *CategoryRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *CategoryRecord, id uuid.UUID) { r.ID = id },
		GetIdentifier: func() string { return "name" },
	}
}

// NewCategoryStore returns a category store over db.
func NewCategoryStore(db *bun.DB) *CategoryStore {
	return &CategoryStore{repo: repository.NewRepository[*CategoryRecord](db, CategoryHandlers())}
}

// FindAll returns every category ordered by name.
func (s *CategoryStore) FindAll(ctx context.Context) ([]domain.Category, error) {
	records, _, err := s.repo.List(ctx, orderByName)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(records))
	for _, r := range records {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// FindByID returns nil when no category has id.
func (s *CategoryStore) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return s.one(s.repo.GetByID(ctx, id))
}

// FindByName returns nil when no category is named name.
func (s *CategoryStore) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	return s.one(s.repo.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.name = ?", name)
	}))
}

func (s *CategoryStore) one(r *CategoryRecord, err error) (*domain.Category, error) {
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	c := r.toDomain()
	return &c, nil
}

// Create inserts c with the id it already carries.
func (s *CategoryStore) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	rec, err := categoryRecordFrom(c)
	if err != nil {
		return domain.Category{}, err
	}
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return domain.Category{}, err
	}
	return created.toDomain(), nil
}

// Update writes the name of c.
func (s *CategoryStore) Update(ctx context.Context, c domain.Category) (domain.Category, error) {
	rec, err := categoryRecordFrom(c)
	if err != nil {
		return domain.Category{}, err
	}
	updated, err := s.repo.Update(ctx, rec, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Column("name")
	})
	if err != nil {
		return domain.Category{}, err
	}
	return updated.toDomain(), nil
}

// Delete removes the category. Removing an absent category is not an error.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	if err := s.repo.Delete(ctx, &CategoryRecord{ID: parsed}); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func orderByName(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("?TableAlias.name ASC")
}
