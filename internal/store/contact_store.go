package store

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-contacts-cache/domain"
	"github.com/goliatone/go-contacts-cache/repositorycache"
)

// ContactStore persists contacts and reads them joined with their
// category.
type ContactStore struct {
	db   *bun.DB
	repo repository.Repository[*ContactRecord]
}

var _ repositorycache.ContactStore = (*ContactStore)(nil)

// ContactHandlers returns the repository model handlers for contacts.
func ContactHandlers() repository.ModelHandlers[*ContactRecord] {
	return repository.ModelHandlers[*ContactRecord]{
		NewRecord: func() *ContactRecord { return &ContactRecord{} },
		GetID: func(r *ContactRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *ContactRecord, id uuid.UUID) { r.ID = id },
		GetIdentifier: func() string { return "email" },
	}
}

// NewContactStore returns a contact store over db.
func NewContactStore(db *bun.DB) *ContactStore {
	return &ContactStore{
		db:   db,
		repo: repository.NewRepository[*ContactRecord](db, ContactHandlers()),
	}
}

func withCategory(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Category")
}

// FindAll returns every contact with its category, ordered by name.
func (s *ContactStore) FindAll(ctx context.Context) ([]domain.ContactWithCategory, error) {
	records, _, err := s.repo.List(ctx, withCategory, orderByName)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ContactWithCategory, 0, len(records))
	for _, r := range records {
		out = append(out, r.toView())
	}
	return out, nil
}

// FindByID returns nil when no contact has id.
func (s *ContactStore) FindByID(ctx context.Context, id string) (*domain.ContactWithCategory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return s.one(s.repo.Get(ctx, withCategory, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id)
	}))
}

// FindByEmail returns nil when no contact uses email.
func (s *ContactStore) FindByEmail(ctx context.Context, email string) (*domain.ContactWithCategory, error) {
	return s.one(s.repo.Get(ctx, withCategory, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.email = ?", email)
	}))
}

func (s *ContactStore) one(r *ContactRecord, err error) (*domain.ContactWithCategory, error) {
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	v := r.toView()
	return &v, nil
}

// Create inserts c with the id it already carries. The category reference
// is not checked.
func (s *ContactStore) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	rec, err := contactRecordFrom(c)
	if err != nil {
		return domain.Contact{}, err
	}
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return domain.Contact{}, err
	}
	return created.toContact(), nil
}

// Update writes every column, so a cleared category is stored as NULL.
func (s *ContactStore) Update(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	rec, err := contactRecordFrom(c)
	if err != nil {
		return domain.Contact{}, err
	}
	_, err = s.db.NewUpdate().
		Model(rec).
		Column("name", "email", "phone", "category_id").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Contact{}, err
	}
	return rec.toContact(), nil
}

// Delete removes the contact. Removing an absent contact is not an error.
func (s *ContactStore) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	if err := s.repo.Delete(ctx, &ContactRecord{ID: parsed}); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}
