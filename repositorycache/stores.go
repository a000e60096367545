package repositorycache

import (
	"context"

	"github.com/goliatone/go-contacts-cache/domain"
)

// CategoryStore is the durable store the category service reads through.
// Finders return (nil, nil) when nothing matches.
type CategoryStore interface {
	FindAll(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	Create(ctx context.Context, category domain.Category) (domain.Category, error)
	Update(ctx context.Context, category domain.Category) (domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// ContactStore is the durable store the contact service reads through.
// Reads return contacts joined with their category; finders return
// (nil, nil) when nothing matches.
type ContactStore interface {
	FindAll(ctx context.Context) ([]domain.ContactWithCategory, error)
	FindByID(ctx context.Context, id string) (*domain.ContactWithCategory, error)
	FindByEmail(ctx context.Context, email string) (*domain.ContactWithCategory, error)
	Create(ctx context.Context, contact domain.Contact) (domain.Contact, error)
	Update(ctx context.Context, contact domain.Contact) (domain.Contact, error)
	Delete(ctx context.Context, id string) error
}

// CategoryLookup resolves a category by id for contact reference checks.
// CategoryService implements it.
type CategoryLookup interface {
	GetByID(ctx context.Context, id string) (domain.Category, error)
}
