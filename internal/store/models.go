package store

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-contacts-cache/domain"
)

// CategoryRecord is the categories table row.
type CategoryRecord struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"`
	Name string    `bun:"name,notnull,unique"`
}

// ContactRecord is the contacts table row. CategoryID is not a foreign key:
// deleting a category leaves its contacts pointing at the old id.
type ContactRecord struct {
	bun.BaseModel `bun:"table:contacts,alias:con"`

	ID         uuid.UUID       `bun:"id,pk,type:uuid"`
	Name       string          `bun:"name,notnull"`
	Email      string          `bun:"email,notnull,unique"`
	Phone      string          `bun:"phone,notnull"`
	CategoryID *uuid.UUID      `bun:"category_id,type:uuid,nullzero"`
	Category   *CategoryRecord `bun:"rel:belongs-to,join:category_id=id"`
}

func (r *CategoryRecord) toDomain() domain.Category {
	return domain.Category{ID: r.ID.String(), Name: r.Name}
}

func categoryRecordFrom(c domain.Category) (*CategoryRecord, error) {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryRecord{ID: id, Name: c.Name}, nil
}

func (r *ContactRecord) toContact() domain.Contact {
	c := domain.Contact{
		ID:    r.ID.String(),
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
	}
	if r.CategoryID != nil && *r.CategoryID != uuid.Nil {
		c.CategoryID = r.CategoryID.String()
	}
	return c
}

// toView joins the loaded category. A missing join row keeps the id with no
// name.
func (r *ContactRecord) toView() domain.ContactWithCategory {
	var ref *domain.CategoryRef
	if r.Category != nil && r.Category.ID != uuid.Nil {
		ref = &domain.CategoryRef{ID: r.Category.ID.String(), Name: r.Category.Name}
	}
	return r.toContact().WithCategory(ref)
}

func contactRecordFrom(c domain.Contact) (*ContactRecord, error) {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, err
	}
	rec := &ContactRecord{ID: id, Name: c.Name, Email: c.Email, Phone: c.Phone}
	if c.CategoryID != "" {
		categoryID, err := uuid.Parse(c.CategoryID)
		if err != nil {
			return nil, err
		}
		rec.CategoryID = &categoryID
	}
	return rec, nil
}
