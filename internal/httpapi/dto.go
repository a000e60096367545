package httpapi

import "github.com/goliatone/go-contacts-cache/domain"

type createCategoryRequest struct {
	Name string `json:"name" validate:"required,min=3,max=255"`
}

type updateCategoryRequest struct {
	Name *string `json:"name" validate:"omitempty,min=3,max=255"`
}

type createContactRequest struct {
	Name       string `json:"name" validate:"required,min=3,max=255"`
	Email      string `json:"email" validate:"required,max=255,email"`
	Phone      string `json:"phone" validate:"required"`
	CategoryID string `json:"categoryId"`
}

func (r createContactRequest) input() domain.ContactInput {
	return domain.ContactInput{Name: r.Name, Email: r.Email, Phone: r.Phone, CategoryID: r.CategoryID}
}

// An empty categoryId clears the reference.
type updateContactRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=3,max=255"`
	Email      *string `json:"email" validate:"omitempty,max=255,email"`
	Phone      *string `json:"phone"`
	CategoryID *string `json:"categoryId"`
}

func (r updateContactRequest) patch(id string) domain.ContactPatch {
	return domain.ContactPatch{ID: id, Name: r.Name, Email: r.Email, Phone: r.Phone, CategoryID: r.CategoryID}
}
