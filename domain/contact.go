package domain

// Contact is the durable shape of a contact. CategoryID is empty when the
// contact is not assigned to a category.
type Contact struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	CategoryID string `json:"categoryId,omitempty"`
}

// CategoryRef is the category projection embedded in contact reads.
// Name is empty when the referenced category no longer exists.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ContactWithCategory is the read shape returned to callers and stored in
// the contact cache. Category is always serialized, as null when unset.
type ContactWithCategory struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	Category *CategoryRef `json:"category"`
}

// Contact returns the durable shape of c.
func (c ContactWithCategory) Contact() Contact {
	out := Contact{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	}
	if c.Category != nil {
		out.CategoryID = c.Category.ID
	}
	return out
}

// WithCategory builds the read shape of c using ref as the category
// projection. A nil ref on a contact that carries a CategoryID keeps the
// reference with an empty name.
func (c Contact) WithCategory(ref *CategoryRef) ContactWithCategory {
	out := ContactWithCategory{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	}
	switch {
	case c.CategoryID == "":
	case ref != nil && ref.ID == c.CategoryID:
		r := *ref
		out.Category = &r
	default:
		out.Category = &CategoryRef{ID: c.CategoryID}
	}
	return out
}

// ContactInput carries the fields used to create a contact.
type ContactInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	CategoryID string `json:"categoryId,omitempty"`
}

// ContactPatch is a partial update. Nil fields keep their current value.
// A non-nil CategoryID pointing at the empty string clears the category.
type ContactPatch struct {
	ID         string  `json:"-"`
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
}

// Apply merges the supplied fields over current and returns the result.
func (p ContactPatch) Apply(current Contact) Contact {
	if p.Name != nil {
		current.Name = *p.Name
	}
	if p.Email != nil {
		current.Email = *p.Email
	}
	if p.Phone != nil {
		current.Phone = *p.Phone
	}
	if p.CategoryID != nil {
		current.CategoryID = *p.CategoryID
	}
	return current
}
