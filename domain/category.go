package domain

// Category groups contacts. Name is unique across all categories.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryInput carries the fields required to create a category.
type CategoryInput struct {
	Name string `json:"name"`
}

// CategoryPatch is a partial update. Nil fields keep their current value.
type CategoryPatch struct {
	ID   string  `json:"-"`
	Name *string `json:"name,omitempty"`
}

// Apply merges the supplied fields over current and returns the result.
func (p CategoryPatch) Apply(current Category) Category {
	if p.Name != nil {
		current.Name = *p.Name
	}
	return current
}
