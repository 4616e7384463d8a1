package domain

// Category is a node of the self-referencing category tree. The parent link
// is an id, never an embedded reference; tree shapes are built on demand.
type Category struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	IconSlug *string `json:"icon_slug,omitempty"`
	ParentID *int64  `json:"parent_id,omitempty"`
}
