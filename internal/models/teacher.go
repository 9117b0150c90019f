package models

// Teacher represents an instructor record. Unavailable slots live in the
// dataset's unavailability table, not on the teacher itself.
type Teacher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
