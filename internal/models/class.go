package models

// Class represents a student group with a fixed headcount.
type Class struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int    `json:"size"`
}
