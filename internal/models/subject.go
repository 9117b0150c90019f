package models

// Subject is a taught discipline, used only for labeling output.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
