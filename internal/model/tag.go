package model

// Tag is a named, colored label attachable to many notes.
type Tag struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
