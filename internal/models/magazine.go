package models

import "time"

// Magazine is a row of the magazines table
type Magazine struct {
	ID          ID        `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PDF         string    `json:"pdf"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// MagazineRow is the payload written on insert. id and created_at are assigned by the table.
type MagazineRow struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PDF         string `json:"pdf"`
}
