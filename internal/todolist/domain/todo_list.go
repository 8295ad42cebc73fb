package domain

import "time"

const (
	// DefaultColor is stored when a list is created without a color.
	DefaultColor = "#000000"
	// MaxNameLen is the column limit on name, in characters.
	MaxNameLen = 255
)

// TodoList groups todo items. Color is "#" followed by six lowercase hex digits.
type TodoList struct {
	ID        int64     `json:"id"`
	CreatorID int64     `json:"creator_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
