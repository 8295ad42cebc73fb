package domain

import "time"

// MaxTitleLen is the column limit on title, in characters.
const MaxTitleLen = 255

// Todo is a single task. ListID is nil when the item belongs to no list.
type Todo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	CreatorID   int64      `json:"creator_id"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	DueAt       *time.Time `json:"due_at"`
	Completed   bool       `json:"completed"`
	ListID      *int64     `json:"list_id"`
	Priority    int        `json:"priority"`
}
