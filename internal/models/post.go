package models

import "time"

// Post represents a post owned by a user
type Post struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Published bool      `json:"published" db:"published"`
	OwnerID   int64     `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostInput is the validated, full-replacement payload for creating or
// updating a post.
type PostInput struct {
	Title     string
	Content   string
	Published bool
}

// PostFilter narrows a post listing. A zero Limit means no limit.
type PostFilter struct {
	Limit  int
	Offset int
	Search string
}
