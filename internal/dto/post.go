package dto

// PostRequest is the body of create and update. Published defaults to true.
type PostRequest struct {
	Title     string `json:"title" example:"a"`
	Content   string `json:"content" example:"b"`
	Published *bool  `json:"published,omitempty" example:"true"`
}

// PostResponse represents a post object in responses
type PostResponse struct {
	ID        int64  `json:"id" example:"1"`
	Title     string `json:"title" example:"a"`
	Content   string `json:"content" example:"b"`
	Published bool   `json:"published" example:"true"`
	OwnerID   int64  `json:"owner_id" example:"7"`
	CreatedAt string `json:"created_at" example:"2024-01-01T12:00:00Z"`
}
