package dto

// ── review DTO ──

// SubmitReviewRequest review submission; content rules are enforced by the service
type SubmitReviewRequest struct {
	Content string `json:"content" binding:"required"`
	Rating  int    `json:"rating"  binding:"required"`
}

// ReviewListRequest review listing query
type ReviewListRequest struct {
	PaginationRequest
}

// ReviewResponse review
type ReviewResponse struct {
	ID        string          `json:"id"`
	StationID string          `json:"station_id"`
	Content   string          `json:"content"`
	Rating    int             `json:"rating"`
	Author    *AuthorResponse `json:"author,omitempty"`
	Encrypted bool            `json:"encrypted"`
	CreatedAt string          `json:"created_at"`
}

// ReviewListResponse reviews of a station with aggregate rating
type ReviewListResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	AverageRating float64          `json:"average_rating"`
	Count         int64            `json:"count"`
	Page          int              `json:"page"`
	PageSize      int              `json:"page_size"`
}
