package models

import "time"

type Feedback struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	ReviewText   string    `json:"review_text"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeedbackDraft is a customer submission before the store assigns an ID.
type FeedbackDraft struct {
	ProductID    string `json:"product_id" validate:"required"`
	CustomerName string `json:"customer_name" validate:"required"`
	Rating       int    `json:"rating" validate:"min=1,max=5"`
	ReviewText   string `json:"review_text" validate:"required"`
}

// FeedbackPatch carries the admin-editable fields. Nil fields are left untouched.
type FeedbackPatch struct {
	Rating     *int    `json:"rating,omitempty"`
	ReviewText *string `json:"review_text,omitempty"`
}

func (p FeedbackPatch) IsEmpty() bool {
	return p.Rating == nil && p.ReviewText == nil
}

// Apply copies the patched fields onto f.
func (p FeedbackPatch) Apply(f *Feedback) {
	if p.Rating != nil {
		f.Rating = *p.Rating
	}
	if p.ReviewText != nil {
		f.ReviewText = *p.ReviewText
	}
}

type Stats struct {
	Total         int     `json:"total"`
	AverageRating float64 `json:"average_rating"`
}

type FeedbackList struct {
	Feedback []Feedback `json:"feedback"`
	Stats    Stats      `json:"stats"`
}
