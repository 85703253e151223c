package model

import "time"

// Review is one user's rating of one product.
type Review struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Product   string    `json:"product"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingSummary is the aggregate of all reviews of a product.
type RatingSummary struct {
	AverageRating float64
	NumOfReviews  int
}

// Summarize computes the mean rating and review count. An empty set yields
// zero for both.
func Summarize(reviews []*Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return RatingSummary{
		AverageRating: float64(sum) / float64(len(reviews)),
		NumOfReviews:  len(reviews),
	}
}
