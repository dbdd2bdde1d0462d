package model

import "time"

// Movie is a catalog entry. Reviews are embedded and owned exclusively by
// the movie; NumReviews always equals len(Reviews).
type Movie struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Year       int       `json:"year"`
	Genre      string    `json:"genre"`
	Detail     string    `json:"detail"`
	Cast       []string  `json:"cast"`
	Rating     float64   `json:"rating"`
	Tier       []string  `json:"tier"`
	Image      string    `json:"image"`
	Video      string    `json:"video"`
	NumReviews int       `json:"numReviews"`
	Reviews    []Review  `json:"reviews"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Review is a user's comment on a movie. Name is the author's username at
// submission time and is not kept in sync afterwards.
type Review struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewIndex returns the position of the review with the given id, or -1.
func (m *Movie) ReviewIndex(reviewID string) int {
	for i, r := range m.Reviews {
		if r.ID == reviewID {
			return i
		}
	}
	return -1
}

// ReviewedBy reports whether userID already has a review on this movie.
func (m *Movie) ReviewedBy(userID string) bool {
	for _, r := range m.Reviews {
		if r.User == userID {
			return true
		}
	}
	return false
}
