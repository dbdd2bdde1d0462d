// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// Event types published on the catalog exchange.
const (
	MovieCreated  = "movie.created"
	MovieUpdated  = "movie.updated"
	MovieDeleted  = "movie.deleted"
	ReviewAdded   = "review.added"
	ReviewDeleted = "review.deleted"
)

// CatalogEvent is published after a successful catalog write. It carries
// enough for downstream consumers to log or audit the change without
// querying the catalog store.
type CatalogEvent struct {
	Type       string    `json:"type"`
	MovieID    string    `json:"movie_id"`
	MovieName  string    `json:"movie_name,omitempty"`
	ReviewID   string    `json:"review_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	NumReviews int       `json:"num_reviews"`
	OccurredAt time.Time `json:"occurred_at"`
}
