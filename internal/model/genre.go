package model

import "time"

// Genre is referenced by Movie.Genre through its ID.
type Genre struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
