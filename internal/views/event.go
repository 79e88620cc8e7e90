package views

import (
	"time"

	"github.com/google/uuid"
)

// Event is one page view as published by the api service. The ID lets the
// worker drop redeliveries instead of double-counting.
type Event struct {
	ID   string    `json:"id"`
	Slug string    `json:"slug"`
	At   time.Time `json:"at"`
}

// NewEvent stamps a view of the given post.
func NewEvent(slug string, at time.Time) Event {
	return Event{
		ID:   uuid.NewString(),
		Slug: slug,
		At:   at.UTC(),
	}
}
