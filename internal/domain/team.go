package domain

import "time"

type Team struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"event_id"`
	Name      string    `json:"name"`
	Shots     int       `json:"shots"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamUpdate applies each non-nil field independently. Shots is an absolute
// value, not a delta.
type TeamUpdate struct {
	Name  *string
	Shots *int
}
