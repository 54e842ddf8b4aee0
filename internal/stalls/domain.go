// internal/stalls/domain.go
package stalls

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMissingLocation is returned when a stall location is empty.
	ErrMissingLocation = errors.New("stall location is required")
)

// CreateInput describes a new stall. The lead must be a lead volunteer;
// VolunteerIDs is the attendance list and is stored as given.
type CreateInput struct {
	Location     string      `json:"location"`
	Date         time.Time   `json:"date"`
	LeadID       uuid.UUID   `json:"lead_id"`
	VolunteerIDs []uuid.UUID `json:"volunteer_ids"`
}

// StallSummary is a stall row in the monthly listing.
type StallSummary struct {
	ID       uuid.UUID `json:"stall_id"`
	Location string    `json:"location"`
	Date     time.Time `json:"date"`
	Closed   bool      `json:"closed"`
}

// MonthGroup lists the stalls held in one calendar month.
type MonthGroup struct {
	Month  string         `json:"month"`
	Stalls []StallSummary `json:"stalls"`
}
