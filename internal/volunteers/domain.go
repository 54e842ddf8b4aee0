// internal/volunteers/domain.go
package volunteers

import (
	"errors"
	"time"
)

var (
	// ErrMissingName is returned when a volunteer name is empty.
	ErrMissingName = errors.New("volunteer name is required")
	// ErrNotLead is returned when an operation reserved for lead
	// volunteers (assignments, stall leadership) names a non-lead.
	ErrNotLead = errors.New("volunteer is not a lead volunteer")
	// ErrRateLimited is returned when registrations come in too fast.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// RegisterInput describes a new volunteer.
type RegisterInput struct {
	Name            string    `json:"name"`
	JoinDate        time.Time `json:"join_date"`
	DefaultLocation string    `json:"default_location"`
}
