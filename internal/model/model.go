// Package model holds the persisted entities shared by every service.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a ledger entry.
type MovementType string

const (
	MovementAssign MovementType = "ASSIGN"
	MovementReturn MovementType = "RETURN"
	MovementSold   MovementType = "SOLD"
)

// Title is a book title. Immutable once sold against; created on demand.
type Title struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	Category string    `json:"category" db:"category"`
}

// Batch is a unit of procurement for a title. CopiesTotal only ever grows
// (new physical stock arriving); decreases happen through movements.
type Batch struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	TitleID     uuid.UUID       `json:"title_id" db:"title_id"`
	MRP         decimal.Decimal `json:"mrp" db:"mrp"`
	EntryDate   time.Time       `json:"entry_date" db:"entry_date"`
	CopiesTotal int             `json:"copies_total" db:"copies_total"`
}

// Volunteer is a field volunteer. Only leads may receive assignments or
// run a stall. IsLead flips false to true once; there is no demotion.
type Volunteer struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	JoinDate        time.Time `json:"join_date" db:"join_date"`
	IsLead          bool      `json:"is_lead" db:"is_lead"`
	DefaultLocation string    `json:"default_location" db:"default_location"`
}

// Stall is a pop-up sale event. Once closed it stays closed and rejects
// further sales.
type Stall struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Location     string      `json:"location" db:"location"`
	Date         time.Time   `json:"date" db:"stall_date"`
	LeadID       uuid.UUID   `json:"lead_id" db:"lead_id"`
	Closed       bool        `json:"closed" db:"closed"`
	VolunteerIDs []uuid.UUID `json:"volunteer_ids" db:"-"`
}

// Movement is one append-only ledger entry. The ledger is the system of
// record; every count is derived by folding over it. ID is a monotonically
// increasing identity; StallID is set for SOLD movements only and
// PricePerCopy is zero for non-SOLD types.
type Movement struct {
	ID           int64           `json:"id" db:"id"`
	BatchID      uuid.UUID       `json:"batch_id" db:"batch_id"`
	VolunteerID  uuid.UUID       `json:"volunteer_id" db:"volunteer_id"`
	StallID      uuid.NullUUID   `json:"stall_id,omitempty" db:"stall_id"`
	Type         MovementType    `json:"type" db:"mtype"`
	Copies       int             `json:"copies" db:"copies"`
	Date         time.Time       `json:"date" db:"movement_date"`
	PricePerCopy decimal.Decimal `json:"price_per_copy" db:"price_per_copy"`
}

// Revenue is the money this movement brought in. Zero for non-SOLD types.
func (m Movement) Revenue() decimal.Decimal {
	if m.Type != MovementSold {
		return decimal.Zero
	}
	return m.PricePerCopy.Mul(decimal.NewFromInt(int64(m.Copies)))
}

// Month renders the movement date as a YYYY-MM calendar month key.
func (m Movement) Month() string {
	return m.Date.Format("2006-01")
}
