// internal/reports/service.go
package reports

import (
	"context"

	"github.com/google/uuid"
)

// Service is the read-only reporting surface. It never mutates state; all
// rollups fold over SOLD movements joined once to their batch and title.
type Service interface {
	StallPerformance(ctx context.Context, stallID uuid.UUID) (*StallPerformance, error)
	MonthlyPerformance(ctx context.Context, month string) (*MonthlyPerformance, error)
	LeadPerformance(ctx context.Context, leadID *uuid.UUID, months []string) ([]LeadMonthRow, error)
	LocationPerformance(ctx context.Context, months []string) ([]LocationTotals, error)
	Attendance(ctx context.Context, volunteerID *uuid.UUID, months []string) (*AttendanceReport, error)
}
