// internal/reports/domain.go
package reports

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrBadMonth is returned for month strings not shaped like YYYY-MM.
var ErrBadMonth = errors.New("month must be formatted YYYY-MM")

// TitleSales is the sold/revenue pair for one title within a report scope.
type TitleSales struct {
	Title   string          `json:"title"`
	Sold    int             `json:"sold"`
	Revenue decimal.Decimal `json:"revenue"`
}

// StallHeader identifies a stall in its performance report.
type StallHeader struct {
	StallID    uuid.UUID `json:"stall_id"`
	Location   string    `json:"location"`
	Date       time.Time `json:"date"`
	Closed     bool      `json:"closed"`
	LeadName   string    `json:"lead_name"`
	Volunteers []string  `json:"volunteers"`
}

// StallTitleRow is one title's line in a stall performance report.
// LeadHolding is what the stall's lead still has in custody.
type StallTitleRow struct {
	Title       string          `json:"title"`
	Sold        int             `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	LeadHolding int             `json:"lead_holding"`
}

// StallPerformance is the full report for one stall.
type StallPerformance struct {
	Stall        StallHeader     `json:"stall"`
	Rows         []StallTitleRow `json:"performance"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// UnitBuckets is a histogram over sold-unit counts. Boundaries are
// inclusive on the lower and middle band: <10, 10-20, >20.
type UnitBuckets struct {
	Under10 int `json:"under_10"`
	From10  int `json:"from_10_to_20"`
	Over20  int `json:"over_20"`
}

func (b *UnitBuckets) add(units int) {
	switch {
	case units < 10:
		b.Under10++
	case units <= 20:
		b.From10++
	default:
		b.Over20++
	}
}

// RevenueBuckets is a histogram over revenue: <2000, 2000-5000, >5000.
type RevenueBuckets struct {
	Under2000 int `json:"under_2000"`
	From2000  int `json:"from_2000_to_5000"`
	Over5000  int `json:"over_5000"`
}

func (b *RevenueBuckets) add(revenue decimal.Decimal) {
	switch {
	case revenue.LessThan(decimal.NewFromInt(2000)):
		b.Under2000++
	case revenue.LessThanOrEqual(decimal.NewFromInt(5000)):
		b.From2000++
	default:
		b.Over5000++
	}
}

// AttendanceBuckets is a histogram over stalls attended per volunteer per
// month: 1, 2-3, >3.
type AttendanceBuckets struct {
	One        int `json:"one_stall"`
	TwoToThree int `json:"two_to_three_stalls"`
	OverThree  int `json:"over_three_stalls"`
}

func (b *AttendanceBuckets) add(stalls int) {
	switch {
	case stalls <= 1:
		b.One++
	case stalls <= 3:
		b.TwoToThree++
	default:
		b.OverThree++
	}
}

// StallTotals is a stall's aggregate line in the monthly report.
type StallTotals struct {
	StallID  uuid.UUID       `json:"stall_id"`
	Location string          `json:"location"`
	Sold     int             `json:"sold"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// LocationTotals aggregates every stall held at one location.
type LocationTotals struct {
	Location string          `json:"location"`
	Stalls   int             `json:"stalls"`
	Sold     int             `json:"sold"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// MonthlyPerformance is the dashboard rollup for one calendar month.
type MonthlyPerformance struct {
	Month               string            `json:"month"`
	TotalStalls         int               `json:"total_stalls"`
	TotalSold           int               `json:"total_sold"`
	TotalRevenue        decimal.Decimal   `json:"total_revenue"`
	TitleWise           []TitleSales      `json:"title_wise"`
	StallWise           []StallTotals     `json:"stall_wise"`
	LocationWise        []LocationTotals  `json:"location_wise"`
	StallUnitBuckets    UnitBuckets       `json:"stall_unit_buckets"`
	StallRevenueBuckets RevenueBuckets    `json:"stall_revenue_buckets"`
	LocationUnitBuckets UnitBuckets       `json:"location_unit_buckets"`
	Attendance          AttendanceBuckets `json:"volunteer_attendance_buckets"`
}

// LeadMonthRow is one lead volunteer's performance in one month.
type LeadMonthRow struct {
	Month     string          `json:"month"`
	LeadID    uuid.UUID       `json:"lead_id"`
	LeadName  string          `json:"lead_name"`
	StallsLed int             `json:"stalls_led"`
	BooksSold int             `json:"books_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	TitleWise []TitleSales    `json:"title_wise"`
}

// MonthAttendance is one month's line in an attendance report.
type MonthAttendance struct {
	Month          string `json:"month"`
	StallsAttended int    `json:"stalls_attended"`
}

// AttendanceReport counts stalls attended, optionally for one volunteer
// and a set of months.
type AttendanceReport struct {
	VolunteerID    *uuid.UUID        `json:"volunteer_id,omitempty"`
	Months         []string          `json:"months"`
	StallsAttended int               `json:"stalls_attended"`
	MonthWise      []MonthAttendance `json:"month_wise"`
}
