// internal/reports/implementation.go
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstall/internal/model"
	"bookstall/internal/store"
)

// service implements the Service interface.
type service struct {
	store store.Store
}

// NewService creates a new reports service instance.
func NewService(st store.Store) Service {
	return &service{store: st}
}

// StallPerformance reports one stall: header, per-title sales, and what
// the lead still holds.
func (s *service) StallPerformance(ctx context.Context, stallID uuid.UUID) (*StallPerformance, error) {
	stall, err := s.store.GetStall(ctx, stallID)
	if err != nil {
		return nil, fmt.Errorf("stall %s: %w", stallID, err)
	}

	lead, err := s.store.GetVolunteer(ctx, stall.LeadID)
	if err != nil {
		return nil, fmt.Errorf("lead %s: %w", stall.LeadID, err)
	}

	var attending []string
	for _, volID := range stall.VolunteerIDs {
		v, err := s.store.GetVolunteer(ctx, volID)
		if err != nil {
			return nil, fmt.Errorf("volunteer %s: %w", volID, err)
		}
		attending = append(attending, v.Name)
	}
	sort.Strings(attending)

	titleOf, err := s.batchTitles(ctx)
	if err != nil {
		return nil, err
	}

	// Per-title sales: each SOLD movement tagged with this stall, once.
	sales, err := s.soldAtStall(ctx, stallID)
	if err != nil {
		return nil, err
	}
	type agg struct {
		sold    int
		revenue decimal.Decimal
		holding int
	}
	byTitle := make(map[string]*agg)
	titleAgg := func(name string) *agg {
		a, ok := byTitle[name]
		if !ok {
			a = &agg{revenue: decimal.Zero}
			byTitle[name] = a
		}
		return a
	}
	for _, m := range sales {
		a := titleAgg(titleOf[m.BatchID])
		a.sold += m.Copies
		a.revenue = a.revenue.Add(m.Revenue())
	}

	// What the lead still holds, per title, scoped to the lead.
	leadMovs, err := s.store.Movements(ctx, store.MovementFilter{VolunteerID: &stall.LeadID})
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	heldPerBatch := make(map[uuid.UUID]int)
	for _, m := range leadMovs {
		switch m.Type {
		case model.MovementAssign:
			heldPerBatch[m.BatchID] += m.Copies
		case model.MovementReturn, model.MovementSold:
			heldPerBatch[m.BatchID] -= m.Copies
		}
	}
	for batchID, held := range heldPerBatch {
		if held <= 0 {
			continue
		}
		titleAgg(titleOf[batchID]).holding += held
	}

	names := make([]string, 0, len(byTitle))
	for name := range byTitle {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &StallPerformance{
		Stall: StallHeader{
			StallID:    stall.ID,
			Location:   stall.Location,
			Date:       stall.Date,
			Closed:     stall.Closed,
			LeadName:   lead.Name,
			Volunteers: attending,
		},
		TotalRevenue: decimal.Zero,
	}
	for _, name := range names {
		a := byTitle[name]
		report.Rows = append(report.Rows, StallTitleRow{
			Title:       name,
			Sold:        a.sold,
			Revenue:     a.revenue.Round(2),
			LeadHolding: a.holding,
		})
		report.TotalSold += a.sold
		report.TotalRevenue = report.TotalRevenue.Add(a.revenue)
	}
	report.TotalRevenue = report.TotalRevenue.Round(2)
	return report, nil
}

// MonthlyPerformance rolls one calendar month up into dashboard totals
// and histogram buckets.
func (s *service) MonthlyPerformance(ctx context.Context, month string) (*MonthlyPerformance, error) {
	if err := validateMonths([]string{month}); err != nil {
		return nil, err
	}

	stalls, err := s.stallsInMonths(ctx, map[string]bool{month: true})
	if err != nil {
		return nil, err
	}

	titleOf, err := s.batchTitles(ctx)
	if err != nil {
		return nil, err
	}

	report := &MonthlyPerformance{Month: month, TotalRevenue: decimal.Zero}
	titleSold := make(map[string]int)
	titleRevenue := make(map[string]decimal.Decimal)
	locStalls := make(map[string]int)
	locSold := make(map[string]int)
	locRevenue := make(map[string]decimal.Decimal)
	attendance := make(map[uuid.UUID]int)

	for _, stall := range stalls {
		report.TotalStalls++

		sales, err := s.soldAtStall(ctx, stall.ID)
		if err != nil {
			return nil, err
		}
		stallSold := 0
		stallRevenue := decimal.Zero
		for _, m := range sales {
			name := titleOf[m.BatchID]
			titleSold[name] += m.Copies
			titleRevenue[name] = titleRevenue[name].Add(m.Revenue())
			stallSold += m.Copies
			stallRevenue = stallRevenue.Add(m.Revenue())
		}

		report.StallWise = append(report.StallWise, StallTotals{
			StallID:  stall.ID,
			Location: stall.Location,
			Sold:     stallSold,
			Revenue:  stallRevenue.Round(2),
		})
		report.StallUnitBuckets.add(stallSold)
		report.StallRevenueBuckets.add(stallRevenue)
		report.TotalSold += stallSold
		report.TotalRevenue = report.TotalRevenue.Add(stallRevenue)

		locStalls[stall.Location]++
		locSold[stall.Location] += stallSold
		if _, ok := locRevenue[stall.Location]; !ok {
			locRevenue[stall.Location] = decimal.Zero
		}
		locRevenue[stall.Location] = locRevenue[stall.Location].Add(stallRevenue)

		for _, volID := range stall.VolunteerIDs {
			attendance[volID]++
		}
	}

	for _, name := range sortedKeys(titleSold) {
		report.TitleWise = append(report.TitleWise, TitleSales{
			Title:   name,
			Sold:    titleSold[name],
			Revenue: titleRevenue[name].Round(2),
		})
	}
	for _, loc := range sortedKeys(locStalls) {
		report.LocationWise = append(report.LocationWise, LocationTotals{
			Location: loc,
			Stalls:   locStalls[loc],
			Sold:     locSold[loc],
			Revenue:  locRevenue[loc].Round(2),
		})
		report.LocationUnitBuckets.add(locSold[loc])
	}
	for _, count := range attendance {
		report.Attendance.add(count)
	}

	report.TotalRevenue = report.TotalRevenue.Round(2)
	return report, nil
}

// LeadPerformance reports per-lead, per-month stalls led, books sold and
// revenue. Sales are attributed by the SOLD movement's volunteer, so a
// lead's numbers never include another lead's stock.
func (s *service) LeadPerformance(ctx context.Context, leadID *uuid.UUID, months []string) ([]LeadMonthRow, error) {
	if err := validateMonths(months); err != nil {
		return nil, err
	}
	allowed := monthSet(months)

	leads, err := s.store.ListVolunteers(ctx, true)
	if err != nil {
		return nil, err
	}
	leadNames := make(map[uuid.UUID]string, len(leads))
	for _, l := range leads {
		leadNames[l.ID] = l.Name
	}

	type key struct {
		month string
		lead  uuid.UUID
	}
	stallsLed := make(map[key]int)
	booksSold := make(map[key]int)
	revenue := make(map[key]decimal.Decimal)
	titleWise := make(map[key]map[string]*TitleSales)

	allStalls, err := s.store.ListStalls(ctx)
	if err != nil {
		return nil, err
	}
	for _, stall := range allStalls {
		if _, isLead := leadNames[stall.LeadID]; !isLead {
			continue
		}
		m := stall.Date.Format("2006-01")
		if len(allowed) > 0 && !allowed[m] {
			continue
		}
		stallsLed[key{m, stall.LeadID}]++
	}

	titleOf, err := s.batchTitles(ctx)
	if err != nil {
		return nil, err
	}

	soldType := model.MovementSold
	sales, err := s.store.Movements(ctx, store.MovementFilter{Type: &soldType})
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	for _, mv := range sales {
		if _, isLead := leadNames[mv.VolunteerID]; !isLead {
			continue
		}
		m := mv.Month()
		if len(allowed) > 0 && !allowed[m] {
			continue
		}
		k := key{m, mv.VolunteerID}
		booksSold[k] += mv.Copies
		if _, ok := revenue[k]; !ok {
			revenue[k] = decimal.Zero
		}
		revenue[k] = revenue[k].Add(mv.Revenue())

		name := titleOf[mv.BatchID]
		if titleWise[k] == nil {
			titleWise[k] = make(map[string]*TitleSales)
		}
		ts, ok := titleWise[k][name]
		if !ok {
			ts = &TitleSales{Title: name, Revenue: decimal.Zero}
			titleWise[k][name] = ts
		}
		ts.Sold += mv.Copies
		ts.Revenue = ts.Revenue.Add(mv.Revenue())
	}

	keys := make(map[key]bool)
	for k := range stallsLed {
		keys[k] = true
	}
	for k := range booksSold {
		keys[k] = true
	}

	var out []LeadMonthRow
	for k := range keys {
		if leadID != nil && k.lead != *leadID {
			continue
		}
		row := LeadMonthRow{
			Month:     k.month,
			LeadID:    k.lead,
			LeadName:  leadNames[k.lead],
			StallsLed: stallsLed[k],
			BooksSold: booksSold[k],
			Revenue:   decimal.Zero,
		}
		if r, ok := revenue[k]; ok {
			row.Revenue = r.Round(2)
		}
		for _, name := range sortedKeys(titleWise[k]) {
			ts := titleWise[k][name]
			row.TitleWise = append(row.TitleWise, TitleSales{
				Title:   ts.Title,
				Sold:    ts.Sold,
				Revenue: ts.Revenue.Round(2),
			})
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].LeadName < out[j].LeadName
	})
	return out, nil
}

// LocationPerformance aggregates stalls, sold units and revenue per
// location across the selected months.
func (s *service) LocationPerformance(ctx context.Context, months []string) ([]LocationTotals, error) {
	if err := validateMonths(months); err != nil {
		return nil, err
	}

	stalls, err := s.stallsInMonths(ctx, monthSet(months))
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*LocationTotals)
	for _, stall := range stalls {
		lt, ok := totals[stall.Location]
		if !ok {
			lt = &LocationTotals{Location: stall.Location, Revenue: decimal.Zero}
			totals[stall.Location] = lt
		}
		lt.Stalls++

		sales, err := s.soldAtStall(ctx, stall.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range sales {
			lt.Sold += m.Copies
			lt.Revenue = lt.Revenue.Add(m.Revenue())
		}
	}

	locs := make([]string, 0, len(totals))
	for loc := range totals {
		locs = append(locs, loc)
	}
	sort.Strings(locs)

	out := make([]LocationTotals, 0, len(locs))
	for _, loc := range locs {
		lt := totals[loc]
		lt.Revenue = lt.Revenue.Round(2)
		out = append(out, *lt)
	}
	return out, nil
}

// Attendance counts stalls attended month by month, optionally narrowed
// to one volunteer.
func (s *service) Attendance(ctx context.Context, volunteerID *uuid.UUID, months []string) (*AttendanceReport, error) {
	if err := validateMonths(months); err != nil {
		return nil, err
	}

	stalls, err := s.stallsInMonths(ctx, monthSet(months))
	if err != nil {
		return nil, err
	}

	perMonth := make(map[string]int)
	total := 0
	for _, stall := range stalls {
		m := stall.Date.Format("2006-01")
		for _, volID := range stall.VolunteerIDs {
			if volunteerID != nil && volID != *volunteerID {
				continue
			}
			perMonth[m]++
			total++
		}
	}

	report := &AttendanceReport{
		VolunteerID:    volunteerID,
		Months:         months,
		StallsAttended: total,
	}
	for _, m := range sortedKeys(perMonth) {
		report.MonthWise = append(report.MonthWise, MonthAttendance{
			Month:          m,
			StallsAttended: perMonth[m],
		})
	}
	return report, nil
}

// soldAtStall returns the SOLD movements tagged with a stall. Tagging the
// movement with the stall at append time is what lets every report join a
// sale to exactly one stall.
func (s *service) soldAtStall(ctx context.Context, stallID uuid.UUID) ([]model.Movement, error) {
	soldType := model.MovementSold
	movs, err := s.store.Movements(ctx, store.MovementFilter{StallID: &stallID, Type: &soldType})
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	return movs, nil
}

func (s *service) stallsInMonths(ctx context.Context, allowed map[string]bool) ([]model.Stall, error) {
	all, err := s.store.ListStalls(ctx)
	if err != nil {
		return nil, err
	}
	if len(allowed) == 0 {
		return all, nil
	}
	var out []model.Stall
	for _, st := range all {
		if allowed[st.Date.Format("2006-01")] {
			out = append(out, st)
		}
	}
	return out, nil
}

// batchTitles maps every batch to its title name so each movement joins to
// exactly one title.
func (s *service) batchTitles(ctx context.Context) (map[uuid.UUID]string, error) {
	titles, err := s.store.ListTitles(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(titles))
	for _, t := range titles {
		names[t.ID] = t.Name
	}
	batches, err := s.store.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(batches))
	for _, b := range batches {
		out[b.ID] = names[b.TitleID]
	}
	return out, nil
}

func validateMonths(months []string) error {
	for _, m := range months {
		if _, err := time.Parse("2006-01", m); err != nil {
			return fmt.Errorf("%q: %w", m, ErrBadMonth)
		}
	}
	return nil
}

func monthSet(months []string) map[string]bool {
	set := make(map[string]bool, len(months))
	for _, m := range months {
		set[m] = true
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
