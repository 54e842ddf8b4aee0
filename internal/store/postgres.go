package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookstall/internal/model"
)

// Postgres is the durable Store. The movement append runs in a serializable
// transaction with an expected-version check, backed by a unique
// (batch_id, seq) constraint against races that slip past the check.
type Postgres struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{
		db:     db,
		tracer: otel.Tracer("bookstall/store"),
	}
}

var _ Store = (*Postgres)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS titles (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL DEFAULT 'Unknown'
);
CREATE TABLE IF NOT EXISTS batches (
	id UUID PRIMARY KEY,
	title_id UUID NOT NULL REFERENCES titles(id),
	mrp NUMERIC(12,2) NOT NULL,
	entry_date TIMESTAMPTZ NOT NULL,
	copies_total INT NOT NULL CHECK (copies_total >= 0)
);
CREATE TABLE IF NOT EXISTS volunteers (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	join_date TIMESTAMPTZ NOT NULL,
	is_lead BOOLEAN NOT NULL DEFAULT FALSE,
	default_location TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS stalls (
	id UUID PRIMARY KEY,
	location TEXT NOT NULL,
	stall_date TIMESTAMPTZ NOT NULL,
	lead_id UUID NOT NULL REFERENCES volunteers(id),
	closed BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS stall_volunteers (
	stall_id UUID NOT NULL REFERENCES stalls(id),
	volunteer_id UUID NOT NULL REFERENCES volunteers(id),
	PRIMARY KEY (stall_id, volunteer_id)
);
CREATE TABLE IF NOT EXISTS movements (
	id BIGSERIAL PRIMARY KEY,
	batch_id UUID NOT NULL REFERENCES batches(id),
	volunteer_id UUID NOT NULL REFERENCES volunteers(id),
	stall_id UUID REFERENCES stalls(id),
	mtype TEXT NOT NULL,
	copies INT NOT NULL CHECK (copies > 0),
	movement_date TIMESTAMPTZ NOT NULL,
	price_per_copy NUMERIC(12,2) NOT NULL DEFAULT 0,
	seq INT NOT NULL,
	UNIQUE (batch_id, seq)
);
`

// EnsureSchema creates the tables if they do not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Postgres) CreateTitle(ctx context.Context, t model.Title) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO titles (id, name, category) VALUES ($1, $2, $3)`,
		t.ID, t.Name, t.Category)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Postgres) GetTitle(ctx context.Context, id uuid.UUID) (model.Title, error) {
	var t model.Title
	err := s.db.GetContext(ctx, &t, `SELECT id, name, category FROM titles WHERE id = $1`, id)
	return t, mapNoRows(err)
}

func (s *Postgres) GetTitleByName(ctx context.Context, name string) (model.Title, error) {
	var t model.Title
	err := s.db.GetContext(ctx, &t,
		`SELECT id, name, category FROM titles WHERE lower(name) = lower($1)`, name)
	return t, mapNoRows(err)
}

func (s *Postgres) ListTitles(ctx context.Context) ([]model.Title, error) {
	var out []model.Title
	err := s.db.SelectContext(ctx, &out, `SELECT id, name, category FROM titles ORDER BY name`)
	return out, err
}

func (s *Postgres) CreateBatch(ctx context.Context, b model.Batch) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batches (id, title_id, mrp, entry_date, copies_total)
		 VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.TitleID, b.MRP, b.EntryDate, b.CopiesTotal)
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

func (s *Postgres) GetBatch(ctx context.Context, id uuid.UUID) (model.Batch, error) {
	var b model.Batch
	err := s.db.GetContext(ctx, &b,
		`SELECT id, title_id, mrp, entry_date, copies_total FROM batches WHERE id = $1`, id)
	return b, mapNoRows(err)
}

func (s *Postgres) AddCopies(ctx context.Context, batchID uuid.UUID, extra int) (model.Batch, error) {
	if extra <= 0 {
		return model.Batch{}, ErrInvalidQuantity
	}
	var b model.Batch
	err := s.db.GetContext(ctx, &b,
		`UPDATE batches SET copies_total = copies_total + $1 WHERE id = $2
		 RETURNING id, title_id, mrp, entry_date, copies_total`, extra, batchID)
	return b, mapNoRows(err)
}

func (s *Postgres) ListBatches(ctx context.Context) ([]model.Batch, error) {
	var out []model.Batch
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, title_id, mrp, entry_date, copies_total FROM batches ORDER BY entry_date`)
	return out, err
}

func (s *Postgres) ListBatchesForTitle(ctx context.Context, titleID uuid.UUID) ([]model.Batch, error) {
	var out []model.Batch
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, title_id, mrp, entry_date, copies_total
		 FROM batches WHERE title_id = $1 ORDER BY entry_date`, titleID)
	return out, err
}

func (s *Postgres) CreateVolunteer(ctx context.Context, v model.Volunteer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO volunteers (id, name, join_date, is_lead, default_location)
		 VALUES ($1, $2, $3, $4, $5)`,
		v.ID, v.Name, v.JoinDate, v.IsLead, v.DefaultLocation)
	return err
}

func (s *Postgres) GetVolunteer(ctx context.Context, id uuid.UUID) (model.Volunteer, error) {
	var v model.Volunteer
	err := s.db.GetContext(ctx, &v,
		`SELECT id, name, join_date, is_lead, default_location FROM volunteers WHERE id = $1`, id)
	return v, mapNoRows(err)
}

func (s *Postgres) PromoteLead(ctx context.Context, id uuid.UUID) (model.Volunteer, error) {
	var v model.Volunteer
	err := s.db.GetContext(ctx, &v,
		`UPDATE volunteers SET is_lead = TRUE WHERE id = $1
		 RETURNING id, name, join_date, is_lead, default_location`, id)
	return v, mapNoRows(err)
}

func (s *Postgres) ListVolunteers(ctx context.Context, leadsOnly bool) ([]model.Volunteer, error) {
	q := `SELECT id, name, join_date, is_lead, default_location FROM volunteers`
	if leadsOnly {
		q += ` WHERE is_lead`
	}
	q += ` ORDER BY name`
	var out []model.Volunteer
	err := s.db.SelectContext(ctx, &out, q)
	return out, err
}

func (s *Postgres) CreateStall(ctx context.Context, st model.Stall) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO stalls (id, location, stall_date, lead_id, closed)
		 VALUES ($1, $2, $3, $4, $5)`,
		st.ID, st.Location, st.Date, st.LeadID, st.Closed)
	if err != nil {
		return err
	}
	for _, volID := range st.VolunteerIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO stall_volunteers (stall_id, volunteer_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, st.ID, volID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Postgres) GetStall(ctx context.Context, id uuid.UUID) (model.Stall, error) {
	var st model.Stall
	err := s.db.GetContext(ctx, &st,
		`SELECT id, location, stall_date, lead_id, closed FROM stalls WHERE id = $1`, id)
	if err != nil {
		return model.Stall{}, mapNoRows(err)
	}
	err = s.db.SelectContext(ctx, &st.VolunteerIDs,
		`SELECT volunteer_id FROM stall_volunteers WHERE stall_id = $1`, id)
	return st, err
}

func (s *Postgres) CloseStall(ctx context.Context, id uuid.UUID) (model.Stall, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE stalls SET closed = TRUE WHERE id = $1`, id)
	if err != nil {
		return model.Stall{}, err
	}
	return s.GetStall(ctx, id)
}

func (s *Postgres) ListStalls(ctx context.Context) ([]model.Stall, error) {
	var stalls []model.Stall
	err := s.db.SelectContext(ctx, &stalls,
		`SELECT id, location, stall_date, lead_id, closed FROM stalls ORDER BY stall_date`)
	if err != nil {
		return nil, err
	}
	for i := range stalls {
		err = s.db.SelectContext(ctx, &stalls[i].VolunteerIDs,
			`SELECT volunteer_id FROM stall_volunteers WHERE stall_id = $1`, stalls[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return stalls, nil
}

func (s *Postgres) BatchVersion(ctx context.Context, batchID uuid.UUID) (int, error) {
	if _, err := s.GetBatch(ctx, batchID); err != nil {
		return 0, err
	}
	var version int
	err := s.db.GetContext(ctx, &version,
		`SELECT COUNT(*) FROM movements WHERE batch_id = $1`, batchID)
	return version, err
}

func (s *Postgres) AppendMovement(ctx context.Context, m model.Movement, expectedVersion int) (model.Movement, error) {
	ctx, span := s.tracer.Start(ctx, "store.append_movement",
		trace.WithAttributes(
			attribute.String("batch.id", m.BatchID.String()),
			attribute.String("movement.type", string(m.Type)),
			attribute.Int("movement.copies", m.Copies),
			attribute.Int("expected.version", expectedVersion),
		),
	)
	defer span.End()

	if m.Copies <= 0 {
		return model.Movement{}, ErrInvalidQuantity
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return model.Movement{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.GetBatch(ctx, m.BatchID); err != nil {
		return model.Movement{}, err
	}

	var currentVersion int
	err = tx.GetContext(ctx, &currentVersion,
		`SELECT COUNT(*) FROM movements WHERE batch_id = $1`, m.BatchID)
	if err != nil {
		return model.Movement{}, fmt.Errorf("query current version: %w", err)
	}
	if currentVersion != expectedVersion {
		span.SetAttributes(attribute.Int("actual.version", currentVersion))
		return model.Movement{}, ErrVersionConflict
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO movements (batch_id, volunteer_id, stall_id, mtype, copies, movement_date, price_per_copy, seq)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		m.BatchID, m.VolunteerID, m.StallID, m.Type, m.Copies, m.Date, m.PricePerCopy, expectedVersion+1,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Movement{}, ErrVersionConflict
		}
		return model.Movement{}, fmt.Errorf("insert movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Movement{}, fmt.Errorf("commit transaction: %w", err)
	}
	return m, nil
}

func (s *Postgres) Movements(ctx context.Context, f MovementFilter) ([]model.Movement, error) {
	q := `SELECT id, batch_id, volunteer_id, stall_id, mtype, copies, movement_date, price_per_copy
	      FROM movements`
	var (
		clauses []string
		args    []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.BatchID != nil {
		clauses = append(clauses, "batch_id = "+arg(*f.BatchID))
	}
	if f.VolunteerID != nil {
		clauses = append(clauses, "volunteer_id = "+arg(*f.VolunteerID))
	}
	if f.StallID != nil {
		clauses = append(clauses, "stall_id = "+arg(*f.StallID))
	}
	if f.Type != nil {
		clauses = append(clauses, "mtype = "+arg(string(*f.Type)))
	}
	if f.From != nil {
		clauses = append(clauses, "movement_date >= "+arg(*f.From))
	}
	if f.To != nil {
		clauses = append(clauses, "movement_date <= "+arg(*f.To))
	}
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	q += " ORDER BY id"

	var out []model.Movement
	err := s.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
