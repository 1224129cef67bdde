package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/therabook/therabook/internal/domain/schedule"
	"github.com/therabook/therabook/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// pgStore implements Store over either the pool or an open transaction.
type pgStore struct{ q queryable }

// PGRunner implements Runner over a pgx pool. The conflict re-check in
// BookFromHold requires at least repeatable-read isolation; two concurrent
// transactions must not both pass it.
type PGRunner struct{ pool *pgxpool.Pool }

func NewPGRunner(pool *pgxpool.Pool) *PGRunner { return &PGRunner{pool: pool} }

// NewPGStore returns a pool-backed Store for non-transactional hold access.
func NewPGStore(pool *pgxpool.Pool) Store { return &pgStore{q: pool} }

func (r *PGRunner) InTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Repository calls made through other packages join the transaction via
	// the context.
	if err := fn(db.WithTx(ctx, tx), &pgStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const holdCols = `id, organization_id, staff_id, room_id, hold_date, start_time, end_time,
	expires_at, released_at, converted_to_session_id, created_at`

func scanHold(row pgx.Row) (*AppointmentHold, error) {
	var h AppointmentHold
	err := row.Scan(&h.ID, &h.OrganizationID, &h.StaffID, &h.RoomID, &h.Date, &h.StartTime,
		&h.EndTime, &h.ExpiresAt, &h.ReleasedAt, &h.ConvertedToSessionID, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *pgStore) CreateHold(ctx context.Context, h *AppointmentHold) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO appointment_hold (id, organization_id, staff_id, room_id, hold_date,
			start_time, end_time, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		h.ID, h.OrganizationID, h.StaffID, h.RoomID, h.Date, h.StartTime, h.EndTime, h.ExpiresAt)
	return err
}

func (s *pgStore) GetHold(ctx context.Context, id, orgID uuid.UUID) (*AppointmentHold, error) {
	h, err := scanHold(s.q.QueryRow(ctx,
		`SELECT `+holdCols+` FROM appointment_hold WHERE id = $1 AND organization_id = $2`, id, orgID))
	if err == pgx.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	return h, err
}

func (s *pgStore) GetHoldForUpdate(ctx context.Context, id, orgID uuid.UUID) (*AppointmentHold, error) {
	h, err := scanHold(s.q.QueryRow(ctx,
		`SELECT `+holdCols+` FROM appointment_hold WHERE id = $1 AND organization_id = $2 FOR UPDATE`, id, orgID))
	if err == pgx.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	return h, err
}

func (s *pgStore) MarkHoldConverted(ctx context.Context, holdID, sessionID uuid.UUID) error {
	_, err := s.q.Exec(ctx,
		`UPDATE appointment_hold SET converted_to_session_id = $2 WHERE id = $1`, holdID, sessionID)
	return err
}

func (s *pgStore) MarkHoldReleased(ctx context.Context, holdID uuid.UUID, at time.Time) error {
	_, err := s.q.Exec(ctx,
		`UPDATE appointment_hold SET released_at = $2 WHERE id = $1 AND released_at IS NULL`, holdID, at)
	return err
}

// Zero-padded HH:MM strings compare correctly as text, so the half-open
// overlap test runs directly in SQL.
func (s *pgStore) FindConflictingSession(ctx context.Context, orgID, staffID uuid.UUID, roomID *uuid.UUID, date time.Time, startTime, endTime string) (*schedule.Session, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, organization_id, schedule_id, therapist_id, patient_id, room_id,
			session_date, start_time, end_time, status, booked_via, booked_by_contact_id, created_at, updated_at
		FROM session
		WHERE organization_id = $1
		  AND session_date = $2
		  AND status <> 'cancelled'
		  AND (therapist_id = $3 OR ($4::uuid IS NOT NULL AND room_id = $4))
		  AND start_time < $6 AND $5 < end_time
		LIMIT 1`,
		orgID, date, staffID, roomID, startTime, endTime)

	var sess schedule.Session
	err := row.Scan(&sess.ID, &sess.OrganizationID, &sess.ScheduleID, &sess.TherapistID, &sess.PatientID,
		&sess.RoomID, &sess.Date, &sess.StartTime, &sess.EndTime, &sess.Status,
		&sess.BookedVia, &sess.BookedByContactID, &sess.CreatedAt, &sess.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *pgStore) FindActiveHold(ctx context.Context, orgID, staffID uuid.UUID, roomID *uuid.UUID, date time.Time, startTime, endTime string, now time.Time) (*AppointmentHold, error) {
	h, err := scanHold(s.q.QueryRow(ctx, `
		SELECT `+holdCols+`
		FROM appointment_hold
		WHERE organization_id = $1
		  AND hold_date = $4
		  AND (staff_id = $2 OR ($3::uuid IS NOT NULL AND room_id = $3))
		  AND released_at IS NULL
		  AND converted_to_session_id IS NULL
		  AND expires_at > $7
		  AND start_time < $6 AND $5 < end_time
		LIMIT 1`,
		orgID, staffID, roomID, date, startTime, endTime, now))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return h, err
}

func (s *pgStore) CreateSession(ctx context.Context, sess *schedule.Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	if sess.Status == "" {
		sess.Status = schedule.SessionScheduled
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO session (id, organization_id, schedule_id, therapist_id, patient_id, room_id,
			session_date, start_time, end_time, status, booked_via, booked_by_contact_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		sess.ID, sess.OrganizationID, sess.ScheduleID, sess.TherapistID, sess.PatientID, sess.RoomID,
		sess.Date, sess.StartTime, sess.EndTime, sess.Status, sess.BookedVia, sess.BookedByContactID)
	return err
}
