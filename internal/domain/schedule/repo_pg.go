package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/therabook/therabook/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Schedule Repository ===========

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository { return &scheduleRepoPG{pool: pool} }

func (r *scheduleRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const schedCols = `id, organization_id, name, status, week_of, created_at, updated_at`

func (r *scheduleRepoPG) scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.Status, &s.WeekOf, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepoPG) Create(ctx context.Context, s *Schedule) error {
	s.ID = uuid.New()
	if s.Status == "" {
		s.Status = StatusDraft
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO schedule (id, organization_id, name, status, week_of)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.OrganizationID, s.Name, s.Status, s.WeekOf)
	return err
}

func (r *scheduleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	s, err := r.scanSchedule(r.conn(ctx).QueryRow(ctx, `SELECT `+schedCols+` FROM schedule WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	return s, err
}

func (r *scheduleRepoPG) Update(ctx context.Context, s *Schedule) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedule SET name=$2, status=$3, week_of=$4, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Status, s.WeekOf)
	return err
}

func (r *scheduleRepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Schedule, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM schedule WHERE organization_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+schedCols+` FROM schedule WHERE organization_id = $1 ORDER BY week_of DESC LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Schedule
	for rows.Next() {
		s, err := r.scanSchedule(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// =========== Session Repository ===========

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository { return &sessionRepoPG{pool: pool} }

func (r *sessionRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const sessionCols = `id, organization_id, schedule_id, therapist_id, patient_id, room_id,
	session_date, start_time, end_time, status, booked_via, booked_by_contact_id, created_at, updated_at`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.OrganizationID, &s.ScheduleID, &s.TherapistID, &s.PatientID,
		&s.RoomID, &s.Date, &s.StartTime, &s.EndTime, &s.Status,
		&s.BookedVia, &s.BookedByContactID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepoPG) Create(ctx context.Context, s *Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SessionScheduled
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO session (id, organization_id, schedule_id, therapist_id, patient_id, room_id,
			session_date, start_time, end_time, status, booked_via, booked_by_contact_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		s.ID, s.OrganizationID, s.ScheduleID, s.TherapistID, s.PatientID, s.RoomID,
		s.Date, s.StartTime, s.EndTime, s.Status, s.BookedVia, s.BookedByContactID)
	return err
}

func (r *sessionRepoPG) CreateBatch(ctx context.Context, sessions []*Session) error {
	for _, s := range sessions {
		if err := r.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	s, err := scanSession(r.conn(ctx).QueryRow(ctx, `SELECT `+sessionCols+` FROM session WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	return s, err
}

func (r *sessionRepoPG) Update(ctx context.Context, s *Session) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE session SET therapist_id=$2, patient_id=$3, room_id=$4, session_date=$5,
			start_time=$6, end_time=$7, status=$8, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.TherapistID, s.PatientID, s.RoomID, s.Date, s.StartTime, s.EndTime, s.Status)
	return err
}

func (r *sessionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM session WHERE id = $1`, id)
	return err
}

func (r *sessionRepoPG) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*Session, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+sessionCols+` FROM session WHERE schedule_id = $1 ORDER BY session_date, start_time`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepoPG) ListByOrganizationAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]*Session, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+sessionCols+` FROM session
		WHERE organization_id = $1 AND session_date >= $2 AND session_date < $3
		ORDER BY session_date, start_time`, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]*Session, error) {
	var items []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
