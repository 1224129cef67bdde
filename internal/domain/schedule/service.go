package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/therabook/therabook/internal/domain/roster"
	"github.com/therabook/therabook/internal/platform/db"
)

// TxBeginner opens the transaction multi-statement writes run under.
// *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service validates candidate batches against the rosters and persists the
// accepted sessions under a draft schedule.
type Service struct {
	schedules ScheduleRepository
	sessions  SessionRepository
	staff     roster.StaffRepository
	patients  roster.PatientRepository
	txer      TxBeginner
	loc       *time.Location
	logger    zerolog.Logger
}

// NewService wires the schedule domain. A nil txer runs batch writes without
// a transaction; unit tests use that path. A nil loc defaults to UTC.
func NewService(schedules ScheduleRepository, sessions SessionRepository,
	staff roster.StaffRepository, patients roster.PatientRepository,
	txer TxBeginner, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		schedules: schedules,
		sessions:  sessions,
		staff:     staff,
		patients:  patients,
		txer:      txer,
		loc:       loc,
		logger:    logger,
	}
}

// inTx runs fn with an open transaction on the context so every repository
// call inside joins it.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txer == nil {
		return fn(ctx)
	}
	tx, err := s.txer.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(db.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) CreateSchedule(ctx context.Context, sched *Schedule) error {
	if sched.OrganizationID == uuid.Nil {
		return fmt.Errorf("organization_id is required")
	}
	if sched.Name == "" {
		return fmt.Errorf("name is required")
	}
	sched.Status = StatusDraft
	return s.schedules.Create(ctx, sched)
}

func (s *Service) GetSchedule(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *Service) ListSchedules(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Schedule, int, error) {
	return s.schedules.ListByOrganization(ctx, orgID, limit, offset)
}

func (s *Service) ListSessions(ctx context.Context, scheduleID uuid.UUID) ([]*Session, error) {
	return s.sessions.ListBySchedule(ctx, scheduleID)
}

// ValidateBatch runs the session validator over a candidate batch using the
// organization's rosters. It persists nothing.
func (s *Service) ValidateBatch(ctx context.Context, orgID uuid.UUID, candidates []GeneratedSession) (ValidationResult, error) {
	staff, err := s.staff.ListByOrganization(ctx, orgID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("load staff roster: %w", err)
	}
	patients, err := s.patients.ListByOrganization(ctx, orgID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("load patient roster: %w", err)
	}

	result := ValidateSessions(candidates, staff, patients)
	s.logger.Info().
		Str("organization_id", orgID.String()).
		Int("candidates", len(candidates)).
		Int("accepted", len(result.Valid)).
		Int("rejected", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("validated candidate batch")
	return result, nil
}

// ApplyBatch validates a candidate batch and persists the accepted sessions
// under the given draft schedule. Rejected candidates are reported, not saved.
func (s *Service) ApplyBatch(ctx context.Context, scheduleID uuid.UUID, candidates []GeneratedSession) (ValidationResult, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return ValidationResult{}, err
	}
	if !sched.CanModify() {
		return ValidationResult{}, ErrScheduleNotDraft
	}

	result, err := s.ValidateBatch(ctx, sched.OrganizationID, candidates)
	if err != nil {
		return ValidationResult{}, err
	}

	toSave := make([]*Session, 0, len(result.Valid))
	for i := range result.Valid {
		sess := result.Valid[i]
		sess.OrganizationID = sched.OrganizationID
		sess.ScheduleID = &sched.ID
		toSave = append(toSave, &sess)
		result.Valid[i] = sess
	}
	// The batch lands whole or not at all.
	err = s.inTx(ctx, func(ctx context.Context) error {
		return s.sessions.CreateBatch(ctx, toSave)
	})
	if err != nil {
		return ValidationResult{}, fmt.Errorf("persist accepted sessions: %w", err)
	}
	return result, nil
}

// ListSessionsInRange lists an organization's sessions with dates in
// [from, to). Bare YYYY-MM-DD bounds are interpreted in the clinic's
// timezone so the day boundary matches local expectations.
func (s *Service) ListSessionsInRange(ctx context.Context, orgID uuid.UUID, fromStr, toStr string) ([]*Session, error) {
	from, err := time.ParseInLocation("2006-01-02", fromStr, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: from date %q", ErrInvalidDateRange, fromStr)
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: to date %q", ErrInvalidDateRange, toStr)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: %s is not after %s", ErrInvalidDateRange, toStr, fromStr)
	}
	return s.sessions.ListByOrganizationAndDateRange(ctx, orgID, from, to)
}

// DeleteSession removes a session from a draft schedule. Sessions under a
// published or archived schedule are immutable through this path.
func (s *Service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sess.ScheduleID != nil {
		sched, err := s.schedules.GetByID(ctx, *sess.ScheduleID)
		if err != nil {
			return err
		}
		if !sched.CanModify() {
			return ErrScheduleNotDraft
		}
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", id.String()).Msg("session deleted")
	return nil
}

// Publish moves a draft schedule to published.
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.transition(ctx, id, StatusPublished)
}

// Archive moves a published schedule to archived.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.transition(ctx, id, StatusArchived)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, target string) (*Schedule, error) {
	sched, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sched.Transition(target); err != nil {
		return nil, err
	}
	if err := s.schedules.Update(ctx, sched); err != nil {
		return nil, err
	}
	s.logger.Info().Str("schedule_id", id.String()).Str("status", target).Msg("schedule transitioned")
	return sched, nil
}
