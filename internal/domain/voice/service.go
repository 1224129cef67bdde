package voice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/therabook/therabook/internal/domain/roster"
	"github.com/therabook/therabook/internal/domain/schedule"
	"github.com/therabook/therabook/internal/platform/interval"
)

// Service resolves voice commands against one schedule and applies the
// resulting modification. Only draft schedules may be modified.
type Service struct {
	schedules schedule.ScheduleRepository
	sessions  schedule.SessionRepository
	staff     roster.StaffRepository
	patients  roster.PatientRepository
	logger    zerolog.Logger
}

func NewService(
	schedules schedule.ScheduleRepository,
	sessions schedule.SessionRepository,
	staff roster.StaffRepository,
	patients roster.PatientRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		schedules: schedules,
		sessions:  sessions,
		staff:     staff,
		patients:  patients,
		logger:    logger,
	}
}

// Resolution is the outcome of resolving a command without applying it.
type Resolution struct {
	Matches   []Match             `json:"matches"`
	Conflicts []*schedule.Session `json:"conflicts,omitempty"`
}

// Resolve finds the sessions matching a command on a schedule. For a move
// command with a proposed interval it also reports conflicts for the best
// match. The schedule must be a draft; resolution against a published
// schedule is rejected before any matching happens.
func (s *Service) Resolve(ctx context.Context, scheduleID uuid.UUID, cmd Command) (*Resolution, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !sched.CanModify() {
		return nil, schedule.ErrScheduleNotDraft
	}

	sessions, err := s.sessions.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	staffNames, patientNames, err := s.nameIndex(ctx, sched.OrganizationID)
	if err != nil {
		return nil, err
	}

	matches := FindMatchingSessions(sessions, staffNames, patientNames, cmd)
	res := &Resolution{Matches: matches}

	if cmd.Action == ActionMove && len(matches) > 0 && cmd.NewStartTime != "" && cmd.NewEndTime != "" {
		res.Conflicts = CheckForConflicts(sessions, matches[0].Session, cmd.NewStartTime, cmd.NewEndTime)
	}

	s.logger.Debug().
		Str("schedule_id", scheduleID.String()).
		Str("action", cmd.Action).
		Int("matches", len(matches)).
		Int("conflicts", len(res.Conflicts)).
		Msg("voice command resolved")
	return res, nil
}

// Apply resolves a command and executes it against the single unambiguous
// match. A move with conflicts, zero matches, or more than one top-scoring
// match fails without touching persistence.
func (s *Service) Apply(ctx context.Context, scheduleID uuid.UUID, cmd Command) (*schedule.Session, error) {
	res, err := s.Resolve(ctx, scheduleID, cmd)
	if err != nil {
		return nil, err
	}
	if len(res.Matches) == 0 {
		return nil, ErrNoMatch
	}
	if len(res.Matches) > 1 && res.Matches[0].Score == res.Matches[1].Score {
		return nil, ErrAmbiguousMatch
	}

	target := res.Matches[0].Session
	switch cmd.Action {
	case ActionMove:
		if _, err := interval.MinuteOfDay(cmd.NewStartTime); err != nil {
			return nil, err
		}
		if _, err := interval.MinuteOfDay(cmd.NewEndTime); err != nil {
			return nil, err
		}
		if len(res.Conflicts) > 0 {
			return nil, ErrConflictingMove
		}
		target.StartTime = cmd.NewStartTime
		target.EndTime = cmd.NewEndTime
		if err := s.sessions.Update(ctx, target); err != nil {
			return nil, err
		}
		s.logger.Info().
			Str("session_id", target.ID.String()).
			Str("start", target.StartTime).
			Str("end", target.EndTime).
			Msg("session moved by voice command")
		return target, nil

	case ActionCancel:
		target.Status = schedule.SessionCancelled
		if err := s.sessions.Update(ctx, target); err != nil {
			return nil, err
		}
		s.logger.Info().
			Str("session_id", target.ID.String()).
			Msg("session cancelled by voice command")
		return target, nil

	default:
		return nil, fmt.Errorf("unsupported action %q", cmd.Action)
	}
}

func (s *Service) nameIndex(ctx context.Context, orgID uuid.UUID) (map[uuid.UUID]string, map[uuid.UUID]string, error) {
	staff, err := s.staff.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, nil, err
	}
	patients, err := s.patients.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, nil, err
	}
	staffNames := make(map[uuid.UUID]string, len(staff))
	for _, st := range staff {
		staffNames[st.ID] = st.Name
	}
	patientNames := make(map[uuid.UUID]string, len(patients))
	for _, p := range patients {
		patientNames[p.ID] = p.Name
	}
	return staffNames, patientNames, nil
}
