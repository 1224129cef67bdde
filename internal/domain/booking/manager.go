package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/therabook/therabook/internal/domain/schedule"
	"github.com/therabook/therabook/internal/platform/interval"
)

// Manager converts holds into sessions. It holds no state of its own; all
// shared-resource discipline comes from the Runner's transaction isolation.
// There is no retry loop here: a conflict surfaces as Result.Success=false
// and retrying is the caller's choice.
type Manager struct {
	runner  Runner
	store   Store
	holdTTL time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

func NewManager(runner Runner, store Store, holdTTL time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		runner:  runner,
		store:   store,
		holdTTL: holdTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateHold grants a new hold on a staff/interval tuple, expiring after
// the configured TTL. A slot already covered by a committed session or a
// live hold is refused up front; the authoritative check still happens at
// conversion time inside the booking transaction.
func (m *Manager) CreateHold(ctx context.Context, h *AppointmentHold) error {
	// Hold times feed text comparisons in SQL; anything but zero-padded
	// HH:MM would corrupt every overlap check downstream.
	start, err := interval.MinuteOfDay(h.StartTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}
	end, err := interval.MinuteOfDay(h.EndTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}
	if start >= end {
		return fmt.Errorf("%w: %s is not before %s", ErrInvalidInterval, h.StartTime, h.EndTime)
	}

	now := m.now()

	conflict, err := m.store.FindConflictingSession(ctx, h.OrganizationID, h.StaffID, h.RoomID,
		h.Date, h.StartTime, h.EndTime)
	if err != nil {
		return err
	}
	if conflict != nil {
		return ErrSlotUnavailable
	}

	held, err := m.store.FindActiveHold(ctx, h.OrganizationID, h.StaffID, h.RoomID, h.Date, h.StartTime, h.EndTime, now)
	if err != nil {
		return err
	}
	if held != nil {
		return ErrSlotUnavailable
	}

	h.ExpiresAt = now.Add(m.holdTTL)
	if err := m.store.CreateHold(ctx, h); err != nil {
		return err
	}
	m.logger.Info().
		Str("hold_id", h.ID.String()).
		Str("staff_id", h.StaffID.String()).
		Time("expires_at", h.ExpiresAt).
		Msg("hold created")
	return nil
}

// ReleaseHold frees a hold before its expiry. Releasing an unknown hold is
// an error; releasing an already-released one is a no-op.
func (m *Manager) ReleaseHold(ctx context.Context, id, orgID uuid.UUID) error {
	h, err := m.store.GetHold(ctx, id, orgID)
	if err != nil {
		return err
	}
	if h.ConvertedToSessionID != nil {
		return ErrSlotUnavailable
	}
	return m.store.MarkHoldReleased(ctx, id, m.now())
}

// BookFromHold converts a hold into a committed session. The whole
// sequence — lock the hold, re-check for a conflicting session, create the
// session, mark the hold converted — runs in one transaction; any failure
// rolls back everything and leaves the hold untouched.
func (m *Manager) BookFromHold(ctx context.Context, holdID, orgID, patientID uuid.UUID, bookedVia string, bookedByContactID *uuid.UUID) (*Result, error) {
	var sessionID uuid.UUID

	err := m.runner.InTx(ctx, func(ctx context.Context, store Store) error {
		hold, err := store.GetHoldForUpdate(ctx, holdID, orgID)
		if err != nil {
			return err
		}
		if !hold.Available(m.now()) {
			return ErrSlotUnavailable
		}

		// The slot may have been claimed through another path since the
		// hold was granted.
		conflict, err := store.FindConflictingSession(ctx, orgID, hold.StaffID, hold.RoomID,
			hold.Date, hold.StartTime, hold.EndTime)
		if err != nil {
			return err
		}
		if conflict != nil {
			return ErrSlotUnavailable
		}

		sess := &schedule.Session{
			OrganizationID:    orgID,
			TherapistID:       hold.StaffID,
			PatientID:         patientID,
			RoomID:            hold.RoomID,
			Date:              hold.Date,
			StartTime:         hold.StartTime,
			EndTime:           hold.EndTime,
			Status:            schedule.SessionScheduled,
			BookedVia:         &bookedVia,
			BookedByContactID: bookedByContactID,
		}
		if err := store.CreateSession(ctx, sess); err != nil {
			return err
		}
		if err := store.MarkHoldConverted(ctx, holdID, sess.ID); err != nil {
			return err
		}
		sessionID = sess.ID
		return nil
	})

	switch {
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrHoldNotFound):
		m.logger.Info().
			Str("hold_id", holdID.String()).
			Err(err).
			Msg("booking conflict")
		return &Result{Success: false, Error: ErrSlotUnavailable.Error()}, nil
	case err != nil:
		return nil, err
	}

	m.logger.Info().
		Str("hold_id", holdID.String()).
		Str("session_id", sessionID.String()).
		Str("booked_via", bookedVia).
		Msg("hold converted to session")
	return &Result{Success: true, SessionID: &sessionID}, nil
}
