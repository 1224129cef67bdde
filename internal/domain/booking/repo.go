package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/therabook/therabook/internal/domain/schedule"
)

// Store is the persistence surface the booking transaction needs. Inside
// Runner.InTx every call runs on the transaction's connection.
type Store interface {
	CreateHold(ctx context.Context, h *AppointmentHold) error
	GetHold(ctx context.Context, id, orgID uuid.UUID) (*AppointmentHold, error)

	// GetHoldForUpdate locks the hold row for the duration of the
	// enclosing transaction.
	GetHoldForUpdate(ctx context.Context, id, orgID uuid.UUID) (*AppointmentHold, error)
	MarkHoldConverted(ctx context.Context, holdID, sessionID uuid.UUID) error
	MarkHoldReleased(ctx context.Context, holdID uuid.UUID, at time.Time) error

	// FindConflictingSession reports any committed, non-cancelled session
	// overlapping the interval for the same staff member or room.
	FindConflictingSession(ctx context.Context, orgID, staffID uuid.UUID, roomID *uuid.UUID, date time.Time, startTime, endTime string) (*schedule.Session, error)

	// FindActiveHold reports any unexpired, unreleased, unconverted hold
	// overlapping the interval for the same staff member or room.
	FindActiveHold(ctx context.Context, orgID, staffID uuid.UUID, roomID *uuid.UUID, date time.Time, startTime, endTime string, now time.Time) (*AppointmentHold, error)
	CreateSession(ctx context.Context, s *schedule.Session) error
}

// Runner executes fn inside one database transaction. fn returning an error
// rolls everything back.
type Runner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}
