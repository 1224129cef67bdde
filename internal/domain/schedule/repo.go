package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ScheduleRepository persists schedule batches.
type ScheduleRepository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Schedule, int, error)
}

// SessionRepository persists committed sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	CreateBatch(ctx context.Context, sessions []*Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*Session, error)
	ListByOrganizationAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]*Session, error)
}
