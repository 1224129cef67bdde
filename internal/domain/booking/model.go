// Package booking converts appointment holds into committed sessions. The
// conversion is the only write path for holds and always runs inside a
// single database transaction; see Manager.BookFromHold.
package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHoldNotFound = errors.New("hold not found")

	// ErrInvalidInterval rejects hold requests whose times are not
	// well-formed HH:MM clock times with start before end.
	ErrInvalidInterval = errors.New("invalid time interval")

	// ErrSlotUnavailable is the user-facing failure for every concurrency
	// conflict: expired hold, already-converted hold, released hold, or a
	// session that claimed the interval after the hold was granted.
	ErrSlotUnavailable = errors.New("Time slot is no longer available")
)

// Booking channels recorded on converted sessions.
const (
	ViaPhone  = "phone"
	ViaWeb    = "web"
	ViaWalkIn = "walk_in"
)

// AppointmentHold reserves a staff/room/interval tuple for a limited time.
// A hold ends in exactly one of three states: expired (ExpiresAt passed),
// released (ReleasedAt set), or converted (ConvertedToSessionID set).
type AppointmentHold struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrganizationID uuid.UUID  `db:"organization_id" json:"organization_id"`
	StaffID        uuid.UUID  `db:"staff_id" json:"staff_id"`
	RoomID         *uuid.UUID `db:"room_id" json:"room_id,omitempty"`
	Date           time.Time  `db:"hold_date" json:"date"`
	StartTime      string     `db:"start_time" json:"start_time"`
	EndTime        string     `db:"end_time" json:"end_time"`
	ExpiresAt      time.Time  `db:"expires_at" json:"expires_at"`

	ReleasedAt           *time.Time `db:"released_at" json:"released_at,omitempty"`
	ConvertedToSessionID *uuid.UUID `db:"converted_to_session_id" json:"converted_to_session_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Available reports whether the hold can still be converted at the given
// instant.
func (h *AppointmentHold) Available(now time.Time) bool {
	return h.ReleasedAt == nil && h.ConvertedToSessionID == nil && now.Before(h.ExpiresAt)
}

// Result is the outcome of a booking attempt. Error is set only when
// Success is false and carries a message suitable for end users.
type Result struct {
	Success   bool       `json:"success"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Error     string     `json:"error,omitempty"`
}
