// Package schedule owns the therapy schedule: committed sessions, candidate
// validation, and the draft/published/archived lifecycle.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Schedule statuses. Transitions are one-way: draft -> published -> archived.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Session statuses.
const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

var (
	ErrInvalidTransition = errors.New("invalid schedule status transition")
	ErrScheduleNotDraft  = errors.New("schedule is not in draft status")
	ErrSessionNotFound   = errors.New("session not found")
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrInvalidDateRange  = errors.New("invalid date range")
)

// Schedule maps to the schedule table. A schedule is a named batch of
// sessions (typically one week) moving through the draft/published/archived
// lifecycle.
type Schedule struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Status         string    `db:"status" json:"status"`
	WeekOf         time.Time `db:"week_of" json:"week_of"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CanModify reports whether sessions under this schedule may be edited.
// Only draft schedules are editable.
func (s *Schedule) CanModify() bool { return s.Status == StatusDraft }

// Transition moves the schedule to the target status, enforcing the one-way
// draft -> published -> archived machine.
func (s *Schedule) Transition(target string) error {
	allowed := map[string]string{
		StatusDraft:     StatusPublished,
		StatusPublished: StatusArchived,
	}
	if next, ok := allowed[s.Status]; !ok || next != target {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, target)
	}
	s.Status = target
	return nil
}

// Session maps to the session table: one committed therapy session.
// Start and end are 24h clock times; Date carries the calendar day in the
// clinic's timezone.
type Session struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrganizationID uuid.UUID  `db:"organization_id" json:"organization_id"`
	ScheduleID     *uuid.UUID `db:"schedule_id" json:"schedule_id,omitempty"`
	TherapistID    uuid.UUID  `db:"therapist_id" json:"therapist_id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RoomID         *uuid.UUID `db:"room_id" json:"room_id,omitempty"`
	Date           time.Time  `db:"session_date" json:"date"`
	StartTime      string     `db:"start_time" json:"start_time"`
	EndTime        string     `db:"end_time" json:"end_time"`
	Status         string     `db:"status" json:"status"`

	// Booking provenance, set only for sessions created from a hold.
	BookedVia         *string    `db:"booked_via" json:"booked_via,omitempty"`
	BookedByContactID *uuid.UUID `db:"booked_by_contact_id" json:"booked_by_contact_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GeneratedSession is an unvalidated candidate produced by an external
// generator. It exists only as validator input.
type GeneratedSession struct {
	TherapistID uuid.UUID `json:"therapist_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
}

// SameDay reports whether two timestamps fall on the same calendar date in
// their respective locations.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
