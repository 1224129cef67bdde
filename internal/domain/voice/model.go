// Package voice resolves structured voice-command descriptors against a
// draft schedule: fuzzy session matching plus conflict checking for proposed
// moves. Free-text parsing happens upstream; this package only sees the
// structured descriptor.
package voice

import (
	"errors"

	"github.com/therabook/therabook/internal/domain/schedule"
)

var (
	ErrNoMatch         = errors.New("no session matches the description")
	ErrAmbiguousMatch  = errors.New("description matches more than one session")
	ErrConflictingMove = errors.New("proposed time conflicts with existing sessions")
)

// Command actions understood by the resolver.
const (
	ActionMove   = "move"
	ActionCancel = "cancel"
)

// Command is the structured descriptor produced by the natural-language
// layer. All match fields are optional; empty fields simply contribute
// nothing to the score.
type Command struct {
	Action        string `json:"action"`
	TherapistName string `json:"therapist_name,omitempty"`
	PatientName   string `json:"patient_name,omitempty"`
	DayOfWeek     string `json:"day_of_week,omitempty"`
	Time          string `json:"time,omitempty"`

	// Target interval for a move.
	NewStartTime string `json:"new_start_time,omitempty"`
	NewEndTime   string `json:"new_end_time,omitempty"`
}

// Match scoring weights. An exact full-name match must outrank a partial
// one, and a name match outranks a day match, which outranks a time match.
const (
	weightNameExact   = 3.0
	weightNamePartial = 1.5
	weightDay         = 2.0
	weightTime        = 1.0
)

// Match is one candidate session with its score breakdown.
type Match struct {
	Session *schedule.Session `json:"session"`
	Score   float64           `json:"score"`
	Details []string          `json:"details"`
}
