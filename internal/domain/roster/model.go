// Package roster holds the staff and patient records the scheduling engine
// reads. Rosters are read-only inputs to validation; CRUD beyond what the
// scheduler needs lives in the admin surface.
package roster

import (
	"time"

	"github.com/google/uuid"
)

// WorkHours is one day's working window as 24h clock times.
type WorkHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Staff maps to the staff table.
type Staff struct {
	ID             uuid.UUID            `db:"id" json:"id"`
	OrganizationID uuid.UUID            `db:"organization_id" json:"organization_id"`
	Name           string               `db:"name" json:"name"`
	Gender         *string              `db:"gender" json:"gender,omitempty"`
	Certifications []string             `db:"certifications" json:"certifications"`
	DefaultHours   map[string]WorkHours `db:"default_hours" json:"default_hours"`
	Active         bool                 `db:"active" json:"active"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updated_at"`
}

// HasCertifications reports whether the staff member holds every
// certification in required, and returns the missing ones in input order.
func (s *Staff) HasCertifications(required []string) (bool, []string) {
	held := make(map[string]bool, len(s.Certifications))
	for _, c := range s.Certifications {
		held[c] = true
	}
	var missing []string
	for _, c := range required {
		if !held[c] {
			missing = append(missing, c)
		}
	}
	return len(missing) == 0, missing
}

// HoursOn returns the working window for the given lowercase weekday name,
// or ok=false when no hours are configured for that day.
func (s *Staff) HoursOn(day string) (WorkHours, bool) {
	h, ok := s.DefaultHours[day]
	return h, ok
}

// Patient maps to the patient table.
type Patient struct {
	ID                     uuid.UUID `db:"id" json:"id"`
	OrganizationID         uuid.UUID `db:"organization_id" json:"organization_id"`
	Identifier             string    `db:"identifier" json:"identifier"`
	Name                   string    `db:"name" json:"name"`
	Gender                 *string   `db:"gender" json:"gender,omitempty"`
	SessionFrequency       int       `db:"session_frequency" json:"session_frequency"`
	RequiredCertifications []string  `db:"required_certifications" json:"required_certifications"`
	PreferredTimes         []string  `db:"preferred_times" json:"preferred_times,omitempty"`
	Active                 bool      `db:"active" json:"active"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}
