package schedule

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/therabook/therabook/internal/domain/roster"
	"github.com/therabook/therabook/internal/platform/interval"
)

// CandidateError records why one candidate was rejected. A candidate can
// carry several errors (e.g. both a therapist and a patient overlap).
type CandidateError struct {
	Session GeneratedSession `json:"session"`
	Errors  []string         `json:"errors"`
}

// ValidationResult partitions a candidate batch into accepted sessions and
// per-candidate rejections, plus advisory warnings that never block.
type ValidationResult struct {
	Valid    []Session        `json:"valid"`
	Errors   []CandidateError `json:"errors"`
	Warnings []string         `json:"warnings"`
}

// ValidateSessions checks a batch of generated candidates against the staff
// and patient rosters. It is a pure function over its inputs: candidates are
// processed in input order, and each accepted candidate becomes an overlap
// subject for the ones after it. Rejected candidates never block later ones.
func ValidateSessions(candidates []GeneratedSession, staff []*roster.Staff, patients []*roster.Patient) ValidationResult {
	staffByID := make(map[uuid.UUID]*roster.Staff, len(staff))
	for _, s := range staff {
		staffByID[s.ID] = s
	}
	patientByID := make(map[uuid.UUID]*roster.Patient, len(patients))
	for _, p := range patients {
		patientByID[p.ID] = p
	}

	result := ValidationResult{}
	perPatientCount := make(map[uuid.UUID]int, len(patients))

	for _, cand := range candidates {
		therapist, therapistOK := staffByID[cand.TherapistID]
		patient, patientOK := patientByID[cand.PatientID]

		// Unresolvable references reject the candidate outright; none of the
		// constraint checks are meaningful without both parties.
		if !therapistOK || !patientOK {
			var errs []string
			if !therapistOK {
				errs = append(errs, fmt.Sprintf("Therapist %s not found", cand.TherapistID))
			}
			if !patientOK {
				errs = append(errs, fmt.Sprintf("Patient %s not found", cand.PatientID))
			}
			result.Errors = append(result.Errors, CandidateError{Session: cand, Errors: errs})
			continue
		}

		// Times the interval math cannot parse reject the candidate before
		// any constraint check runs; an unparseable interval would otherwise
		// sail past the hours and overlap checks as an empty one.
		startMin, startErr := interval.MinuteOfDay(cand.StartTime)
		endMin, endErr := interval.MinuteOfDay(cand.EndTime)
		if startErr != nil || endErr != nil {
			var errs []string
			if startErr != nil {
				errs = append(errs, fmt.Sprintf("Invalid start time %q, expected 24h HH:MM", cand.StartTime))
			}
			if endErr != nil {
				errs = append(errs, fmt.Sprintf("Invalid end time %q, expected 24h HH:MM", cand.EndTime))
			}
			result.Errors = append(result.Errors, CandidateError{Session: cand, Errors: errs})
			continue
		}

		var errs []string

		if ok, missing := therapist.HasCertifications(patient.RequiredCertifications); !ok {
			errs = append(errs, fmt.Sprintf("%s is missing required certifications for %s: %s",
				therapist.Name, patient.Name, strings.Join(missing, ", ")))
		}

		day := interval.Weekday(cand.Date)
		if hours, ok := therapist.HoursOn(day); ok {
			if !interval.Contains(
				interval.MustMinuteOfDay(hours.Start), interval.MustMinuteOfDay(hours.End),
				startMin, endMin,
			) {
				errs = append(errs, fmt.Sprintf("Session %s-%s is outside %s's working hours on %s (%s-%s)",
					cand.StartTime, cand.EndTime, therapist.Name, day, hours.Start, hours.End))
			}
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s doesn't have scheduled hours on %s, but was assigned a session", therapist.Name, day))
		}

		// Overlap checks run against accepted candidates only; a candidate
		// rejected above still reports any overlaps it would have had.
		dateStr := cand.Date.Format("2006-01-02")
		for i := range result.Valid {
			accepted := &result.Valid[i]
			if !SameDay(accepted.Date, cand.Date) {
				continue
			}
			if !interval.OverlapsClock(accepted.StartTime, accepted.EndTime, cand.StartTime, cand.EndTime) {
				continue
			}
			if accepted.TherapistID == cand.TherapistID {
				errs = append(errs, fmt.Sprintf("%s has overlapping sessions on %s", therapist.Name, dateStr))
			}
			if accepted.PatientID == cand.PatientID {
				errs = append(errs, fmt.Sprintf("Patient %s has overlapping sessions on %s", patient.Name, dateStr))
			}
		}

		if len(errs) > 0 {
			result.Errors = append(result.Errors, CandidateError{Session: cand, Errors: errs})
			continue
		}

		result.Valid = append(result.Valid, Session{
			ID:          uuid.New(),
			TherapistID: cand.TherapistID,
			PatientID:   cand.PatientID,
			Date:        cand.Date,
			StartTime:   cand.StartTime,
			EndTime:     cand.EndTime,
			Status:      SessionScheduled,
		})
		perPatientCount[cand.PatientID]++
	}

	// Frequency warnings in roster order, after the whole batch is settled.
	for _, p := range patients {
		n := perPatientCount[p.ID]
		if n != p.SessionFrequency {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Patient %s (ID: %s) is scheduled for %d sessions instead of the requested %d.",
				p.Name, p.Identifier, n, p.SessionFrequency))
		}
	}

	return result
}
