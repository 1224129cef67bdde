package voice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/therabook/therabook/internal/domain/schedule"
	"github.com/therabook/therabook/internal/platform/interval"
)

// FindMatchingSessions scores every session against the descriptor and
// returns all sessions with a positive score, ranked descending. Ties keep
// input order. Zero matches is a normal outcome, not an error.
func FindMatchingSessions(sessions []*schedule.Session, staffNames, patientNames map[uuid.UUID]string, cmd Command) []Match {
	var matches []Match
	for _, s := range sessions {
		score, details := scoreSession(s, staffNames, patientNames, cmd)
		if score > 0 {
			matches = append(matches, Match{Session: s, Score: score, Details: details})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func scoreSession(s *schedule.Session, staffNames, patientNames map[uuid.UUID]string, cmd Command) (float64, []string) {
	var score float64
	var details []string

	if cmd.TherapistName != "" {
		if w, how := nameScore(staffNames[s.TherapistID], cmd.TherapistName); w > 0 {
			score += w
			details = append(details, fmt.Sprintf("therapist name %s match", how))
		}
	}
	if cmd.PatientName != "" {
		if w, how := nameScore(patientNames[s.PatientID], cmd.PatientName); w > 0 {
			score += w
			details = append(details, fmt.Sprintf("patient name %s match", how))
		}
	}
	if cmd.DayOfWeek != "" && strings.EqualFold(interval.Weekday(s.Date), cmd.DayOfWeek) {
		score += weightDay
		details = append(details, "day match")
	}
	if cmd.Time != "" && s.StartTime == cmd.Time {
		score += weightTime
		details = append(details, "start time match")
	}
	return score, details
}

// nameScore compares case-insensitively: an exact full-name match scores
// weightNameExact, a token or substring match (first name, surname) scores
// weightNamePartial.
func nameScore(actual, wanted string) (float64, string) {
	if actual == "" || wanted == "" {
		return 0, ""
	}
	a := strings.ToLower(strings.TrimSpace(actual))
	w := strings.ToLower(strings.TrimSpace(wanted))
	if a == w {
		return weightNameExact, "exact"
	}
	for _, tok := range strings.Fields(a) {
		if tok == w {
			return weightNamePartial, "partial"
		}
	}
	if strings.Contains(a, w) {
		return weightNamePartial, "partial"
	}
	return 0, ""
}

// CheckForConflicts returns every other session sharing the candidate's
// therapist and date whose interval overlaps the proposed one. The candidate
// itself is excluded. An empty result means the move is clear.
func CheckForConflicts(sessions []*schedule.Session, candidate *schedule.Session, newStart, newEnd string) []*schedule.Session {
	var conflicts []*schedule.Session
	for _, s := range sessions {
		if s.ID == candidate.ID {
			continue
		}
		if s.TherapistID != candidate.TherapistID || !schedule.SameDay(s.Date, candidate.Date) {
			continue
		}
		if interval.OverlapsClock(newStart, newEnd, s.StartTime, s.EndTime) {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts
}
