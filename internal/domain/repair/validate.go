package repair

import (
	"fmt"
)

// ValidationResult is the outcome of validating a planner response. OK is
// true only when Errors is empty; a response with any error is rejected in
// full, partial application is never allowed.
type ValidationResult struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// ValidateResponse re-validates an untrusted planner response against the
// request it answers. Every failure is accumulated rather than
// short-circuited so the planner (or its caller) sees the complete set of
// rejection reasons.
func ValidateResponse(req *Request, resp *Response) ValidationResult {
	movable := make(map[string]map[string]bool, len(req.SearchSpace.MovableSessions))
	for _, m := range req.SearchSpace.MovableSessions {
		allowed := make(map[string]bool, len(m.AllowedSlotIDs))
		for _, id := range m.AllowedSlotIDs {
			allowed[id] = true
		}
		movable[m.SID] = allowed
	}

	addable := make(map[string]AddableRequirement, len(req.SearchSpace.AddableRequirements))
	for _, a := range req.SearchSpace.AddableRequirements {
		addable[a.RequirementID] = a
	}

	existing := make(map[string]bool, len(req.Schedule.Sessions))
	for _, s := range req.Schedule.Sessions {
		existing[s.SID] = true
	}

	var errs []string
	targetCount := make(map[string]int)
	var targetOrder []string

	for i, op := range resp.Ops {
		if t := op.Target(); t != "" {
			targetCount[t]++
			if targetCount[t] == 1 {
				targetOrder = append(targetOrder, t)
			}
		}

		switch op.Op {
		case OpMove:
			allowed, ok := movable[op.SID]
			if !ok {
				errs = append(errs, fmt.Sprintf("move op %d: unknown session %q", i, op.SID))
				continue
			}
			if !allowed[op.ToSlotID] {
				errs = append(errs, fmt.Sprintf("move op %d: unknown slot %q for session %q", i, op.ToSlotID, op.SID))
			}

		case OpAdd:
			reqmt, ok := addable[op.RequirementID]
			if !ok {
				errs = append(errs, fmt.Sprintf("add op %d: unknown requirement %q", i, op.RequirementID))
				continue
			}
			if op.PatientID != reqmt.PatientID {
				errs = append(errs, fmt.Sprintf("add op %d: patientId mismatch for requirement %q (got %q, want %q)",
					i, op.RequirementID, op.PatientID, reqmt.PatientID))
			}
			if op.SessionSpecID != reqmt.SessionSpecID {
				errs = append(errs, fmt.Sprintf("add op %d: sessionSpecId mismatch for requirement %q (got %q, want %q)",
					i, op.RequirementID, op.SessionSpecID, reqmt.SessionSpecID))
			}
			if !contains(reqmt.AllowedTherapistIDs, op.TherapistID) {
				errs = append(errs, fmt.Sprintf("add op %d: unknown therapist %q for requirement %q", i, op.TherapistID, op.RequirementID))
			}
			if !contains(reqmt.AllowedSlotIDs, op.SlotID) {
				errs = append(errs, fmt.Sprintf("add op %d: unknown slot %q for requirement %q", i, op.SlotID, op.RequirementID))
			}
			if op.RoomID != "" && !contains(reqmt.AllowedRoomIDs, op.RoomID) {
				errs = append(errs, fmt.Sprintf("add op %d: unknown room %q for requirement %q", i, op.RoomID, op.RequirementID))
			}

		case OpDelete:
			if !existing[op.SID] {
				errs = append(errs, fmt.Sprintf("delete op %d: unknown session %q", i, op.SID))
			}

		default:
			errs = append(errs, fmt.Sprintf("op %d: unknown op type %q", i, op.Op))
		}
	}

	for _, t := range targetOrder {
		if targetCount[t] > 1 {
			errs = append(errs, fmt.Sprintf("target %q modified multiple times (%d ops)", t, targetCount[t]))
		}
	}

	return ValidationResult{OK: len(errs) == 0, Errors: errs}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
