// Package repair implements the constrained schedule-repair protocol: a
// server-built request describing the broken schedule and an explicit search
// space, and full re-validation of the patch an external planner proposes.
// Planner output is untrusted input; nothing it references outside the
// declared search space may reach persistence.
package repair

import "time"

// TimeSlot is a named bookable interval. The planner only ever references
// slots by id, never by raw times.
type TimeSlot struct {
	SlotID string `json:"slot_id"`
	Day    string `json:"day"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// SessionRef is a committed session as presented to the planner.
type SessionRef struct {
	SID         string `json:"sid"`
	TherapistID string `json:"therapist_id"`
	PatientID   string `json:"patient_id"`
	RoomID      string `json:"room_id,omitempty"`
	SlotID      string `json:"slot_id"`
}

// Violation is a detected constraint breach driving the repair.
type Violation struct {
	VID               string   `json:"vid"`
	Type              string   `json:"type"`
	Severity          string   `json:"severity"`
	Message           string   `json:"message"`
	RelatedSessionIDs []string `json:"related_session_ids,omitempty"`
}

// Rule is a scheduling rule the planner must respect, stated for context.
type Rule struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// MovableSession declares the only slots one session may be moved to.
type MovableSession struct {
	SID            string   `json:"sid"`
	AllowedSlotIDs []string `json:"allowed_slot_ids"`
}

// AddableRequirement declares one missing session the planner may create,
// with the only resources it may bind.
type AddableRequirement struct {
	RequirementID       string   `json:"requirement_id"`
	PatientID           string   `json:"patient_id"`
	SessionSpecID       string   `json:"session_spec_id"`
	AllowedTherapistIDs []string `json:"allowed_therapist_ids"`
	AllowedSlotIDs      []string `json:"allowed_slot_ids"`
	AllowedRoomIDs      []string `json:"allowed_room_ids,omitempty"`
}

// SearchSpace is the authorization boundary for planner-proposed edits.
type SearchSpace struct {
	MovableSessions     []MovableSession     `json:"movable_sessions"`
	AddableRequirements []AddableRequirement `json:"addable_requirements"`
}

// Meta identifies one repair request.
type Meta struct {
	RequestID      string    `json:"request_id"`
	OrganizationID string    `json:"organization_id,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// ScheduleState is the schedule snapshot the planner sees.
type ScheduleState struct {
	Sessions []SessionRef `json:"sessions"`
}

// Request is the immutable snapshot handed to a planner.
type Request struct {
	Meta        Meta          `json:"meta"`
	Slots       []TimeSlot    `json:"slots"`
	Schedule    ScheduleState `json:"schedule"`
	Violations  []Violation   `json:"violations"`
	Rules       []Rule        `json:"rules"`
	SearchSpace SearchSpace   `json:"search_space"`
	Objective   string        `json:"objective"`
}

// Patch op kinds. The op field tags the variant; exactly one dispatch switch
// lives in the validator and one in the applier.
const (
	OpMove   = "move"
	OpAdd    = "add"
	OpDelete = "delete"
)

// PatchOp is one proposed edit. Which fields are meaningful depends on Op:
// move uses SID/ToSlotID, add uses RequirementID and the binding fields,
// delete uses SID. Every op carries a Because string for the audit log.
type PatchOp struct {
	Op            string `json:"op"`
	SID           string `json:"sid,omitempty"`
	ToSlotID      string `json:"to_slot_id,omitempty"`
	RequirementID string `json:"requirement_id,omitempty"`
	PatientID     string `json:"patient_id,omitempty"`
	SessionSpecID string `json:"session_spec_id,omitempty"`
	TherapistID   string `json:"therapist_id,omitempty"`
	SlotID        string `json:"slot_id,omitempty"`
	RoomID        string `json:"room_id,omitempty"`
	Because       string `json:"because"`
}

// Target returns the session or requirement id this op edits.
func (op PatchOp) Target() string {
	if op.Op == OpAdd {
		return op.RequirementID
	}
	return op.SID
}

// Response is the planner's proposed patch.
type Response struct {
	Ops []PatchOp `json:"ops"`
}
