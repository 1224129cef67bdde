package repair

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt is the fixed instruction identifying the planner's role and
// output contract. The planner must answer with patch ops only, inside the
// declared search space.
const SystemPrompt = `You are a schedule repair assistant for a therapy clinic.
You receive a schedule snapshot, a list of constraint violations, and a search space.
Respond with a single JSON object of the form {"ops": [...]} and nothing else.
Each op is one of:
  {"op":"move","sid":"...","to_slot_id":"...","because":"..."}
  {"op":"add","requirement_id":"...","patient_id":"...","session_spec_id":"...","therapist_id":"...","slot_id":"...","room_id":"...","because":"..."}
  {"op":"delete","sid":"...","because":"..."}
You may only move sessions listed under search_space.movable_sessions, and only to their allowed_slot_ids.
You may only add sessions for search_space.addable_requirements, using their allowed therapist, slot and room ids.
You may only delete sessions present in the schedule.
Never edit the same session or requirement twice. Keep every "because" short and factual.`

// BuildPrompt serializes a repair request into the system and user prompts.
// Serialization is deterministic (struct-order JSON keys, no indentation) so
// the calling layer and test fixtures can grep request ids and session ids
// verbatim.
func BuildPrompt(req *Request) (systemPrompt, userPrompt string, err error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", "", fmt.Errorf("serialize repair request: %w", err)
	}

	var b strings.Builder
	b.WriteString("Repair the schedule described below.\n")
	b.WriteString("Objective: ")
	b.WriteString(req.Objective)
	b.WriteString("\n\n")
	b.Write(payload)
	return SystemPrompt, b.String(), nil
}

// ParseResponse decodes a raw planner reply into a Response. It tolerates a
// reply wrapped in a markdown code fence, which generative models emit even
// when told not to.
func ParseResponse(raw string) (*Response, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var resp Response
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("decode planner response: %w", err)
	}
	return &resp, nil
}
