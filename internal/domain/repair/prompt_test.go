package repair

import (
	"strings"
	"testing"
)

func TestBuildPrompt_IsDeterministic(t *testing.T) {
	req := fixtureRequest()

	_, first, err := BuildPrompt(req)
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := BuildPrompt(req)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical requests must serialize identically")
	}
}

func TestBuildPrompt_CarriesIdentifiersVerbatim(t *testing.T) {
	req := fixtureRequest()

	system, user, err := BuildPrompt(req)
	if err != nil {
		t.Fatal(err)
	}
	if system != SystemPrompt {
		t.Error("system prompt must be the fixed instruction block")
	}
	for _, want := range []string{"req-42", "s1", "s2", "mon-09", "r1", req.Objective} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestParseResponse_PlainJSON(t *testing.T) {
	resp, err := ParseResponse(`{"ops":[{"op":"delete","sid":"s1","because":"dup"}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Ops) != 1 || resp.Ops[0].Op != OpDelete || resp.Ops[0].SID != "s1" {
		t.Errorf("unexpected parse result %+v", resp.Ops)
	}
}

func TestParseResponse_StripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"ops\":[{\"op\":\"move\",\"sid\":\"s1\",\"to_slot_id\":\"tue-09\",\"because\":\"frees monday\"}]}\n```"
	resp, err := ParseResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Ops) != 1 || resp.Ops[0].ToSlotID != "tue-09" {
		t.Errorf("unexpected parse result %+v", resp.Ops)
	}
}

func TestParseResponse_RejectsGarbage(t *testing.T) {
	if _, err := ParseResponse("I'm sorry, I cannot repair this schedule."); err == nil {
		t.Error("expected decode error for non-JSON reply")
	}
}
