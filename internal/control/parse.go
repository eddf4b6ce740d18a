package control

import "encoding/json"

type muteContent struct {
	Mode    string   `json:"mode"`
	Targets []string `json:"targets"`
}

type unmuteContent struct {
	Targets []string `json:"targets"`
}

type pauseContent struct {
	On *bool `json:"on"`
}

type discussionContent struct {
	On                 bool  `json:"on"`
	AllowAgentMentions *bool `json:"allow_agent_mentions"`
}

type payload struct {
	Mute       *muteContent       `json:"mute"`
	Unmute     *unmuteContent     `json:"unmute"`
	Pause      *pauseContent      `json:"pause"`
	Discussion *discussionContent `json:"discussion"`
}

// parsePayload accepts content as either a JSON object or a
// JSON-encoded string containing that object, per the control event
// schema's forward-compatibility allowance. Anything else is silently
// rejected (ok=false) rather than erroring — unrecognized shapes are
// inert, not fatal.
func parsePayload(raw json.RawMessage) (payload, bool) {
	var p payload
	if json.Unmarshal(raw, &p) == nil {
		return p, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if json.Unmarshal([]byte(s), &p) == nil {
			return p, true
		}
	}
	return payload{}, false
}

// variants returns the control variants present in raw, in the fixed
// order mute, unmute, pause, discussion — matching the schema's
// listed order so a single event naming more than one directive folds
// deterministically.
func variants(raw json.RawMessage) []Variant {
	p, ok := parsePayload(raw)
	if !ok {
		return nil
	}
	var out []Variant
	if p.Mute != nil {
		mode := p.Mute.Mode
		if mode == "" {
			mode = "hard"
		}
		if mode == "hard" {
			out = append(out, Mute{Targets: p.Mute.Targets})
		}
	}
	if p.Unmute != nil {
		out = append(out, Unmute{Targets: p.Unmute.Targets})
	}
	if p.Pause != nil {
		on := true
		if p.Pause.On != nil {
			on = *p.Pause.On
		}
		out = append(out, Pause{On: on})
	}
	if p.Discussion != nil {
		allow := p.Discussion.On
		if p.Discussion.AllowAgentMentions != nil {
			allow = *p.Discussion.AllowAgentMentions
		}
		out = append(out, Discussion{On: p.Discussion.On, AllowAgentMentions: allow})
	}
	return out
}
