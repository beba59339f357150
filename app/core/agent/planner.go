package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"daybrief/app/core/llm"
	"daybrief/app/pkg/types"
)

// ScenarioGenericMeeting is the fallback scenario tag.
const ScenarioGenericMeeting = "generic_meeting"

// validScenarios is the closed scenario enum; anything else from the
// model counts as a parse failure.
var validScenarios = map[string]bool{
	"dinner_date":     true,
	"child_birthday":  true,
	"interview":       true,
	"morning_commute": true,
	"generic_meeting": true,
	"outdoor_event":   true,
}

const maxPlanEvents = 6

const scenarioPrompt = `You are a concise planner for a personal routine copilot.
Given today's events (JSON) and a short weather brief, decide the MOST relevant upcoming scenario and produce a compact plan.
Scenarios: dinner_date, child_birthday, interview, morning_commute, generic_meeting, outdoor_event.
Return ONLY JSON with keys:
- scenario (string)
- event_title (string)
- event_time (ISO local or null)
- venue (string or null)
- checklist (5-7 short strings)
- questions (2-4 short questions; yes/no or ask for a number like a budget)`

// Plan is the scenario plan for an upcoming event. Read-only downstream.
type Plan struct {
	Scenario   string   `json:"scenario"`
	EventTitle string   `json:"event_title"`
	EventTime  string   `json:"event_time,omitempty"`
	Venue      string   `json:"venue,omitempty"`
	Checklist  []string `json:"checklist"`
	Questions  []string `json:"questions"`
}

// PlanResult carries the plan plus how it was produced. The fallback path
// is a first-class outcome that tests assert on directly, not an
// exception swallowed out of sight.
type PlanResult struct {
	Plan     Plan
	Fallback bool
	ParseErr string
}

// PlanEvent classifies the upcoming event into a scenario with a
// checklist and follow-up questions. Model and parse failures never
// propagate: they yield the deterministic fallback plan.
func (a *Agent) PlanEvent(ctx context.Context, events []types.Event, weatherBrief string) PlanResult {
	if len(events) > maxPlanEvents {
		events = events[:maxPlanEvents]
	}
	payload, err := json.Marshal(map[string]interface{}{
		"events":  events,
		"weather": weatherBrief,
	})
	if err != nil {
		return fallbackPlan(events, err.Error())
	}

	out, err := a.completer.Complete(ctx, scenarioPrompt, string(payload))
	if err != nil {
		return fallbackPlan(events, err.Error())
	}
	plan, err := parsePlan(out)
	if err != nil {
		return fallbackPlan(events, err.Error())
	}
	return PlanResult{Plan: plan}
}

func parsePlan(text string) (Plan, error) {
	obj, err := llm.ExtractJSONObject(text)
	if err != nil {
		return Plan{}, err
	}
	g := gjson.Parse(obj)

	scenario := g.Get("scenario").String()
	if !validScenarios[scenario] {
		return Plan{}, fmt.Errorf("agent: unknown scenario %q", scenario)
	}

	plan := Plan{
		Scenario:   scenario,
		EventTitle: g.Get("event_title").String(),
		EventTime:  g.Get("event_time").String(),
		Venue:      g.Get("venue").String(),
	}
	for _, item := range g.Get("checklist").Array() {
		if s := item.String(); s != "" {
			plan.Checklist = append(plan.Checklist, s)
		}
	}
	plan.Questions = normalizeQuestions(g.Get("questions"))
	return plan, nil
}

// normalizeQuestions accepts questions as plain strings or as
// {text: ...} objects and flattens both into strings.
func normalizeQuestions(questions gjson.Result) []string {
	var out []string
	for _, q := range questions.Array() {
		text := q.String()
		if q.IsObject() {
			text = q.Get("text").String()
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// fallbackPlan is the documented deterministic plan used whenever the
// model output cannot be trusted. Title, time, and venue come from the
// first event when one exists.
func fallbackPlan(events []types.Event, reason string) PlanResult {
	plan := Plan{
		Scenario:   ScenarioGenericMeeting,
		EventTitle: "Upcoming",
		Checklist:  []string{"water", "charger"},
		Questions:  []string{"Do you need a coffee on the way?"},
	}
	if len(events) > 0 {
		plan.EventTitle = events[0].Summary
		plan.EventTime = events[0].Start
		plan.Venue = events[0].Location
	}
	return PlanResult{Plan: plan, Fallback: true, ParseErr: reason}
}
