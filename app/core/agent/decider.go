package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"

	"daybrief/app/core/catalog"
	"daybrief/app/core/llm"
)

// validErrands is the closed errand category set; model output outside it
// is dropped.
var validErrands = map[string]bool{
	"coffee":    true,
	"florist":   true,
	"gift shop": true,
	"bakery":    true,
}

const actionPrompt = `You convert a scenario + answers into actions.
Input JSON includes: scenario, event_time (local ISO), venue, answers (dict), profile (budgets, preferences), today (YYYY-MM-DD).
Decide:
1) missing_items[]: strings that user lacks.
2) catalog_queries[]: for each missing item, build {item,q,budget,deadline,prime_only}.
   - q: short catalog search string (e.g., "men leather belt black 32-34").
   - budget: number or null (use profile defaults if not given).
   - deadline: YYYY-MM-DD or null (use event date if available, else tomorrow).
   - prime_only: boolean (prefer true).
3) need_otw_categories[]: zero or more of ['coffee','florist','gift shop','bakery'].
Return ONLY JSON: {"missing_items":[],"catalog_queries":[],"need_otw_categories":[]}`

// Actions is the structured outcome of the decider.
type Actions struct {
	MissingItems     []string            `json:"missing_items"`
	CatalogQueries   []catalog.QuerySpec `json:"catalog_queries"`
	ErrandCategories []string            `json:"need_otw_categories"`
}

// ActionResult carries the actions plus how they were produced, mirroring
// PlanResult: the fallback is assertable, never inferred.
type ActionResult struct {
	Actions  Actions
	Fallback bool
	ParseErr string
}

// DecideActions converts a scenario plan and the user's answers into
// purchase specs and errand categories. The stored preference profile
// supplies budget and prime defaults the model omitted. Model and parse
// failures yield the deterministic fallback.
func (a *Agent) DecideActions(ctx context.Context, plan Plan, answers map[string]interface{}) ActionResult {
	profile := LoadProfile(a.profilePath)
	today := a.todayISO()

	payload, err := json.Marshal(map[string]interface{}{
		"scenario":   plan.Scenario,
		"event_time": plan.EventTime,
		"venue":      plan.Venue,
		"answers":    answers,
		"profile":    profile,
		"today":      today,
	})
	if err != nil {
		return fallbackActions(profile, today, err.Error())
	}

	out, err := a.completer.Complete(ctx, actionPrompt, string(payload))
	if err != nil {
		return fallbackActions(profile, today, err.Error())
	}
	actions, err := parseActions(out, plan, profile, today)
	if err != nil {
		return fallbackActions(profile, today, err.Error())
	}
	return ActionResult{Actions: actions}
}

func parseActions(text string, plan Plan, profile Profile, today string) (Actions, error) {
	obj, err := llm.ExtractJSONObject(text)
	if err != nil {
		return Actions{}, err
	}
	g := gjson.Parse(obj)

	var actions Actions
	for _, item := range g.Get("missing_items").Array() {
		if s := item.String(); s != "" {
			actions.MissingItems = append(actions.MissingItems, s)
		}
	}
	for _, q := range g.Get("catalog_queries").Array() {
		spec := catalog.QuerySpec{
			Item:  q.Get("item").String(),
			Query: q.Get("q").String(),
		}
		if spec.Query == "" {
			spec.Query = spec.Item
		}
		if spec.Query == "" {
			continue
		}
		if budget := q.Get("budget"); budget.Type == gjson.Number {
			b := budget.Float()
			spec.Budget = &b
		} else {
			b := profileBudget(plan.Scenario, profile)
			spec.Budget = &b
		}
		spec.Deadline = q.Get("deadline").String()
		if spec.Deadline == "" {
			spec.Deadline = defaultDeadline(plan.EventTime, today)
		}
		if prime := q.Get("prime_only"); prime.Exists() {
			spec.PrimeOnly = prime.Bool()
		} else {
			spec.PrimeOnly = profile.PrimePreferred
		}
		actions.CatalogQueries = append(actions.CatalogQueries, spec)
	}
	for _, c := range g.Get("need_otw_categories").Array() {
		if validErrands[c.String()] {
			actions.ErrandCategories = append(actions.ErrandCategories, c.String())
		}
	}
	return actions, nil
}

// profileBudget picks the profile default matching the scenario: gift
// budget for gift-driven scenarios, interview budget otherwise.
func profileBudget(scenario string, profile Profile) float64 {
	switch scenario {
	case "child_birthday", "dinner_date":
		return profile.DefaultGiftBudget
	default:
		return profile.DefaultInterviewBudget
	}
}

// defaultDeadline prefers the event date, falling back to today.
func defaultDeadline(eventTime string, today string) string {
	if len(eventTime) >= 10 {
		if _, err := time.Parse("2006-01-02", eventTime[:10]); err == nil {
			return eventTime[:10]
		}
	}
	return today
}

// fallbackActions is the documented deterministic outcome for unusable
// model output: a single belt purchase against the interview budget plus
// a coffee stop.
func fallbackActions(profile Profile, today string, reason string) ActionResult {
	budget := profile.DefaultInterviewBudget
	return ActionResult{
		Actions: Actions{
			MissingItems: []string{"belt"},
			CatalogQueries: []catalog.QuerySpec{{
				Item:      "belt",
				Query:     "men leather belt black 32-34",
				Budget:    &budget,
				Deadline:  today,
				PrimeOnly: true,
			}},
			ErrandCategories: []string{"coffee"},
		},
		Fallback: true,
		ParseErr: reason,
	}
}
