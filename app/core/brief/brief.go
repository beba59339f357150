package brief

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"daybrief/app/core/agent"
	"daybrief/app/core/catalog"
	"daybrief/app/core/commute"
	"daybrief/app/core/db"
	"daybrief/app/core/places"
	"daybrief/app/core/scoring"
	"daybrief/app/core/weather"
	"daybrief/app/pkg/logger"
	"daybrief/app/pkg/types"
)

// Assistant is the planning pipeline the brief drives. *agent.Agent
// satisfies it.
type Assistant interface {
	PlanEvent(ctx context.Context, events []types.Event, weatherBrief string) agent.PlanResult
	DecideActions(ctx context.Context, plan agent.Plan, answers map[string]interface{}) agent.ActionResult
	FindProducts(ctx context.Context, specs []catalog.QuerySpec) ([]scoring.Scored, error)
	FindOnTheWay(ctx context.Context, categories []string, home types.LatLng, office types.LatLng) ([]places.Result, error)
}

// CommuteSource produces the morning commute advice.
type CommuteSource interface {
	Advise(ctx context.Context, home types.LatLng, office types.LatLng, arriveBy string, bufferMin int, rerouteThresholdMin int) (commute.Advice, error)
}

// EventSource delivers today's calendar entries. A nil source means the
// calendar integration is disabled and the brief plans without events.
type EventSource interface {
	Today(ctx context.Context) ([]types.Event, error)
}

// Brief is one composed daily brief with every section it was built from.
type Brief struct {
	Day         string
	WeatherLine string
	Weather     types.WeatherSnapshot
	Commute     commute.Advice
	CommuteOK   bool
	Events      []types.Event
	Plan        agent.PlanResult
	Actions     agent.ActionResult
	Picks       []scoring.Scored
	OTW         []places.Result
	Markdown    string
	ReportPath  string
	ID          string
}

// Settings are the static inputs of the morning run.
type Settings struct {
	Home             types.LatLng
	Office           types.LatLng
	ArriveBy         string
	BufferMin        int
	RerouteThreshold int
	ReportDir        string
}

// Composer assembles the daily brief from the weather, commute, calendar,
// and planning collaborators. Collaborator failures degrade their section
// instead of sinking the whole brief.
type Composer struct {
	weather   types.WeatherSource
	commute   CommuteSource
	events    EventSource
	assistant Assistant
	store     *db.BriefStore
	settings  Settings
	tz        *time.Location
	now       func() time.Time
}

func NewComposer(weatherSrc types.WeatherSource, commuteSrc CommuteSource, events EventSource, assistant Assistant, store *db.BriefStore, settings Settings, tz *time.Location) *Composer {
	if tz == nil {
		tz = time.Local
	}
	return &Composer{
		weather:   weatherSrc,
		commute:   commuteSrc,
		events:    events,
		assistant: assistant,
		store:     store,
		settings:  settings,
		tz:        tz,
		now:       time.Now,
	}
}

// Compose gathers every section, renders the Markdown report, writes it
// under the report dir, and records it in brief history when a store is
// configured.
func (c *Composer) Compose(ctx context.Context) (Brief, error) {
	now := c.now().In(c.tz)
	out := Brief{Day: now.Format("2006-01-02")}

	if c.weather != nil {
		snap, err := c.weather.Snapshot(ctx, c.settings.Home)
		if err != nil {
			logger.Error("brief: weather unavailable: %v", err)
		} else {
			out.Weather = snap
			out.WeatherLine = weather.BriefLine(snap)
		}
	}

	if c.commute != nil {
		advice, err := c.commute.Advise(ctx, c.settings.Home, c.settings.Office, c.settings.ArriveBy, c.settings.BufferMin, c.settings.RerouteThreshold)
		if err != nil {
			logger.Error("brief: commute unavailable: %v", err)
		} else {
			out.Commute = advice
			out.CommuteOK = true
		}
	}

	if c.events != nil {
		events, err := c.events.Today(ctx)
		if err != nil {
			logger.Error("brief: calendar unavailable: %v", err)
		} else {
			out.Events = events
		}
	}

	out.Plan = c.assistant.PlanEvent(ctx, out.Events, out.WeatherLine)
	out.Actions = c.assistant.DecideActions(ctx, out.Plan.Plan, nil)

	if queries := out.Actions.Actions.CatalogQueries; len(queries) > 0 {
		picks, err := c.assistant.FindProducts(ctx, queries)
		if err != nil {
			logger.Error("brief: product search failed: %v", err)
		} else {
			out.Picks = picks
		}
	}

	if cats := out.Actions.Actions.ErrandCategories; len(cats) > 0 {
		otw, err := c.assistant.FindOnTheWay(ctx, cats, c.settings.Home, c.settings.Office)
		if err != nil {
			logger.Error("brief: on-the-way search failed: %v", err)
		} else {
			out.OTW = otw
		}
	}

	out.Markdown = Render(out, now)

	path, err := c.saveReport(out.Markdown, now)
	if err != nil {
		return out, fmt.Errorf("save brief report: %w", err)
	}
	out.ReportPath = path

	if c.store != nil {
		id, err := c.store.Save(db.BriefRecord{
			Day:        out.Day,
			Scenario:   out.Plan.Plan.Scenario,
			ReportPath: out.ReportPath,
			Markdown:   out.Markdown,
		}, storePicks(out.Picks))
		if err != nil {
			logger.Error("brief: history save failed: %v", err)
		} else {
			out.ID = id
		}
	}

	return out, nil
}

func (c *Composer) saveReport(markdown string, now time.Time) (string, error) {
	dir := c.settings.ReportDir
	if dir == "" {
		dir = filepath.Join("output", "reports")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "brief-"+now.Format("20060102")+".md")
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func storePicks(picks []scoring.Scored) []db.Pick {
	out := make([]db.Pick, 0, len(picks))
	for i, p := range picks {
		out = append(out, db.Pick{
			Position:     i,
			Title:        p.Title,
			Price:        p.Price,
			Prime:        p.Prime,
			DeliveryDays: p.DeliveryDays,
			URL:          p.ProductURL,
		})
	}
	return out
}
