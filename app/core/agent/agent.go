package agent

import (
	"context"
	"time"

	"daybrief/app/core/catalog"
	"daybrief/app/core/places"
	"daybrief/app/core/scoring"
	"daybrief/app/pkg/logger"
	"daybrief/app/pkg/types"
)

// Truncation policy for model-driven fan-out: however many queries or
// categories the model invents, external calls stay bounded.
const (
	maxCatalogQueries = 2
	maxErrands        = 2
	maxErrandResults  = 4
)

// Agent exposes the planning pipeline: PlanEvent, DecideActions,
// FindProducts, FindOnTheWay. Pure request/response; no listener
// semantics live here.
type Agent struct {
	completer   types.Completer
	catalog     *catalog.Service
	places      *places.Resolver
	profilePath string
	tz          *time.Location
	now         func() time.Time
}

func New(completer types.Completer, catalogSvc *catalog.Service, placesResolver *places.Resolver, profilePath string, tz *time.Location) *Agent {
	if tz == nil {
		tz = time.Local
	}
	return &Agent{
		completer:   completer,
		catalog:     catalogSvc,
		places:      placesResolver,
		profilePath: profilePath,
		tz:          tz,
		now:         time.Now,
	}
}

// FindProducts runs at most two catalog queries and keeps only the single
// top-scored match per query. Catalog failures propagate to the caller,
// who decides between "no results" and an error.
func (a *Agent) FindProducts(ctx context.Context, specs []catalog.QuerySpec) ([]scoring.Scored, error) {
	if len(specs) > maxCatalogQueries {
		specs = specs[:maxCatalogQueries]
	}
	out := make([]scoring.Scored, 0, len(specs))
	for _, spec := range specs {
		items, err := a.catalog.Search(ctx, catalog.SearchParams{
			Query:     spec.Query,
			Budget:    spec.Budget,
			Deadline:  spec.Deadline,
			PrimeOnly: spec.PrimeOnly,
		})
		if err != nil {
			return nil, err
		}
		scored := scoring.Score(items, spec.Query)
		if len(scored) == 0 {
			continue
		}
		top := scored[0]
		top.ForItem = spec.Item
		out = append(out, top)
	}
	return out, nil
}

// FindOnTheWay resolves at most two errand categories along the commute,
// capped at four places total. A failing category is skipped so the
// others still report, but when every category fails the last error
// surfaces instead of a silent empty success.
func (a *Agent) FindOnTheWay(ctx context.Context, categories []string, home types.LatLng, office types.LatLng) ([]places.Result, error) {
	if len(categories) > maxErrands {
		categories = categories[:maxErrands]
	}
	var out []places.Result
	var lastErr error
	attempted := 0
	for _, category := range categories {
		attempted++
		results, err := a.places.SearchAlongRoute(ctx, category, home, office)
		if err != nil {
			logger.Error("on-the-way search failed for %q: %v", category, err)
			lastErr = err
			continue
		}
		out = append(out, results...)
	}
	if len(out) == 0 && attempted > 0 && lastErr != nil {
		return nil, lastErr
	}
	if len(out) > maxErrandResults {
		out = out[:maxErrandResults]
	}
	return out, nil
}

func (a *Agent) todayISO() string {
	return a.now().In(a.tz).Format("2006-01-02")
}
