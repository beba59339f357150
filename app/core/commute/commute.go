package commute

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"daybrief/app/pkg/types"
)

// ErrCommute is returned when no route can be computed for the commute.
var ErrCommute = errors.New("commute: no route")

// Advice is the commute summary consumed by the daily brief: ETA, when to
// leave, and whether an alternative route is worth taking.
type Advice struct {
	ETAMin      int    `json:"eta_min"`
	LeaveBy     string `json:"leave_by"`
	ArriveBy    string `json:"arrive_by"`
	BufferMin   int    `json:"buffer_minutes"`
	NeedReroute bool   `json:"need_reroute"`
	AltSaveMin  int    `json:"alt_save_min"`
}

type Advisor struct {
	router types.RouteSource
	tz     *time.Location
	now    func() time.Time
}

func NewAdvisor(router types.RouteSource, tz *time.Location) *Advisor {
	if tz == nil {
		tz = time.Local
	}
	return &Advisor{router: router, tz: tz, now: time.Now}
}

// Advise computes ETA and leave-by for arriving at arriveBy (HH:MM local),
// and recommends a reroute when an alternative saves at least
// rerouteThresholdMin minutes.
func (a *Advisor) Advise(ctx context.Context, home types.LatLng, office types.LatLng, arriveBy string, bufferMin int, rerouteThresholdMin int) (Advice, error) {
	if rerouteThresholdMin <= 0 {
		rerouteThresholdMin = 8
	}

	routes, err := a.router.RouteWithAlternatives(ctx, home, office)
	if err != nil {
		return Advice{}, fmt.Errorf("%w: %v", ErrCommute, err)
	}
	if len(routes) == 0 {
		return Advice{}, fmt.Errorf("%w: provider returned no routes", ErrCommute)
	}
	// The provider's first route is the default the driver would take;
	// alternatives are compared against it for potential savings.
	if len(routes) > 3 {
		routes = routes[:3]
	}
	etaMin := int(math.Round(routes[0].DurationSec / 60))

	altSave := 0
	if len(routes) > 1 {
		best := routes[1]
		for _, alt := range routes[2:] {
			if alt.DurationSec < best.DurationSec {
				best = alt
			}
		}
		if save := etaMin - int(math.Round(best.DurationSec/60)); save > 0 {
			altSave = save
		}
	}
	needReroute := altSave >= rerouteThresholdMin

	arriveAt, err := a.todayAt(arriveBy)
	if err != nil {
		return Advice{}, fmt.Errorf("%w: bad arrive-by time %q", ErrCommute, arriveBy)
	}
	leaveBy := arriveAt.Add(-time.Duration(etaMin+bufferMin) * time.Minute)

	return Advice{
		ETAMin:      etaMin,
		LeaveBy:     leaveBy.Format("15:04"),
		ArriveBy:    arriveBy,
		BufferMin:   bufferMin,
		NeedReroute: needReroute,
		AltSaveMin:  altSave,
	}, nil
}

func (a *Advisor) todayAt(hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	now := a.now().In(a.tz)
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, a.tz), nil
}
