package commute

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"daybrief/app/pkg/types"
)

type altRouterStub struct {
	routes []types.Route
	err    error
}

func (r *altRouterStub) Route(ctx context.Context, a, b types.LatLng) (types.Route, error) {
	if r.err != nil {
		return types.Route{}, r.err
	}
	return r.routes[0], nil
}

func (r *altRouterStub) RouteWithAlternatives(ctx context.Context, a, b types.LatLng) ([]types.Route, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.routes, nil
}

func testAdvisor(routes []types.Route, err error) *Advisor {
	a := NewAdvisor(&altRouterStub{routes: routes, err: err}, time.UTC)
	a.now = func() time.Time { return time.Date(2025, 9, 15, 6, 30, 0, 0, time.UTC) }
	return a
}

func TestAdviseLeaveBy(t *testing.T) {
	a := testAdvisor([]types.Route{{DurationSec: 1500}}, nil) // 25 min
	advice, err := a.Advise(context.Background(), types.LatLng{}, types.LatLng{Lon: 1}, "09:00", 10, 8)
	if err != nil {
		t.Fatalf("advise failed: %v", err)
	}
	if advice.ETAMin != 25 {
		t.Fatalf("eta = %d, want 25", advice.ETAMin)
	}
	if advice.LeaveBy != "08:25" {
		t.Fatalf("leave by = %s, want 08:25", advice.LeaveBy)
	}
	if advice.NeedReroute || advice.AltSaveMin != 0 {
		t.Fatalf("single route should not recommend rerouting: %+v", advice)
	}
}

func TestAdviseRerouteRecommendation(t *testing.T) {
	// The default route is congested; an alternative is ten minutes faster.
	a := testAdvisor([]types.Route{{DurationSec: 2400}, {DurationSec: 1800}}, nil)
	advice, err := a.Advise(context.Background(), types.LatLng{}, types.LatLng{Lon: 1}, "09:00", 0, 8)
	if err != nil {
		t.Fatalf("advise failed: %v", err)
	}
	if advice.ETAMin != 40 {
		t.Fatalf("primary eta = %d, want 40", advice.ETAMin)
	}
	if advice.AltSaveMin != 10 || !advice.NeedReroute {
		t.Fatalf("expected a 10-minute reroute recommendation: %+v", advice)
	}
}

func TestAdviseBelowThreshold(t *testing.T) {
	a := testAdvisor([]types.Route{{DurationSec: 1800}, {DurationSec: 1860}}, nil)
	advice, err := a.Advise(context.Background(), types.LatLng{}, types.LatLng{Lon: 1}, "09:00", 5, 8)
	if err != nil {
		t.Fatalf("advise failed: %v", err)
	}
	if advice.NeedReroute {
		t.Fatalf("a slower alternative must not trigger rerouting: %+v", advice)
	}
}

func TestAdviseFailures(t *testing.T) {
	a := testAdvisor(nil, fmt.Errorf("missing mapbox token"))
	if _, err := a.Advise(context.Background(), types.LatLng{}, types.LatLng{}, "09:00", 5, 8); !errors.Is(err, ErrCommute) {
		t.Fatalf("expected ErrCommute, got %v", err)
	}

	a = testAdvisor([]types.Route{{DurationSec: 1200}}, nil)
	if _, err := a.Advise(context.Background(), types.LatLng{}, types.LatLng{}, "nine", 5, 8); !errors.Is(err, ErrCommute) {
		t.Fatalf("expected ErrCommute for bad arrive-by, got %v", err)
	}
}
