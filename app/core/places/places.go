package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"daybrief/app/pkg/cache"
	"daybrief/app/pkg/logger"
	"daybrief/app/pkg/types"
)

// ErrPlaces is returned for an empty category, a missing routing
// credential, or when no route exists between the endpoints. Per-sample
// POI lookups are best-effort and never surface through it.
var ErrPlaces = errors.New("places: search failed")

const (
	// DefaultTTL is short because detours ride on live traffic.
	DefaultTTL = 15 * time.Minute

	sampleSpacingKm = 2.0
	maxSamples      = 6
	poiRadiusM      = 800
	maxCandidates   = 6
	maxResults      = 3
)

// Result is one ranked place with its added travel cost in minutes.
type Result struct {
	types.Place
	Category  string `json:"category,omitempty"`
	DetourMin int    `json:"detour_min"`
	MapURL    string `json:"map_url,omitempty"`
}

type Resolver struct {
	router types.RouteSource
	pois   types.POISource
	cache  *cache.Store
}

func NewResolver(router types.RouteSource, pois types.POISource, cacheDir string, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{
		router: router,
		pois:   pois,
		cache:  cache.New(cacheDir, ttl),
	}
}

// SearchAlongRoute finds up to three places of the requested category along
// the driving route between origin and destination, ranked by minimal
// detour. A route with zero matches returns an empty list, not an error.
func (r *Resolver) SearchAlongRoute(ctx context.Context, category string, origin types.LatLng, destination types.LatLng) ([]Result, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: empty category", ErrPlaces)
	}

	route, err := r.router.Route(ctx, origin, destination)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlaces, err)
	}
	if len(route.Geometry) == 0 {
		return nil, fmt.Errorf("%w: no route found", ErrPlaces)
	}
	samples := SamplePolyline(route.Geometry, sampleSpacingKm, maxSamples)

	key := cache.Fingerprint(map[string]interface{}{
		"category":    category,
		"origin":      origin,
		"destination": destination,
		"samples":     samples,
	})
	if data, ok := r.cache.Get(key); ok {
		var cached []Result
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	candidates := r.gather(ctx, samples, category)

	results := make([]Result, 0, len(candidates))
	for _, p := range candidates {
		if p.Lat == 0 && p.Lon == 0 {
			continue
		}
		detour, err := r.detourMinutes(ctx, origin, destination, types.LatLng{Lat: p.Lat, Lon: p.Lon})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPlaces, err)
		}
		results = append(results, Result{
			Place:     p,
			Category:  category,
			DetourMin: detour,
			MapURL:    fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", p.Lat, p.Lon),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DetourMin != results[j].DetourMin {
			return results[i].DetourMin < results[j].DetourMin
		}
		return results[i].Name < results[j].Name
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	if data, err := json.Marshal(results); err == nil {
		if err := r.cache.Put(key, data); err != nil {
			logger.Error("places cache write failed: %v", err)
		}
	}
	return results, nil
}

// gather queries the POI source around every sample point, merging into a
// deduplicated-by-id candidate set. Individual sample failures are
// swallowed; partial coverage beats none.
func (r *Resolver) gather(ctx context.Context, samples []types.LatLng, category string) []types.Place {
	var order []types.Place
	seen := map[string]bool{}
	for _, pt := range samples {
		found, err := r.pois.Nearby(ctx, pt, category, poiRadiusM)
		if err != nil {
			logger.Error("poi lookup failed near %.4f,%.4f: %v", pt.Lat, pt.Lon, err)
			continue
		}
		for _, p := range found {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			order = append(order, p)
		}
		if len(order) >= maxCandidates {
			break
		}
	}
	if len(order) > maxCandidates {
		order = order[:maxCandidates]
	}
	return order
}

// detourMinutes is the added minutes of visiting place between home and
// office, from three independent routing calls, floored at zero.
func (r *Resolver) detourMinutes(ctx context.Context, home types.LatLng, office types.LatLng, place types.LatLng) (int, error) {
	direct, err := r.router.Route(ctx, home, office)
	if err != nil {
		return 0, err
	}
	leg1, err := r.router.Route(ctx, home, place)
	if err != nil {
		return 0, err
	}
	leg2, err := r.router.Route(ctx, place, office)
	if err != nil {
		return 0, err
	}
	detour := (leg1.DurationSec + leg2.DurationSec - direct.DurationSec) / 60
	minutes := int(math.Round(detour))
	if minutes < 0 {
		minutes = 0
	}
	return minutes, nil
}
