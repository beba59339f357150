package places

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"daybrief/app/pkg/types"
)

const mapboxBase = "https://api.mapbox.com/directions/v5/mapbox/driving-traffic"

// MapboxClient is the thin driving-traffic directions wrapper. Durations
// are seconds, geometries GeoJSON (lon,lat order on the wire).
type MapboxClient struct {
	token  string
	client *http.Client
}

func NewMapboxClient(token string, timeout time.Duration) *MapboxClient {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &MapboxClient{
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *MapboxClient) Route(ctx context.Context, a types.LatLng, b types.LatLng) (types.Route, error) {
	routes, err := c.directions(ctx, a, b, false)
	if err != nil {
		return types.Route{}, err
	}
	if len(routes) == 0 {
		return types.Route{}, fmt.Errorf("no route")
	}
	return routes[0], nil
}

func (c *MapboxClient) RouteWithAlternatives(ctx context.Context, a types.LatLng, b types.LatLng) ([]types.Route, error) {
	routes, err := c.directions(ctx, a, b, true)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("no routes found")
	}
	return routes, nil
}

func (c *MapboxClient) directions(ctx context.Context, a types.LatLng, b types.LatLng, alternatives bool) ([]types.Route, error) {
	if c.token == "" {
		return nil, fmt.Errorf("missing mapbox token")
	}

	coords := fmt.Sprintf("%f,%f;%f,%f", a.Lon, a.Lat, b.Lon, b.Lat)
	params := url.Values{}
	params.Set("alternatives", fmt.Sprintf("%t", alternatives))
	params.Set("overview", "full")
	params.Set("geometries", "geojson")
	params.Set("steps", "false")
	params.Set("access_token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mapboxBase+"/"+coords+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapbox http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var routes []types.Route
	for _, r := range gjson.GetBytes(body, "routes").Array() {
		route := types.Route{DurationSec: r.Get("duration").Float()}
		for _, pair := range r.Get("geometry.coordinates").Array() {
			xy := pair.Array()
			if len(xy) < 2 {
				continue
			}
			route.Geometry = append(route.Geometry, types.LatLng{Lat: xy[1].Float(), Lon: xy[0].Float()})
		}
		routes = append(routes, route)
	}
	return routes, nil
}
