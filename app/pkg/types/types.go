package types

import (
	"context"
	"encoding/json"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event is one calendar entry as delivered by the calendar collaborator.
type Event struct {
	Summary  string `json:"summary"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Location string `json:"location,omitempty"`
}

// Route is a driving route returned by the routing collaborator.
// Geometry holds polyline vertices ordered from origin to destination.
type Route struct {
	DurationSec float64
	Geometry    []LatLng
}

// Place is one point of interest returned by the POI collaborator.
type Place struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	URL     string  `json:"url,omitempty"`
}

// Candidate is a normalized catalog item. Price, delivery days, rating,
// and review count are independently optional: nil means unknown and must
// never be defaulted to zero.
type Candidate struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Price        *float64 `json:"price"`
	Prime        bool     `json:"prime"`
	DeliveryDays *int     `json:"delivery_days"`
	Rating       *float64 `json:"rating"`
	Reviews      *int     `json:"reviews"`
	ImageURL     string   `json:"image,omitempty"`
	ProductURL   string   `json:"url"`
}

// WeatherHour is one hourly forecast slot. Missing readings stay nil.
type WeatherHour struct {
	Time       string   `json:"time"`
	Temp       *float64 `json:"temp"`
	UV         *float64 `json:"uv"`
	PrecipProb *int     `json:"precip_prob"`
}

// WeatherSnapshot is the compact current-conditions view used by the brief.
type WeatherSnapshot struct {
	TempNow *float64      `json:"temp_now"`
	UVNow   *float64      `json:"uv_now"`
	Hourly  []WeatherHour `json:"hourly"`
}

// Completer produces a model completion for a system instruction plus a user
// payload. Implementations return the raw model text untouched.
type Completer interface {
	Complete(ctx context.Context, system string, user string) (string, error)
}

// RouteSource is the routing collaborator.
type RouteSource interface {
	Route(ctx context.Context, a LatLng, b LatLng) (Route, error)
	RouteWithAlternatives(ctx context.Context, a LatLng, b LatLng) ([]Route, error)
}

// POISource returns points of interest around a coordinate.
type POISource interface {
	Nearby(ctx context.Context, at LatLng, category string, radiusM int) ([]Place, error)
}

// CatalogSource returns raw provider-shaped search results. Shapes vary by
// provider; the catalog normalizer owns all field extraction.
type CatalogSource interface {
	Search(ctx context.Context, query string) ([]json.RawMessage, error)
}

// WeatherSource returns a current-conditions snapshot for a coordinate.
type WeatherSource interface {
	Snapshot(ctx context.Context, at LatLng) (WeatherSnapshot, error)
}
