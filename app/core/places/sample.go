package places

import (
	"math"

	"daybrief/app/pkg/types"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in
// kilometers.
func Haversine(a types.LatLng, b types.LatLng) float64 {
	p1 := a.Lat * math.Pi / 180
	p2 := b.Lat * math.Pi / 180
	dphi := (b.Lat - a.Lat) * math.Pi / 180
	dlmb := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dphi/2)*math.Sin(dphi/2) +
		math.Cos(p1)*math.Cos(p2)*math.Sin(dlmb/2)*math.Sin(dlmb/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// SamplePolyline downsamples route vertices to at most maxPoints spaced at
// least spacingKm apart along the cumulative path. The first vertex is
// always kept and the final output point is snapped to the route's last
// vertex so both endpoints stay represented.
func SamplePolyline(vertices []types.LatLng, spacingKm float64, maxPoints int) []types.LatLng {
	if len(vertices) == 0 {
		return nil
	}
	out := []types.LatLng{vertices[0]}
	acc := 0.0
	last := vertices[0]
	for _, v := range vertices[1:] {
		acc += Haversine(last, v)
		if acc >= spacingKm {
			out = append(out, v)
			acc = 0.0
		}
		last = v
		if len(out) >= maxPoints {
			break
		}
	}
	final := vertices[len(vertices)-1]
	if out[len(out)-1] != final {
		out[len(out)-1] = final
	}
	return out
}
