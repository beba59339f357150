package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"daybrief/app/pkg/types"
)

// Sub-score weights. They sum to 1.0, so a total is always inside [0, 1].
const (
	WeightQuality  = 0.40
	WeightDelivery = 0.30
	WeightValue    = 0.20
	WeightMatch    = 0.10
)

// reviewSaturation is the review count at which the quality score stops
// rewarding additional volume.
const reviewSaturation = 10000

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Scores holds the per-dimension sub-scores and the weighted total, each
// rounded to three decimals.
type Scores struct {
	Quality  float64 `json:"quality"`
	Delivery float64 `json:"delivery"`
	Value    float64 `json:"value"`
	Match    float64 `json:"match"`
	Total    float64 `json:"total"`
}

// Scored is a candidate item plus its scoring breakdown. Immutable once
// produced by Score.
type Scored struct {
	types.Candidate
	Scores  Scores `json:"scores"`
	ForItem string `json:"for_item,omitempty"`
}

// Score ranks candidates against a query, best first. The sort is stable:
// candidates with equal totals keep their input order. Deterministic, no
// I/O, no hidden randomness.
func Score(candidates []types.Candidate, query string) []Scored {
	prices := make([]*float64, len(candidates))
	for i, c := range candidates {
		prices[i] = c.Price
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		q := quality(c.Rating, c.Reviews)
		d := delivery(c.DeliveryDays)
		v := value(c.Price, prices)
		m := match(c.Title, query)
		total := WeightQuality*q + WeightDelivery*d + WeightValue*v + WeightMatch*m
		scored = append(scored, Scored{
			Candidate: c,
			Scores: Scores{
				Quality:  round3(q),
				Delivery: round3(d),
				Value:    round3(v),
				Match:    round3(m),
				Total:    round3(total),
			},
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Scores.Total > scored[j].Scores.Total
	})
	return scored
}

// quality rewards both rating and review volume, saturating near 10,000
// reviews. Unknown rating or reviews contribute nothing.
func quality(rating *float64, reviews *int) float64 {
	r := 0.0
	if rating != nil {
		r = *rating
	}
	n := 0
	if reviews != nil && *reviews > 0 {
		n = *reviews
	}
	s := (r / 5.0) * (math.Log10(float64(n)+1) / math.Log10(reviewSaturation))
	return clamp01(s)
}

// delivery maps known delivery days onto a fixed urgency curve. Unknown is
// neutral, not slow.
func delivery(days *int) float64 {
	if days == nil {
		return 0.5
	}
	switch d := *days; {
	case d <= 0:
		return 1.0
	case d == 1:
		return 0.85
	case d == 2:
		return 0.70
	case d == 3:
		return 0.55
	default:
		return math.Max(0.1, 0.55-0.1*float64(d-3))
	}
}

// value interpolates linearly across the batch's valid prices: cheapest
// scores 1.0, most expensive 0.1. With no usable prices the score is
// neutral; with a single shared price it is 0.7.
func value(price *float64, prices []*float64) float64 {
	var valid []float64
	for _, p := range prices {
		if p != nil && *p > 0 {
			valid = append(valid, *p)
		}
	}
	if len(valid) == 0 || price == nil || *price <= 0 {
		return 0.5
	}
	pmin, pmax := valid[0], valid[0]
	for _, p := range valid[1:] {
		pmin = math.Min(pmin, p)
		pmax = math.Max(pmax, p)
	}
	if pmax == pmin {
		return 0.7
	}
	return math.Max(0.1, 1.0-(*price-pmin)/(pmax-pmin)*0.9)
}

// match is the fraction of query tokens present as substrings of the
// title, both lowercased. Empty query or title is neutral.
func match(title string, query string) float64 {
	if title == "" || query == "" {
		return 0.5
	}
	t := strings.ToLower(title)
	tokens := tokenPattern.FindAllString(strings.ToLower(query), -1)
	seen := map[string]bool{}
	hits := 0
	total := 0
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		total++
		if strings.Contains(t, tok) {
			hits++
		}
	}
	if total == 0 {
		return 0.5
	}
	return math.Max(0.1, clamp01(float64(hits)/float64(total)))
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
