package catalog

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"daybrief/app/pkg/types"
)

// pricePaths is the documented extraction precedence for the price field.
// Provider payloads carry prices in several shapes; the first path that
// yields a usable number wins.
var pricePaths = []string{"prices.0", "price", "buybox_winner.price", "offers.0.price"}

// estimatePaths are the delivery-estimate keys known across provider
// payload revisions.
var estimatePaths = []string{
	"delivery.estimated_delivery_date",
	"delivery.estimated_arrival_date",
	"delivery.expected_delivery_date",
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// normalize builds a candidate from one raw provider result. Results
// missing both title and URL are dropped. The prime/non-prime delivery
// heuristic applies only when a deadline was supplied; without one the
// delivery estimate stays unknown rather than fabricating urgency.
func normalize(raw json.RawMessage, deadlineDays *int, today time.Time) (types.Candidate, bool) {
	g := gjson.ParseBytes(raw)

	title := g.Get("title").String()
	link := g.Get("link").String()
	if link == "" {
		link = g.Get("url").String()
	}
	if title == "" && link == "" {
		return types.Candidate{}, false
	}

	prime := g.Get("is_prime").Bool() || g.Get("is_prime_delivery").Bool()

	deliveryDays := deliveryDaysFromEstimate(g, today)
	if deliveryDays == nil && deadlineDays != nil {
		d := 4
		if prime {
			d = 1
		}
		deliveryDays = &d
	}

	image := g.Get("image").String()
	if g.Get("image").IsObject() {
		image = g.Get("image.link").String()
	}

	return types.Candidate{
		ID:           g.Get("asin").String(),
		Title:        title,
		Price:        extractPrice(g),
		Prime:        prime,
		DeliveryDays: deliveryDays,
		Rating:       numericValue(g.Get("rating")),
		Reviews:      intValue(g.Get("ratings_total")),
		ImageURL:     image,
		ProductURL:   link,
	}, true
}

func extractPrice(g gjson.Result) *float64 {
	for _, path := range pricePaths {
		if v := priceValue(g.Get(path)); v != nil {
			return v
		}
	}
	return nil
}

// priceValue reads a price node that may be a number, a formatted string,
// or an object carrying a value field.
func priceValue(r gjson.Result) *float64 {
	if !r.Exists() {
		return nil
	}
	if r.IsObject() {
		return priceValue(r.Get("value"))
	}
	return numericValue(r)
}

func numericValue(r gjson.Result) *float64 {
	switch r.Type {
	case gjson.Number:
		f := r.Float()
		return &f
	case gjson.String:
		s := strings.ReplaceAll(r.String(), ",", "")
		m := numberPattern.FindString(s)
		if m == "" {
			return nil
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func intValue(r gjson.Result) *int {
	f := numericValue(r)
	if f == nil {
		return nil
	}
	n := int(*f)
	if n < 0 {
		n = 0
	}
	return &n
}

// deliveryDaysFromEstimate derives whole days until the provider's
// estimated arrival date, floored at zero. Unknown when no estimate is
// present or it does not parse.
func deliveryDaysFromEstimate(g gjson.Result, today time.Time) *int {
	for _, path := range estimatePaths {
		raw := g.Get(path).String()
		if raw == "" {
			continue
		}
		var (
			d   time.Time
			err error
		)
		if strings.Contains(raw, "T") {
			d, err = time.Parse("2006-01-02T15:04:05", strings.TrimSuffix(raw, "Z"))
		} else {
			d, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			continue
		}
		days := int(time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Sub(today).Hours() / 24)
		if days < 0 {
			days = 0
		}
		return &days
	}
	return nil
}
