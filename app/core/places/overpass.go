package places

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"daybrief/app/pkg/types"
)

const overpassEndpoint = "https://overpass-api.de/api/interpreter"

// osmFilters maps errand categories onto OSM tag filters. Unknown
// categories fall back to a coarse name match.
var osmFilters = map[string][]string{
	"coffee":    {`amenity="cafe"`, `amenity="coffee_shop"`, `shop="coffee"`},
	"florist":   {`shop="florist"`},
	"gift shop": {`shop="gift"`, `shop="variety_store"`},
	"bakery":    {`shop="bakery"`, `amenity="bakery"`},
}

// OverpassClient queries the free Overpass API for nearby points of
// interest.
type OverpassClient struct {
	endpoint string
	client   *http.Client
}

func NewOverpassClient(timeout time.Duration) *OverpassClient {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &OverpassClient{
		endpoint: overpassEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *OverpassClient) Nearby(ctx context.Context, at types.LatLng, category string, radiusM int) ([]types.Place, error) {
	filters, ok := osmFilters[strings.ToLower(category)]
	if !ok {
		filters = []string{fmt.Sprintf(`name~"%s",i`, category)}
	}

	query := buildOverpassQuery(at, radiusM, filters)
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out []types.Place
	for _, el := range gjson.GetBytes(body, "elements").Array() {
		tags := el.Get("tags")
		name := tags.Get("name").String()
		if name == "" {
			continue
		}
		lat := el.Get("lat")
		lon := el.Get("lon")
		if !lat.Exists() {
			lat = el.Get("center.lat")
			lon = el.Get("center.lon")
		}
		phone := tags.Get(`contact:phone`).String()
		if phone == "" {
			phone = tags.Get("phone").String()
		}
		website := tags.Get("website").String()
		if website == "" {
			website = tags.Get(`contact:website`).String()
		}
		out = append(out, types.Place{
			ID:      fmt.Sprintf("%s/%d", el.Get("type").String(), el.Get("id").Int()),
			Name:    name,
			Phone:   phone,
			Address: joinAddress(tags),
			Lat:     lat.Float(),
			Lon:     lon.Float(),
			URL:     website,
		})
	}
	return out, nil
}

func buildOverpassQuery(at types.LatLng, radiusM int, filters []string) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", radiusM, at.Lat, at.Lon)
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, f := range filters {
		fmt.Fprintf(&b, "node[%s]%s;", f, around)
		fmt.Fprintf(&b, "way[%s]%s;", f, around)
	}
	b.WriteString(");out center 20;")
	return b.String()
}

func joinAddress(tags gjson.Result) string {
	var parts []string
	for _, key := range []string{`addr:housenumber`, `addr:street`, `addr:city`} {
		if v := tags.Get(key).String(); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
