package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"daybrief/app/pkg/types"
)

// ErrWeather wraps every failure of the forecast collaborator.
var ErrWeather = errors.New("weather lookup failed")

const (
	openMeteoBase = "https://api.open-meteo.com/v1/forecast"

	// The brief only shows the next few hours.
	maxHourly = 6
)

// OpenMeteoClient fetches a compact current-conditions snapshot from
// Open-Meteo. The service needs no API key.
type OpenMeteoClient struct {
	fahrenheit bool
	client     *http.Client
}

func NewOpenMeteoClient(fahrenheit bool, timeout time.Duration) *OpenMeteoClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenMeteoClient{
		fahrenheit: fahrenheit,
		client:     &http.Client{Timeout: timeout},
	}
}

func (c *OpenMeteoClient) Snapshot(ctx context.Context, at types.LatLng) (types.WeatherSnapshot, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", at.Lat))
	params.Set("longitude", fmt.Sprintf("%f", at.Lon))
	params.Set("current", "temperature_2m,uv_index")
	params.Set("hourly", "temperature_2m,uv_index,precipitation_probability")
	params.Set("timezone", "auto")
	if c.fahrenheit {
		params.Set("temperature_unit", "fahrenheit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openMeteoBase+"?"+params.Encode(), nil)
	if err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("%w: %v", ErrWeather, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("%w: %v", ErrWeather, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return types.WeatherSnapshot{}, fmt.Errorf("%w: http %d", ErrWeather, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("%w: %v", ErrWeather, err)
	}
	return ParseSnapshot(body), nil
}

// ParseSnapshot builds a snapshot from an Open-Meteo forecast body. The
// hourly arrays are aligned by index; readings absent from the payload
// stay nil instead of becoming zero.
func ParseSnapshot(body []byte) types.WeatherSnapshot {
	snap := types.WeatherSnapshot{
		TempNow: optRound1(gjson.GetBytes(body, "current.temperature_2m")),
		UVNow:   optRound1(gjson.GetBytes(body, "current.uv_index")),
	}

	times := gjson.GetBytes(body, "hourly.time").Array()
	temps := gjson.GetBytes(body, "hourly.temperature_2m").Array()
	uvs := gjson.GetBytes(body, "hourly.uv_index").Array()
	pops := gjson.GetBytes(body, "hourly.precipitation_probability").Array()

	n := len(times)
	if n > maxHourly {
		n = maxHourly
	}
	for i := 0; i < n; i++ {
		hour := types.WeatherHour{Time: times[i].String()}
		if i < len(temps) {
			hour.Temp = optRound1(temps[i])
		}
		if i < len(uvs) {
			hour.UV = optRound1(uvs[i])
		}
		if i < len(pops) && pops[i].Exists() {
			p := int(pops[i].Int())
			hour.PrecipProb = &p
		}
		snap.Hourly = append(snap.Hourly, hour)
	}
	return snap
}

// BriefLine renders the one-line summary fed to the planner, e.g.
// "Now 85°F · UV 7 · Rain 10%". Unknown readings print as "?".
func BriefLine(snap types.WeatherSnapshot) string {
	if len(snap.Hourly) == 0 {
		return ""
	}
	h := snap.Hourly[0]
	return fmt.Sprintf("Now %s°F · UV %s · Rain %s%%",
		optNumString(h.Temp), optNumString(h.UV), optIntString(h.PrecipProb))
}

func optRound1(v gjson.Result) *float64 {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	f := math.Round(v.Float()*10) / 10
	return &f
}

func optNumString(v *float64) string {
	if v == nil {
		return "?"
	}
	s := fmt.Sprintf("%.1f", *v)
	if s[len(s)-2:] == ".0" {
		s = s[:len(s)-2]
	}
	return s
}

func optIntString(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *v)
}
