package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const httpTimeout = 10 * time.Second

// newHTTPClient returns an http.Client with a 10-second timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// doGet performs a GET request and decodes the JSON response into dst.
func doGet(ctx context.Context, client *http.Client, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", rawURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}

	return nil
}

// hourly variables requested from Open-Meteo. Wind speeds arrive in km/h.
var hourlyVariables = []string{
	"temperature_2m",
	"dew_point_2m",
	"relative_humidity_2m",
	"pressure_msl",
	"cloud_cover",
	"cloud_cover_low",
	"cloud_cover_mid",
	"cloud_cover_high",
	"wind_speed_10m",
	"wind_speed_80m",
	"wind_gusts_10m",
	"wind_direction_10m",
	"precipitation",
	"precipitation_probability",
	"visibility",
}

const openMeteoDefaultURL = "https://api.open-meteo.com/v1/forecast"

// maxForecastHours is the Open-Meteo hourly horizon limit (16 days).
const maxForecastHours = 384

// OpenMeteoClient fetches hourly forecasts from Open-Meteo. Outbound calls are
// throttled with a token-bucket limiter so batch callers stay under the free
// tier limits.
type OpenMeteoClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewOpenMeteoClient constructs a client against the production API,
// limited to 2 requests per second with a burst of 4.
func NewOpenMeteoClient() *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: openMeteoDefaultURL,
		client:  newHTTPClient(),
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

// NewOpenMeteoClientWithURL constructs a client pointing at a custom base URL (for tests).
func NewOpenMeteoClientWithURL(baseURL string) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: baseURL,
		client:  newHTTPClient(),
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

type openMeteoResponse struct {
	Hourly struct {
		Time                     []string   `json:"time"`
		Temperature2m            []*float64 `json:"temperature_2m"`
		DewPoint2m               []*float64 `json:"dew_point_2m"`
		RelativeHumidity2m       []*float64 `json:"relative_humidity_2m"`
		PressureMsl              []*float64 `json:"pressure_msl"`
		CloudCover               []*float64 `json:"cloud_cover"`
		CloudCoverLow            []*float64 `json:"cloud_cover_low"`
		CloudCoverMid            []*float64 `json:"cloud_cover_mid"`
		CloudCoverHigh           []*float64 `json:"cloud_cover_high"`
		WindSpeed10m             []*float64 `json:"wind_speed_10m"`
		WindSpeed80m             []*float64 `json:"wind_speed_80m"`
		WindGusts10m             []*float64 `json:"wind_gusts_10m"`
		WindDirection10m         []*float64 `json:"wind_direction_10m"`
		Precipitation            []*float64 `json:"precipitation"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		Visibility               []*float64 `json:"visibility"`
	} `json:"hourly"`
}

// GetCurrent retrieves the current-hour conditions.
func (c *OpenMeteoClient) GetCurrent(ctx context.Context, lat, lon float64) (*Sample, error) {
	forecast, err := c.GetForecast(ctx, lat, lon, 1)
	if err != nil {
		return nil, err
	}
	if len(forecast) == 0 {
		return nil, &APIError{Source: "open-meteo", Err: fmt.Errorf("no forecast data available")}
	}
	return &forecast[0], nil
}

// GetForecast retrieves up to hours of hourly samples, ascending by timestamp.
// The sequence may be shorter than requested when the API returns partial data.
func (c *OpenMeteoClient) GetForecast(ctx context.Context, lat, lon float64, hours int) ([]Sample, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	if hours > maxForecastHours {
		hours = maxForecastHours
	}
	endpoint := fmt.Sprintf(
		"%s?latitude=%g&longitude=%g&hourly=%s&forecast_hours=%d&timezone=UTC",
		c.baseURL, lat, lon, strings.Join(hourlyVariables, ","), hours,
	)

	var raw openMeteoResponse
	if err := doGet(ctx, c.client, endpoint, &raw); err != nil {
		return nil, &APIError{Source: "open-meteo", Err: err}
	}

	return parseHourly(raw), nil
}

// parseHourly converts the columnar API payload into samples. Rows with an
// unparseable timestamp are skipped rather than failing the whole forecast.
func parseHourly(raw openMeteoResponse) []Sample {
	h := raw.Hourly
	samples := make([]Sample, 0, len(h.Time))

	for i, ts := range h.Time {
		timestamp, err := parseTimestamp(ts)
		if err != nil {
			continue
		}

		samples = append(samples, Sample{
			Timestamp:                timestamp,
			Temperature:              valueOr(h.Temperature2m, i, 0),
			DewPoint:                 valueOr(h.DewPoint2m, i, 0),
			Humidity:                 valueOr(h.RelativeHumidity2m, i, 50),
			Pressure:                 valueOr(h.PressureMsl, i, 1013.25),
			CloudCover:               valueOr(h.CloudCover, i, 0),
			CloudCoverLow:            value(h.CloudCoverLow, i),
			CloudCoverMid:            value(h.CloudCoverMid, i),
			CloudCoverHigh:           value(h.CloudCoverHigh, i),
			WindSpeed10m:             valueOr(h.WindSpeed10m, i, 0) / 3.6, // km/h to m/s
			WindSpeed80m:             scale(value(h.WindSpeed80m, i), 1.0/3.6),
			WindGusts:                valueOr(h.WindGusts10m, i, 0) / 3.6,
			WindDirection:            valueOr(h.WindDirection10m, i, 0),
			Precipitation:            valueOr(h.Precipitation, i, 0),
			PrecipitationProbability: value(h.PrecipitationProbability, i),
			Visibility:               value(h.Visibility, i),
		})
	}

	return samples
}

// parseTimestamp accepts Open-Meteo's "2006-01-02T15:04" and full RFC 3339.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func value(values []*float64, i int) *float64 {
	if i < len(values) && values[i] != nil {
		v := *values[i]
		return &v
	}
	return nil
}

func valueOr(values []*float64, i int, fallback float64) float64 {
	if v := value(values, i); v != nil {
		return *v
	}
	return fallback
}

func scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}
