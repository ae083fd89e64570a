package weather

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const gfsDefaultURL = "https://api.open-meteo.com/v1/gfs"

// GFSClient reads NOAA GFS model data through Open-Meteo, for upper-atmosphere
// winds at the 250hPa jet stream level.
type GFSClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewGFSClient constructs a client against the production endpoint.
func NewGFSClient() *GFSClient {
	return &GFSClient{
		baseURL: gfsDefaultURL,
		client:  newHTTPClient(),
		limiter: rate.NewLimiter(rate.Limit(1), 2),
	}
}

// NewGFSClientWithURL constructs a client pointing at a custom base URL (for tests).
func NewGFSClientWithURL(baseURL string) *GFSClient {
	return &GFSClient{
		baseURL: baseURL,
		client:  newHTTPClient(),
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

type gfsResponse struct {
	Hourly struct {
		Time             []string   `json:"time"`
		WindSpeed250hPa  []*float64 `json:"wind_speed_250hPa"`
	} `json:"hourly"`
}

// GetJetStreamSpeed returns the 250hPa wind speed in m/s at the hour closest
// to t, or nil when the model has no data. Failures are the caller's to treat
// as best-effort.
func (c *GFSClient) GetJetStreamSpeed(ctx context.Context, lat, lon float64, t time.Time) (*float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	endpoint := fmt.Sprintf(
		"%s?latitude=%g&longitude=%g&hourly=wind_speed_250hPa&forecast_hours=24&timezone=UTC",
		c.baseURL, lat, lon,
	)

	var raw gfsResponse
	if err := doGet(ctx, c.client, endpoint, &raw); err != nil {
		return nil, &APIError{Source: "noaa-gfs", Err: err}
	}

	var best *float64
	bestDiff := math.Inf(1)
	for i, ts := range raw.Hourly.Time {
		stamp, err := parseTimestamp(ts)
		if err != nil {
			continue
		}
		v := value(raw.Hourly.WindSpeed250hPa, i)
		if v == nil {
			continue
		}
		if diff := math.Abs(stamp.Sub(t).Seconds()); diff < bestDiff {
			bestDiff = diff
			speed := *v / 3.6 // km/h to m/s
			best = &speed
		}
	}

	return best, nil
}
