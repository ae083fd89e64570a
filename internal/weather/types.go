package weather

import (
	"fmt"
	"time"
)

// Sample holds weather conditions for one location and hour.
// Optional signals are pointers; scorers supply their own neutral defaults
// when a signal is absent.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`

	Temperature float64 `json:"temperature"` // surface, Celsius
	DewPoint    float64 `json:"dew_point"`   // Celsius

	WindSpeed10m  float64  `json:"wind_speed_10m"`           // m/s
	WindSpeed80m  *float64 `json:"wind_speed_80m,omitempty"` // m/s
	WindGusts     float64  `json:"wind_gusts"`               // m/s
	WindDirection float64  `json:"wind_direction"`           // degrees

	Humidity       float64  `json:"humidity"`    // 0-100
	CloudCover     float64  `json:"cloud_cover"` // total, 0-100
	CloudCoverLow  *float64 `json:"cloud_cover_low,omitempty"`
	CloudCoverMid  *float64 `json:"cloud_cover_mid,omitempty"`
	CloudCoverHigh *float64 `json:"cloud_cover_high,omitempty"`

	Pressure float64 `json:"pressure"` // hPa

	JetStreamSpeed *float64 `json:"jet_stream_speed,omitempty"` // 250hPa wind, m/s

	Precipitation            float64  `json:"precipitation"` // mm
	PrecipitationProbability *float64 `json:"precipitation_probability,omitempty"`

	Visibility *float64 `json:"visibility,omitempty"` // meters
}

// TemperatureDifferential is the spread between temperature and dew point.
// Higher means drier air.
func (s Sample) TemperatureDifferential() float64 {
	return s.Temperature - s.DewPoint
}

// WindShear returns the 10m/80m wind speed difference, or nil when the 80m
// level is unavailable.
func (s Sample) WindShear() *float64 {
	if s.WindSpeed80m == nil {
		return nil
	}
	shear := *s.WindSpeed80m - s.WindSpeed10m
	if shear < 0 {
		shear = -shear
	}
	return &shear
}

// APIError is a weather provider failure.
type APIError struct {
	Source string
	Err    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
