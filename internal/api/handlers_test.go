package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroseer/astroseer/internal/advisor"
	"github.com/astroseer/astroseer/internal/alerts"
	"github.com/astroseer/astroseer/internal/api"
	"github.com/astroseer/astroseer/internal/astro"
	"github.com/astroseer/astroseer/internal/forecast"
	"github.com/astroseer/astroseer/internal/scoring"
	"github.com/astroseer/astroseer/internal/storage"
	"github.com/astroseer/astroseer/internal/timelapse"
	"github.com/astroseer/astroseer/internal/weather"
)

// ---- mock implementations ----

type mockForecasts struct {
	conditionsFn func(ctx context.Context, loc astro.Location, targetName string) (*forecast.Report, error)
	forecastFn   func(ctx context.Context, loc astro.Location, hours int, target *astro.CelestialObject) ([]forecast.Entry, error)
	bestWindowFn func(ctx context.Context, loc astro.Location, hours int, minScore float64, minDurationHours int) (*forecast.Window, error)
	bestNightsFn func(ctx context.Context, loc astro.Location, days int, minScore float64) ([]forecast.Night, error)
	compareFn    func(ctx context.Context, locs []astro.Location) (*forecast.Comparison, error)
}

func (m *mockForecasts) CurrentConditions(ctx context.Context, loc astro.Location, targetName string) (*forecast.Report, error) {
	return m.conditionsFn(ctx, loc, targetName)
}
func (m *mockForecasts) Forecast(ctx context.Context, loc astro.Location, hours int, target *astro.CelestialObject) ([]forecast.Entry, error) {
	return m.forecastFn(ctx, loc, hours, target)
}
func (m *mockForecasts) FindBestWindow(ctx context.Context, loc astro.Location, hours int, minScore float64, minDurationHours int) (*forecast.Window, error) {
	return m.bestWindowFn(ctx, loc, hours, minScore, minDurationHours)
}
func (m *mockForecasts) BestNights(ctx context.Context, loc astro.Location, days int, minScore float64) ([]forecast.Night, error) {
	return m.bestNightsFn(ctx, loc, days, minScore)
}
func (m *mockForecasts) CompareLocations(ctx context.Context, locs []astro.Location) (*forecast.Comparison, error) {
	return m.compareFn(ctx, locs)
}

type mockImaging struct {
	findFn func(ctx context.Context, targetName string, loc astro.Location, params timelapse.SearchParams) ([]timelapse.Window, error)
}

func (m *mockImaging) FindImagingWindows(ctx context.Context, targetName string, loc astro.Location, params timelapse.SearchParams) ([]timelapse.Window, error) {
	return m.findFn(ctx, targetName, loc, params)
}

type mockAdvisor struct{}

func (m *mockAdvisor) ActivityRecommendations(_ forecast.Report) []advisor.ActivityRecommendation {
	return []advisor.ActivityRecommendation{{Activity: advisor.ActivityVisual, Score: 75, Rating: "Very Good"}}
}
func (m *mockAdvisor) EquipmentSuggestions(_ forecast.Report) []advisor.EquipmentSuggestion {
	return []advisor.EquipmentSuggestion{{Text: "dew heaters", Priority: "high"}}
}
func (m *mockAdvisor) TargetRecommendations(_ forecast.Report, _ astro.Location, _ time.Time, _ int) []advisor.TargetRecommendation {
	return []advisor.TargetRecommendation{{Name: "M31", Score: 70}}
}

type mockSessions struct {
	createFn func(ctx context.Context, locationName string, lat, lon float64, notes string, conditions *storage.SessionConditions) (*storage.Session, error)
	endFn    func(ctx context.Context, id int64, notes string) error
	addObsFn func(ctx context.Context, sessionID int64, targetName string, rating int, notes string) (*storage.Observation, error)
	getFn    func(ctx context.Context, id int64) (*storage.Session, error)
	listFn   func(ctx context.Context, limit int) ([]*storage.Session, error)
}

func (m *mockSessions) CreateSession(ctx context.Context, locationName string, lat, lon float64, notes string, conditions *storage.SessionConditions) (*storage.Session, error) {
	return m.createFn(ctx, locationName, lat, lon, notes, conditions)
}
func (m *mockSessions) EndSession(ctx context.Context, id int64, notes string) error {
	return m.endFn(ctx, id, notes)
}
func (m *mockSessions) AddObservation(ctx context.Context, sessionID int64, targetName string, rating int, notes string) (*storage.Observation, error) {
	return m.addObsFn(ctx, sessionID, targetName, rating, notes)
}
func (m *mockSessions) GetSession(ctx context.Context, id int64) (*storage.Session, error) {
	return m.getFn(ctx, id)
}
func (m *mockSessions) ListSessions(ctx context.Context, limit int) ([]*storage.Session, error) {
	return m.listFn(ctx, limit)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ---- helpers ----

func sampleReport() *forecast.Report {
	return &forecast.Report{
		Location: astro.Location{Name: "test", Latitude: 43.75, Longitude: 6.92},
		Weather:  weather.Sample{Temperature: 12, CloudCover: 10, WindSpeed10m: 2, Humidity: 50},
		Astronomy: astro.AstronomyFrame{
			MoonIllumination: 15,
			MoonAltitude:     -20,
			SunAltitude:      -30,
		},
		Score: scoring.Score{Total: 78.5},
	}
}

const testToken = "secret-token"

type routerDeps struct {
	forecasts api.ForecastService
	imaging   api.TimelapseService
	sessions  api.SessionRepo
	alerts    api.AlertRegistry
	db, redis *mockPinger
}

func buildRouter(deps routerDeps) http.Handler {
	if deps.db == nil {
		deps.db = &mockPinger{}
	}
	if deps.redis == nil {
		deps.redis = &mockPinger{}
	}
	if deps.alerts == nil {
		deps.alerts = alerts.NewService()
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(deps.forecasts, deps.imaging, &mockAdvisor{}, deps.alerts, deps.sessions, log)
	return api.NewRouter(handlers, testToken, deps.db, deps.redis, log)
}

func doAuthed(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- GET /api/v1/conditions ----

func TestGetConditions_OK(t *testing.T) {
	forecasts := &mockForecasts{
		conditionsFn: func(_ context.Context, loc astro.Location, _ string) (*forecast.Report, error) {
			assert.Equal(t, 43.75, loc.Latitude)
			return sampleReport(), nil
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts})
	w := doAuthed(router, http.MethodGet, "/api/v1/conditions?lat=43.75&lon=6.92", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got forecast.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 78.5, got.Score.Total)
}

func TestGetConditions_MissingLat(t *testing.T) {
	router := buildRouter(routerDeps{})
	w := doAuthed(router, http.MethodGet, "/api/v1/conditions?lon=6.92", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConditions_InvalidLatitude(t *testing.T) {
	router := buildRouter(routerDeps{})
	w := doAuthed(router, http.MethodGet, "/api/v1/conditions?lat=95&lon=6.92", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConditions_UnknownTarget(t *testing.T) {
	forecasts := &mockForecasts{
		conditionsFn: func(_ context.Context, _ astro.Location, target string) (*forecast.Report, error) {
			return nil, fmt.Errorf("%w: %s", astro.ErrNotFound, target)
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts})
	w := doAuthed(router, http.MethodGet, "/api/v1/conditions?lat=43.75&lon=6.92&target=ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetConditions_UpstreamDown(t *testing.T) {
	forecasts := &mockForecasts{
		conditionsFn: func(_ context.Context, _ astro.Location, _ string) (*forecast.Report, error) {
			return nil, fmt.Errorf("fetching weather: timeout")
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts})
	w := doAuthed(router, http.MethodGet, "/api/v1/conditions?lat=43.75&lon=6.92", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

// ---- GET /api/v1/windows/best ----

func TestGetBestWindow_Found(t *testing.T) {
	start := time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)
	forecasts := &mockForecasts{
		bestWindowFn: func(_ context.Context, _ astro.Location, hours int, minScore float64, minDur int) (*forecast.Window, error) {
			assert.Equal(t, 72, hours)
			assert.Equal(t, 60.0, minScore)
			assert.Equal(t, 3, minDur)
			return &forecast.Window{Start: start, End: start.Add(4 * time.Hour), AverageScore: 82}, nil
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts})
	w := doAuthed(router, http.MethodGet, "/api/v1/windows/best?lat=43.75&lon=6.92&hours=72&min_score=60&min_duration=3", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got forecast.Window
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 82.0, got.AverageScore)
}

func TestGetBestWindow_NoneFound(t *testing.T) {
	forecasts := &mockForecasts{
		bestWindowFn: func(_ context.Context, _ astro.Location, _ int, _ float64, _ int) (*forecast.Window, error) {
			return nil, nil
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts})
	w := doAuthed(router, http.MethodGet, "/api/v1/windows/best?lat=43.75&lon=6.92", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---- GET /api/v1/targets/{name}/windows ----

func TestGetTargetWindows_PassesParams(t *testing.T) {
	imaging := &mockImaging{
		findFn: func(_ context.Context, target string, _ astro.Location, params timelapse.SearchParams) ([]timelapse.Window, error) {
			assert.Equal(t, "M31", target)
			assert.Equal(t, 14, params.SearchDays)
			assert.Equal(t, 45.0, params.MinAltitude)
			require.NotNil(t, params.TargetDate)
			assert.Equal(t, "2026-03-12", params.TargetDate.Format("2006-01-02"))
			return []timelapse.Window{{TargetName: "M31"}}, nil
		},
	}

	router := buildRouter(routerDeps{imaging: imaging})
	w := doAuthed(router, http.MethodGet, "/api/v1/targets/M31/windows?lat=43.75&lon=6.92&days=14&min_altitude=45&date=2026-03-12", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetTargetWindows_BadDate(t *testing.T) {
	router := buildRouter(routerDeps{})
	w := doAuthed(router, http.MethodGet, "/api/v1/targets/M31/windows?lat=43.75&lon=6.92&date=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTargetWindows_UnknownTarget(t *testing.T) {
	imaging := &mockImaging{
		findFn: func(_ context.Context, target string, _ astro.Location, _ timelapse.SearchParams) ([]timelapse.Window, error) {
			return nil, fmt.Errorf("%w: %s", astro.ErrNotFound, target)
		},
	}

	router := buildRouter(routerDeps{imaging: imaging})
	w := doAuthed(router, http.MethodGet, "/api/v1/targets/ghost/windows?lat=43.75&lon=6.92", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---- POST /api/v1/locations/compare ----

func TestCompareLocations_OK(t *testing.T) {
	forecasts := &mockForecasts{
		compareFn: func(_ context.Context, locs []astro.Location) (*forecast.Comparison, error) {
			assert.Len(t, locs, 2)
			return &forecast.Comparison{}, nil
		},
	}

	body := `{"locations":[{"name":"a","latitude":43,"longitude":6},{"name":"b","latitude":44,"longitude":7}]}`
	router := buildRouter(routerDeps{forecasts: forecasts})
	w := doAuthed(router, http.MethodPost, "/api/v1/locations/compare", body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCompareLocations_TooFew(t *testing.T) {
	forecasts := &mockForecasts{
		compareFn: func(_ context.Context, locs []astro.Location) (*forecast.Comparison, error) {
			return nil, fmt.Errorf("at least two locations are required")
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts})
	w := doAuthed(router, http.MethodPost, "/api/v1/locations/compare", `{"locations":[{"latitude":43,"longitude":6}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompareLocations_BadBody(t *testing.T) {
	router := buildRouter(routerDeps{})
	w := doAuthed(router, http.MethodPost, "/api/v1/locations/compare", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- GET /api/v1/advise ----

func TestGetAdvice_OK(t *testing.T) {
	forecasts := &mockForecasts{
		conditionsFn: func(_ context.Context, _ astro.Location, _ string) (*forecast.Report, error) {
			return sampleReport(), nil
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts})
	w := doAuthed(router, http.MethodGet, "/api/v1/advise?lat=43.75&lon=6.92", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got, "activities")
	assert.Contains(t, got, "equipment")
	assert.Contains(t, got, "targets")
}

// ---- alerts ----

func TestAlerts_CreateListDelete(t *testing.T) {
	registry := alerts.NewService()
	router := buildRouter(routerDeps{alerts: registry})

	w := doAuthed(router, http.MethodPost, "/api/v1/alerts", `{"name":"clear night","expression":"score > 70 and cloud_cover < 20"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created alerts.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	w = doAuthed(router, http.MethodGet, "/api/v1/alerts", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "clear night")

	w = doAuthed(router, http.MethodDelete, "/api/v1/alerts/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doAuthed(router, http.MethodDelete, "/api/v1/alerts/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAlert_BadExpression(t *testing.T) {
	router := buildRouter(routerDeps{})
	w := doAuthed(router, http.MethodPost, "/api/v1/alerts", `{"name":"bad","expression":"__import__ > 1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckAlerts_Triggered(t *testing.T) {
	registry := alerts.NewService()
	_, err := registry.Add("good seeing", "score > 70")
	require.NoError(t, err)
	_, err = registry.Add("impossible", "score > 99")
	require.NoError(t, err)

	forecasts := &mockForecasts{
		conditionsFn: func(_ context.Context, _ astro.Location, _ string) (*forecast.Report, error) {
			return sampleReport(), nil
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts, alerts: registry})
	w := doAuthed(router, http.MethodGet, "/api/v1/alerts/check?lat=43.75&lon=6.92", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Checked   int                     `json:"checked"`
		Triggered []alerts.TriggeredAlert `json:"triggered"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Checked)
	require.Len(t, got.Triggered, 1)
	assert.Equal(t, "good seeing", got.Triggered[0].Alert.Name)
}

// ---- sessions ----

func TestCreateSession_SnapshotsConditions(t *testing.T) {
	forecasts := &mockForecasts{
		conditionsFn: func(_ context.Context, _ astro.Location, _ string) (*forecast.Report, error) {
			return sampleReport(), nil
		},
	}
	sessions := &mockSessions{
		createFn: func(_ context.Context, name string, lat, lon float64, notes string, cond *storage.SessionConditions) (*storage.Session, error) {
			require.NotNil(t, cond)
			assert.Equal(t, 78.5, cond.Score.Total)
			return &storage.Session{ID: 7, LocationName: name, Latitude: lat, Longitude: lon}, nil
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts, sessions: sessions})
	w := doAuthed(router, http.MethodPost, "/api/v1/sessions", `{"location_name":"Backyard","latitude":43.75,"longitude":6.92}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got storage.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.ID)
}

func TestCreateSession_WeatherDownStillCreates(t *testing.T) {
	forecasts := &mockForecasts{
		conditionsFn: func(_ context.Context, _ astro.Location, _ string) (*forecast.Report, error) {
			return nil, fmt.Errorf("weather api down")
		},
	}
	sessions := &mockSessions{
		createFn: func(_ context.Context, name string, _, _ float64, _ string, cond *storage.SessionConditions) (*storage.Session, error) {
			assert.Nil(t, cond)
			return &storage.Session{ID: 1, LocationName: name}, nil
		},
	}

	router := buildRouter(routerDeps{forecasts: forecasts, sessions: sessions})
	w := doAuthed(router, http.MethodPost, "/api/v1/sessions", `{"location_name":"Backyard","latitude":43.75,"longitude":6.92}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateSession_MissingName(t *testing.T) {
	router := buildRouter(routerDeps{})
	w := doAuthed(router, http.MethodPost, "/api/v1/sessions", `{"latitude":43.75,"longitude":6.92}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	sessions := &mockSessions{
		getFn: func(_ context.Context, id int64) (*storage.Session, error) {
			return nil, fmt.Errorf("session %d: %w", id, storage.ErrNotFound)
		},
	}

	router := buildRouter(routerDeps{sessions: sessions})
	w := doAuthed(router, http.MethodGet, "/api/v1/sessions/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSession_BadID(t *testing.T) {
	router := buildRouter(routerDeps{})
	w := doAuthed(router, http.MethodGet, "/api/v1/sessions/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEndSession_OK(t *testing.T) {
	var captured string
	sessions := &mockSessions{
		endFn: func(_ context.Context, id int64, notes string) error {
			assert.Equal(t, int64(7), id)
			captured = notes
			return nil
		},
	}

	router := buildRouter(routerDeps{sessions: sessions})
	w := doAuthed(router, http.MethodPost, "/api/v1/sessions/7/end", `{"notes":"clouds rolled in"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "clouds rolled in", captured)
}

func TestAddObservation_OK(t *testing.T) {
	sessions := &mockSessions{
		addObsFn: func(_ context.Context, sessionID int64, target string, rating int, _ string) (*storage.Observation, error) {
			return &storage.Observation{ID: 1, SessionID: sessionID, TargetName: target, Rating: rating}, nil
		},
	}

	router := buildRouter(routerDeps{sessions: sessions})
	w := doAuthed(router, http.MethodPost, "/api/v1/sessions/7/observations", `{"target":"M31","rating":4}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAddObservation_BadRating(t *testing.T) {
	sessions := &mockSessions{
		addObsFn: func(_ context.Context, _ int64, _ string, rating int, _ string) (*storage.Observation, error) {
			return nil, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
		},
	}

	router := buildRouter(routerDeps{sessions: sessions})
	w := doAuthed(router, http.MethodPost, "/api/v1/sessions/7/observations", `{"target":"M31","rating":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- health ----

func TestHealth_OK(t *testing.T) {
	router := buildRouter(routerDeps{db: &mockPinger{}, redis: &mockPinger{}})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth_Degraded(t *testing.T) {
	router := buildRouter(routerDeps{db: &mockPinger{err: fmt.Errorf("down")}, redis: &mockPinger{}})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

// ---- Auth middleware ----

func TestBearerAuth_NoHeader(t *testing.T) {
	router := buildRouter(routerDeps{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conditions?lat=43&lon=6", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_WrongToken(t *testing.T) {
	router := buildRouter(routerDeps{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conditions?lat=43&lon=6", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_HealthNoAuth(t *testing.T) {
	// Health endpoint must not require auth.
	router := buildRouter(routerDeps{db: &mockPinger{}, redis: &mockPinger{}})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerAuth_MissingBearerPrefix(t *testing.T) {
	router := buildRouter(routerDeps{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conditions?lat=43&lon=6", nil)
	req.Header.Set("Authorization", testToken) // no "Bearer " prefix
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
