package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/astroseer/astroseer/internal/astro"
	"github.com/astroseer/astroseer/internal/storage"
	"github.com/astroseer/astroseer/internal/timelapse"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	forecasts ForecastService
	imaging   TimelapseService
	advisor   AdvisorService
	alerts    AlertRegistry
	sessions  SessionRepo
	log       *slog.Logger
}

// NewHandlers constructs Handlers. All dependencies are required; the session
// handlers assume a wired repository.
func NewHandlers(forecasts ForecastService, imaging TimelapseService, advisor AdvisorService, alerts AlertRegistry, sessions SessionRepo, log *slog.Logger) *Handlers {
	return &Handlers{
		forecasts: forecasts,
		imaging:   imaging,
		advisor:   advisor,
		alerts:    alerts,
		sessions:  sessions,
		log:       log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseLocation builds a Location from lat/lon/elevation/name query params.
func parseLocation(r *http.Request) (astro.Location, error) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return astro.Location{}, errors.New("lat query parameter is required")
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return astro.Location{}, errors.New("lon query parameter is required")
	}

	loc := astro.Location{
		Name:      q.Get("name"),
		Latitude:  lat,
		Longitude: lon,
	}
	if loc.Name == "" {
		loc.Name = "query location"
	}
	if elev := q.Get("elevation"); elev != "" {
		if e, err := strconv.ParseFloat(elev, 64); err == nil {
			loc.Elevation = e
		}
	}

	return loc, loc.Validate()
}

// queryInt returns the named query parameter as an int, or def.
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// queryFloat returns the named query parameter as a float64, or def.
func queryFloat(r *http.Request, name string, def float64) float64 {
	if v := r.URL.Query().Get(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// GetConditions handles GET /api/v1/conditions.
func (h *Handlers) GetConditions(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.forecasts.CurrentConditions(r.Context(), loc, r.URL.Query().Get("target"))
	if err != nil {
		if errors.Is(err, astro.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("conditions failed", "location", loc.String(), "err", err)
		writeError(w, http.StatusBadGateway, "failed to fetch conditions")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// GetForecast handles GET /api/v1/forecast.
func (h *Handlers) GetForecast(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hours := queryInt(r, "hours", 48)

	entries, err := h.forecasts.Forecast(r.Context(), loc, hours, nil)
	if err != nil {
		h.log.Error("forecast failed", "location", loc.String(), "err", err)
		writeError(w, http.StatusBadGateway, "failed to fetch forecast")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"location": loc,
		"hours":    hours,
		"entries":  entries,
	})
}

// GetBestWindow handles GET /api/v1/windows/best.
func (h *Handlers) GetBestWindow(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hours := queryInt(r, "hours", 48)
	minScore := queryFloat(r, "min_score", 50)
	minDuration := queryInt(r, "min_duration", 2)

	window, err := h.forecasts.FindBestWindow(r.Context(), loc, hours, minScore, minDuration)
	if err != nil {
		h.log.Error("best window failed", "location", loc.String(), "err", err)
		writeError(w, http.StatusBadGateway, "failed to compute observing windows")
		return
	}
	if window == nil {
		writeError(w, http.StatusNotFound, "no observing window matches the given criteria")
		return
	}

	writeJSON(w, http.StatusOK, window)
}

// GetBestNights handles GET /api/v1/nights/best.
func (h *Handlers) GetBestNights(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days := queryInt(r, "days", 7)
	minScore := queryFloat(r, "min_score", 40)

	nights, err := h.forecasts.BestNights(r.Context(), loc, days, minScore)
	if err != nil {
		h.log.Error("best nights failed", "location", loc.String(), "err", err)
		writeError(w, http.StatusBadGateway, "failed to rank nights")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"location": loc,
		"nights":   nights,
	})
}

// GetTargetWindows handles GET /api/v1/targets/{name}/windows.
func (h *Handlers) GetTargetWindows(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target := chi.URLParam(r, "name")

	params := timelapse.DefaultSearchParams()
	params.SearchDays = queryInt(r, "days", params.SearchDays)
	params.MinAltitude = queryFloat(r, "min_altitude", params.MinAltitude)
	params.MinDurationHours = queryFloat(r, "min_duration", params.MinDurationHours)
	params.MinScore = queryFloat(r, "min_score", params.MinScore)
	if d := r.URL.Query().Get("date"); d != "" {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		params.TargetDate = &date
	}

	windows, err := h.imaging.FindImagingWindows(r.Context(), target, loc, params)
	if err != nil {
		if errors.Is(err, astro.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("imaging windows failed", "target", target, "err", err)
		writeError(w, http.StatusBadGateway, "failed to compute imaging windows")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"target":  target,
		"windows": windows,
	})
}

// compareRequest is the body for POST /api/v1/locations/compare.
type compareRequest struct {
	Locations []astro.Location `json:"locations"`
}

// CompareLocations handles POST /api/v1/locations/compare.
func (h *Handlers) CompareLocations(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	comparison, err := h.forecasts.CompareLocations(r.Context(), req.Locations)
	if err != nil {
		if len(req.Locations) < 2 {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("compare failed", "locations", len(req.Locations), "err", err)
		writeError(w, http.StatusBadGateway, "failed to compare locations")
		return
	}

	writeJSON(w, http.StatusOK, comparison)
}

// GetAdvice handles GET /api/v1/advise. It bundles activity scores,
// equipment suggestions, and target picks for the current conditions.
func (h *Handlers) GetAdvice(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.forecasts.CurrentConditions(r.Context(), loc, "")
	if err != nil {
		h.log.Error("advice conditions failed", "location", loc.String(), "err", err)
		writeError(w, http.StatusBadGateway, "failed to fetch conditions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"report":     report,
		"activities": h.advisor.ActivityRecommendations(*report),
		"equipment":  h.advisor.EquipmentSuggestions(*report),
		"targets":    h.advisor.TargetRecommendations(*report, loc, time.Now().UTC(), 5),
	})
}

// alertRequest is the body for POST /api/v1/alerts.
type alertRequest struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// CreateAlert handles POST /api/v1/alerts.
func (h *Handlers) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Expression == "" {
		writeError(w, http.StatusBadRequest, "name and expression are required")
		return
	}

	alert, err := h.alerts.Add(req.Name, req.Expression)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, alert)
}

// ListAlerts handles GET /api/v1/alerts.
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"alerts": h.alerts.List()})
}

// DeleteAlert handles DELETE /api/v1/alerts/{id}.
func (h *Handlers) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.alerts.Remove(id) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckAlerts handles GET /api/v1/alerts/check. It evaluates all registered
// alerts against the current conditions at the given location.
func (h *Handlers) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.forecasts.CurrentConditions(r.Context(), loc, "")
	if err != nil {
		h.log.Error("alert check conditions failed", "location", loc.String(), "err", err)
		writeError(w, http.StatusBadGateway, "failed to fetch conditions")
		return
	}

	triggered := h.alerts.Evaluate(*report)
	writeJSON(w, http.StatusOK, map[string]any{
		"checked":   len(h.alerts.List()),
		"triggered": triggered,
	})
}

// sessionRequest is the body for POST /api/v1/sessions.
type sessionRequest struct {
	LocationName string  `json:"location_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Notes        string  `json:"notes"`
}

// CreateSession handles POST /api/v1/sessions. The current conditions are
// snapshotted into the session when they can be fetched; a weather outage
// does not block starting a session.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	loc := astro.Location{Name: req.LocationName, Latitude: req.Latitude, Longitude: req.Longitude}
	if err := loc.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.LocationName == "" {
		writeError(w, http.StatusBadRequest, "location_name is required")
		return
	}

	var conditions *storage.SessionConditions
	if report, err := h.forecasts.CurrentConditions(r.Context(), loc, ""); err != nil {
		h.log.Warn("session conditions snapshot failed", "location", loc.String(), "err", err)
	} else {
		conditions = &storage.SessionConditions{Score: report.Score, Weather: report.Weather}
	}

	session, err := h.sessions.CreateSession(r.Context(), req.LocationName, req.Latitude, req.Longitude, req.Notes, conditions)
	if err != nil {
		h.log.Error("create session failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// ListSessions handles GET /api/v1/sessions.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListSessions(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		h.log.Error("list sessions failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GetSession handles GET /api/v1/sessions/{id}.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "session id must be an integer")
		return
	}

	session, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h.log.Error("get session failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// endSessionRequest is the body for POST /api/v1/sessions/{id}/end.
type endSessionRequest struct {
	Notes string `json:"notes"`
}

// EndSession handles POST /api/v1/sessions/{id}/end.
func (h *Handlers) EndSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "session id must be an integer")
		return
	}

	var req endSessionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.sessions.EndSession(r.Context(), id, req.Notes); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found or already ended")
			return
		}
		h.log.Error("end session failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to end session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// observationRequest is the body for POST /api/v1/sessions/{id}/observations.
type observationRequest struct {
	Target string `json:"target"`
	Rating int    `json:"rating"`
	Notes  string `json:"notes"`
}

// AddObservation handles POST /api/v1/sessions/{id}/observations.
func (h *Handlers) AddObservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "session id must be an integer")
		return
	}

	var req observationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Target == "" {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}

	obs, err := h.sessions.AddObservation(r.Context(), id, req.Target, req.Rating, req.Notes)
	if err != nil {
		if req.Rating < 1 || req.Rating > 5 {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("add observation failed", "session", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to record observation")
		return
	}

	writeJSON(w, http.StatusCreated, obs)
}

// HealthCheck handles GET /api/v1/health.
// Pings DB and Redis; returns 200 if both ok, 503 otherwise.
type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis
// connectivity. Either pinger may be nil when the service runs without it.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if db == nil {
			dbStatus = "disabled"
		} else if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if redis == nil {
			redisStatus = "disabled"
		} else if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, map[string]string{
			"status": func() string {
				if status == http.StatusOK {
					return "ok"
				}
				return "degraded"
			}(),
			"db":    dbStatus,
			"redis": redisStatus,
		})
	}
}
