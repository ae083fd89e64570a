package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/astroseer/astroseer/internal/astro"
	"github.com/astroseer/astroseer/internal/scoring"
	"github.com/astroseer/astroseer/internal/weather"
)

// WeatherProvider is the weather API surface the service needs.
type WeatherProvider interface {
	GetCurrent(ctx context.Context, lat, lon float64) (*weather.Sample, error)
	GetForecast(ctx context.Context, lat, lon float64, hours int) ([]weather.Sample, error)
}

// JetStreamProvider supplies 250hPa wind speed. Best-effort: absence never
// fails a score computation.
type JetStreamProvider interface {
	GetJetStreamSpeed(ctx context.Context, lat, lon float64, t time.Time) (*float64, error)
}

// WeatherCache stores samples keyed by rounded coordinates and hour.
// A nil sample with nil error is a miss.
type WeatherCache interface {
	GetSample(ctx context.Context, lat, lon float64, t time.Time, ignoreTTL bool) (*weather.Sample, error)
	SetSample(ctx context.Context, lat, lon float64, s *weather.Sample) error
	SetSamples(ctx context.Context, lat, lon float64, samples []weather.Sample) error
	GetSampleRange(ctx context.Context, lat, lon float64, from, to time.Time) ([]weather.Sample, error)
}

// Service orchestrates weather fetching, astronomy, and scoring into reports
// and hourly forecasts. The scoring itself is pure; the service adds caching
// and the stale-data fallback around it.
type Service struct {
	provider WeatherProvider
	jet      JetStreamProvider
	cache    WeatherCache // may be nil
	calc     *astro.Calculator
	catalog  *astro.Catalog
	engine   *scoring.Engine
	log      *slog.Logger
}

// NewService constructs a Service. cache may be nil to disable caching.
func NewService(
	provider WeatherProvider,
	jet JetStreamProvider,
	cache WeatherCache,
	calc *astro.Calculator,
	catalog *astro.Catalog,
	engine *scoring.Engine,
	log *slog.Logger,
) *Service {
	return &Service{
		provider: provider,
		jet:      jet,
		cache:    cache,
		calc:     calc,
		catalog:  catalog,
		engine:   engine,
		log:      log,
	}
}

// Catalog exposes the celestial catalog for callers resolving target names.
func (s *Service) Catalog() *astro.Catalog {
	return s.catalog
}

// Calculator exposes the astronomy calculator.
func (s *Service) Calculator() *astro.Calculator {
	return s.calc
}

// CurrentConditions builds a full seeing report for the location now.
// targetName may be empty; an unknown target is an error.
func (s *Service) CurrentConditions(ctx context.Context, loc astro.Location, targetName string) (*Report, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	var target *astro.CelestialObject
	if targetName != "" {
		var err error
		if target, err = s.catalog.Get(targetName); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()

	// Weather and jet stream fetch in parallel. Jet stream failure is logged
	// and dropped; the score falls back to the neutral component default.
	var sample *weather.Sample
	var jetSpeed *float64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		got, err := s.getWeather(gCtx, loc, now)
		if err != nil {
			return err
		}
		sample = got
		return nil
	})
	g.Go(func() error {
		if s.jet == nil {
			return nil
		}
		speed, err := s.jet.GetJetStreamSpeed(gCtx, loc.Latitude, loc.Longitude, now)
		if err != nil {
			s.log.Debug("jet stream fetch failed", "err", err)
			return nil
		}
		jetSpeed = speed
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if jetSpeed != nil {
		sample.JetStreamSpeed = jetSpeed
	}

	frame := s.calc.Frame(loc, now)

	cond := scoring.Conditions{
		MoonIllumination: frame.MoonIllumination,
		MoonAltitude:     frame.MoonAltitude,
	}

	var targetPos *astro.TargetPosition
	if target != nil {
		pos := s.calc.TargetPosition(*target, loc, now)
		targetPos = &pos
		cond.Airmass = &pos.Airmass
		cond.IsDeepSky = target.IsDeepSky()
	}

	return &Report{
		Location:       loc,
		Timestamp:      now,
		Weather:        *sample,
		Astronomy:      frame,
		Score:          s.engine.Calculate(*sample, cond),
		Target:         target,
		TargetPosition: targetPos,
	}, nil
}

// Forecast produces hourly seeing entries for the location. target may be nil.
// A partial weather forecast yields a correspondingly shorter result; an empty
// one yields an empty result, not an error.
func (s *Service) Forecast(ctx context.Context, loc astro.Location, hours int, target *astro.CelestialObject) ([]Entry, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	samples, err := s.getWeatherForecast(ctx, loc, hours)
	if err != nil {
		return nil, err
	}

	isDeepSky := target != nil && target.IsDeepSky()

	entries := make([]Entry, 0, len(samples))
	for _, sample := range samples {
		frame := s.calc.Frame(loc, sample.Timestamp)

		cond := scoring.Conditions{
			MoonIllumination: frame.MoonIllumination,
			MoonAltitude:     frame.MoonAltitude,
			IsDeepSky:        isDeepSky,
		}
		if target != nil {
			pos := s.calc.TargetPosition(*target, loc, sample.Timestamp)
			cond.Airmass = &pos.Airmass
		}

		entries = append(entries, Entry{
			Timestamp:        sample.Timestamp,
			Score:            s.engine.Calculate(sample, cond),
			Weather:          sample,
			MoonIllumination: frame.MoonIllumination,
			MoonAltitude:     frame.MoonAltitude,
			IsNight:          frame.IsAstronomicalNight(),
		})
	}

	return entries, nil
}

// FindBestWindow scans the forecast horizon for the best observing window.
// Returns nil when no window qualifies.
func (s *Service) FindBestWindow(ctx context.Context, loc astro.Location, hours int, minScore float64, minDurationHours int) (*Window, error) {
	entries, err := s.Forecast(ctx, loc, hours, nil)
	if err != nil {
		return nil, err
	}
	return BestWindow(entries, minScore, minDurationHours), nil
}

// BestNights ranks the coming nights by average score.
func (s *Service) BestNights(ctx context.Context, loc astro.Location, days int, minScore float64) ([]Night, error) {
	entries, err := s.Forecast(ctx, loc, days*24, nil)
	if err != nil {
		return nil, err
	}
	return RankNights(entries, minScore), nil
}

// CompareLocations builds same-instant reports for each location in parallel
// and returns them with a ranking.
func (s *Service) CompareLocations(ctx context.Context, locs []astro.Location) (*Comparison, error) {
	if len(locs) < 2 {
		return nil, fmt.Errorf("comparison needs at least 2 locations, got %d", len(locs))
	}

	reports := make([]Report, len(locs))

	g, gCtx := errgroup.WithContext(ctx)
	for i, loc := range locs {
		i, loc := i, loc
		g.Go(func() error {
			report, err := s.CurrentConditions(gCtx, loc, "")
			if err != nil {
				return fmt.Errorf("conditions for %s: %w", loc.Name, err)
			}
			reports[i] = *report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Comparison{
		Timestamp: time.Now().UTC(),
		Locations: locs,
		Reports:   reports,
	}, nil
}

// getWeather reads the current sample through the cache, falling back to
// stale cache entries when the API is down.
func (s *Service) getWeather(ctx context.Context, loc astro.Location, now time.Time) (*weather.Sample, error) {
	lat, lon := loc.Latitude, loc.Longitude

	if s.cache != nil {
		cached, err := s.cache.GetSample(ctx, lat, lon, now, false)
		if err != nil {
			s.log.Warn("weather cache read failed", "err", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	sample, err := s.provider.GetCurrent(ctx, lat, lon)
	if err != nil {
		if s.cache != nil {
			stale, cacheErr := s.cache.GetSample(ctx, lat, lon, now, true)
			if cacheErr == nil && stale != nil {
				s.log.Info("using stale cached weather after API error", "err", err)
				return stale, nil
			}
		}
		return nil, fmt.Errorf("fetching current weather: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetSample(ctx, lat, lon, sample); err != nil {
			s.log.Warn("weather cache write failed", "err", err)
		}
	}

	return sample, nil
}

// getWeatherForecast reads the hourly forecast, caching every sample and
// falling back to the cached range on API failure.
func (s *Service) getWeatherForecast(ctx context.Context, loc astro.Location, hours int) ([]weather.Sample, error) {
	lat, lon := loc.Latitude, loc.Longitude

	samples, err := s.provider.GetForecast(ctx, lat, lon, hours)
	if err != nil {
		if s.cache != nil {
			now := time.Now().UTC()
			cached, cacheErr := s.cache.GetSampleRange(ctx, lat, lon, now, now.Add(time.Duration(hours)*time.Hour))
			if cacheErr == nil && len(cached) > 0 {
				s.log.Info("using cached forecast after API error", "entries", len(cached), "err", err)
				return cached, nil
			}
		}
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}

	if s.cache != nil && len(samples) > 0 {
		if err := s.cache.SetSamples(ctx, lat, lon, samples); err != nil {
			s.log.Warn("forecast cache write failed", "err", err)
		}
	}

	return samples, nil
}
