// Package api exposes the routing core over HTTP with Fiber.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/railcore/internal/journeycache"
	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/railerr"
	"github.com/passbi/railcore/internal/routing"
	"github.com/passbi/railcore/internal/store"
	"github.com/passbi/railcore/internal/timetable"
)

// Server holds the dependencies shared by every handler: the in-memory
// timetable loaded at startup and the cache lock timeout used by
// RouteSearch. Handlers are bound as methods so the Fiber router can wire
// them without package-level globals.
type Server struct {
	tt       *timetable.Timetable
	cacheTTL time.Duration
	lockTTL  time.Duration
	lockWait time.Duration
}

// NewServer wraps a loaded timetable for request handling.
func NewServer(tt *timetable.Timetable) *Server {
	return &Server{
		tt:       tt,
		cacheTTL: 10 * time.Minute,
		lockTTL:  5 * time.Second,
		lockWait: 3 * time.Second,
	}
}

// RouteSearchResponse is the JSON body of a successful /v1/route response.
type RouteSearchResponse struct {
	Journey      []models.PartWire   `json:"journey"`
	Alternatives [][]models.PartWire `json:"alternatives,omitempty"`
}

// RouteSearch handles GET /v1/route?start_station=&end_station=&start_time=&end_time=&mode=
func (s *Server) RouteSearch(c *fiber.Ctx) error {
	q, err := s.parseQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := c.Context()
	cacheKey := journeycache.Key(q.StartStation, q.EndStation, q.StartTime, q.EndTime, q.Mode)

	if entry, hit, err := journeycache.Get(ctx, cacheKey); err == nil && hit {
		return c.JSON(toResponse(entry.Journey, entry.Alternatives))
	}

	entry, err := s.solveWithLock(ctx, cacheKey, q)
	if err != nil {
		return s.journeyError(c, err)
	}
	return c.JSON(toResponse(entry.Journey, entry.Alternatives))
}

// solveWithLock runs FindRoute behind a distributed lock so concurrent
// requests for an identical, uncached query solve it once. A failure to
// acquire Redis at all (e.g. not configured) degrades gracefully to solving
// without caching.
func (s *Server) solveWithLock(ctx context.Context, cacheKey string, q routing.Query) (journeycache.Entry, error) {
	acquired, lockErr := journeycache.AcquireLock(ctx, cacheKey, s.lockTTL)
	if lockErr != nil {
		return s.solve(ctx, q)
	}
	if !acquired {
		if entry, hit, err := journeycache.WaitForLock(ctx, cacheKey, s.lockWait); err == nil && hit {
			return entry, nil
		}
		return s.solve(ctx, q)
	}
	defer journeycache.ReleaseLock(ctx, cacheKey)

	entry, err := s.solve(ctx, q)
	if err != nil {
		return journeycache.Entry{}, err
	}
	if cacheErr := journeycache.Set(ctx, cacheKey, entry, s.cacheTTL); cacheErr != nil {
		log.Printf("journeycache: failed to cache %s: %v", cacheKey, cacheErr)
	}
	return entry, nil
}

func (s *Server) solve(ctx context.Context, q routing.Query) (journeycache.Entry, error) {
	journey, alternatives, err := routing.FindRoute(s.tt, q)
	if err != nil {
		return journeycache.Entry{}, err
	}
	return journeycache.Entry{Journey: journey, Alternatives: alternatives}, nil
}

func toResponse(j models.Journey, alts []models.Journey) RouteSearchResponse {
	resp := RouteSearchResponse{Journey: j.ToWire()}
	if len(alts) > 0 {
		resp.Alternatives = make([][]models.PartWire, len(alts))
		for i, alt := range alts {
			resp.Alternatives[i] = alt.ToWire()
		}
	}
	return resp
}

func (s *Server) journeyError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, railerr.ErrUnknownStation):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, railerr.ErrNoRoute):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, railerr.ErrInvalidQuery):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func (s *Server) parseQuery(c *fiber.Ctx) (routing.Query, error) {
	startStation, err := strconv.Atoi(c.Query("start_station"))
	if err != nil {
		return routing.Query{}, fmt.Errorf("invalid or missing start_station: %w", err)
	}
	endStation, err := strconv.Atoi(c.Query("end_station"))
	if err != nil {
		return routing.Query{}, fmt.Errorf("invalid or missing end_station: %w", err)
	}
	startTime, err := strconv.ParseInt(c.Query("start_time"), 10, 64)
	if err != nil {
		return routing.Query{}, fmt.Errorf("invalid or missing start_time: %w", err)
	}

	mode := models.QueryMode(c.Query("mode", string(models.ModeSingle)))

	var endTime int64
	if v := c.Query("end_time"); v != "" {
		endTime, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return routing.Query{}, fmt.Errorf("invalid end_time: %w", err)
		}
	}

	return routing.Query{
		StartStation: startStation,
		EndStation:   endStation,
		StartTime:    startTime,
		EndTime:      endTime,
		Mode:         mode,
	}, nil
}

// StationWire is the JSON shape of a station at the HTTP boundary.
type StationWire struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Stations handles GET /v1/stations.
func (s *Server) Stations(c *fiber.Ctx) error {
	stations := s.tt.Stations()
	out := make([]StationWire, len(stations))
	for i, st := range stations {
		out[i] = StationWire{ID: st.ID, Name: st.Name}
	}
	return c.JSON(fiber.Map{"stations": out})
}

// Health handles GET /health: checks Postgres and Redis connectivity.
func (s *Server) Health(c *fiber.Ctx) error {
	ctx := c.Context()

	dbErr := store.HealthCheck(ctx)
	dbStatus := "ok"
	if dbErr != nil {
		dbStatus = dbErr.Error()
	}

	cacheErr := journeycache.HealthCheck(ctx)
	cacheStatus := "ok"
	if cacheErr != nil {
		cacheStatus = cacheErr.Error()
	}

	status := "healthy"
	httpStatus := fiber.StatusOK
	if dbErr != nil || cacheErr != nil {
		status = "unhealthy"
		httpStatus = fiber.StatusServiceUnavailable
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"database": dbStatus,
			"cache":    cacheStatus,
		},
	})
}
