// Package routing poses queries against the time-expanded graph and
// reconstructs the resulting journeys: an outer loop invoking the search
// engine, then post-processing the raw path into a traveler-facing result.
package routing

import (
	"fmt"
	"sort"

	"github.com/passbi/railcore/internal/graph"
	"github.com/passbi/railcore/internal/journey"
	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/railerr"
	"github.com/passbi/railcore/internal/timeexpand"
	"github.com/passbi/railcore/internal/timetable"
)

// RawPath is the forward-ordered edge sequence produced by backtracking,
// before journey normalization.
type RawPath = []graph.PrevEdge[timeexpand.Singularity, timeexpand.Action]

// Query describes one routing request.
type Query struct {
	StartStation int
	StartTime    int64
	EndStation   int
	Mode         models.QueryMode
	EndTime      int64 // only meaningful for BoundedSingle/BoundedMulti
}

func (q Query) validate(tt *timetable.Timetable) error {
	if _, ok := tt.Station(q.StartStation); !ok {
		return fmt.Errorf("query: start station %d: %w", q.StartStation, railerr.ErrUnknownStation)
	}
	if _, ok := tt.Station(q.EndStation); !ok {
		return fmt.Errorf("query: end station %d: %w", q.EndStation, railerr.ErrUnknownStation)
	}
	switch q.Mode {
	case models.ModeBoundedSingle, models.ModeBoundedMulti:
		if q.EndTime < q.StartTime {
			return fmt.Errorf("query: end_time %d before start_time %d: %w", q.EndTime, q.StartTime, railerr.ErrInvalidQuery)
		}
	case models.ModeMulti:
		if q.StartStation == q.EndStation && q.EndTime == 0 {
			// Zero-duration identical-station Multi queries are ambiguous:
			// there is no well-defined "first train" to enumerate when the
			// traveler is already at the destination.
			return fmt.Errorf("query: identical start/end station in Multi mode is ambiguous: %w", railerr.ErrInvalidQuery)
		}
	}
	return nil
}

func platformPredicate(station int) func(timeexpand.Singularity) bool {
	return func(s timeexpand.Singularity) bool {
		return s.IsPlatform() && s.StationID == station
	}
}

func boundedPlatformPredicate(station int, endTime int64) func(timeexpand.Singularity) bool {
	return func(s timeexpand.Singularity) bool {
		return s.IsPlatform() && s.StationID == station && s.Instant <= endTime
	}
}

// boardTie is the Dijkstra tie-break metric: among equal-cost paths, prefer
// the one with fewer Board edges (train changes).
func boardTie(a timeexpand.Action) int64 {
	if _, ok := a.(timeexpand.Board); ok {
		return 1
	}
	return 0
}

// FindRoute dispatches a Query to the appropriate solver and returns the
// normalized Journey(s). Single/DelayedStart/BoundedSingle return exactly
// one Journey; Multi/BoundedMulti return a slice.
func FindRoute(tt *timetable.Timetable, q Query) (models.Journey, []models.Journey, error) {
	if err := q.validate(tt); err != nil {
		return models.Journey{}, nil, err
	}

	switch q.Mode {
	case models.ModeSingle:
		j, err := single(tt, q.StartStation, q.StartTime, q.EndStation, nil)
		return j, nil, err
	case models.ModeDelayedStart:
		j, err := delayedStart(tt, q)
		return j, nil, err
	case models.ModeBoundedSingle:
		j, err := single(tt, q.StartStation, q.StartTime, q.EndStation, boundedPlatformPredicate(q.EndStation, q.EndTime))
		return j, nil, err
	case models.ModeMulti:
		js, err := multi(tt, q.StartStation, q.StartTime, q.EndStation, nil)
		return models.Journey{}, js, err
	case models.ModeBoundedMulti:
		js, err := multi(tt, q.StartStation, q.StartTime, q.EndStation, boundedPlatformPredicate(q.EndStation, q.EndTime))
		return models.Journey{}, js, err
	default:
		return models.Journey{}, nil, fmt.Errorf("query: unknown mode %q: %w", q.Mode, railerr.ErrInvalidQuery)
	}
}

// single finds the cheapest path from the platform singularity at
// (startStation, startTime) to any platform singularity at endStation, or
// the caller-supplied override predicate (used for BoundedSingle).
func single(tt *timetable.Timetable, startStation int, startTime int64, endStation int, match func(timeexpand.Singularity) bool) (models.Journey, error) {
	g, err := timeexpand.NewBuilder(tt).Build(startStation, startTime)
	if err != nil {
		return models.Journey{}, err
	}
	if match == nil {
		match = platformPredicate(endStation)
	}
	origin := timeexpand.Platform(startStation, startTime)
	matched, dist, ok := g.Dijkstra(origin, timeexpand.Weight, boardTie, match)
	if !ok {
		return models.Journey{}, fmt.Errorf("no path from station %d at %d to station %d: %w", startStation, startTime, endStation, railerr.ErrNoRoute)
	}
	path := graph.Backtrack(dist, matched)
	return journey.Normalize(tt, path)
}

// delayedStart first solves a plain single query to learn the optimal
// arrival instant A, then scans platform singularities of the start station
// forward in time, starting just after the baseline's own departure and
// bounded above by A, for the latest one that still reaches a sink with
// arrival exactly A.
func delayedStart(tt *timetable.Timetable, q Query) (models.Journey, error) {
	baseline, err := single(tt, q.StartStation, q.StartTime, q.EndStation, nil)
	if err != nil {
		return models.Journey{}, err
	}
	optimalArrival, ok := baseline.Arrival()
	if !ok {
		// Zero-part baseline: start already equals end, nothing to delay.
		return baseline, nil
	}

	best := baseline
	bestDeparture, _ := baseline.Departure()

	candidates := candidateDepartureInstants(tt, q.StartStation, q.StartTime, optimalArrival)
	for _, instant := range candidates {
		if instant <= bestDeparture {
			continue
		}
		j, err := single(tt, q.StartStation, instant, q.EndStation, nil)
		if err != nil {
			continue
		}
		arrival, ok := j.Arrival()
		if !ok || arrival != optimalArrival {
			continue
		}
		departure, _ := j.Departure()
		if departure > bestDeparture {
			best = j
			bestDeparture = departure
		}
	}
	return best, nil
}

// candidateDepartureInstants gathers every instant at which a platform
// singularity could exist at station (every stop arrival/departure at that
// station, across all trains) no earlier than lowerBound and no later than
// upperBound, sorted ascending. delayedStart scans these forward from the
// query's own start time looking for the latest one that still reaches the
// optimal arrival, so both bounds matter: lowerBound excludes instants the
// traveler couldn't have waited for, and upperBound excludes instants too
// late to still make the optimal arrival at all.
func candidateDepartureInstants(tt *timetable.Timetable, station int, lowerBound, upperBound int64) []int64 {
	seen := make(map[int64]struct{})
	for _, tr := range tt.Trains() {
		for _, st := range tr.Stops {
			if st.StationID != station {
				continue
			}
			if st.Arrival >= lowerBound && st.Arrival <= upperBound {
				seen[st.Arrival] = struct{}{}
			}
			if st.Departure >= lowerBound && st.Departure <= upperBound {
				seen[st.Departure] = struct{}{}
			}
		}
	}
	out := make([]int64, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// multi enumerates the distinct trains boardable directly from the origin,
// solves a single query once per candidate with an origin restricted to
// force that train first, and deduplicates by train sequence.
func multi(tt *timetable.Timetable, startStation int, startTime int64, endStation int, match func(timeexpand.Singularity) bool) ([]models.Journey, error) {
	g, err := timeexpand.NewBuilder(tt).Build(startStation, startTime)
	if err != nil {
		return nil, err
	}
	origin := timeexpand.Platform(startStation, startTime)
	candidates := firstBoardableTrains(g, origin)

	if match == nil {
		match = platformPredicate(endStation)
	}

	seen := make(map[string]bool)
	var results []models.Journey
	for _, trainID := range candidates {
		restricted := timeexpand.RestrictFirstBoard(g, origin, trainID)
		matched, dist, ok := restricted.Dijkstra(origin, timeexpand.Weight, boardTie, match)
		if !ok {
			continue
		}
		path := graph.Backtrack(dist, matched)
		j, err := journey.Normalize(tt, path)
		if err != nil {
			return nil, err
		}
		key := sequenceKey(j.TrainSequence())
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, j)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no path from station %d at %d to station %d: %w", startStation, startTime, endStation, railerr.ErrNoRoute)
	}
	return results, nil
}

func sequenceKey(seq []int) string {
	s := ""
	for _, id := range seq {
		s += fmt.Sprintf("/%d", id)
	}
	return s
}

// firstBoardableTrains returns the distinct train ids reachable via a single
// Board edge directly out of origin's platform singularity (origin itself,
// or origin reached via Wait edges forward in time before any Board).
func firstBoardableTrains(g *timeexpand.Graph, origin timeexpand.Singularity) []int {
	seen := make(map[int]bool)
	var order []int
	visited := make(map[timeexpand.Singularity]bool)
	var walk func(timeexpand.Singularity)
	walk = func(s timeexpand.Singularity) {
		if visited[s] {
			return
		}
		visited[s] = true
		for _, e := range g.Neighbors(s) {
			switch a := e.Payload.(type) {
			case timeexpand.Board:
				if !seen[a.TrainID] {
					seen[a.TrainID] = true
					order = append(order, a.TrainID)
				}
			case timeexpand.Wait:
				walk(e.To)
			}
		}
	}
	walk(origin)
	return order
}

