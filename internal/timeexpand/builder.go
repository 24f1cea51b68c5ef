package timeexpand

import (
	"fmt"
	"sort"

	"github.com/passbi/railcore/internal/graph"
	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/railerr"
	"github.com/passbi/railcore/internal/timetable"
)

// Graph is the time-expanded graph type: singularities as nodes, actions as
// edge payloads.
type Graph = graph.Graph[Singularity, Action]

// Builder materializes the time-expanded graph for one query window. It
// holds no state across calls to Build; each call starts from a fresh empty
// graph, built lazily per query rather than persisted.
type Builder struct {
	tt *timetable.Timetable
}

// NewBuilder wraps an immutable timetable for repeated per-query builds.
func NewBuilder(tt *timetable.Timetable) *Builder {
	return &Builder{tt: tt}
}

// Build runs the six-step construction: onboard singularities and
// TrainWaits edges, Ride edges between consecutive stops, platform
// singularities, Board/Unboard bridges, per-station Wait chains, and origin
// splicing. Returns ErrUnknownStation if startStation is not in the
// timetable.
func (b *Builder) Build(startStation int, startInstant int64) (*Graph, error) {
	if _, ok := b.tt.Station(startStation); !ok {
		return nil, fmt.Errorf("build: start station %d: %w", startStation, railerr.ErrUnknownStation)
	}

	g := graph.New[Singularity, Action]()
	platformInstants := make(map[int]map[int64]struct{})

	addPlatform := func(stationID int, instant int64) {
		s := Platform(stationID, instant)
		g.Insert(s)
		set, ok := platformInstants[stationID]
		if !ok {
			set = make(map[int64]struct{})
			platformInstants[stationID] = set
		}
		set[instant] = struct{}{}
	}

	for _, train := range b.tt.Trains() {
		b.buildOnboardChainAndBridges(g, train, addPlatform)
		b.buildRideEdges(g, train)
	}

	// The origin's platform singularity is inserted into the same
	// per-station instant set used to build wait chains, so splicing the
	// origin into its station's timeline falls out of building that chain
	// in a single pass over the (possibly now one-larger) sorted instant
	// list, rather than needing a separate insertion step.
	addPlatform(startStation, startInstant)

	for stationID, instants := range platformInstants {
		b.buildWaitChain(g, stationID, instants)
	}

	return g, nil
}

// buildOnboardChainAndBridges runs steps 1, 3, and 4 for one train: onboard
// singularities with TrainWaits edges, platform singularities at every stop,
// and the Board/Unboard bridges between them.
//
// Every stop gets exactly one Board bridge and one Unboard bridge. The
// arrival instant is the natural Board instant (step onto the train as soon
// as it pulls in) and the departure instant is the natural Unboard instant
// (ride out the full dwell before stepping off) — except at the train's two
// ends, where one side is degenerate: the first stop has no meaningful
// arrival (nothing preceded it, so Board uses its departure instant
// instead), and the last stop has no meaningful departure (nothing follows
// it, so Unboard uses its arrival instant instead).
func (b *Builder) buildOnboardChainAndBridges(g *Graph, train models.Train, addPlatform func(int, int64)) {
	stops := train.Stops
	for i, stop := range stops {
		arr := Onboard(stop.StationID, stop.Arrival, train.ID)
		dep := Onboard(stop.StationID, stop.Departure, train.ID)
		g.Insert(arr)
		g.Insert(dep)
		if stop.Arrival != stop.Departure {
			g.Connect(arr, TrainWaits{TrainID: train.ID, StationID: stop.StationID, Duration: stop.Departure - stop.Arrival}, dep)
		}

		addPlatform(stop.StationID, stop.Arrival)
		addPlatform(stop.StationID, stop.Departure)

		boardInstant, boardNode := stop.Arrival, arr
		if i == 0 {
			boardInstant, boardNode = stop.Departure, dep
		}
		g.Connect(Platform(stop.StationID, boardInstant), Board{TrainID: train.ID}, boardNode)

		unboardInstant, unboardNode := stop.Departure, dep
		if i == len(stops)-1 {
			unboardInstant, unboardNode = stop.Arrival, arr
		}
		g.Connect(unboardNode, Unboard{TrainID: train.ID}, Platform(stop.StationID, unboardInstant))
	}
}

// buildRideEdges runs step 2: a Ride edge between the departure onboard
// singularity of each stop and the arrival onboard singularity of the next.
func (b *Builder) buildRideEdges(g *Graph, train models.Train) {
	stops := train.Stops
	for i := 0; i < len(stops)-1; i++ {
		from := Onboard(stops[i].StationID, stops[i].Departure, train.ID)
		to := Onboard(stops[i+1].StationID, stops[i+1].Arrival, train.ID)
		g.Connect(from, Ride{
			TrainID:       train.ID,
			FromStationID: stops[i].StationID,
			ToStationID:   stops[i+1].StationID,
			Duration:      stops[i+1].Arrival - stops[i].Departure,
		}, to)
	}
}

// buildWaitChain runs steps 5 and 6: sorts a station's platform singularities
// by instant and connects each consecutive pair with a Wait edge, touching
// every instant exactly once.
func (b *Builder) buildWaitChain(g *Graph, stationID int, instants map[int64]struct{}) {
	sorted := make([]int64, 0, len(instants))
	for instant := range instants {
		sorted = append(sorted, instant)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for i := 0; i < len(sorted)-1; i++ {
		from := Platform(stationID, sorted[i])
		to := Platform(stationID, sorted[i+1])
		g.Connect(from, Wait{Duration: sorted[i+1] - sorted[i]}, to)
	}
}
