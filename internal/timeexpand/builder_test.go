package timeexpand

import (
	"testing"

	"github.com/passbi/railcore/internal/graph"
	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/timetable"
	"github.com/stretchr/testify/assert"
)

func mustTimetable(t *testing.T, stations []models.Station, trains []models.Train) *timetable.Timetable {
	t.Helper()
	tt, err := timetable.New(stations, trains)
	assert.NoError(t, err)
	return tt
}

func threeStations() []models.Station {
	return []models.Station{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
}

func TestBuild_TrivialSingleTrain(t *testing.T) {
	// T1: A(10:00/10:00) -> B(10:30/10:30)
	trains := []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 36000, Departure: 36000},
			{StationID: 2, Arrival: 37800, Departure: 37800},
		}},
	}
	tt := mustTimetable(t, threeStations(), trains)
	g, err := NewBuilder(tt).Build(1, 32400) // query at 09:00
	assert.NoError(t, err)

	origin := Platform(1, 32400)
	assert.True(t, g.Has(origin))

	sink := Platform(2, 37800)
	matched, dist, ok := g.Dijkstra(origin, Weight, nil, func(s Singularity) bool {
		return s.IsPlatform() && s.StationID == 2
	})
	assert.True(t, ok)
	assert.Equal(t, sink, matched)
	assert.Equal(t, int64(37800-32400), dist[matched].Cost)
}

func TestBuild_RequiredWait(t *testing.T) {
	// T1: A(09:00)->B(09:20); T2: B(09:40)->C(10:00). Query A->C at 08:30.
	trains := []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 33600, Departure: 33600},
		}},
		{ID: 2, Stops: []models.Stop{
			{StationID: 2, Arrival: 34800, Departure: 34800},
			{StationID: 3, Arrival: 36000, Departure: 36000},
		}},
	}
	tt := mustTimetable(t, threeStations(), trains)
	g, err := NewBuilder(tt).Build(1, 30600) // 08:30
	assert.NoError(t, err)

	origin := Platform(1, 30600)
	sink := Platform(3, 36000)
	matched, dist, ok := g.Dijkstra(origin, Weight, nil, func(s Singularity) bool {
		return s.IsPlatform() && s.StationID == 3
	})
	assert.True(t, ok)
	assert.Equal(t, sink, matched)
	assert.Equal(t, int64(36000-30600), dist[matched].Cost)

	path := graphBacktrackTrainIDs(dist, matched)
	assert.Equal(t, []int{1, 2}, path)
}

func TestBuild_PicksLaterTrainToArriveEarlier(t *testing.T) {
	// T1: A(09:00)->B(11:00); T2: A(09:30)->B(10:00). Query A->B at 08:00.
	trains := []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 39600, Departure: 39600},
		}},
		{ID: 2, Stops: []models.Stop{
			{StationID: 1, Arrival: 34200, Departure: 34200},
			{StationID: 2, Arrival: 36000, Departure: 36000},
		}},
	}
	tt := mustTimetable(t, threeStations(), trains)
	g, err := NewBuilder(tt).Build(1, 28800) // 08:00
	assert.NoError(t, err)

	origin := Platform(1, 28800)
	sink := Platform(2, 36000)
	matched, dist, ok := g.Dijkstra(origin, Weight, nil, func(s Singularity) bool {
		return s.IsPlatform() && s.StationID == 2
	})
	assert.True(t, ok)
	assert.Equal(t, sink, matched)

	path := graphBacktrackTrainIDs(dist, matched)
	assert.Equal(t, []int{2}, path)
}

func TestBuild_NoRoute(t *testing.T) {
	trains := []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 34200, Departure: 34200},
		}},
	}
	tt := mustTimetable(t, threeStations(), trains)
	g, err := NewBuilder(tt).Build(1, 28800)
	assert.NoError(t, err)

	origin := Platform(1, 28800)
	_, _, ok := g.Dijkstra(origin, Weight, nil, func(s Singularity) bool {
		return s.IsPlatform() && s.StationID == 3
	})
	assert.False(t, ok)
}

func TestBuild_UnknownStartStation(t *testing.T) {
	tt := mustTimetable(t, threeStations(), nil)
	_, err := NewBuilder(tt).Build(999, 0)
	assert.Error(t, err)
}

func TestBuild_WaitChainIsStrictlyOrdered(t *testing.T) {
	trains := []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 1000, Departure: 1000},
			{StationID: 2, Arrival: 2000, Departure: 2000},
		}},
		{ID: 2, Stops: []models.Stop{
			{StationID: 1, Arrival: 3000, Departure: 3000},
			{StationID: 2, Arrival: 4000, Departure: 4000},
		}},
	}
	tt := mustTimetable(t, threeStations(), trains)
	g, err := NewBuilder(tt).Build(1, 500)
	assert.NoError(t, err)

	// Platform chain at station 1 should be: 500 -> 1000 -> 3000.
	p500 := Platform(1, 500)
	edges := g.Neighbors(p500)
	assert.Len(t, edges, 1)
	wait, ok := edges[0].Payload.(Wait)
	assert.True(t, ok)
	assert.Equal(t, int64(500), wait.Duration)
	assert.Equal(t, Platform(1, 1000), edges[0].To)
}

// graphBacktrackTrainIDs extracts the ordered list of distinct train ids
// boarded along a backtracked path, ignoring Wait/Board/Unboard edges.
func graphBacktrackTrainIDs(dist graph.Distances[Singularity, Action], matched Singularity) []int {
	path := graph.Backtrack(dist, matched)
	var ids []int
	for _, e := range path {
		var id int
		switch a := e.Payload.(type) {
		case Ride:
			id = a.TrainID
		case TrainWaits:
			id = a.TrainID
		default:
			continue
		}
		if len(ids) == 0 || ids[len(ids)-1] != id {
			ids = append(ids, id)
		}
	}
	return ids
}
