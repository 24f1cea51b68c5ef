package journey

import (
	"testing"

	"github.com/passbi/railcore/internal/graph"
	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/timeexpand"
	"github.com/passbi/railcore/internal/timetable"
	"github.com/stretchr/testify/assert"
)

func tt(t *testing.T) *timetable.Timetable {
	t.Helper()
	stations := []models.Station{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	trains := []models.Train{
		{ID: 10, Stops: []models.Stop{
			{StationID: 1, Arrival: 1000, Departure: 1000},
			{StationID: 2, Arrival: 1500, Departure: 1520},
			{StationID: 3, Arrival: 2000, Departure: 2000},
		}},
	}
	out, err := timetable.New(stations, trains)
	assert.NoError(t, err)
	return out
}

func TestNormalize_SinglePart(t *testing.T) {
	tbl := tt(t)
	path := []graph.PrevEdge[timeexpand.Singularity, timeexpand.Action]{
		{From: timeexpand.Platform(1, 1000), Payload: timeexpand.Board{TrainID: 10}},
		{From: timeexpand.Onboard(1, 1000, 10), Payload: timeexpand.Ride{TrainID: 10, FromStationID: 1, ToStationID: 2, Duration: 500}},
		{From: timeexpand.Onboard(2, 1500, 10), Payload: timeexpand.TrainWaits{TrainID: 10, StationID: 2, Duration: 20}},
		{From: timeexpand.Onboard(2, 1520, 10), Payload: timeexpand.Ride{TrainID: 10, FromStationID: 2, ToStationID: 3, Duration: 480}},
		{From: timeexpand.Onboard(3, 2000, 10), Payload: timeexpand.Unboard{TrainID: 10}},
	}
	j, err := Normalize(tbl, path)
	assert.NoError(t, err)
	assert.Len(t, j.Parts, 1)
	p := j.Parts[0]
	assert.Equal(t, 10, p.TrainID)
	assert.Equal(t, 1, p.FromStationID)
	assert.Equal(t, int64(1000), p.BoardTime)
	assert.Equal(t, 3, p.ToStationID)
	assert.Equal(t, int64(2000), p.AlightTime)
	assert.Len(t, p.IntermediateStops, 1)
	assert.Equal(t, 2, p.IntermediateStops[0].StationID)
}

func TestNormalize_DiscardsWaitEdges(t *testing.T) {
	tbl := tt(t)
	path := []graph.PrevEdge[timeexpand.Singularity, timeexpand.Action]{
		{From: timeexpand.Platform(1, 900), Payload: timeexpand.Wait{Duration: 100}},
		{From: timeexpand.Platform(1, 1000), Payload: timeexpand.Board{TrainID: 10}},
		{From: timeexpand.Onboard(1, 1000, 10), Payload: timeexpand.Ride{TrainID: 10, FromStationID: 1, ToStationID: 2, Duration: 500}},
		{From: timeexpand.Onboard(2, 1500, 10), Payload: timeexpand.Unboard{TrainID: 10}},
	}
	j, err := Normalize(tbl, path)
	assert.NoError(t, err)
	assert.Len(t, j.Parts, 1)
}

func TestNormalize_ZeroParts(t *testing.T) {
	tbl := tt(t)
	j, err := Normalize(tbl, nil)
	assert.NoError(t, err)
	assert.Empty(t, j.Parts)
	_, ok := j.Departure()
	assert.False(t, ok)
}

func TestNormalize_UnboardWithoutBoardIsInvariantViolation(t *testing.T) {
	tbl := tt(t)
	path := []graph.PrevEdge[timeexpand.Singularity, timeexpand.Action]{
		{From: timeexpand.Onboard(2, 1500, 10), Payload: timeexpand.Unboard{TrainID: 10}},
	}
	_, err := Normalize(tbl, path)
	assert.Error(t, err)
}

func TestNormalize_TwoParts(t *testing.T) {
	tbl := tt(t)
	path := []graph.PrevEdge[timeexpand.Singularity, timeexpand.Action]{
		{From: timeexpand.Platform(1, 1000), Payload: timeexpand.Board{TrainID: 10}},
		{From: timeexpand.Onboard(1, 1000, 10), Payload: timeexpand.Ride{TrainID: 10, FromStationID: 1, ToStationID: 2, Duration: 500}},
		{From: timeexpand.Onboard(2, 1500, 10), Payload: timeexpand.Unboard{TrainID: 10}},
		{From: timeexpand.Platform(2, 1500), Payload: timeexpand.Wait{Duration: 300}},
		{From: timeexpand.Platform(2, 1800), Payload: timeexpand.Board{TrainID: 20}},
		{From: timeexpand.Onboard(2, 1800, 20), Payload: timeexpand.Ride{TrainID: 20, FromStationID: 2, ToStationID: 3, Duration: 200}},
		{From: timeexpand.Onboard(3, 2000, 20), Payload: timeexpand.Unboard{TrainID: 20}},
	}
	j, err := Normalize(tbl, path)
	assert.NoError(t, err)
	assert.Len(t, j.Parts, 2)
	assert.Equal(t, []int{10, 20}, j.TrainSequence())
	arrival, ok := j.Arrival()
	assert.True(t, ok)
	assert.Equal(t, int64(2000), arrival)
}
