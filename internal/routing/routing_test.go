package routing

import (
	"errors"
	"testing"

	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/railerr"
	"github.com/passbi/railcore/internal/timetable"
	"github.com/stretchr/testify/assert"
)

func buildTimetable(t *testing.T, trains []models.Train) *timetable.Timetable {
	t.Helper()
	stations := []models.Station{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	tt, err := timetable.New(stations, trains)
	assert.NoError(t, err)
	return tt
}

func TestFindRoute_TrivialSingleTrain(t *testing.T) {
	tt := buildTimetable(t, []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 36000, Departure: 36000},
			{StationID: 2, Arrival: 37800, Departure: 37800},
		}},
	})
	j, _, err := FindRoute(tt, Query{StartStation: 1, StartTime: 32400, EndStation: 2, Mode: models.ModeSingle})
	assert.NoError(t, err)
	assert.Len(t, j.Parts, 1)
	assert.Equal(t, 1, j.Parts[0].TrainID)
	assert.Equal(t, int64(36000), j.Parts[0].BoardTime)
	assert.Equal(t, int64(37800), j.Parts[0].AlightTime)
}

func TestFindRoute_RequiredWait(t *testing.T) {
	tt := buildTimetable(t, []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 33600, Departure: 33600},
		}},
		{ID: 2, Stops: []models.Stop{
			{StationID: 2, Arrival: 34800, Departure: 34800},
			{StationID: 3, Arrival: 36000, Departure: 36000},
		}},
	})
	j, _, err := FindRoute(tt, Query{StartStation: 1, StartTime: 30600, EndStation: 3, Mode: models.ModeSingle})
	assert.NoError(t, err)
	assert.Len(t, j.Parts, 2)
	assert.Equal(t, []int{1, 2}, j.TrainSequence())
	assert.Equal(t, int64(32400), j.Parts[0].BoardTime)
	assert.Equal(t, int64(33600), j.Parts[0].AlightTime)
	assert.Equal(t, int64(34800), j.Parts[1].BoardTime)
	assert.Equal(t, int64(36000), j.Parts[1].AlightTime)
}

func TestFindRoute_PicksLaterTrainToArriveEarlier(t *testing.T) {
	tt := buildTimetable(t, []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 39600, Departure: 39600},
		}},
		{ID: 2, Stops: []models.Stop{
			{StationID: 1, Arrival: 34200, Departure: 34200},
			{StationID: 2, Arrival: 36000, Departure: 36000},
		}},
	})
	j, _, err := FindRoute(tt, Query{StartStation: 1, StartTime: 28800, EndStation: 2, Mode: models.ModeSingle})
	assert.NoError(t, err)
	assert.Len(t, j.Parts, 1)
	assert.Equal(t, 2, j.Parts[0].TrainID)
	assert.Equal(t, int64(34200), j.Parts[0].BoardTime)
	assert.Equal(t, int64(36000), j.Parts[0].AlightTime)
}

func TestFindRoute_DelayedStartPreservesArrival(t *testing.T) {
	tt := buildTimetable(t, []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 39600, Departure: 39600},
		}},
		{ID: 2, Stops: []models.Stop{
			{StationID: 1, Arrival: 34200, Departure: 34200},
			{StationID: 2, Arrival: 36000, Departure: 36000},
		}},
	})
	j, _, err := FindRoute(tt, Query{StartStation: 1, StartTime: 28800, EndStation: 2, Mode: models.ModeDelayedStart})
	assert.NoError(t, err)
	assert.Len(t, j.Parts, 1)
	arrival, ok := j.Arrival()
	assert.True(t, ok)
	assert.Equal(t, int64(36000), arrival)
	departure, ok := j.Departure()
	assert.True(t, ok)
	assert.Equal(t, int64(34200), departure)
}

func TestFindRoute_DelayedStartPicksLaterDepartureOnArrivalTie(t *testing.T) {
	tt := buildTimetable(t, []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 36000, Departure: 36000},
		}},
		{ID: 2, Stops: []models.Stop{
			{StationID: 1, Arrival: 34200, Departure: 34200},
			{StationID: 2, Arrival: 36000, Departure: 36000},
		}},
	})
	j, _, err := FindRoute(tt, Query{StartStation: 1, StartTime: 28800, EndStation: 2, Mode: models.ModeDelayedStart})
	assert.NoError(t, err)
	assert.Len(t, j.Parts, 1)
	assert.Equal(t, 2, j.Parts[0].TrainID)
	departure, ok := j.Departure()
	assert.True(t, ok)
	assert.Equal(t, int64(34200), departure)
	arrival, ok := j.Arrival()
	assert.True(t, ok)
	assert.Equal(t, int64(36000), arrival)
}

func TestFindRoute_NoRoute(t *testing.T) {
	tt := buildTimetable(t, []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 34200, Departure: 34200},
		}},
	})
	_, _, err := FindRoute(tt, Query{StartStation: 1, StartTime: 28800, EndStation: 3, Mode: models.ModeSingle})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, railerr.ErrNoRoute))
}

func TestFindRoute_MultiAlternatives(t *testing.T) {
	tt := buildTimetable(t, []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 36000, Departure: 36000},
		}},
		{ID: 2, Stops: []models.Stop{
			{StationID: 1, Arrival: 33300, Departure: 33300},
			{StationID: 2, Arrival: 36900, Departure: 36900},
		}},
		{ID: 3, Stops: []models.Stop{
			{StationID: 1, Arrival: 34200, Departure: 34200},
			{StationID: 2, Arrival: 35100, Departure: 35100},
		}},
	})
	_, js, err := FindRoute(tt, Query{StartStation: 1, StartTime: 28800, EndStation: 2, Mode: models.ModeMulti})
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(js), 2)

	firstTrains := make(map[int]bool)
	for _, j := range js {
		seq := j.TrainSequence()
		assert.NotEmpty(t, seq)
		firstTrains[seq[0]] = true
	}
	assert.True(t, len(firstTrains) == len(js), "each alternative has a distinct first-boarded train")
}

func TestFindRoute_BoundedSingleEmptyWhenNoFeasibleSink(t *testing.T) {
	tt := buildTimetable(t, []models.Train{
		{ID: 1, Stops: []models.Stop{
			{StationID: 1, Arrival: 32400, Departure: 32400},
			{StationID: 2, Arrival: 39600, Departure: 39600},
		}},
	})
	_, _, err := FindRoute(tt, Query{StartStation: 1, StartTime: 28800, EndStation: 2, Mode: models.ModeBoundedSingle, EndTime: 36000})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, railerr.ErrNoRoute))
}

func TestFindRoute_UnknownStation(t *testing.T) {
	tt := buildTimetable(t, nil)
	_, _, err := FindRoute(tt, Query{StartStation: 999, StartTime: 0, EndStation: 1, Mode: models.ModeSingle})
	assert.True(t, errors.Is(err, railerr.ErrUnknownStation))
}

func TestFindRoute_InvalidBoundedEndTimeBeforeStart(t *testing.T) {
	tt := buildTimetable(t, nil)
	_, _, err := FindRoute(tt, Query{StartStation: 1, StartTime: 1000, EndStation: 2, Mode: models.ModeBoundedSingle, EndTime: 500})
	assert.True(t, errors.Is(err, railerr.ErrInvalidQuery))
}
