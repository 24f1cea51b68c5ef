package timetable

import (
	"errors"
	"testing"

	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/railerr"
	"github.com/stretchr/testify/assert"
)

func stations() []models.Station {
	return []models.Station{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
}

func TestNew_ValidTimetable(t *testing.T) {
	trains := []models.Train{
		{ID: 100, Stops: []models.Stop{
			{StationID: 1, Arrival: 1000, Departure: 1000},
			{StationID: 2, Arrival: 1800, Departure: 1800},
		}},
	}
	tt, err := New(stations(), trains)
	assert.NoError(t, err)
	assert.Len(t, tt.Trains(), 1)
	s, ok := tt.Station(1)
	assert.True(t, ok)
	assert.Equal(t, "A", s.Name)
}

func TestNew_RejectsTooFewStops(t *testing.T) {
	trains := []models.Train{
		{ID: 100, Stops: []models.Stop{{StationID: 1, Arrival: 1000, Departure: 1000}}},
	}
	_, err := New(stations(), trains)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, railerr.ErrTimetableInvariantViolated))
}

func TestNew_RejectsDepartureBeforeArrival(t *testing.T) {
	trains := []models.Train{
		{ID: 100, Stops: []models.Stop{
			{StationID: 1, Arrival: 1000, Departure: 900},
			{StationID: 2, Arrival: 1800, Departure: 1800},
		}},
	}
	_, err := New(stations(), trains)
	assert.True(t, errors.Is(err, railerr.ErrTimetableInvariantViolated))
}

func TestNew_RejectsNonMonotonicStops(t *testing.T) {
	trains := []models.Train{
		{ID: 100, Stops: []models.Stop{
			{StationID: 1, Arrival: 1000, Departure: 1000},
			{StationID: 2, Arrival: 900, Departure: 900},
		}},
	}
	_, err := New(stations(), trains)
	assert.True(t, errors.Is(err, railerr.ErrTimetableInvariantViolated))
}

func TestNew_RejectsUnknownStation(t *testing.T) {
	trains := []models.Train{
		{ID: 100, Stops: []models.Stop{
			{StationID: 1, Arrival: 1000, Departure: 1000},
			{StationID: 99, Arrival: 1800, Departure: 1800},
		}},
	}
	_, err := New(stations(), trains)
	assert.True(t, errors.Is(err, railerr.ErrUnknownStation))
}

func TestTrain_LookupMissing(t *testing.T) {
	tt, err := New(stations(), nil)
	assert.NoError(t, err)
	_, ok := tt.Train(42)
	assert.False(t, ok)
}
