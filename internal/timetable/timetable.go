// Package timetable holds the immutable static schedule: stations and
// trains built once by ingestion and read thereafter. Nothing in this
// package touches I/O; it only validates and indexes what it is given.
package timetable

import (
	"fmt"

	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/railerr"
)

// Timetable is the validated, read-only static schedule. Construct with New;
// the zero value is not usable.
type Timetable struct {
	stations map[int]models.Station
	trains   []models.Train
}

// New validates stations and trains against the data-model invariants and
// returns an immutable Timetable, or ErrTimetableInvariantViolated wrapped
// with the offending train/stop identifiers.
func New(stations []models.Station, trains []models.Train) (*Timetable, error) {
	byID := make(map[int]models.Station, len(stations))
	for _, s := range stations {
		byID[s.ID] = s
	}

	for _, tr := range trains {
		if len(tr.Stops) < 2 {
			return nil, fmt.Errorf("train %d has %d stop(s), need at least 2: %w", tr.ID, len(tr.Stops), railerr.ErrTimetableInvariantViolated)
		}
		for i, st := range tr.Stops {
			if _, ok := byID[st.StationID]; !ok {
				return nil, fmt.Errorf("train %d stop %d references unknown station %d: %w", tr.ID, i, st.StationID, railerr.ErrUnknownStation)
			}
			if st.Departure < st.Arrival {
				return nil, fmt.Errorf("train %d stop %d at station %d: departure %d before arrival %d: %w", tr.ID, i, st.StationID, st.Departure, st.Arrival, railerr.ErrTimetableInvariantViolated)
			}
			if i > 0 {
				prev := tr.Stops[i-1]
				if st.Arrival < prev.Departure {
					return nil, fmt.Errorf("train %d stop %d at station %d: arrival %d before previous departure %d: %w", tr.ID, i, st.StationID, st.Arrival, prev.Departure, railerr.ErrTimetableInvariantViolated)
				}
			}
		}
	}

	return &Timetable{stations: byID, trains: trains}, nil
}

// Station looks up a station by id.
func (t *Timetable) Station(id int) (models.Station, bool) {
	s, ok := t.stations[id]
	return s, ok
}

// Stations returns every station, in unspecified order.
func (t *Timetable) Stations() []models.Station {
	out := make([]models.Station, 0, len(t.stations))
	for _, s := range t.stations {
		out = append(out, s)
	}
	return out
}

// Trains returns every train in the timetable.
func (t *Timetable) Trains() []models.Train {
	return t.trains
}

// Train looks up a train by id. Returns false if not found.
func (t *Timetable) Train(id int) (models.Train, bool) {
	for _, tr := range t.trains {
		if tr.ID == id {
			return tr, true
		}
	}
	return models.Train{}, false
}
