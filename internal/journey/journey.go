// Package journey normalizes a raw backtracked edge path into traveler-
// facing Journey/JourneyPart values in a single pass over the
// Board/TrainWaits/Ride/Unboard/Wait action set.
package journey

import (
	"fmt"

	"github.com/passbi/railcore/internal/graph"
	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/railerr"
	"github.com/passbi/railcore/internal/timeexpand"
	"github.com/passbi/railcore/internal/timetable"
)

type edge = graph.PrevEdge[timeexpand.Singularity, timeexpand.Action]

// Normalize collapses a forward edge path into a Journey: Wait edges are
// discarded, a Board opens a part, the contiguous TrainWaits/Ride run on the
// same train populates it, and the matching Unboard closes it. A path with
// no Board edges yields a zero-part Journey (start already equals end).
func Normalize(tt *timetable.Timetable, path []edge) (models.Journey, error) {
	var parts []models.JourneyPart
	var open *models.JourneyPart

	for i, e := range path {
		switch a := e.Payload.(type) {
		case timeexpand.Wait:
			// implicit between parts, discarded.
		case timeexpand.Board:
			if open != nil {
				return models.Journey{}, fmt.Errorf("journey: Board while a part for train %d was still open: %w", open.TrainID, railerr.ErrTimetableInvariantViolated)
			}
			name, err := stationName(tt, e.From.StationID)
			if err != nil {
				return models.Journey{}, err
			}
			open = &models.JourneyPart{
				TrainID:         a.TrainID,
				FromStationID:   e.From.StationID,
				FromStationName: name,
				BoardTime:       e.From.Instant,
			}
		case timeexpand.TrainWaits:
			if open == nil {
				return models.Journey{}, fmt.Errorf("journey: TrainWaits edge outside an open part: %w", railerr.ErrTimetableInvariantViolated)
			}
			if err := appendIntermediate(tt, open, e.From); err != nil {
				return models.Journey{}, err
			}
		case timeexpand.Ride:
			if open == nil {
				return models.Journey{}, fmt.Errorf("journey: Ride edge outside an open part: %w", railerr.ErrTimetableInvariantViolated)
			}
			if err := appendIntermediate(tt, open, e.From); err != nil {
				return models.Journey{}, err
			}
		case timeexpand.Unboard:
			if open == nil {
				return models.Journey{}, fmt.Errorf("journey: Unboard without a matching Board: %w", railerr.ErrTimetableInvariantViolated)
			}
			name, err := stationName(tt, e.From.StationID)
			if err != nil {
				return models.Journey{}, err
			}
			if n := len(open.IntermediateStops); n > 0 && open.IntermediateStops[n-1].StationID == e.From.StationID {
				// The onboard dwell at the alighting stop was recorded by its
				// TrainWaits edge; the alighting stop is not intermediate.
				open.IntermediateStops = open.IntermediateStops[:n-1]
			}
			open.ToStationID = e.From.StationID
			open.ToStationName = name
			open.AlightTime = e.From.Instant
			parts = append(parts, *open)
			open = nil
		default:
			return models.Journey{}, fmt.Errorf("journey: unrecognized edge at position %d: %w", i, railerr.ErrTimetableInvariantViolated)
		}
	}

	if open != nil {
		return models.Journey{}, fmt.Errorf("journey: path ended with an unclosed part for train %d: %w", open.TrainID, railerr.ErrTimetableInvariantViolated)
	}

	return models.Journey{Parts: parts}, nil
}

// appendIntermediate records the onboard singularity an in-progress part
// passed through, skipping the boarding stop itself (both its arrival and
// departure singularities when the train dwells there), which is already
// captured by open.FromStationID/BoardTime.
func appendIntermediate(tt *timetable.Timetable, open *models.JourneyPart, at timeexpand.Singularity) error {
	if at.StationID == open.FromStationID && len(open.IntermediateStops) == 0 {
		return nil
	}
	name, err := stationName(tt, at.StationID)
	if err != nil {
		return err
	}
	n := len(open.IntermediateStops)
	if n > 0 {
		last := open.IntermediateStops[n-1]
		if last.StationID == at.StationID {
			last.Departure = at.Instant
			open.IntermediateStops[n-1] = last
			return nil
		}
	}
	open.IntermediateStops = append(open.IntermediateStops, models.StopInfo{
		StationID: at.StationID,
		Name:      name,
		Arrival:   at.Instant,
		Departure: at.Instant,
	})
	return nil
}

func stationName(tt *timetable.Timetable, id int) (string, error) {
	s, ok := tt.Station(id)
	if !ok {
		return "", fmt.Errorf("journey: station %d: %w", id, railerr.ErrUnknownStation)
	}
	return s.Name, nil
}
