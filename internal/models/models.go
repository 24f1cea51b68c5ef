// Package models holds the plain data types shared across the routing core
// and its surrounding ingestion, persistence, and HTTP layers.
package models

import "time"

// Station is a stable, named stop location. Stations compare equal by ID.
type Station struct {
	ID   int
	Name string
}

// Stop is one scheduled visit of a Train at a Station. Departure must be
// greater than or equal to Arrival. A Stop belongs to exactly one Train.
// Arrival and Departure are integer seconds; internal/gtfs fills them with
// seconds since midnight of the service day (GTFS times past 24:00:00 give
// values past 86400) and does not anchor them to a calendar date.
type Stop struct {
	StationID int
	Arrival   int64
	Departure int64
}

// Train is a stable identifier plus its ordered schedule of stops, sorted
// strictly by arrival instant. A valid Train has at least two stops.
type Train struct {
	ID    int
	Stops []Stop
}

// JourneyPart is one boarded-train segment of a Journey: a Board, the
// onboard run of TrainWaits/Ride edges, and the matching Unboard.
type JourneyPart struct {
	TrainID         int
	FromStationID   int
	FromStationName string
	BoardTime       int64
	ToStationID     int
	ToStationName   string
	AlightTime      int64
	IntermediateStops []StopInfo
}

// StopInfo names an intermediate station passed through while onboard.
type StopInfo struct {
	StationID int
	Name      string
	Arrival   int64
	Departure int64
}

// Journey is the traveler-facing result: an ordered list of JourneyParts.
// A Journey with zero parts is valid (start already equals end).
type Journey struct {
	Parts []JourneyPart
}

// Departure reports the first boarding instant of the journey, or ok=false
// for a zero-part journey.
func (j Journey) Departure() (int64, bool) {
	if len(j.Parts) == 0 {
		return 0, false
	}
	return j.Parts[0].BoardTime, true
}

// Arrival reports the final alighting instant of the journey, or ok=false
// for a zero-part journey.
func (j Journey) Arrival() (int64, bool) {
	if len(j.Parts) == 0 {
		return 0, false
	}
	return j.Parts[len(j.Parts)-1].AlightTime, true
}

// TrainSequence returns the ordered list of train IDs boarded, used to
// deduplicate alternatives in Multi mode.
func (j Journey) TrainSequence() []int {
	seq := make([]int, len(j.Parts))
	for i, p := range j.Parts {
		seq[i] = p.TrainID
	}
	return seq
}

// QueryMode selects the route-solver strategy for FindRoute.
type QueryMode string

const (
	ModeSingle         QueryMode = "single"
	ModeDelayedStart   QueryMode = "delayed_start"
	ModeMulti          QueryMode = "multi"
	ModeBoundedSingle  QueryMode = "bounded_single"
	ModeBoundedMulti   QueryMode = "bounded_multi"
)

// --- wire shapes (HTTP boundary) ---

// PartWire is the ISO-8601, JSON-tagged shape of a JourneyPart at the HTTP
// boundary.
type PartWire struct {
	Train        int    `json:"train"`
	StartStation int    `json:"start_station"`
	StartTime    string `json:"start_time"`
	EndStation   int    `json:"end_station"`
	EndTime      string `json:"end_time"`
}

// ToWire converts a Journey into its ordered wire representation.
func (j Journey) ToWire() []PartWire {
	parts := make([]PartWire, len(j.Parts))
	for i, p := range j.Parts {
		parts[i] = PartWire{
			Train:        p.TrainID,
			StartStation: p.FromStationID,
			StartTime:    time.Unix(p.BoardTime, 0).UTC().Format(time.RFC3339),
			EndStation:   p.ToStationID,
			EndTime:      time.Unix(p.AlightTime, 0).UTC().Format(time.RFC3339),
		}
	}
	return parts
}

// --- GTFS-shaped ingestion records (internal/gtfs) ---

// GTFSStop is one row of stops.txt.
type GTFSStop struct {
	StopID   string
	StopName string
	Lat      float64
	Lon      float64
}

// GTFSTrip is one row of trips.txt.
type GTFSTrip struct {
	TripID    string
	ServiceID string
	Headsign  string
}

// GTFSStopTime is one row of stop_times.txt.
type GTFSStopTime struct {
	TripID        string
	ArrivalTime   string
	DepartureTime string
	StopID        string
	StopSequence  int
}

// ImportLog records one GTFS ingestion run, persisted by internal/store.
type ImportLog struct {
	ID           int64
	StartedAt    time.Time
	CompletedAt  *time.Time
	Status       string
	StationCount int
	TrainCount   int
	ErrorMsg     string
}
