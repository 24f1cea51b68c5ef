// Package timeexpand projects an immutable timetable onto a time-expanded
// graph: nodes are (station, instant, train-context) singularities, edges
// are the five traveler actions, built fresh per query rather than
// persisted.
package timeexpand

// Singularity is the sole node-id type of the time-expanded graph: a
// (station, instant, train-context) tuple. OnTrain=false means a platform
// singularity (train-context = none); OnTrain=true with TrainID set means
// onboard at a stop of that train. Plain value type, comparable, usable
// directly as a map key.
type Singularity struct {
	StationID int
	Instant   int64
	OnTrain   bool
	TrainID   int
}

// Platform constructs a platform singularity.
func Platform(stationID int, instant int64) Singularity {
	return Singularity{StationID: stationID, Instant: instant}
}

// Onboard constructs an onboard singularity bound to trainID.
func Onboard(stationID int, instant int64, trainID int) Singularity {
	return Singularity{StationID: stationID, Instant: instant, OnTrain: true, TrainID: trainID}
}

// IsPlatform reports whether s is a platform singularity (no train-context).
func (s Singularity) IsPlatform() bool { return !s.OnTrain }

// Action is the tagged edge-payload variant: Wait, TrainWaits, Ride, Board,
// or Unboard. Every variant reports its weight in seconds.
type Action interface {
	Weight() int64
	isAction()
}

// Wait moves forward in time at the same station, same train-context.
type Wait struct {
	Duration int64
}

func (w Wait) Weight() int64 { return w.Duration }
func (Wait) isAction()       {}

// TrainWaits is the onboard wait between arrival and departure at one stop
// of one train.
type TrainWaits struct {
	TrainID   int
	StationID int
	Duration  int64
}

func (w TrainWaits) Weight() int64 { return w.Duration }
func (TrainWaits) isAction()       {}

// Ride moves onboard between two consecutive stops of the same train.
type Ride struct {
	TrainID       int
	FromStationID int
	ToStationID   int
	Duration      int64
}

func (r Ride) Weight() int64 { return r.Duration }
func (Ride) isAction()       {}

// Board is the zero-weight platform-to-onboard transition.
type Board struct {
	TrainID int
}

func (Board) Weight() int64 { return 0 }
func (Board) isAction()     {}

// Unboard is the zero-weight onboard-to-platform transition.
type Unboard struct {
	TrainID int
}

func (Unboard) Weight() int64 { return 0 }
func (Unboard) isAction()     {}

// Weight adapts Action to graph.Weigher[Action].
func Weight(a Action) int64 { return a.Weight() }
