// Package railerr defines the sentinel error kinds returned by the routing
// core, checked with errors.Is by callers.
package railerr

import "errors"

var (
	// ErrNoRoute means no path matched the solver's termination predicate —
	// the destination is unreachable within the built graph.
	ErrNoRoute = errors.New("railcore: no route found")

	// ErrUnknownStation means a station id referenced by a query is not
	// present in the timetable.
	ErrUnknownStation = errors.New("railcore: unknown station")

	// ErrInvalidQuery means the query itself is malformed: end_time before
	// start_time, an ambiguous zero-duration identical-station Multi query,
	// and similar.
	ErrInvalidQuery = errors.New("railcore: invalid query")

	// ErrTimetableInvariantViolated is raised by ingestion/building code
	// when a timetable fails a structural invariant (non-monotonic stops,
	// arrival after departure). It is fatal for the query that triggered it.
	ErrTimetableInvariantViolated = errors.New("railcore: timetable invariant violated")
)
