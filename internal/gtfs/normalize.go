package gtfs

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/railerr"
	"github.com/passbi/railcore/internal/timetable"
)

// ParseTimeToSeconds parses a GTFS HH:MM:SS time-of-day into seconds since
// midnight. GTFS permits hours >= 24 to express service past midnight
// without changing calendar day (e.g. "25:10:00" is 01:10 the next day);
// that value is preserved as-is rather than wrapped, so trains crossing
// midnight still sort and compare correctly within a single Timetable.
func ParseTimeToSeconds(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("gtfs: malformed time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("gtfs: malformed hour in %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("gtfs: malformed minute in %q: %w", s, err)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("gtfs: malformed second in %q: %w", s, err)
	}
	if m < 0 || m > 59 || sec < 0 || sec > 59 || h < 0 {
		return 0, fmt.Errorf("gtfs: out-of-range time %q", s)
	}
	return int64(h)*3600 + int64(m)*60 + int64(sec), nil
}

// haversineMeters is the great-circle distance between two lat/lon points,
// used only to merge near-duplicate stop rows during cleaning — geographic
// distance plays no part in routing itself.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusM = 6371000.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// duplicateStopRadiusM is the distance below which two stop rows with the
// same name are considered the same physical platform.
const duplicateStopRadiusM = 50.0

// ValidateAndCleanStops drops rows with an empty id/name or with out-of-range
// coordinates, logging each drop, and returns the survivors.
func ValidateAndCleanStops(stops []models.GTFSStop) []models.GTFSStop {
	out := make([]models.GTFSStop, 0, len(stops))
	for _, s := range stops {
		if s.StopID == "" || s.StopName == "" {
			log.Printf("gtfs: dropping stop with empty id/name: %+v", s)
			continue
		}
		if s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180 {
			log.Printf("gtfs: dropping stop %s with out-of-range coordinates (%f, %f)", s.StopID, s.Lat, s.Lon)
			continue
		}
		out = append(out, s)
	}
	return out
}

// DeduplicateStops merges stop rows that share a name and sit within
// duplicateStopRadiusM of each other, keeping the first-seen id as the
// canonical one and returning a map from every merged id to the canonical id.
func DeduplicateStops(stops []models.GTFSStop) ([]models.GTFSStop, map[string]string) {
	canonical := make([]models.GTFSStop, 0, len(stops))
	remap := make(map[string]string, len(stops))

	for _, s := range stops {
		merged := false
		for _, c := range canonical {
			if c.StopName != s.StopName {
				continue
			}
			if haversineMeters(c.Lat, c.Lon, s.Lat, s.Lon) <= duplicateStopRadiusM {
				remap[s.StopID] = c.StopID
				merged = true
				break
			}
		}
		if !merged {
			remap[s.StopID] = s.StopID
			canonical = append(canonical, s)
		}
	}
	return canonical, remap
}

// BuildTimetable turns a parsed, cleaned Feed into a validated
// timetable.Timetable: stop rows are grouped by trip, sorted by stop
// sequence, their GTFS time strings parsed to seconds, and duplicate stops
// collapsed onto their canonical station id before timetable.New runs its
// own invariant checks.
func BuildTimetable(feed *Feed) (*timetable.Timetable, error) {
	cleanStops := ValidateAndCleanStops(feed.Stops)
	canonicalStops, remap := DeduplicateStops(cleanStops)

	stationIDs := make(map[string]int, len(canonicalStops))
	stations := make([]models.Station, 0, len(canonicalStops))
	for i, s := range canonicalStops {
		id := i + 1
		stationIDs[s.StopID] = id
		stations = append(stations, models.Station{ID: id, Name: s.StopName})
	}

	byTrip := make(map[string][]models.GTFSStopTime)
	for _, st := range feed.StopTimes {
		byTrip[st.TripID] = append(byTrip[st.TripID], st)
	}

	tripIDs := make([]string, 0, len(byTrip))
	for tripID := range byTrip {
		tripIDs = append(tripIDs, tripID)
	}
	sort.Strings(tripIDs)

	trains := make([]models.Train, 0, len(tripIDs))
	for i, tripID := range tripIDs {
		rows := byTrip[tripID]
		sort.Slice(rows, func(a, b int) bool { return rows[a].StopSequence < rows[b].StopSequence })

		stops := make([]models.Stop, 0, len(rows))
		for _, row := range rows {
			canonicalStopID, ok := remap[row.StopID]
			if !ok {
				log.Printf("gtfs: trip %s references unknown stop %s, skipping row", tripID, row.StopID)
				continue
			}
			stationID, ok := stationIDs[canonicalStopID]
			if !ok {
				continue
			}
			arr, err := ParseTimeToSeconds(row.ArrivalTime)
			if err != nil {
				return nil, fmt.Errorf("gtfs: trip %s stop %s: %w", tripID, row.StopID, err)
			}
			dep, err := ParseTimeToSeconds(row.DepartureTime)
			if err != nil {
				return nil, fmt.Errorf("gtfs: trip %s stop %s: %w", tripID, row.StopID, err)
			}
			stops = append(stops, models.Stop{StationID: stationID, Arrival: arr, Departure: dep})
		}

		if len(stops) < 2 {
			log.Printf("gtfs: trip %s has fewer than 2 usable stops, skipping: %v", tripID, railerr.ErrTimetableInvariantViolated)
			continue
		}
		trains = append(trains, models.Train{ID: i + 1, Stops: stops})
	}

	tt, err := timetable.New(stations, trains)
	if err != nil {
		return nil, fmt.Errorf("gtfs: build timetable: %w", err)
	}
	return tt, nil
}
