// Package gtfs reads a GTFS-shaped zip feed (stops.txt, trips.txt,
// stop_times.txt) into the plain ingestion records of internal/models, and
// builds a validated internal/timetable.Timetable from them. Israel Railways
// is single-mode, so routes.txt and agency.txt are not consulted.
package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/passbi/railcore/internal/models"
)

// Feed is the raw, unvalidated result of parsing a GTFS zip.
type Feed struct {
	Stops     []models.GTFSStop
	Trips     []models.GTFSTrip
	StopTimes []models.GTFSStopTime
}

// ParseZip opens the zip at path and parses stops.txt, trips.txt, and
// stop_times.txt. Missing optional files are tolerated (an empty Feed
// section); a missing stop_times.txt is fatal since no timetable can be
// built without it.
func ParseZip(path string) (*Feed, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("gtfs: open %s: %w", path, err)
	}
	defer r.Close()

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}

	feed := &Feed{}

	if f, ok := files["stops.txt"]; ok {
		feed.Stops, err = parseStops(f)
		if err != nil {
			return nil, err
		}
	}
	if f, ok := files["trips.txt"]; ok {
		feed.Trips, err = parseTrips(f)
		if err != nil {
			return nil, err
		}
	}
	f, ok := files["stop_times.txt"]
	if !ok {
		return nil, fmt.Errorf("gtfs: %s: missing stop_times.txt", path)
	}
	feed.StopTimes, err = parseStopTimes(f)
	if err != nil {
		return nil, err
	}

	log.Printf("gtfs: parsed %d stops, %d trips, %d stop_times from %s", len(feed.Stops), len(feed.Trips), len(feed.StopTimes), path)
	return feed, nil
}

func openCSV(f *zip.File) (*csv.Reader, func() error, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("gtfs: open %s: %w", f.Name, err)
	}
	cr := csv.NewReader(rc)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr, rc.Close, nil
}

// makeColumnMap maps a CSV header row to column index, so row access is
// name-based and tolerant of column reordering.
func makeColumnMap(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		m[strings.TrimSpace(name)] = i
	}
	return m
}

func getField(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseStops(f *zip.File) ([]models.GTFSStop, error) {
	cr, closeFn, err := openCSV(f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("gtfs: stops.txt header: %w", err)
	}
	cols := makeColumnMap(header)

	var out []models.GTFSStop
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("gtfs: warning: skipping malformed stops.txt row: %v", err)
			continue
		}
		id := getField(row, cols, "stop_id")
		if id == "" {
			log.Printf("gtfs: warning: skipping stops.txt row with empty stop_id")
			continue
		}
		lat, _ := strconv.ParseFloat(getField(row, cols, "stop_lat"), 64)
		lon, _ := strconv.ParseFloat(getField(row, cols, "stop_lon"), 64)
		out = append(out, models.GTFSStop{
			StopID:   id,
			StopName: getField(row, cols, "stop_name"),
			Lat:      lat,
			Lon:      lon,
		})
	}
	return out, nil
}

func parseTrips(f *zip.File) ([]models.GTFSTrip, error) {
	cr, closeFn, err := openCSV(f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("gtfs: trips.txt header: %w", err)
	}
	cols := makeColumnMap(header)

	var out []models.GTFSTrip
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("gtfs: warning: skipping malformed trips.txt row: %v", err)
			continue
		}
		id := getField(row, cols, "trip_id")
		if id == "" {
			log.Printf("gtfs: warning: skipping trips.txt row with empty trip_id")
			continue
		}
		out = append(out, models.GTFSTrip{
			TripID:    id,
			ServiceID: getField(row, cols, "service_id"),
			Headsign:  getField(row, cols, "trip_headsign"),
		})
	}
	return out, nil
}

func parseStopTimes(f *zip.File) ([]models.GTFSStopTime, error) {
	cr, closeFn, err := openCSV(f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("gtfs: stop_times.txt header: %w", err)
	}
	cols := makeColumnMap(header)

	var out []models.GTFSStopTime
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("gtfs: warning: skipping malformed stop_times.txt row: %v", err)
			continue
		}
		tripID := getField(row, cols, "trip_id")
		if tripID == "" {
			log.Printf("gtfs: warning: skipping stop_times.txt row with empty trip_id")
			continue
		}
		seq, err := strconv.Atoi(getField(row, cols, "stop_sequence"))
		if err != nil {
			log.Printf("gtfs: warning: skipping stop_times.txt row with bad stop_sequence: %v", err)
			continue
		}
		out = append(out, models.GTFSStopTime{
			TripID:        tripID,
			ArrivalTime:   getField(row, cols, "arrival_time"),
			DepartureTime: getField(row, cols, "departure_time"),
			StopID:        getField(row, cols, "stop_id"),
			StopSequence:  seq,
		})
	}
	return out, nil
}
