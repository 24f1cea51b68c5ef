package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/passbi/railcore/internal/models"
	"github.com/passbi/railcore/internal/timetable"
)

// batchSize caps how many statements ride in a single pgx.Batch round-trip.
const batchSize = 1000

// Store wraps a connection pool with station/train/stop persistence.
type Store struct {
	db *pgxpool.Pool
}

// New wraps an existing pool. Use Pool() to obtain the process-wide one.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Replace clears the station/train/stop tables and writes tt's contents in
// their place, inside a single transaction so a failed import never leaves a
// half-written timetable live.
func (s *Store) Replace(ctx context.Context, tt *timetable.Timetable) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE stop, train, station CASCADE"); err != nil {
		return fmt.Errorf("store: truncate: %w", err)
	}

	if err := insertStations(ctx, tx, tt.Stations()); err != nil {
		return err
	}
	if err := insertTrains(ctx, tx, tt.Trains()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertStations(ctx context.Context, tx pgx.Tx, stations []models.Station) error {
	batch := &pgx.Batch{}
	for _, st := range stations {
		batch.Queue(`INSERT INTO station (id, name) VALUES ($1, $2)`, st.ID, st.Name)
		if batch.Len() >= batchSize {
			if err := execBatch(ctx, tx, batch); err != nil {
				return fmt.Errorf("store: insert stations: %w", err)
			}
			batch = &pgx.Batch{}
		}
	}
	if batch.Len() > 0 {
		if err := execBatch(ctx, tx, batch); err != nil {
			return fmt.Errorf("store: insert stations: %w", err)
		}
	}
	return nil
}

func insertTrains(ctx context.Context, tx pgx.Tx, trains []models.Train) error {
	trainBatch := &pgx.Batch{}
	stopBatch := &pgx.Batch{}

	for _, tr := range trains {
		trainBatch.Queue(`INSERT INTO train (id) VALUES ($1)`, tr.ID)
		for seq, stop := range tr.Stops {
			stopBatch.Queue(
				`INSERT INTO stop (train_id, sequence, station_id, arrival, departure) VALUES ($1, $2, $3, $4, $5)`,
				tr.ID, seq, stop.StationID, stop.Arrival, stop.Departure,
			)
			if stopBatch.Len() >= batchSize {
				if err := execBatch(ctx, tx, stopBatch); err != nil {
					return fmt.Errorf("store: insert stops: %w", err)
				}
				stopBatch = &pgx.Batch{}
			}
		}
		if trainBatch.Len() >= batchSize {
			if err := execBatch(ctx, tx, trainBatch); err != nil {
				return fmt.Errorf("store: insert trains: %w", err)
			}
			trainBatch = &pgx.Batch{}
		}
	}

	if trainBatch.Len() > 0 {
		if err := execBatch(ctx, tx, trainBatch); err != nil {
			return fmt.Errorf("store: insert trains: %w", err)
		}
	}
	if stopBatch.Len() > 0 {
		if err := execBatch(ctx, tx, stopBatch); err != nil {
			return fmt.Errorf("store: insert stops: %w", err)
		}
	}
	return nil
}

func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return nil
}

// Load reads the station/train/stop tables back into a validated Timetable.
func (s *Store) Load(ctx context.Context) (*timetable.Timetable, error) {
	stationRows, err := s.db.Query(ctx, `SELECT id, name FROM station`)
	if err != nil {
		return nil, fmt.Errorf("store: load stations: %w", err)
	}
	var stations []models.Station
	for stationRows.Next() {
		var st models.Station
		if err := stationRows.Scan(&st.ID, &st.Name); err != nil {
			stationRows.Close()
			return nil, fmt.Errorf("store: scan station: %w", err)
		}
		stations = append(stations, st)
	}
	stationRows.Close()

	stopRows, err := s.db.Query(ctx, `SELECT train_id, sequence, station_id, arrival, departure FROM stop ORDER BY train_id, sequence`)
	if err != nil {
		return nil, fmt.Errorf("store: load stops: %w", err)
	}
	byTrain := make(map[int][]models.Stop)
	for stopRows.Next() {
		var trainID, sequence int
		var stop models.Stop
		if err := stopRows.Scan(&trainID, &sequence, &stop.StationID, &stop.Arrival, &stop.Departure); err != nil {
			stopRows.Close()
			return nil, fmt.Errorf("store: scan stop: %w", err)
		}
		byTrain[trainID] = append(byTrain[trainID], stop)
	}
	stopRows.Close()

	trainIDs := make([]int, 0, len(byTrain))
	for id := range byTrain {
		trainIDs = append(trainIDs, id)
	}
	sort.Ints(trainIDs)

	trains := make([]models.Train, 0, len(trainIDs))
	for _, id := range trainIDs {
		trains = append(trains, models.Train{ID: id, Stops: byTrain[id]})
	}

	tt, err := timetable.New(stations, trains)
	if err != nil {
		return nil, fmt.Errorf("store: loaded timetable: %w", err)
	}
	return tt, nil
}
