// Command importer loads a GTFS zip feed into Postgres, replacing whatever
// station/train/stop data is currently stored.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/passbi/railcore/internal/gtfs"
	"github.com/passbi/railcore/internal/store"
)

func main() {
	gtfsPath := flag.String("gtfs", "", "Path to GTFS ZIP file (required)")
	applySchema := flag.Bool("apply-schema", true, "Create station/train/stop tables if they don't exist")
	flag.Parse()

	if *gtfsPath == "" {
		fmt.Println("Usage: railcore-importer --gtfs=<path.zip> [--apply-schema=true]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if _, err := os.Stat(*gtfsPath); os.IsNotExist(err) {
		log.Fatalf("GTFS file not found: %s", *gtfsPath)
	}

	pool, err := store.Pool()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if *applySchema {
		log.Println("Step 0/4: Applying schema...")
		if err := store.ApplySchema(ctx); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
	}

	logs := store.NewImportLogStore(pool)
	logID, err := logs.Start(ctx)
	if err != nil {
		log.Fatalf("Failed to start import log: %v", err)
	}

	start := time.Now()
	stationCount, trainCount, err := runImport(ctx, pool, *gtfsPath)
	if err != nil {
		if failErr := logs.Fail(ctx, logID, err); failErr != nil {
			log.Printf("Failed to mark import log as failed: %v", failErr)
		}
		log.Fatalf("Import failed: %v", err)
	}

	if err := logs.Succeed(ctx, logID, stationCount, trainCount); err != nil {
		log.Printf("Failed to mark import log as succeeded: %v", err)
	}

	log.Printf("Import completed in %v: %d stations, %d trains", time.Since(start), stationCount, trainCount)
}

func runImport(ctx context.Context, pool *pgxpool.Pool, gtfsPath string) (int, int, error) {
	log.Println("Step 1/4: Parsing GTFS feed...")
	feed, err := gtfs.ParseZip(gtfsPath)
	if err != nil {
		return 0, 0, fmt.Errorf("parse GTFS: %w", err)
	}

	log.Println("Step 2/4: Building timetable...")
	tt, err := gtfs.BuildTimetable(feed)
	if err != nil {
		return 0, 0, fmt.Errorf("build timetable: %w", err)
	}

	log.Println("Step 3/4: Replacing stored timetable...")
	if err := store.New(pool).Replace(ctx, tt); err != nil {
		return 0, 0, fmt.Errorf("persist timetable: %w", err)
	}

	log.Println("Step 4/4: Done.")
	return len(tt.Stations()), len(tt.Trains()), nil
}
