package store

import "context"

// Schema is the DDL applied by cmd/importer before the first import. Kept as
// a Go constant rather than a migration tool since the schema is small and
// fixed: one table per concern — station, train, stop, import_log.
const Schema = `
CREATE TABLE IF NOT EXISTS station (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS train (
	id INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS stop (
	train_id      INTEGER NOT NULL REFERENCES train(id) ON DELETE CASCADE,
	sequence      INTEGER NOT NULL,
	station_id    INTEGER NOT NULL REFERENCES station(id),
	arrival       BIGINT NOT NULL,
	departure     BIGINT NOT NULL,
	PRIMARY KEY (train_id, sequence)
);

CREATE TABLE IF NOT EXISTS import_log (
	id            BIGSERIAL PRIMARY KEY,
	started_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ,
	status        TEXT NOT NULL,
	station_count INTEGER NOT NULL DEFAULT 0,
	train_count   INTEGER NOT NULL DEFAULT 0,
	error_msg     TEXT NOT NULL DEFAULT ''
);
`

// ApplySchema creates the station/train/stop/import_log tables if they do
// not already exist.
func ApplySchema(ctx context.Context) error {
	p, err := Pool()
	if err != nil {
		return err
	}
	_, err = p.Exec(ctx, Schema)
	return err
}
