package db

const schemaName = "transit"

var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS transit`,
	`CREATE TABLE IF NOT EXISTS transit.versions (
		version_id   SERIAL PRIMARY KEY,
		version_name TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		is_active    BOOLEAN NOT NULL DEFAULT false,
		source_url   TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS versions_single_active
		ON transit.versions (is_active) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS transit.stops (
		version_id INTEGER NOT NULL REFERENCES transit.versions (version_id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		latitude   DOUBLE PRECISION NOT NULL,
		longitude  DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (version_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS transit.distances (
		version_id INTEGER NOT NULL REFERENCES transit.versions (version_id) ON DELETE CASCADE,
		from_stop  TEXT NOT NULL,
		to_stop    TEXT NOT NULL,
		meters     INTEGER NOT NULL,
		PRIMARY KEY (version_id, from_stop, to_stop)
	)`,
	`CREATE TABLE IF NOT EXISTS transit.buses (
		version_id   INTEGER NOT NULL REFERENCES transit.versions (version_id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		stops        TEXT[] NOT NULL,
		is_roundtrip BOOLEAN NOT NULL,
		PRIMARY KEY (version_id, name)
	)`,
}

func columnsForTable(tableName string) []string {
	switch tableName {
	case "stops":
		return []string{"version_id", "name", "latitude", "longitude"}
	case "distances":
		return []string{"version_id", "from_stop", "to_stop", "meters"}
	case "buses":
		return []string{"version_id", "name", "stops", "is_roundtrip"}
	default:
		return nil
	}
}
