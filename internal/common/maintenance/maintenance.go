package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/transport-catalogue/internal/common/db"
	"github.com/transport-catalogue/internal/common/logger"
)

var ErrInvalidRetention = errors.New("keep count must not be negative")

// snapshotTables are vacuumed after pruning. versions goes last since the
// other tables cascade from it.
var snapshotTables = []string{"transit.stops", "transit.distances", "transit.buses", "transit.versions"}

const staleVersionsQuery = `SELECT version_id, version_name FROM transit.versions
	WHERE NOT is_active
	ORDER BY created_at DESC, version_id DESC
	OFFSET $1`

// PruneResult describes one deleted snapshot version.
type PruneResult struct {
	VersionID     int    `json:"version_id"`
	VersionName   string `json:"version_name"`
	StopsDeleted  int64  `json:"stops_deleted"`
	BusesDeleted  int64  `json:"buses_deleted"`
	CleanupStatus string `json:"cleanup_status"`
}

// Maintenance handles database cleanup for stored network snapshots.
type Maintenance struct {
	db     *db.DB
	logger logger.Logger
}

func New(database *db.DB, logger logger.Logger) *Maintenance {
	return &Maintenance{
		db:     database,
		logger: logger,
	}
}

// PruneVersions removes old inactive snapshot versions, keeping the active
// version and the keepInactive most recent inactive ones.
func (m *Maintenance) PruneVersions(ctx context.Context, keepInactive int) ([]PruneResult, error) {
	if keepInactive < 0 {
		return nil, ErrInvalidRetention
	}
	m.logger.Info("Starting cleanup of old snapshot versions", "keep_inactive_versions", keepInactive)

	stale, err := m.staleVersions(ctx, keepInactive)
	if err != nil {
		return nil, err
	}

	var results []PruneResult
	for _, v := range stale {
		result, err := m.deleteVersion(ctx, v)
		if err != nil {
			return results, err
		}
		m.logger.Info("Cleaned up snapshot version",
			"version_id", result.VersionID,
			"version_name", result.VersionName,
			"stops_deleted", result.StopsDeleted,
			"buses_deleted", result.BusesDeleted)
		results = append(results, result)
	}

	if len(results) > 0 {
		if err := m.VacuumSnapshotTables(ctx); err != nil {
			// cleanup already committed
			m.logger.Warn("Failed to vacuum snapshot tables after cleanup", "error", err)
		}
	}

	m.logger.Info("Snapshot cleanup completed", "versions_deleted", len(results))
	return results, nil
}

func (m *Maintenance) staleVersions(ctx context.Context, keepInactive int) ([]PruneResult, error) {
	rows, err := m.db.Conn().QueryContext(ctx, staleVersionsQuery, keepInactive)
	if err != nil {
		return nil, fmt.Errorf("querying stale versions: %w", err)
	}
	defer rows.Close()

	var stale []PruneResult
	for rows.Next() {
		var v PruneResult
		if err := rows.Scan(&v.VersionID, &v.VersionName); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		stale = append(stale, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	return stale, nil
}

func (m *Maintenance) deleteVersion(ctx context.Context, v PruneResult) (PruneResult, error) {
	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return v, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM transit.stops WHERE version_id = $1`, v.VersionID).Scan(&v.StopsDeleted); err != nil {
		return v, fmt.Errorf("counting stops for version %d: %w", v.VersionID, err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM transit.buses WHERE version_id = $1`, v.VersionID).Scan(&v.BusesDeleted); err != nil {
		return v, fmt.Errorf("counting buses for version %d: %w", v.VersionID, err)
	}

	// the active check guards against a version activated since staleVersions ran
	res, err := tx.ExecContext(ctx,
		`DELETE FROM transit.versions WHERE version_id = $1 AND NOT is_active`, v.VersionID)
	if err != nil {
		return v, fmt.Errorf("deleting version %d: %w", v.VersionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		v.StopsDeleted, v.BusesDeleted = 0, 0
		v.CleanupStatus = "SKIPPED"
		return v, nil
	}

	if err := tx.Commit(); err != nil {
		return v, fmt.Errorf("committing version %d deletion: %w", v.VersionID, err)
	}
	v.CleanupStatus = "DELETED"
	return v, nil
}

// VacuumSnapshotTables runs VACUUM ANALYZE on the snapshot tables. It must
// not run inside a transaction.
func (m *Maintenance) VacuumSnapshotTables(ctx context.Context) error {
	m.logger.Info("Starting VACUUM ANALYZE of snapshot tables")

	failed := 0
	for _, stmt := range vacuumStatements() {
		if _, err := m.db.Conn().ExecContext(ctx, stmt); err != nil {
			failed++
			m.logger.Error("Failed to vacuum table", "statement", stmt, "error", err)
		}
	}

	m.logger.Info("VACUUM ANALYZE completed",
		"successful_tables", len(snapshotTables)-failed,
		"total_tables", len(snapshotTables))

	if failed > 0 {
		return fmt.Errorf("vacuum failed for %d out of %d snapshot tables", failed, len(snapshotTables))
	}
	return nil
}

func vacuumStatements() []string {
	stmts := make([]string, len(snapshotTables))
	for i, table := range snapshotTables {
		stmts[i] = "VACUUM ANALYZE " + table
	}
	return stmts
}
