package db

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/transport-catalogue/pkg/transit/models"
)

const defaultBatchSize = 1000

// SnapshotStore persists whole networks. Each Save writes a new version and
// makes it the active one; older versions are kept.
type SnapshotStore struct {
	db        *DB
	versions  *VersionStore
	batchSize int
}

func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{
		db:        db,
		versions:  NewVersionStore(db),
		batchSize: defaultBatchSize,
	}
}

// Save writes n as a new active version in one transaction and returns the
// version id.
func (s *SnapshotStore) Save(ctx context.Context, n *models.Network, name, sourceURL string) (int, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	description := fmt.Sprintf("%d stops, %d distances, %d buses", len(n.Stops), len(n.Distances), len(n.Buses))
	versionID, err := createVersion(ctx, tx, name, sourceURL, description)
	if err != nil {
		return 0, err
	}

	stopBatch := newBatchInserter(tx, "stops", s.batchSize)
	for _, stop := range n.Stops {
		if err := stopBatch.Add(ctx, versionID, stop.Name, stop.Latitude, stop.Longitude); err != nil {
			return 0, err
		}
	}
	distanceBatch := newBatchInserter(tx, "distances", s.batchSize)
	for _, d := range n.Distances {
		if err := distanceBatch.Add(ctx, versionID, d.From, d.To, d.Meters); err != nil {
			return 0, err
		}
	}
	busBatch := newBatchInserter(tx, "buses", s.batchSize)
	for _, bus := range n.Buses {
		if err := busBatch.Add(ctx, versionID, bus.Name, pq.Array(bus.Stops), bus.IsRoundTrip); err != nil {
			return 0, err
		}
	}

	for _, batch := range []*batchInserter{stopBatch, distanceBatch, busBatch} {
		if err := batch.Flush(ctx); err != nil {
			return 0, fmt.Errorf("flushing %s batch: %w", batch.tableName, err)
		}
	}

	if err := activateVersion(ctx, tx, versionID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	s.db.logger.Info("Snapshot saved",
		"version_id", versionID,
		"version_name", name,
		"stops", len(n.Stops),
		"distances", len(n.Distances),
		"buses", len(n.Buses))

	return versionID, nil
}

// LoadActive reads the active version. It returns ErrNoActiveVersion when
// nothing has been saved.
func (s *SnapshotStore) LoadActive(ctx context.Context) (*models.Network, *models.SnapshotVersion, error) {
	version, err := s.versions.GetActiveVersion(ctx)
	if err != nil {
		return nil, nil, err
	}
	n, err := s.LoadVersion(ctx, version.VersionID)
	if err != nil {
		return nil, nil, err
	}
	return n, version, nil
}

// LoadVersion reads one version, with rows ordered by name.
func (s *SnapshotStore) LoadVersion(ctx context.Context, versionID int) (*models.Network, error) {
	n := &models.Network{}

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT name, latitude, longitude FROM transit.stops WHERE version_id = $1 ORDER BY name`, versionID)
	if err != nil {
		return nil, fmt.Errorf("querying stops: %w", err)
	}
	for rows.Next() {
		var stop models.Stop
		if err := rows.Scan(&stop.Name, &stop.Latitude, &stop.Longitude); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning stop: %w", err)
		}
		n.Stops = append(n.Stops, stop)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stops: %w", err)
	}

	rows, err = s.db.conn.QueryContext(ctx,
		`SELECT from_stop, to_stop, meters FROM transit.distances WHERE version_id = $1 ORDER BY from_stop, to_stop`, versionID)
	if err != nil {
		return nil, fmt.Errorf("querying distances: %w", err)
	}
	for rows.Next() {
		var d models.Distance
		if err := rows.Scan(&d.From, &d.To, &d.Meters); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning distance: %w", err)
		}
		n.Distances = append(n.Distances, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading distances: %w", err)
	}

	rows, err = s.db.conn.QueryContext(ctx,
		`SELECT name, stops, is_roundtrip FROM transit.buses WHERE version_id = $1 ORDER BY name`, versionID)
	if err != nil {
		return nil, fmt.Errorf("querying buses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bus models.Bus
		if err := rows.Scan(&bus.Name, pq.Array(&bus.Stops), &bus.IsRoundTrip); err != nil {
			return nil, fmt.Errorf("scanning bus: %w", err)
		}
		n.Buses = append(n.Buses, bus)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading buses: %w", err)
	}

	s.db.logger.Info("Snapshot loaded",
		"version_id", versionID,
		"stops", len(n.Stops),
		"distances", len(n.Distances),
		"buses", len(n.Buses))
	return n, nil
}
