package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/transport-catalogue/pkg/transit/models"
)

// ErrNoActiveVersion is returned when no snapshot has been activated yet.
var ErrNoActiveVersion = errors.New("no active snapshot version")

type VersionStore struct {
	db *DB
}

func NewVersionStore(db *DB) *VersionStore {
	return &VersionStore{db: db}
}

func (vs *VersionStore) GetActiveVersion(ctx context.Context) (*models.SnapshotVersion, error) {
	query := `
		SELECT version_id, version_name, created_at, is_active, source_url, description
		FROM transit.versions
		WHERE is_active = true
		LIMIT 1
	`

	var version models.SnapshotVersion
	err := vs.db.conn.QueryRowContext(ctx, query).Scan(
		&version.VersionID,
		&version.VersionName,
		&version.CreatedAt,
		&version.IsActive,
		&version.SourceURL,
		&version.Description,
	)

	if errors.Is(err, sql.ErrNoRows) {
		vs.db.logger.Info("No active version found in database")
		return nil, ErrNoActiveVersion
	}

	if err != nil {
		return nil, fmt.Errorf("querying active version: %w", err)
	}

	vs.db.logger.Debug("Found active version",
		"version_id", version.VersionID,
		"version_name", version.VersionName,
		"created_at", version.CreatedAt)

	return &version, nil
}

// ListVersions returns every stored version, newest first.
func (vs *VersionStore) ListVersions(ctx context.Context) ([]models.SnapshotVersion, error) {
	rows, err := vs.db.conn.QueryContext(ctx, `
		SELECT version_id, version_name, created_at, is_active, source_url, description
		FROM transit.versions
		ORDER BY version_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	var versions []models.SnapshotVersion
	for rows.Next() {
		var v models.SnapshotVersion
		if err := rows.Scan(&v.VersionID, &v.VersionName, &v.CreatedAt, &v.IsActive, &v.SourceURL, &v.Description); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// createVersion inserts an inactive version row inside tx.
func createVersion(ctx context.Context, tx *sql.Tx, name, sourceURL, description string) (int, error) {
	var versionID int
	query := `
		INSERT INTO transit.versions (version_name, source_url, is_active, description)
		VALUES ($1, $2, false, $3)
		RETURNING version_id
	`
	if err := tx.QueryRowContext(ctx, query, name, sourceURL, description).Scan(&versionID); err != nil {
		return 0, fmt.Errorf("creating version: %w", err)
	}
	return versionID, nil
}

// activateVersion makes versionID the only active version inside tx.
func activateVersion(ctx context.Context, tx *sql.Tx, versionID int) error {
	_, err := tx.ExecContext(ctx, "UPDATE transit.versions SET is_active = false WHERE is_active = true")
	if err != nil {
		return fmt.Errorf("deactivating versions: %w", err)
	}

	result, err := tx.ExecContext(ctx, "UPDATE transit.versions SET is_active = true WHERE version_id = $1", versionID)
	if err != nil {
		return fmt.Errorf("activating version: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("version %d not found", versionID)
	}
	return nil
}

func (vs *VersionStore) ActivateVersion(ctx context.Context, versionID int) error {
	tx, err := vs.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := activateVersion(ctx, tx, versionID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	vs.db.logger.Info("Activated version", "version_id", versionID)
	return nil
}
