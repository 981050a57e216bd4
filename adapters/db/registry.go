package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"battwatch/domain/artifact"
	"battwatch/internal/config"
	"battwatch/internal/errors"
	"battwatch/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// uploadRegistry implements ports.UploadRegistry on sqlx. The same
// implementation serves both drivers: sqlite3 for the default
// file-local registry and postgres when DATABASE_URL is configured.
type uploadRegistry struct {
	db *sqlx.DB
}

// Open connects the upload registry using the configured driver and
// ensures the schema exists.
func Open(cfg *config.Config) (ports.UploadRegistry, error) {
	dsn := cfg.Database.URL
	if cfg.Database.Driver == "sqlite3" && dsn == "" {
		dsn = filepath.Join(cfg.Paths.DataDir, "battwatch_registry.db")
	}

	conn, err := sqlx.Connect(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to upload registry")
	}

	registry := &uploadRegistry{db: conn}
	if err := registry.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return registry, nil
}

// NewUploadRegistry wraps an existing connection; tests use this with
// an in-memory sqlite database.
func NewUploadRegistry(conn *sqlx.DB) (ports.UploadRegistry, error) {
	registry := &uploadRegistry{db: conn}
	if err := registry.migrate(); err != nil {
		return nil, err
	}
	return registry, nil
}

func (r *uploadRegistry) migrate() error {
	schema := `CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		original_name TEXT NOT NULL,
		size_bytes BIGINT NOT NULL,
		sha256 TEXT NOT NULL,
		uploaded_at TIMESTAMP NOT NULL
	)`
	if _, err := r.db.Exec(schema); err != nil {
		return errors.Wrap(err, "failed to create uploads table")
	}
	return nil
}

// Record inserts one accepted upload.
func (r *uploadRegistry) Record(ctx context.Context, upload artifact.Upload) error {
	query := r.db.Rebind(`INSERT INTO uploads (id, kind, original_name, size_bytes, sha256, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		upload.ID, upload.Kind, upload.OriginalName, upload.Size, upload.SHA256, upload.UploadedAt)
	if err != nil {
		return errors.Wrap(err, "failed to record upload")
	}
	return nil
}

// ListRecent returns the newest uploads first.
func (r *uploadRegistry) ListRecent(ctx context.Context, limit int) ([]artifact.Upload, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	query := r.db.Rebind(`SELECT id, kind, original_name, size_bytes, sha256, uploaded_at
		FROM uploads ORDER BY uploaded_at DESC LIMIT ?`)

	uploads := []artifact.Upload{}
	if err := r.db.SelectContext(ctx, &uploads, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list uploads")
	}
	return uploads, nil
}

// LatestByKind returns the most recent upload of a kind, or a
// NOT_FOUND error when the kind was never uploaded.
func (r *uploadRegistry) LatestByKind(ctx context.Context, kind artifact.Kind) (*artifact.Upload, error) {
	query := r.db.Rebind(`SELECT id, kind, original_name, size_bytes, sha256, uploaded_at
		FROM uploads WHERE kind = ? ORDER BY uploaded_at DESC LIMIT 1`)

	var upload artifact.Upload
	err := r.db.GetContext(ctx, &upload, query, kind)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(fmt.Sprintf("upload for kind %s", kind))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query latest upload")
	}
	return &upload, nil
}
