// Package postgres implements the archive metadata store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/archive"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/metrics"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS zips (
	id            TEXT PRIMARY KEY,
	original_name TEXT NOT NULL,
	object_path   TEXT NOT NULL DEFAULT '',
	size          BIGINT NOT NULL DEFAULT 0,
	file_count    INTEGER NOT NULL DEFAULT 0,
	description   TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS zip_entries (
	zip_id    TEXT NOT NULL REFERENCES zips(id) ON DELETE CASCADE,
	ord       INTEGER NOT NULL,
	name      TEXT NOT NULL,
	is_folder BOOLEAN NOT NULL DEFAULT false,
	content   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (zip_id, ord)
);
`

// Store implements archive.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New connects to PostgreSQL and ensures the schema exists.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts the archive and its entries in one transaction.
func (s *Store) Create(ctx context.Context, z *models.StoredZip) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("create_zip", time.Since(start)) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	createdAt := z.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO zips (id, original_name, object_path, size, file_count, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		z.ID, z.OriginalName, z.ObjectPath, z.Size,
		z.Structure.FileCount, z.Analysis.Description, createdAt,
	); err != nil {
		return fmt.Errorf("insert zip: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO zip_entries (zip_id, ord, name, is_folder, content)
		 VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("prepare entries: %w", err)
	}
	defer stmt.Close()

	for i, e := range z.Structure.Entries {
		if _, err := stmt.ExecContext(ctx, z.ID, i, e.Name, e.IsFolder, e.Content); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.Name, err)
		}
	}

	return tx.Commit()
}

// Get returns the full archive record including ordered entries.
func (s *Store) Get(ctx context.Context, id string) (*models.StoredZip, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_zip", time.Since(start)) }()

	z := &models.StoredZip{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, original_name, object_path, size, file_count, description, created_at
		 FROM zips WHERE id = $1`, id,
	).Scan(&z.ID, &z.OriginalName, &z.ObjectPath, &z.Size,
		&z.Structure.FileCount, &z.Analysis.Description, &z.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, archive.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query zip: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, is_folder, content FROM zip_entries
		 WHERE zip_id = $1 ORDER BY ord`, id)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.ZipEntry
		if err := rows.Scan(&e.Name, &e.IsFolder, &e.Content); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		z.Structure.Entries = append(z.Structure.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return z, nil
}

// List returns archive summaries (no entry contents), newest first.
func (s *Store) List(ctx context.Context) ([]*models.StoredZip, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_zips", time.Since(start)) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, original_name, object_path, size, file_count, description, created_at
		 FROM zips ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query zips: %w", err)
	}
	defer rows.Close()

	var out []*models.StoredZip
	for rows.Next() {
		z := &models.StoredZip{}
		if err := rows.Scan(&z.ID, &z.OriginalName, &z.ObjectPath, &z.Size,
			&z.Structure.FileCount, &z.Analysis.Description, &z.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan zip: %w", err)
		}
		out = append(out, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// Delete removes an archive and its entries.
func (s *Store) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete_zip", time.Since(start)) }()

	res, err := s.db.ExecContext(ctx, `DELETE FROM zips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete zip: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return archive.ErrNotFound
	}
	return nil
}
