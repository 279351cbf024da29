package artifact

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"
)

const (
	selectArtifact = `SELECT format, body FROM artifact WHERE name = ?`
	selectTable    = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'artifact'`
)

// BundleSource reads artifacts from a single SQLite file with the table
//
//	CREATE TABLE artifact (name TEXT PRIMARY KEY, format TEXT NOT NULL, body BLOB NOT NULL)
//
// The file is opened read-only.
type BundleSource struct {
	path string
	db   *sql.DB
}

// OpenBundle opens the bundle at path.
func OpenBundle(path string) (*BundleSource, error) {
	if path == "" {
		return nil, errors.New("bundle path required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", path, err)
	}

	var name string
	if err := db.QueryRow(selectTable).Scan(&name); err != nil {
		db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bundle %s has no artifact table", path)
		}
		return nil, fmt.Errorf("reading bundle %s: %w", path, err)
	}

	slog.Debug("bundle opened", "path", path)
	return &BundleSource{path: path, db: db}, nil
}

func (b *BundleSource) String() string {
	return b.path
}

func (b *BundleSource) Read(name string) ([]byte, Format, error) {
	var (
		format string
		body   []byte
	)
	err := b.db.QueryRow(selectArtifact, name).Scan(&format, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("querying %s: %w", name, err)
	}

	f, err := ParseFormat(format)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", name, err)
	}
	return body, f, nil
}

// Close releases the underlying database handle.
func (b *BundleSource) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
