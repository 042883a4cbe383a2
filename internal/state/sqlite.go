package state

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLiteStore keeps the digest log of one pull request in a SQLite database.
// Rows are only ever inserted; Load folds them in insertion order.
type SQLiteStore struct {
	db         *sql.DB
	repository string
	prNumber   int
	log        *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates it
// to the latest schema. Use ":memory:" for a throwaway database.
func OpenSQLite(path, repository string, prNumber int, log *slog.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := applyMigrations(db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating state database: %w", err)
	}

	return &SQLiteStore{
		db:         db,
		repository: repository,
		prNumber:   prNumber,
		log:        log,
	}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) (*DigestMap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, digest FROM digest_log
		 WHERE repository = ? AND pr_number = ?
		 ORDER BY id`,
		s.repository, s.prNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("querying digest log: %w", err)
	}
	defer rows.Close()

	m := NewDigestMap()
	for rows.Next() {
		var path, digest string
		if err := rows.Scan(&path, &digest); err != nil {
			return nil, fmt.Errorf("scanning digest log: %w", err)
		}
		m.Set(path, digest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading digest log: %w", err)
	}
	return m, nil
}

// Persist implements Store. All entries are written in one transaction.
func (s *SQLiteStore) Persist(ctx context.Context, updates *DigestMap) error {
	if updates.Len() == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO digest_log (repository, pr_number, path, digest, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range updates.Entries() {
		if _, err := stmt.ExecContext(ctx, s.repository, s.prNumber, e.Path, e.Digest, now); err != nil {
			return fmt.Errorf("recording digest for %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing digests: %w", err)
	}
	s.log.DebugContext(ctx, "Recorded digests", "count", updates.Len(), "backend", "sqlite")
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrationLogger adapts slog to the migrate.Logger interface.
type migrationLogger struct {
	log *slog.Logger
}

func (m *migrationLogger) Printf(format string, v ...any) {
	m.log.Debug(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

func (m *migrationLogger) Verbose() bool {
	return false
}

func applyMigrations(db *sql.DB, log *slog.Logger) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	mig, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	mig.Log = &migrationLogger{log: log}

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
