package history

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // registers the "postgres" driver
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/prodscan/backend/internal/domain"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know the bind style of
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS scan_history (
	id            TEXT PRIMARY KEY,
	scanned_at    TIMESTAMP NOT NULL,
	product_name  TEXT NOT NULL,
	brand         TEXT NOT NULL,
	brand_details TEXT NOT NULL,
	release_date  TEXT NOT NULL,
	usage         TEXT NOT NULL,
	price_source  TEXT NOT NULL,
	price_kind    TEXT NOT NULL,
	price_text    TEXT NOT NULL
)`

const createIndexSQL = `CREATE INDEX IF NOT EXISTS idx_scan_history_scanned_at ON scan_history (scanned_at)`

const insertSQL = `
INSERT INTO scan_history
	(id, scanned_at, product_name, brand, brand_details, release_date, usage, price_source, price_kind, price_text)
VALUES
	(:id, :scanned_at, :product_name, :brand, :brand_details, :release_date, :usage, :price_source, :price_kind, :price_text)`

const recentSQL = `
SELECT id, scanned_at, product_name, brand, brand_details, release_date, usage, price_source, price_kind, price_text
FROM scan_history
ORDER BY scanned_at DESC
LIMIT ?`

// SQLStore persists the scan log in SQLite or PostgreSQL
type SQLStore struct {
	db *sqlx.DB
}

// driverName maps a history type to its database/sql driver
func driverName(historyType string) (string, error) {
	switch historyType {
	case "sqlite":
		return "sqlite", nil
	case "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported history database: %s", historyType)
	}
}

// NewSQLStore opens the database, verifies the connection and creates the table if needed
func NewSQLStore(ctx context.Context, historyType, dsn string) (*SQLStore, error) {
	driver, err := driverName(historyType)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}

	if driver == "sqlite" {
		// One writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}

	for _, stmt := range []string{createTableSQL, createIndexSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: failed to create schema: %v", domain.ErrHistoryUnavailable, err)
		}
	}

	log.Printf("[HISTORY] Using %s scan history", driver)
	return &SQLStore{db: db}, nil
}

// Append implements domain.HistoryRepository
func (s *SQLStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	if _, err := s.db.NamedExecContext(ctx, insertSQL, entry); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}
	return nil
}

// Recent implements domain.HistoryRepository
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultCapacity
	}

	entries := []domain.HistoryEntry{}
	if err := s.db.SelectContext(ctx, &entries, s.db.Rebind(recentSQL), limit); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}
	return entries, nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
