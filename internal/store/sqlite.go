// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/Ilakiancs/StockSage/internal/errors"
	"github.com/Ilakiancs/StockSage/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Tracked tickers with their comparison baseline and dedup date
	CREATE TABLE IF NOT EXISTS watchlist (
		symbol TEXT PRIMARY KEY,
		reference_price REAL,
		last_alert_date TEXT,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- One row per delivered alert
	CREATE TABLE IF NOT EXISTS alert_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		old_price REAL NOT NULL,
		new_price REAL NOT NULL,
		percent_change REAL NOT NULL,
		direction TEXT NOT NULL,
		message TEXT,
		alert_date TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_alert_history_symbol ON alert_history(symbol);
	CREATE INDEX IF NOT EXISTS idx_alert_history_date ON alert_history(alert_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LoadWatchlist loads every tracked ticker, ordered by symbol.
func (s *SQLiteStore) LoadWatchlist(ctx context.Context) ([]models.TrackedTicker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, reference_price, last_alert_date, added_at
		FROM watchlist ORDER BY symbol`)
	if err != nil {
		return nil, apperrors.Wrap(err, "loading watchlist")
	}
	defer rows.Close()

	var tickers []models.TrackedTicker
	for rows.Next() {
		var t models.TrackedTicker
		var refPrice sql.NullFloat64
		var alertDate sql.NullString
		if err := rows.Scan(&t.Symbol, &refPrice, &alertDate, &t.AddedAt); err != nil {
			return nil, apperrors.Wrap(err, "scanning watchlist row")
		}
		if refPrice.Valid {
			t.ReferencePrice = refPrice.Float64
			t.HasReference = true
		}
		if alertDate.Valid {
			t.LastAlertDate = alertDate.String
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// SaveTicker inserts or updates a tracked ticker.
func (s *SQLiteStore) SaveTicker(ctx context.Context, t models.TrackedTicker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var refPrice sql.NullFloat64
	if t.HasReference {
		refPrice = sql.NullFloat64{Float64: t.ReferencePrice, Valid: true}
	}
	var alertDate sql.NullString
	if t.LastAlertDate != "" {
		alertDate = sql.NullString{String: t.LastAlertDate, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watchlist (symbol, reference_price, last_alert_date)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			reference_price = excluded.reference_price,
			last_alert_date = excluded.last_alert_date`,
		t.Symbol, refPrice, alertDate)
	return apperrors.Wrap(err, "saving ticker")
}

// DeleteTicker removes a ticker. Returns false if it was not tracked.
func (s *SQLiteStore) DeleteTicker(ctx context.Context, symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return false, apperrors.Wrap(err, "deleting ticker")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "deleting ticker")
	}
	return n > 0, nil
}

// RecordAlert updates the ticker baseline and appends history in one
// transaction, so a crash cannot leave the dedup date without its
// matching history row.
func (s *SQLiteStore) RecordAlert(ctx context.Context, event models.MovementEvent, message, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, "recording alert")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE watchlist SET reference_price = ?, last_alert_date = ?
		WHERE symbol = ?`,
		event.NewPrice, date, event.Symbol); err != nil {
		return apperrors.Wrap(err, "updating ticker baseline")
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO alert_history (symbol, old_price, new_price, percent_change, direction, message, alert_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.Symbol, event.OldPrice, event.NewPrice, event.PercentChange, string(event.Direction), message, date); err != nil {
		return apperrors.Wrap(err, "inserting alert history")
	}

	return apperrors.Wrap(tx.Commit(), "recording alert")
}

// AlertStats returns aggregate alert counters.
func (s *SQLiteStore) AlertStats(ctx context.Context, today string) (AlertStats, error) {
	var stats AlertStats

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(CASE WHEN alert_date = ? THEN 1 END),
		       COUNT(DISTINCT symbol)
		FROM alert_history`, today)
	if err := row.Scan(&stats.TotalAlerts, &stats.AlertsToday, &stats.SymbolsAlerted); err != nil {
		return AlertStats{}, apperrors.Wrap(err, "reading alert stats")
	}
	return stats, nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
