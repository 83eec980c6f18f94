package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"drawdown-service/internal/model"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps series in a SQLite database. With the default ":memory:"
// DSN the data is as transient as MemoryStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// An in-memory database exists per connection, so all access shares one.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("dsn", dsn).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			name       TEXT PRIMARY KEY,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS drawdowns (
			category TEXT    NOT NULL,
			seq      INTEGER NOT NULL,
			date     TEXT    NOT NULL,
			drawdown REAL    NOT NULL,
			PRIMARY KEY (category, seq)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, category string) (model.DrawdownSeries, bool, error) {
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM categories WHERE name = ?`, category).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup category %s: %w", category, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT date, drawdown FROM drawdowns WHERE category = ? ORDER BY seq ASC`, category)
	if err != nil {
		return nil, false, fmt.Errorf("query drawdowns %s: %w", category, err)
	}
	defer rows.Close()

	out := model.DrawdownSeries{}
	for rows.Next() {
		var (
			date string
			dd   float64
		)
		if err := rows.Scan(&date, &dd); err != nil {
			return nil, false, fmt.Errorf("scan drawdown: %w", err)
		}
		t, err := time.Parse(model.DateLayout, date)
		if err != nil {
			return nil, false, fmt.Errorf("stored date %q: %w", date, err)
		}
		out = append(out, model.DrawdownPoint{Date: t, Drawdown: dd})
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Put replaces the category's rows in a single transaction.
// SQLite has no NaN, so series must already be finite.
func (s *SQLiteStore) Put(ctx context.Context, category string, series model.DrawdownSeries) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM drawdowns WHERE category = ?`, category); err != nil {
		return fmt.Errorf("clear %s: %w", category, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO drawdowns (category, seq, date, drawdown) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, pt := range series {
		if _, err := stmt.ExecContext(ctx, category, i, pt.Date.Format(model.DateLayout), pt.Drawdown); err != nil {
			return fmt.Errorf("insert %s[%d]: %w", category, i, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO categories (name, updated_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`,
		category, time.Now().Unix()); err != nil {
		return fmt.Errorf("touch category %s: %w", category, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
