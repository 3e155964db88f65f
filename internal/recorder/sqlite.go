package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read while
	// the bot writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			asset           TEXT,
			price           REAL,
			reference_price REAL,
			decision        TEXT,
			conviction      INTEGER,
			rsi             REAL,
			trend           TEXT,
			volatility      TEXT,
			notified        INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticks_ts ON ticks(timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			asset       TEXT,
			kind        TEXT,
			price       REAL,
			trigger_pct REAL,
			amount      REAL,
			conviction  INTEGER,
			reason      TEXT,
			forced      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,

		`CREATE TABLE IF NOT EXISTS stop_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			asset       TEXT,
			position_id TEXT,
			price       REAL,
			peak_price  REAL,
			stop_price  REAL,
			profit_pct  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stops_ts ON stop_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			asset         TEXT,
			side          TEXT,
			price         REAL,
			amount        REAL,
			cash_after    REAL,
			balance_after REAL,
			cost_basis    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTick(evt *TickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notified := 0
	if evt.Notified {
		notified = 1
	}
	_, err := r.db.Exec(`INSERT INTO ticks
		(timestamp, asset, price, reference_price, decision, conviction, rsi, trend, volatility, notified)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Asset, evt.Price, evt.ReferencePrice,
		string(evt.Decision), evt.Conviction, evt.RSI, evt.Trend, evt.Volatility, notified,
	)
	return err
}

func (r *SQLiteRecorder) RecordSignal(evt *SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	forced := 0
	if evt.Forced {
		forced = 1
	}
	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, asset, kind, price, trigger_pct, amount, conviction, reason, forced)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Asset, string(evt.Kind), evt.Price,
		evt.TriggerPct, evt.Amount, evt.Conviction, evt.Reason, forced,
	)
	return err
}

func (r *SQLiteRecorder) RecordStopEvent(evt *StopEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO stop_events
		(timestamp, asset, position_id, price, peak_price, stop_price, profit_pct)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Asset, evt.PositionID, evt.Price,
		evt.PeakPrice, evt.StopPrice, evt.ProfitPct,
	)
	return err
}

func (r *SQLiteRecorder) RecordTrade(evt *TradeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(timestamp, asset, side, price, amount, cash_after, balance_after, cost_basis)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Asset, string(evt.Side), evt.Price,
		evt.Amount, evt.CashAfter, evt.BalanceAfter, evt.CostBasis,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
