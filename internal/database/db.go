package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Tracer88/Momentum/internal/signal"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trading_signals (
			signal_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			signal_type TEXT NOT NULL,
			signal_strength TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			overall_score DOUBLE PRECISION NOT NULL,
			ross_score DOUBLE PRECISION NOT NULL,
			ross_grade TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			recommendation TEXT NOT NULL,
			entry_price DOUBLE PRECISION,
			stop_loss DOUBLE PRECISION,
			take_profit DOUBLE PRECISION,
			time_horizon TEXT NOT NULL,
			urgency TEXT NOT NULL,
			expiry_time TIMESTAMP
		)
	`)

	return err
}

// SaveSignal persists a generated trading signal
func (db *DB) SaveSignal(sig signal.TradingSignal) error {
	_, err := db.Exec(`
		INSERT INTO trading_signals (
			signal_id, symbol, created_at, signal_type, signal_strength,
			confidence, overall_score, ross_score, ross_grade, risk_level,
			recommendation, entry_price, stop_loss, take_profit,
			time_horizon, urgency, expiry_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (signal_id) DO NOTHING
	`,
		sig.SignalID, sig.Symbol, sig.Timestamp, sig.SignalType, sig.SignalStrength,
		sig.Confidence, sig.Composite.Overall, sig.Ross.Overall, sig.Ross.Grade, sig.Composite.RiskLevel,
		sig.Composite.Recommendation, nullableFloat(sig.EntryPrice), nullableFloat(sig.StopLoss), nullableFloat(sig.TakeProfit),
		sig.TimeHorizon, sig.Urgency, sig.ExpiryTime,
	)

	return err
}

// SignalRecord is a persisted signal row
type SignalRecord struct {
	SignalID       string
	Symbol         string
	CreatedAt      time.Time
	SignalType     string
	SignalStrength string
	Confidence     float64
	OverallScore   float64
	RossScore      float64
	RossGrade      string
	RiskLevel      string
	Recommendation string
	EntryPrice     float64
	StopLoss       float64
	TakeProfit     float64
	TimeHorizon    string
	Urgency        string
}

// RecentSignals returns the most recent persisted signals, newest first
func (db *DB) RecentSignals(limit int) ([]SignalRecord, error) {
	rows, err := db.Query(`
		SELECT
			signal_id, symbol, created_at, signal_type, signal_strength,
			confidence, overall_score, ross_score, ross_grade, risk_level,
			recommendation, entry_price, stop_loss, take_profit,
			time_horizon, urgency
		FROM trading_signals
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SignalRecord
	for rows.Next() {
		var r SignalRecord
		var entry, stop, target sql.NullFloat64

		if err := rows.Scan(
			&r.SignalID, &r.Symbol, &r.CreatedAt, &r.SignalType, &r.SignalStrength,
			&r.Confidence, &r.OverallScore, &r.RossScore, &r.RossGrade, &r.RiskLevel,
			&r.Recommendation, &entry, &stop, &target,
			&r.TimeHorizon, &r.Urgency,
		); err != nil {
			return nil, err
		}

		r.EntryPrice = entry.Float64
		r.StopLoss = stop.Float64
		r.TakeProfit = target.Float64
		records = append(records, r)
	}

	return records, rows.Err()
}

// RecentSignalsForSymbol returns the most recent persisted signals for one symbol
func (db *DB) RecentSignalsForSymbol(symbol string, limit int) ([]SignalRecord, error) {
	rows, err := db.Query(`
		SELECT
			signal_id, symbol, created_at, signal_type, signal_strength,
			confidence, overall_score, ross_score, ross_grade, risk_level,
			recommendation, entry_price, stop_loss, take_profit,
			time_horizon, urgency
		FROM trading_signals
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SignalRecord
	for rows.Next() {
		var r SignalRecord
		var entry, stop, target sql.NullFloat64

		if err := rows.Scan(
			&r.SignalID, &r.Symbol, &r.CreatedAt, &r.SignalType, &r.SignalStrength,
			&r.Confidence, &r.OverallScore, &r.RossScore, &r.RossGrade, &r.RiskLevel,
			&r.Recommendation, &entry, &stop, &target,
			&r.TimeHorizon, &r.Urgency,
		); err != nil {
			return nil, err
		}

		r.EntryPrice = entry.Float64
		r.StopLoss = stop.Float64
		r.TakeProfit = target.Float64
		records = append(records, r)
	}

	return records, rows.Err()
}

// nullableFloat maps a zero value to NULL so missing trade levels stay distinguishable
func nullableFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}
