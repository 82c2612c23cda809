package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tradewire/fixgate/internal/fix"
)

// Journal is an append-only SQLite record of parsed execution reports,
// keyed by ExecID. It stores business records only; session sequence
// numbers are never persisted.
type Journal struct {
	db *sql.DB
}

// Entry is a journaled execution report row.
type Entry struct {
	ExecID             string
	OrderID            string
	ClOrdID            string
	ExecType           string
	OrdStatus          string
	Symbol             string
	Side               string
	OrderQty           float64
	CumQty             float64
	AvgPx              float64
	LeavesQty          float64
	RecordedUnixMillis int64
}

// Open creates or opens the journal at path, creating the parent directory
// and migrating the schema.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return j, nil
}

func (j *Journal) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS executions (
			exec_id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			cl_ord_id TEXT NOT NULL,
			exec_type TEXT NOT NULL,
			ord_status TEXT NOT NULL,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			order_qty REAL NOT NULL,
			cum_qty REAL NOT NULL,
			avg_px REAL NOT NULL,
			leaves_qty REAL NOT NULL,
			recorded_unix_millis INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_cl_ord_id
			ON executions(cl_ord_id)`,
	}

	for _, query := range queries {
		if _, err := j.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// Record appends an execution report. A duplicate ExecID is skipped and
// reported through the return value rather than an error.
func (j *Journal) Record(ctx context.Context, r *fix.ExecutionReport) (duplicate bool, err error) {
	now := time.Now().UnixMilli()

	res, err := j.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO executions
			(exec_id, order_id, cl_ord_id, exec_type, ord_status, symbol, side,
			 order_qty, cum_qty, avg_px, leaves_qty, recorded_unix_millis)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ExecID, r.OrderID, r.ClOrdID, r.ExecType.String(), r.OrdStatus.String(),
		r.Symbol, r.Side.String(), r.OrderQty, r.CumQty, r.AvgPx, r.LeavesQty, now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert execution: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return inserted == 0, nil
}

// ListByOrder returns the journaled executions for a correlation id, oldest
// first.
func (j *Journal) ListByOrder(ctx context.Context, clOrdID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT exec_id, order_id, cl_ord_id, exec_type, ord_status, symbol, side,
		        order_qty, cum_qty, avg_px, leaves_qty, recorded_unix_millis
		 FROM executions
		 WHERE cl_ord_id = ?
		 ORDER BY recorded_unix_millis ASC`,
		clOrdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ExecID, &e.OrderID, &e.ClOrdID, &e.ExecType, &e.OrdStatus,
			&e.Symbol, &e.Side, &e.OrderQty, &e.CumQty, &e.AvgPx, &e.LeavesQty,
			&e.RecordedUnixMillis,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
