// internal/journal/journal.go
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"orderrelay/internal/logger"
)

// The journal is a local, append-only record of orders this relay accepted
// and forwarded. It is strictly write-behind: no relay response depends on
// it, and a disabled or failing journal never fails an order. The backend
// remains the system of record.

const (
	maxOpenConns = 4
	maxIdleConns = 2
	queryTimeout = 5 * time.Second

	// DefaultRetention is how long journal rows are kept before pruning.
	DefaultRetention = 90 * 24 * time.Hour
)

const schema = `
CREATE TABLE IF NOT EXISTS order_journal (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	lines_json       TEXT NOT NULL,
	note             TEXT NOT NULL DEFAULT '',
	total            REAL NOT NULL,
	backend_order_id TEXT NOT NULL,
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_journal_created_at ON order_journal(created_at);
`

// Entry is one journaled order.
type Entry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	LinesJSON      string    `json:"lines"`
	Note           string    `json:"note"`
	Total          float64   `json:"total"`
	BackendOrderID string    `json:"orderId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Journal wraps the sqlite store. A nil *Journal is a valid, disabled
// journal: every method is a no-op on it.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal db %s: %w", path, err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	logger.LogInfo("Order journal opened at %s", path)
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends one accepted order. Failures are logged, never returned to
// the order path.
func (j *Journal) Record(ctx context.Context, userID, linesJSON, note string, total float64, backendOrderID string) {
	if j == nil || j.db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO order_journal (id, user_id, lines_json, note, total, backend_order_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, linesJSON, note, total, backendOrderID,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		logger.LogError("journal write failed for order %s: %v", backendOrderID, err)
	}
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil || j.db == nil {
		return []Entry{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, user_id, lines_json, note, total, backend_order_id, created_at
		 FROM order_journal ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.LinesJSON, &e.Note, &e.Total, &e.BackendOrderID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the retention window and reports how
// many rows went away.
func (j *Journal) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if j == nil || j.db == nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339)
	res, err := j.db.ExecContext(ctx, `DELETE FROM order_journal WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning journal: %w", err)
	}
	return res.RowsAffected()
}

// PruneLoop prunes on a ticker until ctx is cancelled. Run it from a
// goroutine at startup.
func (j *Journal) PruneLoop(ctx context.Context, interval, retention time.Duration) {
	if j == nil || j.db == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := j.Prune(ctx, retention)
			if err != nil {
				logger.LogError("journal prune failed: %v", err)
			} else if removed > 0 {
				logger.LogInfo("journal prune removed %d entries", removed)
			}
		}
	}
}
