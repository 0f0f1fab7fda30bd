package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS outcomes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	command TEXT NOT NULL,
	topic TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL,
	entry_key TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_recorded ON outcomes(recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
`

// SQLiteJournal keeps an append-only record of run outcomes in SQLite.
type SQLiteJournal struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.Journal = (*SQLiteJournal)(nil)

// OpenJournal opens (creating when needed) the journal database at path.
// Use ":memory:" for a throwaway journal.
func OpenJournal(path string) (*SQLiteJournal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &SQLiteJournal{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}, nil
}

// Close releases the database handle.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// Record appends one entry.
func (j *SQLiteJournal) Record(ctx context.Context, e domain.JournalEntry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	_, err := j.sb.Insert("outcomes").
		Columns("run_id", "command", "topic", "kind", "entry_key", "reason", "recorded_at").
		Values(e.RunID, e.Command, e.Topic, e.Kind, e.Key, e.Reason, e.RecordedAt.UnixNano()).
		RunWith(j.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query, args, err := j.sb.
		Select("id", "run_id", "command", "topic", "kind", "entry_key", "reason", "recorded_at").
		From("outcomes").
		OrderBy("recorded_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			e  domain.JournalEntry
			ns int64
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Command, &e.Topic, &e.Kind, &e.Key, &e.Reason, &ns); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		e.RecordedAt = time.Unix(0, ns)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return entries, nil
}
