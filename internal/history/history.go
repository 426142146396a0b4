// Package history persists per-file import outcomes so past runs can be
// inspected after the fact.
package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vmunix/tvingest/internal/migrations"
)

// Entry is one recorded import attempt.
type Entry struct {
	ID         int64
	TaskID     int64
	SourcePath string
	DestPath   string
	Show       string
	Season     int
	Episode    int
	Title      string
	Status     string
	Error      string
	CreatedAt  time.Time
}

// Filter selects history entries for listing.
type Filter struct {
	Show   string
	Status string
	Limit  int
}

// Store persists import history records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the history database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a new history entry, filling its ID and CreatedAt.
func (s *Store) Add(e *Entry) error {
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO imports (task_id, source_path, dest_path, show, season, episode, title, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TaskID, e.SourcePath, e.DestPath, e.Show, e.Season, e.Episode, e.Title, e.Status, e.Error, now,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}

// List returns history entries matching the filter, most recent first.
func (s *Store) List(f Filter) ([]*Entry, error) {
	var conditions []string
	var args []any
	if f.Show != "" {
		conditions = append(conditions, "show = ?")
		args = append(args, f.Show)
	}
	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}

	query := `SELECT id, task_id, source_path, dest_path, show, season, episode, title, status, error, created_at
		FROM imports`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.SourcePath, &e.DestPath, &e.Show,
			&e.Season, &e.Episode, &e.Title, &e.Status, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
