package runs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/utils"
	_ "modernc.org/sqlite"
)

const indexFileName = "runs.sqlite"

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Summary is one row of the run index.
type Summary struct {
	ID        string
	Model     service.ModelChoice
	Source    string
	Rows      int
	CreatedAt time.Time
}

// Store keeps runs under one directory, one subdirectory per run, with a
// SQLite index for listing and lookup.
type Store struct {
	db  *sql.DB
	dir string
}

// Open opens (creating if needed) the store rooted at dir.
func Open(dir string) (*Store, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure runs dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, indexFileName))
	if err != nil {
		return nil, fmt.Errorf("open run index: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, dir: dir}, nil
}

func migrate(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			model TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			row_count INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("run index migration failed: %w", err)
		}
	}
	return nil
}

// Close releases the index.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

// Save writes run.json and updates the index entry.
func (s *Store) Save(r *Run) error {
	if r.ID == "" {
		return errors.New("run id not set")
	}
	if err := r.save(filepath.Join(s.dir, r.ID)); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO runs (id, model, source, row_count, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET model = excluded.model, source = excluded.source, row_count = excluded.row_count`,
		r.ID, string(r.Model), r.Source, len(r.Rows), r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("index run: %w", err)
	}
	return nil
}

// List returns the indexed runs, newest first.
func (s *Store) List() ([]Summary, error) {
	rows, err := s.db.Query(`SELECT id, model, source, row_count, created_at FROM runs ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum   Summary
			model string
			nanos int64
		)
		if err := rows.Scan(&sum.ID, &model, &sum.Source, &sum.Rows, &nanos); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		sum.Model = service.ModelChoice(model)
		sum.CreatedAt = time.Unix(0, nanos).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// Resolve finds the ID of a run by full ID or unique prefix. An empty ref
// resolves to the latest run.
func (s *Store) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "latest" {
		var id string
		err := s.db.QueryRow(`SELECT id FROM runs ORDER BY created_at DESC, id ASC LIMIT 1`).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: no runs recorded yet", ErrNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("lookup latest run: %w", err)
		}
		return id, nil
	}
	rows, err := s.db.Query(`SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(ref), ref)
	if err != nil {
		return "", fmt.Errorf("lookup run: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan run: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("lookup run: %w", err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("run prefix %q is ambiguous", ref)
}

// Load resolves ref and reads the run.
func (s *Store) Load(ref string) (*Run, error) {
	id, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return LoadRun(filepath.Join(s.dir, id))
}

// Remove deletes a run directory and its index entry.
func (s *Store) Remove(ref string) (string, error) {
	id, err := s.Resolve(ref)
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(filepath.Join(s.dir, id)); err != nil {
		return "", fmt.Errorf("remove run: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return "", fmt.Errorf("unindex run: %w", err)
	}
	return id, nil
}
