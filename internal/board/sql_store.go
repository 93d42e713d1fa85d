package board

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width RFC-3339 UTC so that `order by updated_at desc`
// on the text column sorts chronologically in both engines.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore persists tasks in a relational table. The driver is picked from
// the DSN: postgres URLs go through pgx, everything else through sqlite.
// Schema is ensured lazily, at most once per process.
type SQLStore struct {
	db *sql.DB

	ensureOnce sync.Once
	ensureErr  error
}

func NewSQLStore(dsn string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrBackendNotConfigured
	}
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Single-writer workload, keep the pool tiny.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(20 * time.Second)

	if driver == "sqlite" {
		if _, err := db.Exec(`
			PRAGMA journal_mode=WAL;
			PRAGMA synchronous=NORMAL;
			PRAGMA foreign_keys=ON;
		`); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Mode() string { return "db" }

// ensureSchema creates the table and its indexes if absent. Statements run
// one at a time because pgx's extended protocol rejects batched text.
func (s *SQLStore) ensureSchema(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		stmts := []string{
			`create table if not exists tasks (
				id text primary key,
				title text not null,
				description text,
				assignee text not null,
				status text not null,
				priority text not null,
				created_at text not null,
				updated_at text not null
			)`,
			`create index if not exists tasks_status_idx on tasks(status)`,
			`create index if not exists tasks_updated_at_idx on tasks(updated_at desc)`,
		}
		for _, q := range stmts {
			if _, err := s.db.ExecContext(ctx, q); err != nil {
				s.ensureErr = err
				return
			}
		}
	})
	return s.ensureErr
}

// ReadAll implements Store.ReadAll, ordered by updated_at descending.
func (s *SQLStore) ReadAll(ctx context.Context) ([]Task, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, title, description, assignee, status, priority, created_at, updated_at
		from tasks
		order by updated_at desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Upsert implements Store.Upsert as a read-then-write with no transaction;
// concurrent upserts to the same id race and the last write wins.
func (s *SQLStore) Upsert(ctx context.Context, patch TaskPatch) (Task, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Task{}, err
	}
	now := time.Now().UTC()

	row := s.db.QueryRowContext(ctx, `
		select id, title, description, assignee, status, priority, created_at, updated_at
		from tasks
		where id = $1
	`, patch.ID)
	cur, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		t := Merge(nil, patch, now)
		if err := t.Validate(); err != nil {
			return Task{}, err
		}
		_, err := s.db.ExecContext(ctx, `
			insert into tasks (id, title, description, assignee, status, priority, created_at, updated_at)
			values ($1, $2, $3, $4, $5, $6, $7, $8)
		`, t.ID, t.Title, nullIfEmpty(t.Description), string(t.Assignee), string(t.Status), string(t.Priority),
			t.CreatedAt.Format(timeLayout), t.UpdatedAt.Format(timeLayout))
		if err != nil {
			return Task{}, err
		}
		return t, nil
	}
	if err != nil {
		return Task{}, err
	}

	next := Merge(&cur, patch, now)
	if err := next.Validate(); err != nil {
		return Task{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		update tasks
		set title = $1, description = $2, assignee = $3, status = $4, priority = $5, updated_at = $6
		where id = $7
	`, next.Title, nullIfEmpty(next.Description), string(next.Assignee), string(next.Status), string(next.Priority),
		next.UpdatedAt.Format(timeLayout), next.ID)
	if err != nil {
		return Task{}, err
	}
	return next, nil
}

// Delete implements Store.Delete; absent ids delete zero rows and succeed.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `delete from tasks where id = $1`, id)
	return err
}

func scanTask(scan func(dest ...any) error) (Task, error) {
	var t Task
	var description sql.NullString
	var created, updated string
	if err := scan(&t.ID, &t.Title, &description, (*string)(&t.Assignee), (*string)(&t.Status), (*string)(&t.Priority), &created, &updated); err != nil {
		return Task{}, err
	}
	t.Description = description.String
	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Task{}, err
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Task{}, err
	}
	return t, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SQLiteFileDSN builds a file-backed sqlite DSN, creating the containing
// directory if needed.
func SQLiteFileDSN(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file:" + filepath.ToSlash(abs) + "?_pragma=busy_timeout(5000)", nil
}
