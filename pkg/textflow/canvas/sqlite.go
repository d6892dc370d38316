package canvas

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/randalmurphal/textflow/pkg/textflow"
)

// SQLite stores pages of shapes in a SQLite database. It is suitable for
// single-process use.
type SQLite struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLite opens or creates a shape database.
// The path should be a file path (e.g., "./canvas.db") or ":memory:" for testing.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS shapes (
			page TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			width REAL NOT NULL DEFAULT 0,
			height REAL NOT NULL DEFAULT 0,
			font_size REAL NOT NULL DEFAULT 0,
			color_hex TEXT NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			PRIMARY KEY (page, seq)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Page implements Surface.
func (s *SQLite) Page(name string) textflow.Canvas {
	return pageCanvas{page: name, add: s.add}
}

func (s *SQLite) add(ctx context.Context, sh Shape) error {
	if sh.Page == "" {
		return ErrEmptyPage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shapes (page, seq, kind, x, y, width, height, font_size, color_hex, text, created_at)
		VALUES (
			?,
			COALESCE((SELECT MAX(seq) FROM shapes WHERE page = ?), 0) + 1,
			?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`, sh.Page, sh.Page, string(sh.Kind), sh.X, sh.Y, sh.Width, sh.Height, sh.FontSize,
		sh.ColorHex, sh.Text, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert %s: %w", sh.Kind, err)
	}
	return nil
}

// Shapes implements Surface.
func (s *SQLite) Shapes(ctx context.Context, page string) ([]Shape, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, x, y, width, height, font_size, color_hex, text, created_at
		FROM shapes
		WHERE page = ?
		ORDER BY seq
	`, page)
	if err != nil {
		return nil, fmt.Errorf("list shapes: %w", err)
	}
	defer rows.Close()

	shapes := []Shape{}
	for rows.Next() {
		sh := Shape{Page: page}
		var kind, created string
		if err := rows.Scan(&sh.Seq, &kind, &sh.X, &sh.Y, &sh.Width, &sh.Height,
			&sh.FontSize, &sh.ColorHex, &sh.Text, &created); err != nil {
			return nil, fmt.Errorf("scan shape: %w", err)
		}
		sh.Kind = textflow.ShapeKind(kind)
		sh.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		shapes = append(shapes, sh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shapes: %w", err)
	}
	return shapes, nil
}

// Clear implements Surface.
func (s *SQLite) Clear(ctx context.Context, page string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM shapes WHERE page = ?`, page); err != nil {
		return fmt.Errorf("clear page: %w", err)
	}
	return nil
}

// Close implements Surface.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

var _ Surface = (*SQLite)(nil)
