// Package sqlite implements domain.Store on a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MrSnakeDoc/bookmarks/internal/domain"
	"github.com/MrSnakeDoc/bookmarks/internal/logger"
	"github.com/MrSnakeDoc/bookmarks/internal/utils"
)

// AUTOINCREMENT keeps deleted ids from being handed out again.
const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT    NOT NULL,
	url         TEXT    NOT NULL,
	description TEXT    NOT NULL,
	rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5)
);`

const columns = "id, title, url, description, rating"

// Store handles SQLite operations for bookmarks
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

// Open opens (or creates) the database at path and ensures the table exists.
func Open(path string, log logger.Logger) (*Store, error) {
	// _txlock=immediate avoids SQLITE_BUSY upgrades when several writers race.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		utils.MustClose(db, "sqlite", log)
		return nil, fmt.Errorf("failed to create bookmarks table: %w", err)
	}

	return &Store{db: db, logger: log}, nil
}

// SelectAll returns every bookmark ordered by id
func (s *Store) SelectAll(ctx context.Context) ([]domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM bookmarks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to select bookmarks: %w", err)
	}
	defer utils.MustClose(rows, "sqlite rows", s.logger)

	bookmarks := make([]domain.Bookmark, 0)
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &b.Description, &b.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}
	return bookmarks, nil
}

// SelectByID returns the bookmark with the given id, or nil if there is none
func (s *Store) SelectByID(ctx context.Context, id int64) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM bookmarks WHERE id = ?", id).
		Scan(&b.ID, &b.Title, &b.URL, &b.Description, &b.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select bookmark: %w", err)
	}
	return &b, nil
}

// Insert stores a bookmark and reads back the stored row
func (s *Store) Insert(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	var out domain.Bookmark
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO bookmarks (title, url, description, rating) VALUES (?, ?, ?, ?) RETURNING "+columns,
		b.Title, b.URL, b.Description, b.Rating,
	).Scan(&out.ID, &out.Title, &out.URL, &out.Description, &out.Rating)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to insert bookmark: %w", err)
	}
	return out, nil
}

// Update sets the columns present in p
func (s *Store) Update(ctx context.Context, id int64, p domain.BookmarkPatch) (int64, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *p.URL)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *p.Rating)
	}
	if len(sets) == 0 {
		return 0, nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE bookmarks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update bookmark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// Count returns the number of rows
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookmarks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return n, nil
}

// DeleteByID removes a bookmark; deleting an absent id affects 0 rows
func (s *Store) DeleteByID(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
