package blogcore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/feather/blogcore/auth"
	"github.com/feather/blogcore/query"
	"github.com/feather/blogcore/views"
)

// Store wraps a SQLite database holding posts, readers and view counts.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// busy_timeout is per connection, so it goes in the DSN to reach every
	// pooled connection.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_login TEXT NOT NULL UNIQUE,
    user_pass TEXT NOT NULL,
    user_nickname TEXT NOT NULL,
    user_email TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_author INTEGER NOT NULL REFERENCES users(id),
    post_title TEXT NOT NULL,
    post_content TEXT NOT NULL,
    content_abstract TEXT NOT NULL DEFAULT '',
    post_date TEXT NOT NULL,
    post_modified TEXT NOT NULL,
    category INTEGER NOT NULL DEFAULT 0,
    comment_count INTEGER NOT NULL DEFAULT 0,
    post_status TEXT NOT NULL DEFAULT 'draft'
);
CREATE INDEX IF NOT EXISTS idx_posts_status_date ON posts(post_status, post_date);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
CREATE TABLE IF NOT EXISTS post_views (
    post_id INTEGER NOT NULL REFERENCES posts(id),
    period TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (post_id, period)
);
CREATE TABLE IF NOT EXISTS registration_answers (
    id INTEGER PRIMARY KEY,
    answer TEXT NOT NULL
);
`)
	return err
}

// CountPosts runs a count criteria.
func (s *Store) CountPosts(ctx context.Context, c query.Criteria) (int64, error) {
	stmt, args := c.SQL()
	var n int64
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s query: %w", c.Kind, err)
	}
	return n, nil
}

// ListPosts runs a listing or detail criteria.
func (s *Store) ListPosts(ctx context.Context, c query.Criteria) ([]views.PostRow, error) {
	stmt, args := c.SQL()
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", c.Kind, err)
	}
	defer rows.Close()

	var out []views.PostRow
	for rows.Next() {
		var r views.PostRow
		p := &r.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.Abstract,
			&p.Date, &p.Modified, &p.CategoryID, &p.CommentCount, &p.Status,
			&r.AuthorLogin, &r.Views); err != nil {
			return nil, fmt.Errorf("%s scan: %w", c.Kind, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", c.Kind, err)
	}
	return out, nil
}

// SavePost upserts a post and makes sure it has a total view counter.
// A zero ID inserts a new post; the stored ID is returned.
func (s *Store) SavePost(ctx context.Context, p views.Post) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id := p.ID
	if id == 0 {
		res, err := tx.ExecContext(ctx, `INSERT INTO posts (post_author, post_title, post_content, content_abstract, post_date, post_modified, category, comment_count, post_status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.AuthorID, p.Title, p.Content, p.Abstract, p.Date, p.Modified, p.CategoryID, p.CommentCount, p.Status)
		if err != nil {
			return 0, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, err
		}
	} else {
		if _, err := tx.ExecContext(ctx, `INSERT INTO posts (id, post_author, post_title, post_content, content_abstract, post_date, post_modified, category, comment_count, post_status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET post_author = excluded.post_author, post_title = excluded.post_title,
			post_content = excluded.post_content, content_abstract = excluded.content_abstract, post_date = excluded.post_date,
			post_modified = excluded.post_modified, category = excluded.category, comment_count = excluded.comment_count,
			post_status = excluded.post_status`,
			id, p.AuthorID, p.Title, p.Content, p.Abstract, p.Date, p.Modified, p.CategoryID, p.CommentCount, p.Status); err != nil {
			return 0, err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO post_views (post_id, period, count) VALUES (?, ?, 0)`, id, query.PeriodTotal); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// SetViewCount stores the view count of a post for period.
func (s *Store) SetViewCount(ctx context.Context, postID int64, period string, count int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO post_views (post_id, period, count) VALUES (?, ?, ?)
		ON CONFLICT(post_id, period) DO UPDATE SET count = excluded.count`, postID, period, count)
	return err
}

// FindUserByLogin implements auth.UserStore.
func (s *Store) FindUserByLogin(ctx context.Context, login string) (auth.User, error) {
	var u auth.User
	err := s.db.QueryRowContext(ctx, `SELECT id, user_login, user_pass, user_nickname, user_email FROM users WHERE user_login = ?`, login).
		Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Nickname, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, err
	}
	return u, nil
}

// UserExists implements auth.UserStore.
func (s *Store) UserExists(ctx context.Context, login, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(1) FROM users WHERE user_login = ? OR user_email = ?`, login, email).Scan(&n)
	return n > 0, err
}

// CreateUser implements auth.UserStore.
func (s *Store) CreateUser(ctx context.Context, u auth.User) (auth.User, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (user_login, user_pass, user_nickname, user_email) VALUES (?, ?, ?, ?)`,
		u.Login, u.PasswordHash, u.Nickname, u.Email)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return auth.User{}, auth.ErrConflict
		}
		return auth.User{}, err
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return auth.User{}, err
	}
	return u, nil
}

// UpdatePasswordHash implements auth.UserStore.
func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET user_pass = ? WHERE id = ?`, hash, id)
	return err
}

// RecoveryAnswer implements auth.UserStore. It returns "" when no answer
// is configured.
func (s *Store) RecoveryAnswer(ctx context.Context) (string, error) {
	var answer string
	err := s.db.QueryRowContext(ctx, `SELECT answer FROM registration_answers WHERE id = 1`).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return answer, err
}

// SetRecoveryAnswer stores the verification answer required to register.
func (s *Store) SetRecoveryAnswer(ctx context.Context, answer string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO registration_answers (id, answer) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET answer = excluded.answer`, answer)
	return err
}
