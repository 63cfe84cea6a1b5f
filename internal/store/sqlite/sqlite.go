package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/feedwire/feedwire/internal/model"
	"github.com/feedwire/feedwire/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrations is an ordered list of SQL migrations.
// Each migration runs exactly once, tracked by schema_version table.
var migrations = []string{
	// Migration 1: Initial schema
	`
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	posts TEXT NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	image_url TEXT,
	creator INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	FOREIGN KEY(creator) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_posts_creator ON posts(creator);
`,
	// Future migrations go here:
	// Migration 2: `ALTER TABLE ...`,
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	posts, err := json.Marshal(postsOrEmpty(user.Posts))
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO users (name, email, password_hash, posts, created_at)
VALUES (?, ?, ?, ?, ?)
`, user.Name, user.Email, user.PasswordHash, string(posts), user.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrDuplicateEmail
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, posts, created_at
FROM users
WHERE id = ?
`, id)
	return scanUser(row)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, posts, created_at
FROM users
WHERE email = ?
LIMIT 1
`, email)
	return scanUser(row)
}

func (s *Store) UpdateUserPosts(ctx context.Context, userID int64, posts []int64) error {
	encoded, err := json.Marshal(postsOrEmpty(posts))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE users SET posts = ? WHERE id = ?`, string(encoded), userID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO posts (title, content, image_url, creator, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`, post.Title, post.Content, nullIfEmpty(post.ImageURL), post.Creator, post.CreatedAt.Unix(), post.UpdatedAt.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetPost(ctx context.Context, id int64) (model.Post, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, content, image_url, creator, created_at, updated_at
FROM posts
WHERE id = ?
`, id)
	return scanPost(row)
}

func (s *Store) ListPosts(ctx context.Context, page, perPage int) ([]model.Post, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 2
	}
	offset := (page - 1) * perPage
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, content, image_url, creator, created_at, updated_at
FROM posts
ORDER BY id ASC
LIMIT ? OFFSET ?
`, perPage, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *Store) UpdatePost(ctx context.Context, post *model.Post) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE posts SET title = ?, content = ?, image_url = ?, updated_at = ?
WHERE id = ?
`, post.Title, post.Content, nullIfEmpty(post.ImageURL), post.UpdatedAt.Unix(), post.ID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeletePost reads and removes the row in a single transaction so the
// returned snapshot always matches what was deleted.
func (s *Store) DeletePost(ctx context.Context, id int64) (model.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Post{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, `
SELECT id, title, content, image_url, creator, created_at, updated_at
FROM posts
WHERE id = ?
`, id)
	post, err := scanPost(row)
	if err != nil {
		return model.Post{}, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return model.Post{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.Post{}, err
	}
	return post, nil
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (model.User, error) {
	var u model.User
	var postsRaw string
	var created int64
	if err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &postsRaw, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, err
	}
	if postsRaw != "" {
		_ = json.Unmarshal([]byte(postsRaw), &u.Posts)
	}
	if u.Posts == nil {
		u.Posts = []int64{}
	}
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

func scanPost(scanner interface{ Scan(dest ...any) error }) (model.Post, error) {
	var p model.Post
	var imageURL sql.NullString
	var created, updated int64
	if err := scanner.Scan(&p.ID, &p.Title, &p.Content, &imageURL, &p.Creator, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, store.ErrNotFound
		}
		return model.Post{}, err
	}
	if imageURL.Valid {
		p.ImageURL = imageURL.String
	}
	p.CreatedAt = time.Unix(created, 0)
	p.UpdatedAt = time.Unix(updated, 0)
	return p, nil
}

func postsOrEmpty(posts []int64) []int64 {
	if posts == nil {
		return []int64{}
	}
	return posts
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
