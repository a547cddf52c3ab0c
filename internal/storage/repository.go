// Package storage is the SQLite side store: user accounts for
// authentication and the audit trail of expense mutations. The expense
// ledger itself lives in the spreadsheet row store, not here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type AuditEntry struct {
	ID         int64
	Event      string
	RecordID   string
	Owner      string
	OccurredAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new account. A duplicate username fails on the
// unique constraint.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, err)
	}
	return nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	return &u, nil
}

// AppendAudit records one expense mutation event.
func (r *SQLiteRepository) AppendAudit(ctx context.Context, e AuditEntry) error {
	occurredAt := e.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (event, record_id, owner, occurred_at) VALUES (?, ?, ?, ?)`,
		e.Event, e.RecordID, e.Owner, occurredAt)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListAuditByOwner returns the owner's most recent audit entries.
func (r *SQLiteRepository) ListAuditByOwner(ctx context.Context, owner string, limit int) ([]AuditEntry, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event, record_id, owner, occurred_at
		   FROM audit_log WHERE owner = ?
		  ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries for %s: %w", owner, err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Event, &e.RecordID, &e.Owner, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}
