/*
sqlite.go - Durable persistence for the PTO engine

PURPOSE:
  Implements pto.RequestStore, pto.UserStore, and pto.SettingsStore over a
  single SQLite database file. The engine treats every call as atomic; the
  mutex here serializes writers so that holds.

SCHEMA:
  users     - employee directory keyed by id
  requests  - the ledger; a monotonic seq column preserves the
              newest-created-first visible order without trusting
              timestamps
  settings  - small key/value table for digest recipients and the last
              digest timestamp

SEE ALSO:
  - pto/ledger.go: the interfaces this satisfies
  - pto/store: the in-memory twin used by tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/flcc/pto-engine/pto"
)

const (
	settingRecipients = "digest_recipients"
	settingLastDigest = "last_digest_sent"
)

const dateFormat = "2006-01-02"

// Store is the SQLite-backed persistence layer.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if necessary) the database at dbPath and runs the
// schema migration. Use ":memory:" for an ephemeral database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		email     TEXT NOT NULL,
		role      TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		job_title TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS requests (
		seq          INTEGER PRIMARY KEY AUTOINCREMENT,
		id           TEXT NOT NULL UNIQUE,
		user_id      TEXT NOT NULL,
		user_name    TEXT NOT NULL,
		start_date   TEXT NOT NULL,
		end_date     TEXT NOT NULL,
		type         TEXT NOT NULL,
		hours        TEXT NOT NULL,
		status       TEXT NOT NULL,
		reason       TEXT,
		manager_note TEXT,
		is_favor     BOOLEAN NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_requests_user_id ON requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status  ON requests(status);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REQUEST STORE
// =============================================================================

// InsertRequest stores a new request. The autoincrement seq makes the
// newest row sort first in ListRequests.
func (s *Store) InsertRequest(ctx context.Context, req pto.PTORequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests
			(id, user_id, user_name, start_date, end_date, type, hours,
			 status, reason, manager_note, is_favor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.UserID, req.UserName,
		req.StartDate.Format(dateFormat), req.EndDate.Format(dateFormat),
		string(req.Type), req.Hours.String(), string(req.Status),
		nullString(req.Reason), nullString(req.ManagerNote),
		req.IsFavor, req.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// UpdateRequest rewrites the mutable columns of a stored request. Dates,
// hours, and ownership are write-once and deliberately not updated here.
func (s *Store) UpdateRequest(ctx context.Context, req pto.PTORequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE requests
		SET status = ?, manager_note = ?, is_favor = ?
		WHERE id = ?`,
		string(req.Status), nullString(req.ManagerNote), req.IsFavor, req.ID,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if n == 0 {
		return &pto.NotFoundError{ID: req.ID}
	}
	return nil
}

// GetRequest returns the request with the given id, or nil if absent.
func (s *Store) GetRequest(ctx context.Context, id string) (*pto.PTORequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reqs, err := s.queryRequests(ctx, selectRequests+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

// ListRequests returns every request, newest-created-first.
func (s *Store) ListRequests(ctx context.Context) ([]pto.PTORequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx, selectRequests+" ORDER BY seq DESC")
}

const selectRequests = `
	SELECT id, user_id, user_name, start_date, end_date, type, hours,
	       status, reason, manager_note, is_favor, created_at
	FROM requests`

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]pto.PTORequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var out []pto.PTORequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(rows *sql.Rows) (pto.PTORequest, error) {
	var (
		req                 pto.PTORequest
		startStr, endStr    string
		typeStr, statusStr  string
		hoursStr, createdAt string
		reason, note        sql.NullString
	)
	err := rows.Scan(&req.ID, &req.UserID, &req.UserName, &startStr, &endStr,
		&typeStr, &hoursStr, &statusStr, &reason, &note, &req.IsFavor, &createdAt)
	if err != nil {
		return pto.PTORequest{}, fmt.Errorf("scan request: %w", err)
	}

	req.StartDate, _ = time.ParseInLocation(dateFormat, startStr, time.UTC)
	req.EndDate, _ = time.ParseInLocation(dateFormat, endStr, time.UTC)
	req.Type = pto.RequestType(typeStr)
	req.Status = pto.RequestStatus(statusStr)
	req.Hours = mustDecimal(hoursStr)
	req.Reason = reason.String
	req.ManagerNote = note.String
	req.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return req, nil
}

// =============================================================================
// USER STORE
// =============================================================================

// SaveUser inserts or replaces a user record.
func (s *Store) SaveUser(ctx context.Context, u pto.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, hire_date, job_title)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			hire_date = excluded.hire_date,
			job_title = excluded.job_title`,
		u.ID, u.Name, u.Email, string(u.Role),
		u.HireDate.Format(dateFormat), u.JobTitle,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given id, or nil if absent.
func (s *Store) GetUser(ctx context.Context, id string) (*pto.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, hire_date, job_title
		FROM users WHERE id = ?`, id)

	var (
		u        pto.User
		roleStr  string
		hireStr  string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &roleStr, &hireStr, &u.JobTitle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Role = pto.Role(roleStr)
	u.HireDate, _ = time.ParseInLocation(dateFormat, hireStr, time.UTC)
	return &u, nil
}

// ListUsers returns the full employee directory.
func (s *Store) ListUsers(ctx context.Context) ([]pto.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, role, hire_date, job_title
		FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []pto.User
	for rows.Next() {
		var (
			u       pto.User
			roleStr string
			hireStr string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &roleStr, &hireStr, &u.JobTitle); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = pto.Role(roleStr)
		u.HireDate, _ = time.ParseInLocation(dateFormat, hireStr, time.UTC)
		out = append(out, u)
	}
	return out, rows.Err()
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// GetRecipients returns the digest recipient list, empty when unset.
func (s *Store) GetRecipients(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok, err := s.getSetting(ctx, settingRecipients)
	if err != nil || !ok {
		return nil, err
	}
	var emails []string
	if err := json.Unmarshal([]byte(raw), &emails); err != nil {
		return nil, fmt.Errorf("decode recipients: %w", err)
	}
	return emails, nil
}

// SaveRecipients replaces the digest recipient list.
func (s *Store) SaveRecipients(ctx context.Context, emails []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(emails)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}
	return s.setSetting(ctx, settingRecipients, string(raw))
}

// GetLastDigestSent returns when the last outlook digest was generated,
// zero time when never.
func (s *Store) GetLastDigestSent(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok, err := s.getSetting(ctx, settingLastDigest)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode last digest timestamp: %w", err)
	}
	return t, nil
}

// SetLastDigestSent records when an outlook digest was generated.
func (s *Store) SetLastDigestSent(ctx context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setSetting(ctx, settingLastDigest, at.UTC().Format(time.RFC3339))
}

func (s *Store) getSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) setSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset deletes all rows. For tests and development seeding.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"requests", "users", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
