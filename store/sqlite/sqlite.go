/*
Package sqlite provides a SQLite-backed timeoff.Repository and holiday calendar.

PURPOSE:
  Keeps leave requests and holidays in SQLite through database/sql and
  go-sqlite3. The default DSN is ":memory:", so state stays inside the
  process unless a file path is configured.

INTERFACES IMPLEMENTED:
  timeoff.Repository:      Leave request persistence
  timeoff.HolidayStore:    Holiday lookups for working-day counts

NO DELETES:
  leave_requests rows are only inserted and updated. Rejected and cancelled
  requests stay in the table as history.

KEY TABLES:
  leave_requests: One row per request; seq preserves insertion order
  holidays:       Company-wide (employee_id = '') and per-employee days off

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. An in-memory database is pinned to a
  single connection because each SQLite connection opens its own ":memory:".

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - timeoff/store.go: Repository contract
  - store/memory: In-process alternative
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/leave-tracker/generic"
	"github.com/warp/leave-tracker/timeoff"
	"go.uber.org/zap"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	log *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for failures the calendar interface cannot return.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, log: zap.NewNop()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leave_requests (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		employee_id TEXT NOT NULL,
		category TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT NOT NULL,
		attachment_name TEXT,
		attachment_type TEXT,
		attachment_size INTEGER,
		status TEXT NOT NULL DEFAULT 'pending',
		applied_on TEXT NOT NULL,
		decided_on TEXT,
		working_days INTEGER NOT NULL DEFAULT 0,
		exceeds_balance BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_dates
		ON leave_requests(start_date, end_date);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_employee_date
		ON holidays(employee_id, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(employee_id, date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEAVE REQUESTS (timeoff.Repository)
// =============================================================================

const requestColumns = `
	id, employee_id, category, start_date, end_date, reason,
	attachment_name, attachment_type, attachment_size,
	status, applied_on, decided_on, working_days, exceeds_balance`

// Insert saves a new request.
func (s *Store) Insert(ctx context.Context, r timeoff.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ctype, size := attachmentColumns(r.Attachment)
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (`+requestColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EmployeeID, string(r.Category), r.StartDate.String(), r.EndDate.String(), r.Reason,
		name, ctype, size,
		string(r.Status), r.AppliedOn.String(), nullString(r.DecidedOn.String()),
		r.WorkingDays, r.ExceedsBalance, now, now,
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("leave request %q already exists", r.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert leave request: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an existing request.
func (s *Store) Update(ctx context.Context, r timeoff.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ctype, size := attachmentColumns(r.Attachment)
	res, err := s.db.ExecContext(ctx, `
		UPDATE leave_requests SET
			employee_id = ?, category = ?, start_date = ?, end_date = ?, reason = ?,
			attachment_name = ?, attachment_type = ?, attachment_size = ?,
			status = ?, decided_on = ?, working_days = ?, exceeds_balance = ?,
			updated_at = ?
		WHERE id = ?`,
		r.EmployeeID, string(r.Category), r.StartDate.String(), r.EndDate.String(), r.Reason,
		name, ctype, size,
		string(r.Status), nullString(r.DecidedOn.String()), r.WorkingDays, r.ExceedsBalance,
		time.Now().UTC().Format(time.RFC3339),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if n == 0 {
		return &timeoff.NotFoundError{ID: r.ID}
	}
	return nil
}

// Get retrieves a request by ID.
func (s *Store) Get(ctx context.Context, id string) (timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM leave_requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timeoff.LeaveRequest{}, &timeoff.NotFoundError{ID: id}
	}
	if err != nil {
		return timeoff.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return r, nil
}

// All returns every request in insertion order.
func (s *Store) All(ctx context.Context) ([]timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+requestColumns+` FROM leave_requests ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []timeoff.LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (timeoff.LeaveRequest, error) {
	var (
		r                   timeoff.LeaveRequest
		category, status    string
		start, end, applied string
		decided             sql.NullString
		attName, attType    sql.NullString
		attSize             sql.NullInt64
	)
	if err := row.Scan(
		&r.ID, &r.EmployeeID, &category, &start, &end, &r.Reason,
		&attName, &attType, &attSize,
		&status, &applied, &decided, &r.WorkingDays, &r.ExceedsBalance,
	); err != nil {
		return timeoff.LeaveRequest{}, err
	}

	r.Category = timeoff.Category(category)
	r.Status = timeoff.RequestStatus(status)

	var err error
	if r.StartDate, err = generic.ParseDate(start); err != nil {
		return timeoff.LeaveRequest{}, err
	}
	if r.EndDate, err = generic.ParseDate(end); err != nil {
		return timeoff.LeaveRequest{}, err
	}
	if r.AppliedOn, err = generic.ParseDate(applied); err != nil {
		return timeoff.LeaveRequest{}, err
	}
	if decided.Valid {
		if r.DecidedOn, err = generic.ParseDate(decided.String); err != nil {
			return timeoff.LeaveRequest{}, err
		}
	}
	if attName.Valid {
		r.Attachment = &timeoff.Attachment{
			Name:        attName.String,
			ContentType: attType.String,
			Size:        attSize.Int64,
		}
	}
	return r, nil
}

// =============================================================================
// HOLIDAYS (generic.HolidayCalendar)
// =============================================================================

// SaveHoliday inserts or renames a holiday.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, employee_id, date, name, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			date = excluded.date,
			name = excluded.name
	`
	_, err := s.db.ExecContext(ctx, query,
		h.ID, h.EmployeeID, h.Date.String(), h.Name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// ListHolidays returns holidays applying to employeeID in [from, to], date
// ascending. An empty employeeID returns company-wide holidays only.
func (s *Store) ListHolidays(ctx context.Context, employeeID string, from, to generic.TimePoint) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, date, name
		FROM holidays
		WHERE (employee_id = '' OR employee_id = ?)
		  AND date >= ? AND date <= ?
		ORDER BY date ASC, name ASC`,
		employeeID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var date string
		if err := rows.Scan(&h.ID, &h.EmployeeID, &date, &h.Name); err != nil {
			return nil, err
		}
		if h.Date, err = generic.ParseDate(date); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// IsHoliday reports false when the lookup fails.
func (s *Store) IsHoliday(employeeID string, date generic.TimePoint) bool {
	return len(s.HolidaysBetween(employeeID, date, date)) > 0
}

// HolidaysBetween returns nil when the lookup fails and logs the error.
// Callers that must not miss a failure use ListHolidays.
func (s *Store) HolidaysBetween(employeeID string, from, to generic.TimePoint) []generic.TimePoint {
	holidays, err := s.ListHolidays(context.Background(), employeeID, from, to)
	if err != nil {
		s.log.Error("holiday lookup failed",
			zap.String("employee_id", employeeID),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err))
		return nil
	}
	dates := make([]generic.TimePoint, 0, len(holidays))
	for _, h := range holidays {
		dates = append(dates, h.Date)
	}
	return dates
}

// Helper functions

func attachmentColumns(a *timeoff.Attachment) (sql.NullString, sql.NullString, sql.NullInt64) {
	if a == nil {
		return sql.NullString{}, sql.NullString{}, sql.NullInt64{}
	}
	return sql.NullString{String: a.Name, Valid: true},
		sql.NullString{String: a.ContentType, Valid: true},
		sql.NullInt64{Int64: a.Size, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
