/*
Package sqlite provides a SQLite-backed implementation of leave.Store.

PURPOSE:
  Durable storage for the roster and the ledger. Same behaviour as the
  JSON document store, but entities are rows, so an update touches one
  employee or one booking instead of rewriting everything.

KEY TABLES:
  employees: Roster entries
  quotas:    One row per (employee, year); days NULL = no quota set
  leaves:    Bookings; days kept as TEXT exactly as supplied

ORDERING:
  Lists follow insertion order (rowid). Upserts keep the original rowid,
  so updating a quota or booking never moves it.

REFERENTIAL INTEGRITY:
  quotas cascade from employees via a foreign key. leaves deliberately
  has no foreign key: bookings for unknown employees are accepted. The
  employee delete path removes the employee's bookings in the same SQL
  transaction instead.

CONCURRENCY:
  sync.RWMutex around every method plus a single open connection, so
  there is exactly one writer. WAL mode keeps readers cheap.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - leave/store.go: Interface definitions
  - store/jsonfile: Flat-file implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-quota/leave"
)

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ leave.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: a single writer, and ":memory:" stays one database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
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
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quotas (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		days TEXT,
		PRIMARY KEY (employee_id, year)
	);

	-- No foreign key on employee_id: orphaned bookings are tolerated.
	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		days TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_employee
		ON leaves(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leaves_from_date
		ON leaves(from_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// EMPLOYEE STORE (leave.RosterStore)
// =============================================================================

// InsertEmployee adds an employee with its quotas.
func (s *Store) InsertEmployee(ctx context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO employees (id, name, created_at) VALUES (?, ?, ?)",
			emp.ID, emp.Name, formatTime(emp.CreatedAt),
		)
		if isUniqueConstraintError(err) {
			return leave.DuplicateID("employee", string(emp.ID))
		}
		if err != nil {
			return fmt.Errorf("failed to insert employee: %w", err)
		}
		return upsertQuotas(ctx, tx, emp.ID, emp.Quotas)
	})
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id leave.EmployeeID) (leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getEmployee(ctx, s.db, id)
}

// ListEmployees returns all employees in insertion order.
func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM employees ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	var employees []leave.Employee
	index := make(map[leave.EmployeeID]int)
	for rows.Next() {
		var emp leave.Employee
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.Name, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		emp.CreatedAt = parseTime(createdAt)
		index[emp.ID] = len(employees)
		employees = append(employees, emp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	quotaRows, err := s.db.QueryContext(ctx,
		"SELECT employee_id, year, days FROM quotas ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotas: %w", err)
	}
	defer quotaRows.Close()

	for quotaRows.Next() {
		var employeeID leave.EmployeeID
		var q leave.Quota
		var days sql.NullString
		if err := quotaRows.Scan(&employeeID, &q.Year, &days); err != nil {
			return nil, err
		}
		q.Days = parseQuotaDays(days)
		if i, ok := index[employeeID]; ok {
			employees[i].Quotas = append(employees[i].Quotas, q)
		}
	}
	return employees, quotaRows.Err()
}

// UpdateEmployee loads, modifies and saves an employee in one transaction.
func (s *Store) UpdateEmployee(ctx context.Context, id leave.EmployeeID, fn func(*leave.Employee) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		emp, err := getEmployee(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&emp); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "UPDATE employees SET name = ? WHERE id = ?", emp.Name, id); err != nil {
			return fmt.Errorf("failed to update employee: %w", err)
		}
		return upsertQuotas(ctx, tx, id, emp.Quotas)
	})
}

// DeleteEmployee removes an employee together with their quotas and leaves.
func (s *Store) DeleteEmployee(ctx context.Context, id leave.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete employee: %w", err)
		}
		return deleteLeavesByEmployee(ctx, tx, id)
	})
}

func getEmployee(ctx context.Context, db execer, id leave.EmployeeID) (leave.Employee, error) {
	var emp leave.Employee
	var createdAt string

	err := db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return leave.Employee{}, leave.EmployeeNotFound(id)
	}
	if err != nil {
		return leave.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	emp.CreatedAt = parseTime(createdAt)

	rows, err := db.QueryContext(ctx,
		"SELECT year, days FROM quotas WHERE employee_id = ? ORDER BY rowid",
		id,
	)
	if err != nil {
		return leave.Employee{}, fmt.Errorf("failed to load quotas: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q leave.Quota
		var days sql.NullString
		if err := rows.Scan(&q.Year, &days); err != nil {
			return leave.Employee{}, err
		}
		q.Days = parseQuotaDays(days)
		emp.Quotas = append(emp.Quotas, q)
	}
	return emp, rows.Err()
}

func upsertQuotas(ctx context.Context, tx *sql.Tx, id leave.EmployeeID, quotas []leave.Quota) error {
	for _, q := range quotas {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quotas (employee_id, year, days) VALUES (?, ?, ?)
			ON CONFLICT(employee_id, year) DO UPDATE SET days = excluded.days
		`, id, q.Year, quotaDaysValue(q.Days))
		if err != nil {
			return fmt.Errorf("failed to save quota: %w", err)
		}
	}
	return nil
}

// =============================================================================
// LEAVE STORE (leave.LedgerStore)
// =============================================================================

const leaveColumns = "id, employee_id, from_date, to_date, days, created_at"

// InsertBooking adds a leave booking.
func (s *Store) InsertBooking(ctx context.Context, b leave.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO leaves ("+leaveColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		b.ID, b.EmployeeID, dateValue(b.From), dateValue(b.To), b.Days.Raw(), formatTime(b.CreatedAt),
	)
	if isUniqueConstraintError(err) {
		return leave.DuplicateID("leave", string(b.ID))
	}
	if err != nil {
		return fmt.Errorf("failed to insert leave: %w", err)
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id leave.BookingID) (leave.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getBooking(ctx, s.db, id)
}

// UpdateBooking loads, modifies and saves a booking in one transaction.
func (s *Store) UpdateBooking(ctx context.Context, id leave.BookingID, fn func(*leave.Booking) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := getBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&b); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE leaves SET employee_id = ?, from_date = ?, to_date = ?, days = ?
			WHERE id = ?
		`, b.EmployeeID, dateValue(b.From), dateValue(b.To), b.Days.Raw(), id)
		if err != nil {
			return fmt.Errorf("failed to update leave: %w", err)
		}
		return nil
	})
}

// DeleteBooking removes a booking. Unknown ids are ignored.
func (s *Store) DeleteBooking(ctx context.Context, id leave.BookingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM leaves WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete leave: %w", err)
	}
	return nil
}

// DeleteBookingsByEmployee removes every booking of an employee.
func (s *Store) DeleteBookingsByEmployee(ctx context.Context, employeeID leave.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return deleteLeavesByEmployee(ctx, s.db, employeeID)
}

// ListBookingsForYear returns bookings starting in year, in insertion order.
func (s *Store) ListBookingsForYear(ctx context.Context, year int) ([]leave.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// from_date is YYYY-MM-DD, so a lexical range is a year range.
	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-01-01", year+1)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+leaveColumns+" FROM leaves WHERE from_date >= ? AND from_date < ? ORDER BY rowid",
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}
	defer rows.Close()

	var bookings []leave.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func getBooking(ctx context.Context, db execer, id leave.BookingID) (leave.Booking, error) {
	row := db.QueryRowContext(ctx, "SELECT "+leaveColumns+" FROM leaves WHERE id = ?", id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Booking{}, leave.BookingNotFound(id)
	}
	if err != nil {
		return leave.Booking{}, fmt.Errorf("failed to get leave: %w", err)
	}
	return b, nil
}

func deleteLeavesByEmployee(ctx context.Context, db execer, id leave.EmployeeID) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM leaves WHERE employee_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete leaves: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (leave.Booking, error) {
	var b leave.Booking
	var from, to, days, createdAt string
	if err := row.Scan(&b.ID, &b.EmployeeID, &from, &to, &days, &createdAt); err != nil {
		return leave.Booking{}, err
	}
	b.From, _ = leave.ParseDate(from)
	b.To, _ = leave.ParseDate(to)
	b.Days = leave.RawDays(days)
	b.CreatedAt = parseTime(createdAt)
	return b, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for development).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"leaves", "quotas", "employees"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Helper functions

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func dateValue(d leave.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func quotaDaysValue(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseQuotaDays(s sql.NullString) *decimal.Decimal {
	if !s.Valid {
		return nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil
	}
	return &d
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
